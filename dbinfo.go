package mossdb

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const metaInfoTag byte = 'i'

var metaInfoKey = metaRawKey(metaInfoTag, nil)

// Info is a small msgpack-encoded record stamped into a database the first
// time it is opened for writing, mirroring the teacher's per-table state
// record (andreyvit-edb/schemastate.go) but scoped to the whole database
// rather than to one table.
type Info struct {
	FormatVersion int       `msgpack:"v"`
	CreatedAt     time.Time `msgpack:"t"`
}

const currentFormatVersion = 1

// Info returns the database's stamped info record.
func (db *Database) Info() (Info, error) {
	var info Info
	err := db.View(func(tx *Tx) error {
		raw := tx.dtx.Get(metaInfoKey)
		if raw == nil {
			info = Info{FormatVersion: currentFormatVersion}
			return nil
		}
		return msgpack.Unmarshal(raw, &info)
	})
	return info, err
}

// ensureInfo stamps a fresh Info record into the database if one is not
// already present. Called once from Open on a writable database.
func ensureInfo(db *Database) error {
	return db.Update(func(tx *Tx) error {
		if tx.dtx.Get(metaInfoKey) != nil {
			return nil
		}
		info := Info{FormatVersion: currentFormatVersion, CreatedAt: time.Now()}
		raw, err := msgpack.Marshal(&info)
		if err != nil {
			return newErr(ErrInternalDriverError, err, "encoding database info")
		}
		return wrapDriverErr(tx.dtx.Set(metaInfoKey, raw))
	})
}

// Package bolt registers the "bolt" mossdb driver scheme, backed by
// go.etcd.io/bbolt. All of a database's identity-prefixed keys live in a
// single root bucket; mossdb's own bucket manager supplies the namespacing
// bbolt would otherwise provide natively.
package bolt

import (
	"os"
	"time"

	"go.etcd.io/bbolt"

	mossdb "github.com/serpent-os/moss-db"
)

var rootBucket = []byte("kv")

func init() {
	mossdb.RegisterDriver("bolt", open)
}

func open(target string, flags mossdb.DatabaseFlags) (mossdb.Driver, error) {
	if !flags.Has(mossdb.FlagCreateIfNotExists) {
		if _, err := os.Stat(target); err != nil {
			return nil, err
		}
	}

	opts := *bbolt.DefaultOptions
	opts.ReadOnly = flags.Has(mossdb.FlagReadOnly)
	opts.NoSync = flags.Has(mossdb.FlagDisableSync)
	opts.Timeout = 5 * time.Second

	bdb, err := bbolt.Open(target, 0o600, &opts)
	if err != nil {
		return nil, err
	}

	if !opts.ReadOnly {
		err = bdb.Update(func(btx *bbolt.Tx) error {
			_, err := btx.CreateBucketIfNotExists(rootBucket)
			return err
		})
		if err != nil {
			bdb.Close()
			return nil, err
		}
	}

	return &driver{bdb: bdb}, nil
}

type driver struct {
	bdb *bbolt.DB
}

func (d *driver) Close() error { return d.bdb.Close() }

func (d *driver) BeginRead() (mossdb.DriverTx, error) {
	btx, err := d.bdb.Begin(false)
	if err != nil {
		return nil, err
	}
	return &tx{btx: btx, root: btx.Bucket(rootBucket)}, nil
}

func (d *driver) BeginWrite() (mossdb.DriverTx, error) {
	btx, err := d.bdb.Begin(true)
	if err != nil {
		return nil, err
	}
	root, err := btx.CreateBucketIfNotExists(rootBucket)
	if err != nil {
		btx.Rollback()
		return nil, err
	}
	return &tx{btx: btx, root: root}, nil
}

type tx struct {
	btx  *bbolt.Tx
	root *bbolt.Bucket
}

func (t *tx) Writable() bool { return t.btx.Writable() }

func (t *tx) Get(key []byte) []byte {
	if t.root == nil {
		return nil
	}
	return t.root.Get(key)
}

func (t *tx) Set(key, value []byte) error {
	// bbolt keeps a reference to value until the transaction ends; copy it
	// so callers may reuse their buffer as soon as Set returns.
	return t.root.Put(key, append([]byte{}, value...))
}

func (t *tx) Delete(key []byte) error {
	return t.root.Delete(key)
}

func (t *tx) Cursor() mossdb.DriverCursor {
	if t.root == nil {
		return emptyCursor{}
	}
	return cursor{c: t.root.Cursor()}
}

func (t *tx) Commit() error { return t.btx.Commit() }

func (t *tx) Rollback() error {
	err := t.btx.Rollback()
	if err == bbolt.ErrTxClosed {
		return nil
	}
	return err
}

type cursor struct {
	c *bbolt.Cursor
}

func (c cursor) Seek(seek []byte) ([]byte, []byte) { return c.c.Seek(seek) }
func (c cursor) Next() ([]byte, []byte)            { return c.c.Next() }

type emptyCursor struct{}

func (emptyCursor) Seek([]byte) ([]byte, []byte) { return nil, nil }
func (emptyCursor) Next() ([]byte, []byte)       { return nil, nil }

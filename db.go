package mossdb

import (
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// Options configures a Database beyond the driver-selecting URI and flags.
type Options struct {
	// Log receives structured diagnostic events. A nil Log disables logging.
	Log *slog.Logger
}

// Database is the top-level handle returned by Open. It owns a Driver, whose
// BeginWrite serializes writers; read transactions may run concurrently with
// the single active writer.
type Database struct {
	driver Driver
	log    *slog.Logger

	readers atomic.Int64
	writers atomic.Int64

	readCount  atomic.Uint64
	writeCount atomic.Uint64
}

// Stats is a point-in-time snapshot of Database activity counters, exposed
// for monitoring.
type Stats struct {
	ActiveReaders int64
	ActiveWriters int64
	ReadCount     uint64
	WriteCount    uint64
}

// Open parses uri as scheme://target, looks up the driver registered for
// scheme, and opens it with flags. Registering a driver is a side effect of
// importing its package, in the manner of database/sql: see the
// mossdb/driver/bolt and mossdb/driver/mem subpackages.
func Open(uri string, flags DatabaseFlags, opt Options) (*Database, error) {
	scheme, target, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	opener, ok := lookupDriver(scheme)
	if !ok {
		return nil, newErr(ErrUnsupportedDriver, nil, "no driver registered for scheme %q", scheme)
	}
	drv, err := opener(target, flags)
	if err != nil {
		return nil, newErr(ErrConnectionFailed, err, "opening %q", uri)
	}
	log := opt.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	db := &Database{driver: drv, log: log}
	db.log.Info("mossdb: opened database", "uri", uri, "flags", flags)

	if !flags.Has(FlagReadOnly) {
		if err := ensureInfo(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func splitURI(uri string) (scheme, target string, err error) {
	i := strings.Index(uri, "://")
	if i < 0 {
		return "", "", newErr(ErrUnsupportedDriver, nil, "uri %q has no scheme:// prefix", uri)
	}
	return uri[:i], uri[i+3:], nil
}

// Close releases the underlying driver's resources. The Database must not
// be used afterward.
func (db *Database) Close() error {
	db.log.Info("mossdb: closing database")
	return db.driver.Close()
}

// Stats returns a snapshot of the database's activity counters.
func (db *Database) Stats() Stats {
	return Stats{
		ActiveReaders: db.readers.Load(),
		ActiveWriters: db.writers.Load(),
		ReadCount:     db.readCount.Load(),
		WriteCount:    db.writeCount.Load(),
	}
}

// View runs fn inside a read-only transaction. Any error returned by fn, or
// any panic recovered from it, rolls back the transaction and is returned
// (panics as ErrUncaughtException).
func (db *Database) View(fn func(tx *Tx) error) (err error) {
	dtx, derr := db.driver.BeginRead()
	if derr != nil {
		return newErr(ErrConnectionFailed, derr, "beginning read transaction")
	}
	tx := newTx(db, dtx, false)
	if err := tx.reset(); err != nil {
		tx.Drop()
		return err
	}

	db.readers.Add(1)
	defer db.readers.Add(-1)
	defer tx.Drop()

	defer func() {
		if r := recover(); r != nil {
			db.log.Error("mossdb: panic in View", "recover", r)
			err = newErr(ErrUncaughtException, nil, "panic in View callback: %v", r)
		}
	}()

	err = fn(tx)
	db.readCount.Add(1)
	return err
}

// Update runs fn inside a read-write transaction. If fn returns nil the
// transaction is committed; otherwise, or if fn panics, it is rolled back.
func (db *Database) Update(fn func(tx *Tx) error) (err error) {
	dtx, derr := db.driver.BeginWrite()
	if derr != nil {
		return newErr(ErrConnectionFailed, derr, "beginning write transaction")
	}
	tx := newTx(db, dtx, true)
	if err := tx.reset(); err != nil {
		tx.Drop()
		return err
	}

	db.writers.Add(1)
	defer db.writers.Add(-1)

	committed := false
	defer func() {
		if !committed {
			tx.Drop()
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			db.log.Error("mossdb: panic in Update", "recover", r)
			err = newErr(ErrUncaughtException, nil, "panic in Update callback: %v", r)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

package mossdb

import "sync"

// DatabaseFlags is a bitset passed to Open and on to the driver.
type DatabaseFlags uint32

const (
	FlagNone              DatabaseFlags = 0
	FlagCreateIfNotExists DatabaseFlags = 1
	FlagReadOnly          DatabaseFlags = 2
	FlagDisableSync       DatabaseFlags = 4
)

func (f DatabaseFlags) Has(flag DatabaseFlags) bool {
	return f&flag != 0
}

// Driver is the contract a storage engine must implement: open (handled by
// the registered DriverOpener), close, and read-only/read-write
// transactions. A driver exposes a single flat, ordered byte keyspace; it
// knows nothing about buckets, identities, or the ORM layer above it.
type Driver interface {
	Close() error
	BeginRead() (DriverTx, error)
	BeginWrite() (DriverTx, error)
}

// DriverTx is a raw transaction over the driver's flat keyspace.
type DriverTx interface {
	Writable() bool

	// Get returns nil if key is absent.
	Get(key []byte) []byte
	// Set upserts key/value. Only valid on a writable transaction.
	Set(key, value []byte) error
	// Delete is a no-op if key is absent. Only valid on a writable transaction.
	Delete(key []byte) error

	// Cursor returns a cursor for ordered iteration over the keyspace.
	Cursor() DriverCursor

	Commit() error
	// Rollback must be safe to call multiple times and after Commit.
	Rollback() error
}

// DriverCursor iterates a driver's keyspace in ascending key order.
type DriverCursor interface {
	// Seek moves to the first key >= seek, returning nil, nil past the end.
	Seek(seek []byte) (key, value []byte)
	// Next advances to the following key, returning nil, nil past the end.
	Next() (key, value []byte)
}

// DriverOpener constructs a Driver for the given scheme-stripped target and
// flags. Drivers register one of these per scheme from their package's
// init(), in the manner of database/sql.Register.
type DriverOpener func(target string, flags DatabaseFlags) (Driver, error)

var (
	driversMu sync.Mutex
	drivers   = map[string]DriverOpener{}
)

// RegisterDriver makes a driver available under the given URI scheme. It is
// meant to be called from a driver package's init() and panics on
// duplicate registration, matching the database/sql convention.
func RegisterDriver(scheme string, opener DriverOpener) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if opener == nil {
		panic("mossdb: RegisterDriver: nil opener")
	}
	if _, dup := drivers[scheme]; dup {
		panic("mossdb: RegisterDriver called twice for scheme " + scheme)
	}
	drivers[scheme] = opener
}

func lookupDriver(scheme string) (DriverOpener, bool) {
	driversMu.Lock()
	defer driversMu.Unlock()
	opener, ok := drivers[scheme]
	return opener, ok
}

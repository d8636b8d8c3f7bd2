package mossdb

import "bytes"

type txState int

const (
	txFresh txState = iota
	txActive
	txClosed
)

// Tx is a transient, single-goroutine-owned unit of atomicity bound to a
// Database. It wraps a DriverTx, mediates bucket-manager operations, and
// exposes typed conveniences over raw get/set/remove. All buckets,
// iterators, and keys/values it hands out are borrowed and become invalid
// once the transaction commits or drops.
type Tx struct {
	db       *Database
	dtx      DriverTx
	writable bool
	state    txState
}

func newTx(d *Database, dtx DriverTx, writable bool) *Tx {
	return &Tx{db: d, dtx: dtx, writable: writable, state: txFresh}
}

// reset re-arms a fresh transaction for use. View and Update call this
// immediately after obtaining a driver transaction.
func (tx *Tx) reset() error {
	if tx.state != txFresh {
		return newErr(ErrTransactionClosed, nil, "reset requires a fresh transaction")
	}
	tx.state = txActive
	return nil
}

func (tx *Tx) requireActive() error {
	if tx.state != txActive {
		return newErr(ErrTransactionClosed, nil, "operation on a non-active transaction")
	}
	return nil
}

func (tx *Tx) requireWritable() error {
	if err := tx.requireActive(); err != nil {
		return err
	}
	if !tx.writable {
		return newErr(ErrReadOnlyViolation, nil, "write attempted on a read-only transaction")
	}
	return nil
}

// Writable reports whether this transaction accepts writes.
func (tx *Tx) Writable() bool { return tx.writable }

// Set upserts key/value within bucket b.
func (tx *Tx) Set(b *Bucket, key, value []byte) error {
	if err := tx.requireWritable(); err != nil {
		return err
	}
	if len(key) == 0 {
		return newErr(ErrDecodeError, nil, "bucket keys must be non-empty")
	}
	rk := getKeyBytes()
	defer releaseKeyBytes(rk)
	rk = b.appendRealKey(rk, key)
	if err := tx.dtx.Set(rk, value); err != nil {
		return wrapDriverErr(err)
	}
	return nil
}

// Get returns the value for key in bucket b, or nil if absent.
func (tx *Tx) Get(b *Bucket, key []byte) ([]byte, error) {
	if err := tx.requireActive(); err != nil {
		return nil, err
	}
	rk := getKeyBytes()
	defer releaseKeyBytes(rk)
	rk = b.appendRealKey(rk, key)
	return tx.dtx.Get(rk), nil
}

// Remove deletes key from bucket b. It is a no-op if key is absent.
func (tx *Tx) Remove(b *Bucket, key []byte) error {
	if err := tx.requireWritable(); err != nil {
		return err
	}
	rk := getKeyBytes()
	defer releaseKeyBytes(rk)
	rk = b.appendRealKey(rk, key)
	if err := tx.dtx.Delete(rk); err != nil {
		return wrapDriverErr(err)
	}
	return nil
}

// Entry is one (key, value) pair yielded by an Iterator.
type Entry struct {
	Key   []byte
	Value []byte
}

// Iterator walks bucket b in ascending key order via a prefix scan over the
// bucket's identity. Values are valid only during the owning transaction.
type Iterator struct {
	cur    DriverCursor
	prefix []byte
	done   bool
	key    []byte
	value  []byte
}

// Iterator returns an ordered (key, value) sequence over bucket b.
func (tx *Tx) Iterator(b *Bucket) *Iterator {
	cur := tx.dtx.Cursor()
	it := &Iterator{cur: cur, prefix: b.idPrefix()}
	k, v := cur.Seek(it.prefix)
	it.setPos(k, v)
	return it
}

func (it *Iterator) setPos(k, v []byte) {
	if k == nil || !bytes.HasPrefix(k, it.prefix) {
		it.done = true
		it.key, it.value = nil, nil
		return
	}
	it.key = k[len(it.prefix):]
	it.value = v
}

func (it *Iterator) Valid() bool   { return !it.done }
func (it *Iterator) Key() []byte   { return it.key }
func (it *Iterator) Value() []byte { return it.value }
func (it *Iterator) Entry() Entry  { return Entry{Key: it.key, Value: it.value} }

func (it *Iterator) Next() {
	if it.done {
		return
	}
	k, v := it.cur.Next()
	it.setPos(k, v)
}

// Commit atomically applies all writes made on this transaction and
// invalidates it. Only valid on a writable, active transaction.
func (tx *Tx) Commit() error {
	if err := tx.requireWritable(); err != nil {
		return err
	}
	err := tx.dtx.Commit()
	tx.state = txClosed
	if err != nil {
		return newErr(ErrInternalDriverError, err, "commit failed")
	}
	tx.db.writeCount.Add(1)
	return nil
}

// Drop rolls back the transaction. It is idempotent.
func (tx *Tx) Drop() {
	if tx.state == txClosed {
		return
	}
	_ = tx.dtx.Rollback()
	tx.state = txClosed
}

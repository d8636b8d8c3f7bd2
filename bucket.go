package mossdb

import (
	"bytes"
	"encoding/binary"
)

// ReservedPrefix marks bucket names owned by the bucket manager itself.
// Callers may not create a bucket whose name starts with this prefix.
const ReservedPrefix = "$meta:"

const (
	metaNameTag byte = 'n'
	metaFreeTag byte = 'f'
	metaMaxTag  byte = 'x'
)

// Meta entries live under the reserved identity 0, which is never handed
// out to a user bucket: metaRawKey(tag, rest) = be32(0) || tag || rest.
func metaRawKey(tag byte, rest []byte) []byte {
	out := make([]byte, 0, 5+len(rest))
	out = EncodeUint32(out, 0)
	out = append(out, tag)
	out = append(out, rest...)
	return out
}

func metaNameKey(name []byte) []byte { return metaRawKey(metaNameTag, name) }

func metaFreeKey(id uint32) []byte {
	var idb [4]byte
	binary.BigEndian.PutUint32(idb[:], id)
	return metaRawKey(metaFreeTag, idb[:])
}

var (
	metaNamePrefix = metaRawKey(metaNameTag, nil)
	metaFreePrefix = metaRawKey(metaFreeTag, nil)
	metaMaxKey     = metaRawKey(metaMaxTag, nil)
)

// Bucket is a handle to a named namespace within a transaction. It is only
// valid for the lifetime of the transaction that produced it.
type Bucket struct {
	name []byte
	id   uint32
}

// Name returns a copy of the bucket's name.
func (b *Bucket) Name() []byte { return append([]byte(nil), b.name...) }

// ID returns the bucket's stable, non-zero identity.
func (b *Bucket) ID() uint32 { return b.id }

func (b *Bucket) idPrefix() []byte {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:], b.id)
	return p[:]
}

func (b *Bucket) realKey(userKey []byte) []byte {
	return b.appendRealKey(make([]byte, 0, 4+len(userKey)), userKey)
}

// appendRealKey appends the bucket-prefixed key to buf and returns the
// extended slice, letting callers reuse a pooled scratch buffer instead of
// allocating on every Set/Get/Remove.
func (b *Bucket) appendRealKey(buf, userKey []byte) []byte {
	buf = EncodeUint32(buf, b.id)
	return append(buf, userKey...)
}

func isReservedName(name []byte) bool {
	return bytes.HasPrefix(name, []byte(ReservedPrefix))
}

// nextIdentity pops the smallest free identity if one is pending reuse,
// otherwise allocates maxAllocatedIdentity+1 and persists the new max.
func (tx *Tx) nextIdentity() (uint32, error) {
	cur := tx.dtx.Cursor()
	k, _ := cur.Seek(metaFreePrefix)
	if k != nil && bytes.HasPrefix(k, metaFreePrefix) {
		id := binary.BigEndian.Uint32(k[len(metaFreePrefix):])
		if err := tx.dtx.Delete(k); err != nil {
			return 0, wrapDriverErr(err)
		}
		return id, nil
	}

	var max uint32
	if raw := tx.dtx.Get(metaMaxKey); raw != nil {
		max = binary.BigEndian.Uint32(raw)
	}
	max++
	var nb [4]byte
	binary.BigEndian.PutUint32(nb[:], max)
	if err := tx.dtx.Set(metaMaxKey, nb[:]); err != nil {
		return 0, wrapDriverErr(err)
	}
	return max, nil
}

// CreateBucket creates a new bucket named name. It fails with
// ErrBucketAlreadyExists if the name is already bound or reserved.
func (tx *Tx) CreateBucket(name []byte) (*Bucket, error) {
	if err := tx.requireWritable(); err != nil {
		return nil, err
	}
	if len(name) == 0 {
		return nil, newErr(ErrDecodeError, nil, "bucket name must be non-empty")
	}
	if isReservedName(name) {
		return nil, newErr(ErrBucketAlreadyExists, nil, "bucket name %q uses the reserved prefix %q", name, ReservedPrefix)
	}
	nameKey := metaNameKey(name)
	if tx.dtx.Get(nameKey) != nil {
		return nil, newErr(ErrBucketAlreadyExists, nil, "bucket %q", name)
	}
	id, err := tx.nextIdentity()
	if err != nil {
		return nil, err
	}
	var idb [4]byte
	binary.BigEndian.PutUint32(idb[:], id)
	if err := tx.dtx.Set(nameKey, idb[:]); err != nil {
		return nil, wrapDriverErr(err)
	}
	return &Bucket{name: append([]byte(nil), name...), id: id}, nil
}

// CreateBucketIfNotExists returns the existing bucket named name, or
// creates it.
func (tx *Tx) CreateBucketIfNotExists(name []byte) (*Bucket, error) {
	b, err := tx.Bucket(name)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	return tx.CreateBucket(name)
}

// Bucket returns the handle for name, or nil if no such bucket exists.
func (tx *Tx) Bucket(name []byte) (*Bucket, error) {
	if err := tx.requireActive(); err != nil {
		return nil, err
	}
	raw := tx.dtx.Get(metaNameKey(name))
	if raw == nil {
		return nil, nil
	}
	id := binary.BigEndian.Uint32(raw)
	return &Bucket{name: append([]byte(nil), name...), id: id}, nil
}

// RemoveBucket deletes every entry owned by b, releases its identity for
// reuse, and erases its name mapping, all within the current transaction.
func (tx *Tx) RemoveBucket(b *Bucket) error {
	if err := tx.requireWritable(); err != nil {
		return err
	}
	if b == nil {
		return newErr(ErrBucketNotFound, nil, "nil bucket")
	}

	// Collect keys before deleting any of them: mutating the keyspace
	// while a cursor walks it is unsupported.
	prefix := b.idPrefix()
	cur := tx.dtx.Cursor()
	var toDelete [][]byte
	for k, _ := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cur.Next() {
		toDelete = append(toDelete, append([]byte(nil), k...))
	}
	for _, k := range toDelete {
		if err := tx.dtx.Delete(k); err != nil {
			return wrapDriverErr(err)
		}
	}

	if err := tx.dtx.Delete(metaNameKey(b.name)); err != nil {
		return wrapDriverErr(err)
	}
	if err := tx.dtx.Set(metaFreeKey(b.id), []byte{}); err != nil {
		return wrapDriverErr(err)
	}
	return nil
}

// BucketEntry is one (name, handle) pair yielded by Tx.Buckets.
type BucketEntry struct {
	Name   []byte
	Bucket *Bucket
}

// BucketIterator walks live buckets in name order.
type BucketIterator struct {
	cur   DriverCursor
	done  bool
	entry BucketEntry
}

// Buckets returns a lazy, name-ordered sequence of (name, handle) pairs for
// every live bucket.
func (tx *Tx) Buckets() *BucketIterator {
	cur := tx.dtx.Cursor()
	it := &BucketIterator{cur: cur}
	k, v := cur.Seek(metaNamePrefix)
	it.advanceTo(k, v)
	return it
}

func (it *BucketIterator) advanceTo(k, v []byte) {
	if k == nil || !bytes.HasPrefix(k, metaNamePrefix) {
		it.done = true
		it.entry = BucketEntry{}
		return
	}
	name := append([]byte(nil), k[len(metaNamePrefix):]...)
	id := binary.BigEndian.Uint32(v)
	it.entry = BucketEntry{Name: name, Bucket: &Bucket{name: name, id: id}}
}

func (it *BucketIterator) Valid() bool        { return !it.done }
func (it *BucketIterator) Entry() BucketEntry { return it.entry }

func (it *BucketIterator) Next() {
	if it.done {
		return
	}
	k, v := it.cur.Next()
	it.advanceTo(k, v)
}

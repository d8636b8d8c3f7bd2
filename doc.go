/*
Package mossdb implements an embedded, transactional key-value store with a
bucket-namespaced data model, plus a thin object-relational mapping layer
(see the orm subpackage) that derives a multi-bucket layout from Go struct
shapes.

# Technical details

**Buckets.** Every bucket lives in one flat, driver-owned byte keyspace.
Each bucket is assigned a small non-zero uint32 identity by the bucket
manager; all of a bucket's real on-disk keys are the identity's big-endian
bytes followed by the caller's key. Identities are reused, smallest-free
first, after a bucket is removed.

**Drivers.** mossdb never touches storage directly. A Driver, built by the
DriverOpener registered for its scheme, implements Close/BeginRead/BeginWrite
against a flat, ordered byte keyspace; the
driver/bolt subpackage wraps go.etcd.io/bbolt (a memory-mapped B+tree) for
persistent use, and driver/mem provides an ephemeral in-process driver for
tests and the "memory://" scheme. Drivers register themselves by scheme
with RegisterDriver, in the manner of database/sql.

**Reserved buckets.** Two meta buckets, addressed through the reserved
identity 0, back the bucket manager itself: a name→identity map and an
identity freelist. User bucket names beginning with "$meta:" are rejected.
Two further reserved keys under identity 0 hold the highest identity
allocated so far and a small msgpack-encoded Info record (format version,
creation time), stamped once by Open.
*/
package mossdb

// Package mem registers the "memory" mossdb driver scheme: a transient,
// in-process store with no persistence, intended for tests and ephemeral
// databases. Each transaction works against a private snapshot of the
// keyspace, taken under the store's lock, trading copy cost for a simple
// isolation story.
package mem

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"sync"

	mossdb "github.com/serpent-os/moss-db"
)

func init() {
	mossdb.RegisterDriver("memory", open)
}

func open(_ string, _ mossdb.DatabaseFlags) (mossdb.Driver, error) {
	s := &store{}
	s.cond = sync.NewCond(&s.mu)
	return s, nil
}

type kv struct {
	key   []byte
	value []byte
}

type store struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []kv // sorted by key
	writer bool
	closed bool
}

func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
	return nil
}

func (s *store) BeginRead() (mossdb.DriverTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("mossdb/driver/mem: store closed")
	}
	return &tx{store: s, items: slices.Clone(s.items)}, nil
}

func (s *store) BeginWrite() (mossdb.DriverTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.writer && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return nil, fmt.Errorf("mossdb/driver/mem: store closed")
	}
	s.writer = true
	return &tx{store: s, writable: true, items: slices.Clone(s.items)}, nil
}

type tx struct {
	store    *store
	writable bool
	closed   bool
	items    []kv
}

func (t *tx) Writable() bool { return t.writable }

func (t *tx) find(key []byte) (int, bool) {
	i := sort.Search(len(t.items), func(i int) bool {
		return bytes.Compare(t.items[i].key, key) >= 0
	})
	if i < len(t.items) && bytes.Equal(t.items[i].key, key) {
		return i, true
	}
	return i, false
}

func (t *tx) Get(key []byte) []byte {
	i, ok := t.find(key)
	if !ok {
		return nil
	}
	return t.items[i].value
}

func (t *tx) Set(key, value []byte) error {
	key = slices.Clone(key)
	value = slices.Clone(value)
	i, ok := t.find(key)
	if ok {
		t.items[i].value = value
		return nil
	}
	t.items = slices.Insert(t.items, i, kv{key: key, value: value})
	return nil
}

func (t *tx) Delete(key []byte) error {
	i, ok := t.find(key)
	if !ok {
		return nil
	}
	t.items = slices.Delete(t.items, i, i+1)
	return nil
}

func (t *tx) Cursor() mossdb.DriverCursor {
	return &cursor{tx: t, pos: -1}
}

func (t *tx) releaseLocked() {
	if t.closed {
		return
	}
	t.closed = true
	if t.writable {
		t.store.writer = false
		t.store.cond.Broadcast()
	}
}

func (t *tx) Commit() error {
	if !t.writable {
		return fmt.Errorf("mossdb/driver/mem: read-only transaction cannot commit")
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.items = t.items
	t.releaseLocked()
	return nil
}

func (t *tx) Rollback() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.releaseLocked()
	return nil
}

type cursor struct {
	tx  *tx
	pos int
}

func (c *cursor) Seek(seek []byte) ([]byte, []byte) {
	items := c.tx.items
	i := sort.Search(len(items), func(i int) bool {
		return bytes.Compare(items[i].key, seek) >= 0
	})
	c.pos = i
	if i >= len(items) {
		return nil, nil
	}
	return items[i].key, items[i].value
}

func (c *cursor) Next() ([]byte, []byte) {
	c.pos++
	if c.pos < 0 || c.pos >= len(c.tx.items) {
		return nil, nil
	}
	return c.tx.items[c.pos].key, c.tx.items[c.pos].value
}

package bolt_test

import (
	"path/filepath"
	"testing"

	mossdb "github.com/serpent-os/moss-db"
	_ "github.com/serpent-os/moss-db/driver/bolt"
)

func TestOpenMissingWithoutCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := mossdb.Open("bolt://"+path, mossdb.FlagNone, mossdb.Options{})
	if err == nil {
		t.Fatalf("Open: expected error for missing file without FlagCreateIfNotExists")
	}
}

func TestSetGetAcrossTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t1.db")
	db, err := mossdb.Open("bolt://"+path, mossdb.FlagCreateIfNotExists, mossdb.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	err = db.Update(func(tx *mossdb.Tx) error {
		b, err := tx.CreateBucket([]byte("1"))
		if err != nil {
			return err
		}
		return tx.Set(b, []byte("name"), []byte("john"))
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		b, err := tx.Bucket([]byte("1"))
		if err != nil {
			return err
		}
		v, err := tx.Get(b, []byte("name"))
		if err != nil {
			return err
		}
		if string(v) != "john" {
			t.Errorf("got %q, want %q", v, "john")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t2.db")
	db, err := mossdb.Open("bolt://"+path, mossdb.FlagCreateIfNotExists, mossdb.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = db.Update(func(tx *mossdb.Tx) error {
		b, err := tx.CreateBucket([]byte("1"))
		if err != nil {
			return err
		}
		return tx.Set(b, []byte("k"), []byte("v"))
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db2, err := mossdb.Open("bolt://"+path, mossdb.FlagNone, mossdb.Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { db2.Close() })

	err = db2.View(func(tx *mossdb.Tx) error {
		b, err := tx.Bucket([]byte("1"))
		if err != nil {
			return err
		}
		if b == nil {
			t.Fatalf("bucket %q missing after reopen", "1")
		}
		v, err := tx.Get(b, []byte("k"))
		if err != nil {
			return err
		}
		if string(v) != "v" {
			t.Errorf("got %q, want %q", v, "v")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

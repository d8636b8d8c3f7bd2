package mossdb_test

import (
	"encoding/binary"
	"testing"

	mossdb "github.com/serpent-os/moss-db"
	_ "github.com/serpent-os/moss-db/driver/mem"
)

func openTestDB(t testing.TB) *mossdb.Database {
	t.Helper()
	db, err := mossdb.Open("memory://", mossdb.FlagCreateIfNotExists, mossdb.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSmoke(t *testing.T) {
	db := openTestDB(t)

	err := db.Update(func(tx *mossdb.Tx) error {
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
		if b == nil {
			t.Fatalf("bucket %q not found", "1")
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

func TestIdentityReuse(t *testing.T) {
	db := openTestDB(t)

	err := db.Update(func(tx *mossdb.Tx) error {
		for _, name := range []string{"1", "2", "3", "4", "5"} {
			b, err := tx.CreateBucket([]byte(name))
			if err != nil {
				return err
			}
			if got, want := b.ID(), mustID(name); got != want {
				t.Errorf("bucket %q: got id %d, want %d", name, got, want)
			}
		}
		b3, err := tx.Bucket([]byte("3"))
		if err != nil {
			return err
		}
		if err := tx.RemoveBucket(b3); err != nil {
			return err
		}
		b20, err := tx.CreateBucket([]byte("20"))
		if err != nil {
			return err
		}
		if b20.ID() != 3 {
			t.Errorf("reused identity: got %d, want 3", b20.ID())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func mustID(name string) uint32 {
	switch name {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	default:
		return 0
	}
}

func TestBulkNumericIteration(t *testing.T) {
	db := openTestDB(t)
	const n = 100000

	err := db.Update(func(tx *mossdb.Tx) error {
		b, err := tx.CreateBucket([]byte("n"))
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			key := mossdb.EncodeUint32(nil, uint32(i))
			val := mossdb.EncodeUint32(nil, uint32(i))
			if err := tx.Set(b, key, val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		b, err := tx.Bucket([]byte("n"))
		if err != nil {
			return err
		}
		count := 0
		it := tx.Iterator(b)
		for it.Valid() {
			want := uint32(count)
			gotKey := binary.BigEndian.Uint32(it.Key())
			gotVal := binary.BigEndian.Uint32(it.Value())
			if gotKey != want || gotVal != want {
				t.Fatalf("entry %d: got (%d,%d), want (%d,%d)", count, gotKey, gotVal, want, want)
			}
			count++
			it.Next()
		}
		if count != n {
			t.Fatalf("got %d entries, want %d", count, n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestRemoveBucketAndListing(t *testing.T) {
	db := openTestDB(t)

	err := db.Update(func(tx *mossdb.Tx) error {
		b, err := tx.CreateBucket([]byte("x"))
		if err != nil {
			return err
		}
		if err := tx.Set(b, []byte("k"), []byte("v")); err != nil {
			return err
		}
		return tx.RemoveBucket(b)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		b, err := tx.Bucket([]byte("x"))
		if err != nil {
			return err
		}
		if b != nil {
			t.Errorf("bucket %q still present after removal", "x")
		}
		for it := tx.Buckets(); it.Valid(); it.Next() {
			if string(it.Entry().Name) == "x" {
				t.Errorf("buckets() still yields %q", "x")
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	db := openTestDB(t)

	err := db.Update(func(tx *mossdb.Tx) error {
		if _, err := tx.CreateBucket([]byte("x")); err != nil {
			return err
		}
		return mossdb.NewBucketNotFoundError("oops")
	})
	if err == nil {
		t.Fatalf("Update: expected error")
	}

	err = db.View(func(tx *mossdb.Tx) error {
		b, err := tx.Bucket([]byte("x"))
		if err != nil {
			return err
		}
		if b != nil {
			t.Errorf("bucket %q present after rolled-back Update", "x")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestInfoStampedOnOpen(t *testing.T) {
	db := openTestDB(t)
	info, err := db.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.FormatVersion != 1 {
		t.Errorf("FormatVersion = %d, want 1", info.FormatVersion)
	}
	if info.CreatedAt.IsZero() {
		t.Errorf("CreatedAt is zero")
	}
}

func TestReadOnlyViolation(t *testing.T) {
	db := openTestDB(t)
	err := db.Update(func(tx *mossdb.Tx) error {
		_, err := tx.CreateBucket([]byte("x"))
		return err
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		b, err := tx.Bucket([]byte("x"))
		if err != nil {
			return err
		}
		return tx.Set(b, []byte("k"), []byte("v"))
	})
	if !mossdb.Is(err, mossdb.ErrReadOnlyViolation) {
		t.Fatalf("got %v, want ErrReadOnlyViolation", err)
	}
}

package orm_test

import (
	"reflect"
	"testing"

	mossdb "github.com/serpent-os/moss-db"
	_ "github.com/serpent-os/moss-db/driver/mem"
	"github.com/serpent-os/moss-db/orm"
)

type User struct {
	ID   uint64 `mossdb:"pkey"`
	Name string
	Tags []string
}

type Item struct {
	ID  uint64 `mossdb:"pkey"`
	SKU string `mossdb:"index"`
}

func openTestDB(t testing.TB) *mossdb.Database {
	t.Helper()
	db, err := mossdb.Open("memory://", mossdb.FlagCreateIfNotExists, mossdb.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRoundTrip(t *testing.T) {
	db := openTestDB(t)
	users := orm.DefineModel[User]("User")

	err := db.Update(func(tx *mossdb.Tx) error {
		return orm.CreateModel(tx, users)
	})
	if err != nil {
		t.Fatalf("CreateModel: %v", err)
	}

	err = db.Update(func(tx *mossdb.Tx) error {
		return orm.Save(tx, users, &User{ID: 42, Name: "ada", Tags: []string{"x", "y", "x"}})
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		got, err := orm.Load(tx, users, uint64(42))
		if err != nil {
			return err
		}
		want := []string{"x", "y"}
		if !reflect.DeepEqual(got.Tags, want) {
			t.Errorf("Tags = %v, want %v", got.Tags, want)
		}
		if got.Name != "ada" {
			t.Errorf("Name = %q, want %q", got.Name, "ada")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestIndexedUpdate(t *testing.T) {
	db := openTestDB(t)
	items := orm.DefineModel[Item]("Item")

	err := db.Update(func(tx *mossdb.Tx) error {
		return orm.CreateModel(tx, items)
	})
	if err != nil {
		t.Fatalf("CreateModel: %v", err)
	}

	err = db.Update(func(tx *mossdb.Tx) error {
		return orm.Save(tx, items, &Item{ID: 1, SKU: "A"})
	})
	if err != nil {
		t.Fatalf("Save A: %v", err)
	}
	err = db.Update(func(tx *mossdb.Tx) error {
		return orm.Save(tx, items, &Item{ID: 1, SKU: "B"})
	})
	if err != nil {
		t.Fatalf("Save B: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		_, err := orm.LoadByIndex(tx, items, "SKU", "A")
		if !mossdb.Is(err, mossdb.ErrNoMatchingRecord) {
			t.Errorf("LoadByIndex(A): got err %v, want ErrNoMatchingRecord", err)
		}

		got, err := orm.LoadByIndex(tx, items, "SKU", "B")
		if err != nil {
			return err
		}
		if got.ID != 1 || got.SKU != "B" {
			t.Errorf("LoadByIndex(B) = %+v, want {1 B}", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestRemove(t *testing.T) {
	db := openTestDB(t)
	users := orm.DefineModel[User]("User")

	err := db.Update(func(tx *mossdb.Tx) error {
		if err := orm.CreateModel(tx, users); err != nil {
			return err
		}
		return orm.Save(tx, users, &User{ID: 7, Name: "bob"})
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = db.Update(func(tx *mossdb.Tx) error {
		u, err := orm.Load(tx, users, uint64(7))
		if err != nil {
			return err
		}
		return orm.Remove(tx, users, u)
	})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		_, err := orm.Load(tx, users, uint64(7))
		if !mossdb.Is(err, mossdb.ErrNoMatchingRecord) {
			t.Errorf("got err %v, want ErrNoMatchingRecord", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestList(t *testing.T) {
	db := openTestDB(t)
	users := orm.DefineModel[User]("User")

	err := db.Update(func(tx *mossdb.Tx) error {
		if err := orm.CreateModel(tx, users); err != nil {
			return err
		}
		for _, u := range []*User{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}, {ID: 2, Name: "b"}} {
			if err := orm.Save(tx, users, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		got, err := orm.List(tx, users)
		if err != nil {
			return err
		}
		if len(got) != 3 {
			t.Fatalf("got %d rows, want 3", len(got))
		}
		for i, id := range []uint64{1, 2, 3} {
			if got[i].ID != id {
				t.Errorf("row %d: ID = %d, want %d", i, got[i].ID, id)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestSaveSliceIdempotent(t *testing.T) {
	db := openTestDB(t)
	users := orm.DefineModel[User]("User")

	err := db.Update(func(tx *mossdb.Tx) error {
		if err := orm.CreateModel(tx, users); err != nil {
			return err
		}
		u := &User{ID: 9, Name: "rep", Tags: []string{"a", "b"}}
		if err := orm.Save(tx, users, u); err != nil {
			return err
		}
		return orm.Save(tx, users, u)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = db.View(func(tx *mossdb.Tx) error {
		got, err := orm.Load(tx, users, uint64(9))
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(got.Tags, []string{"a", "b"}) {
			t.Errorf("Tags = %v, want [a b]", got.Tags)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

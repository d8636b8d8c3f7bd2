package orm

import (
	"reflect"

	mossdb "github.com/serpent-os/moss-db"
)

// CreateModel ensures the model bucket and every index bucket for m exist.
// save requires these to already be present.
func CreateModel[Row any](tx *mossdb.Tx, m *Model[Row]) error {
	if _, err := tx.CreateBucketIfNotExists(modelBucketName(m.name)); err != nil {
		return err
	}
	for _, fi := range m.info.indexed {
		if _, err := tx.CreateBucketIfNotExists(indexBucketName(m.name, fi.name)); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts row across the model bucket, its row bucket, its index
// entries, and its slice buckets, in the order mossdb.ErrBucketNotFound
// (model bucket missing) can still be detected before anything is written.
func Save[Row any](tx *mossdb.Tx, m *Model[Row], row *Row) error {
	rowVal := reflect.ValueOf(row).Elem()
	pkeyVal := fieldValue(rowVal, m.info.pkey)
	pkeyEnc := encodeScalar(nil, pkeyVal)
	rowName := rowBucketName(m.name, pkeyEnc)

	old, oldErr := Load(tx, m, pkeyVal.Interface())
	hadOld := oldErr == nil

	modelBucket, err := tx.Bucket(modelBucketName(m.name))
	if err != nil {
		return err
	}
	if modelBucket == nil {
		return mossdbNotFound(m.name)
	}

	if err := tx.Set(modelBucket, pkeyEnc, rowName); err != nil {
		return err
	}

	rowBucket, err := tx.CreateBucketIfNotExists(rowName)
	if err != nil {
		return err
	}

	for _, fi := range m.info.fields {
		fv := fieldValue(rowVal, fi)

		switch fi.kind {
		case fieldSlice:
			sliceName := sliceBucketName(m.name, pkeyEnc, fi.name)
			if existing, _ := tx.Bucket(sliceName); existing != nil {
				if err := tx.RemoveBucket(existing); err != nil {
					return err
				}
			}
			sliceBucket, err := tx.CreateBucket(sliceName)
			if err != nil {
				return err
			}
			for i := 0; i < fv.Len(); i++ {
				elemEnc := encodeScalar(nil, fv.Index(i))
				if err := tx.Set(sliceBucket, elemEnc, sliceMarker); err != nil {
					return err
				}
			}

		case fieldIndexed:
			newBuf := getValueBytes()
			newEnc := encodeScalar(newBuf, fv)
			if err := tx.Set(rowBucket, []byte(fi.name), newEnc); err != nil {
				releaseValueBytes(newEnc)
				return err
			}
			indexBucket, err := tx.Bucket(indexBucketName(m.name, fi.name))
			if err != nil {
				releaseValueBytes(newEnc)
				return err
			}
			if indexBucket == nil {
				releaseValueBytes(newEnc)
				return mossdbNotFound(m.name)
			}
			if hadOld {
				oldFv := fieldValue(reflect.ValueOf(old).Elem(), fi)
				oldEnc := encodeScalar(nil, oldFv)
				if string(oldEnc) != string(newEnc) {
					if err := tx.Remove(indexBucket, oldEnc); err != nil {
						releaseValueBytes(newEnc)
						return err
					}
				}
			}
			err = tx.Set(indexBucket, newEnc, pkeyEnc)
			releaseValueBytes(newEnc)
			if err != nil {
				return err
			}

		default:
			valBuf := getValueBytes()
			valEnc := encodeScalar(valBuf, fv)
			err := tx.Set(rowBucket, []byte(fi.name), valEnc)
			releaseValueBytes(valEnc)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Load fetches the record with the given primary key value.
func Load[Row any](tx *mossdb.Tx, m *Model[Row], pkey any) (*Row, error) {
	pkeyVal := reflect.ValueOf(pkey)
	pkeyEnc := encodeScalar(nil, pkeyVal)

	modelBucket, err := tx.Bucket(modelBucketName(m.name))
	if err != nil {
		return nil, err
	}
	if modelBucket == nil {
		return nil, mossdbNotFound(m.name)
	}
	rowName, err := tx.Get(modelBucket, pkeyEnc)
	if err != nil {
		return nil, err
	}
	if rowName == nil {
		return nil, mossdb.NewNoMatchingRecordError(m.name)
	}

	rowBucket, err := tx.Bucket(rowName)
	if err != nil {
		return nil, err
	}
	if rowBucket == nil {
		return nil, mossdb.NewIntegrityError(m.name, string(rowName))
	}

	row := new(Row)
	rowVal := reflect.ValueOf(row).Elem()
	fieldValue(rowVal, m.info.pkey).Set(pkeyVal.Convert(m.info.pkey.typ))

	for _, fi := range m.info.fields {
		dst := fieldValue(rowVal, fi)
		if fi.kind == fieldSlice {
			sliceBucket, err := tx.Bucket(sliceBucketName(m.name, pkeyEnc, fi.name))
			if err != nil {
				return nil, err
			}
			if sliceBucket == nil {
				continue
			}
			elems := reflect.MakeSlice(dst.Type(), 0, 8)
			it := tx.Iterator(sliceBucket)
			for it.Valid() {
				elem := reflect.New(fi.typ).Elem()
				if err := decodeScalar(elem, it.Key()); err != nil {
					return nil, err
				}
				elems = reflect.Append(elems, elem)
				it.Next()
			}
			dst.Set(elems)
			continue
		}

		raw, err := tx.Get(rowBucket, []byte(fi.name))
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		if err := decodeScalar(dst, raw); err != nil {
			return nil, err
		}
	}

	return row, nil
}

// LoadByIndex looks up the record whose indexed field fieldName equals
// value, via that field's index bucket.
func LoadByIndex[Row any](tx *mossdb.Tx, m *Model[Row], fieldName string, value any) (*Row, error) {
	var fi *fieldInfo
	for i := range m.info.indexed {
		if m.info.indexed[i].name == fieldName {
			fi = &m.info.indexed[i]
			break
		}
	}
	if fi == nil {
		return nil, mossdb.NewIntegrityError(m.name, "no indexed field named "+fieldName)
	}

	indexBucket, err := tx.Bucket(indexBucketName(m.name, fieldName))
	if err != nil {
		return nil, err
	}
	if indexBucket == nil {
		return nil, mossdbNotFound(m.name)
	}

	valEnc := encodeScalar(nil, reflect.ValueOf(value).Convert(fi.typ))
	pkeyEnc, err := tx.Get(indexBucket, valEnc)
	if err != nil {
		return nil, err
	}
	if pkeyEnc == nil {
		return nil, mossdb.NewNoMatchingRecordError(m.name)
	}

	pkeyVal := reflect.New(m.info.pkey.typ).Elem()
	if err := decodeScalar(pkeyVal, pkeyEnc); err != nil {
		return nil, err
	}
	return Load(tx, m, pkeyVal.Interface())
}

// List iterates the model bucket in primary-key order, loading each row.
// It stops and returns the first error encountered.
func List[Row any](tx *mossdb.Tx, m *Model[Row]) ([]*Row, error) {
	modelBucket, err := tx.Bucket(modelBucketName(m.name))
	if err != nil {
		return nil, err
	}
	if modelBucket == nil {
		return nil, mossdbNotFound(m.name)
	}

	var out []*Row
	it := tx.Iterator(modelBucket)
	for it.Valid() {
		pkeyVal := reflect.New(m.info.pkey.typ).Elem()
		if err := decodeScalar(pkeyVal, it.Key()); err != nil {
			return nil, err
		}
		row, err := Load(tx, m, pkeyVal.Interface())
		if err != nil {
			return nil, err
		}
		out = append(out, row)
		it.Next()
	}
	return out, nil
}

// Remove deletes row's row bucket and slice buckets, its model bucket
// entry, and every index entry matching row's current indexed field values.
func Remove[Row any](tx *mossdb.Tx, m *Model[Row], row *Row) error {
	rowVal := reflect.ValueOf(row).Elem()
	pkeyVal := fieldValue(rowVal, m.info.pkey)
	pkeyEnc := encodeScalar(nil, pkeyVal)

	for _, fi := range m.info.slices {
		sliceBucket, err := tx.Bucket(sliceBucketName(m.name, pkeyEnc, fi.name))
		if err != nil {
			return err
		}
		if sliceBucket != nil {
			if err := tx.RemoveBucket(sliceBucket); err != nil {
				return err
			}
		}
	}

	rowName := rowBucketName(m.name, pkeyEnc)
	rowBucket, err := tx.Bucket(rowName)
	if err != nil {
		return err
	}
	if rowBucket != nil {
		if err := tx.RemoveBucket(rowBucket); err != nil {
			return err
		}
	}

	modelBucket, err := tx.Bucket(modelBucketName(m.name))
	if err != nil {
		return err
	}
	if modelBucket != nil {
		if err := tx.Remove(modelBucket, pkeyEnc); err != nil {
			return err
		}
	}

	for _, fi := range m.info.indexed {
		indexBucket, err := tx.Bucket(indexBucketName(m.name, fi.name))
		if err != nil {
			return err
		}
		if indexBucket == nil {
			continue
		}
		valEnc := encodeScalar(nil, fieldValue(rowVal, fi))
		if err := tx.Remove(indexBucket, valEnc); err != nil {
			return err
		}
	}

	return nil
}

func mossdbNotFound(modelName string) error {
	return mossdb.NewBucketNotFoundError(modelName)
}

package orm

import (
	"fmt"
	"reflect"
	"sync"
)

// fieldKind classifies a model's struct fields as discovered by reflection.
type fieldKind int

const (
	fieldScalar fieldKind = iota
	fieldIndexed
	fieldSlice
)

type fieldInfo struct {
	name  string // Go struct field name; also the on-disk field name
	index int    // field index within the struct
	kind  fieldKind
	typ   reflect.Type // field type (or element type, for fieldSlice)
}

type modelInfo struct {
	rowType  reflect.Type // the dereferenced struct type
	pkey     fieldInfo
	fields   []fieldInfo // all non-pkey fields, in struct declaration order
	indexed  []fieldInfo
	slices   []fieldInfo
}

var modelInfoCache sync.Map // reflect.Type -> *modelInfo

func reflectModel(rowType reflect.Type) *modelInfo {
	if v, ok := modelInfoCache.Load(rowType); ok {
		return v.(*modelInfo)
	}
	info := reflectModelWithoutCache(rowType)
	actual, _ := modelInfoCache.LoadOrStore(rowType, info)
	return actual.(*modelInfo)
}

func reflectModelWithoutCache(rowType reflect.Type) *modelInfo {
	if rowType.Kind() != reflect.Struct {
		panic(fmt.Errorf("orm: %v is not a struct", rowType))
	}
	info := &modelInfo{rowType: rowType}
	havePkey := false

	for i := 0; i < rowType.NumField(); i++ {
		sf := rowType.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("mossdb")

		if tag == "pkey" {
			if havePkey {
				panic(fmt.Errorf("orm: %v has more than one pkey field", rowType))
			}
			havePkey = true
			info.pkey = fieldInfo{name: sf.Name, index: i, kind: fieldScalar, typ: sf.Type}
			continue
		}

		if sf.Type.Kind() == reflect.Slice && sf.Type.Elem().Kind() != reflect.Uint8 {
			fi := fieldInfo{name: sf.Name, index: i, kind: fieldSlice, typ: sf.Type.Elem()}
			info.fields = append(info.fields, fi)
			info.slices = append(info.slices, fi)
			continue
		}

		kind := fieldScalar
		if tag == "index" {
			kind = fieldIndexed
		}
		fi := fieldInfo{name: sf.Name, index: i, kind: kind, typ: sf.Type}
		info.fields = append(info.fields, fi)
		if kind == fieldIndexed {
			info.indexed = append(info.indexed, fi)
		}
	}

	if !havePkey {
		panic(fmt.Errorf("orm: %v has no field tagged `mossdb:\"pkey\"`", rowType))
	}
	return info
}

// Model is a handle to a record type mapped onto mossdb's bucket layout.
// Construct one with DefineModel and keep it around; all Model[Row]
// instances for the same Row and name are interchangeable.
type Model[Row any] struct {
	name string
	info *modelInfo
}

// DefineModel describes how Row maps onto buckets named after name. Row must
// be a struct with exactly one field tagged `mossdb:"pkey"`.
func DefineModel[Row any](name string) *Model[Row] {
	var zero Row
	rowType := reflect.TypeOf(zero)
	if rowType.Kind() == reflect.Ptr {
		panic(fmt.Errorf("orm: DefineModel type parameter must be a struct, not %v", rowType))
	}
	return &Model[Row]{name: name, info: reflectModel(rowType)}
}

// Name returns the model bucket's name.
func (m *Model[Row]) Name() string { return m.name }

func fieldValue(rowVal reflect.Value, fi fieldInfo) reflect.Value {
	return rowVal.Field(fi.index)
}

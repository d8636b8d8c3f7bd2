package orm

import (
	"fmt"
	"reflect"

	mossdb "github.com/serpent-os/moss-db"
)

// encodeScalar appends the encoding of v (a scalar-kinded reflect.Value) to
// buf, dispatching on v.Kind() the way mossdb's fixed-width Encode*
// functions are typed per Go integer width.
func encodeScalar(buf []byte, v reflect.Value) []byte {
	switch v.Kind() {
	case reflect.Uint8:
		return mossdb.EncodeUint8(buf, uint8(v.Uint()))
	case reflect.Uint16:
		return mossdb.EncodeUint16(buf, uint16(v.Uint()))
	case reflect.Uint32:
		return mossdb.EncodeUint32(buf, uint32(v.Uint()))
	case reflect.Uint, reflect.Uint64:
		return mossdb.EncodeUint64(buf, v.Uint())
	case reflect.Int8:
		return mossdb.EncodeInt8(buf, int8(v.Int()))
	case reflect.Int16:
		return mossdb.EncodeInt16(buf, int16(v.Int()))
	case reflect.Int32:
		return mossdb.EncodeInt32(buf, int32(v.Int()))
	case reflect.Int, reflect.Int64:
		return mossdb.EncodeInt64(buf, v.Int())
	case reflect.Bool:
		return mossdb.EncodeBool(buf, v.Bool())
	case reflect.String:
		return mossdb.EncodeString(buf, v.String())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return mossdb.EncodeBytes(buf, v.Bytes())
		}
	}
	panic(fmt.Errorf("orm: unsupported scalar field kind %v", v.Kind()))
}

// decodeScalar decodes raw into dst (addressable, same kind family as
// encodeScalar handles) and sets dst to the result.
func decodeScalar(dst reflect.Value, raw []byte) error {
	switch dst.Kind() {
	case reflect.Uint8:
		v, err := mossdb.DecodeUint8(raw)
		if err != nil {
			return err
		}
		dst.SetUint(uint64(v))
	case reflect.Uint16:
		v, err := mossdb.DecodeUint16(raw)
		if err != nil {
			return err
		}
		dst.SetUint(uint64(v))
	case reflect.Uint32:
		v, err := mossdb.DecodeUint32(raw)
		if err != nil {
			return err
		}
		dst.SetUint(uint64(v))
	case reflect.Uint, reflect.Uint64:
		v, err := mossdb.DecodeUint64(raw)
		if err != nil {
			return err
		}
		dst.SetUint(v)
	case reflect.Int8:
		v, err := mossdb.DecodeInt8(raw)
		if err != nil {
			return err
		}
		dst.SetInt(int64(v))
	case reflect.Int16:
		v, err := mossdb.DecodeInt16(raw)
		if err != nil {
			return err
		}
		dst.SetInt(int64(v))
	case reflect.Int32:
		v, err := mossdb.DecodeInt32(raw)
		if err != nil {
			return err
		}
		dst.SetInt(int64(v))
	case reflect.Int, reflect.Int64:
		v, err := mossdb.DecodeInt64(raw)
		if err != nil {
			return err
		}
		dst.SetInt(v)
	case reflect.Bool:
		v, err := mossdb.DecodeBool(raw)
		if err != nil {
			return err
		}
		dst.SetBool(v)
	case reflect.String:
		v, err := mossdb.DecodeString(raw)
		if err != nil {
			return err
		}
		dst.SetString(v)
	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			v, err := mossdb.DecodeBytes(raw)
			if err != nil {
				return err
			}
			dst.SetBytes(v)
			return nil
		}
		return fmt.Errorf("orm: unsupported scalar field kind %v", dst.Kind())
	default:
		return fmt.Errorf("orm: unsupported scalar field kind %v", dst.Kind())
	}
	return nil
}

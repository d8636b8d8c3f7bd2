package mossdb

import "encoding/binary"

// Encode* functions append a deterministic, byte-exact encoding of the given
// value to buf and return the extended slice. Unsigned integers are encoded
// big-endian so that numeric order equals lexicographic byte order; this is
// what makes ordered iteration over integer keys come out numerically sorted.

func EncodeUint8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

func EncodeUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func EncodeUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func EncodeUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func EncodeInt8(buf []byte, v int8) []byte   { return EncodeUint8(buf, uint8(v)) }
func EncodeInt16(buf []byte, v int16) []byte { return EncodeUint16(buf, uint16(v)) }
func EncodeInt32(buf []byte, v int32) []byte { return EncodeUint32(buf, uint32(v)) }
func EncodeInt64(buf []byte, v int64) []byte { return EncodeUint64(buf, uint64(v)) }

func EncodeBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// EncodeString appends the raw UTF-8 bytes of v, with no length prefix and
// no terminator: the enclosing bucket layout supplies the boundary.
func EncodeString(buf []byte, v string) []byte {
	return append(buf, v...)
}

// EncodeBytes appends v as-is.
func EncodeBytes(buf []byte, v []byte) []byte {
	return append(buf, v...)
}

// Decode* functions are the exact inverse of the Encode* functions above.
// Decoding a slice of the wrong length is a DecodeError.

func decodeErrf(format string, args ...any) error {
	return newErr(ErrDecodeError, nil, format, args...)
}

func DecodeUint8(raw []byte) (uint8, error) {
	if len(raw) != 1 {
		return 0, decodeErrf("uint8: expected 1 byte, got %d", len(raw))
	}
	return raw[0], nil
}

func DecodeUint16(raw []byte) (uint16, error) {
	if len(raw) != 2 {
		return 0, decodeErrf("uint16: expected 2 bytes, got %d", len(raw))
	}
	return binary.BigEndian.Uint16(raw), nil
}

func DecodeUint32(raw []byte) (uint32, error) {
	if len(raw) != 4 {
		return 0, decodeErrf("uint32: expected 4 bytes, got %d", len(raw))
	}
	return binary.BigEndian.Uint32(raw), nil
}

func DecodeUint64(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, decodeErrf("uint64: expected 8 bytes, got %d", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func DecodeInt8(raw []byte) (int8, error) {
	v, err := DecodeUint8(raw)
	return int8(v), err
}
func DecodeInt16(raw []byte) (int16, error) {
	v, err := DecodeUint16(raw)
	return int16(v), err
}
func DecodeInt32(raw []byte) (int32, error) {
	v, err := DecodeUint32(raw)
	return int32(v), err
}
func DecodeInt64(raw []byte) (int64, error) {
	v, err := DecodeUint64(raw)
	return int64(v), err
}

func DecodeBool(raw []byte) (bool, error) {
	if len(raw) != 1 {
		return false, decodeErrf("bool: expected 1 byte, got %d", len(raw))
	}
	return raw[0] != 0, nil
}

func DecodeString(raw []byte) (string, error) {
	return string(raw), nil
}

func DecodeBytes(raw []byte) ([]byte, error) {
	return append([]byte(nil), raw...), nil
}

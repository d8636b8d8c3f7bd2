package mossdb

import "sync"

// keyBytesPool recycles the scratch buffers used to build identity-prefixed
// keys, avoiding an allocation on every Set/Get/Remove in the hot path.
var keyBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 256)
	},
}

func getKeyBytes() []byte {
	return keyBytesPool.Get().([]byte)[:0]
}

func releaseKeyBytes(b []byte) {
	keyBytesPool.Put(b[:0]) //nolint:staticcheck
}

package orm

import "sync"

// valueBytesPool recycles the scratch buffers Save encodes field values
// into, mirroring the core package's own key-buffer pool (mossdb's
// keyBytesPool) one layer up, where the hot path is per-field encoding
// rather than per-key.
var valueBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 64)
	},
}

func getValueBytes() []byte {
	return valueBytesPool.Get().([]byte)[:0]
}

func releaseValueBytes(b []byte) {
	valueBytesPool.Put(b[:0]) //nolint:staticcheck
}

package orm

import "encoding/hex"

// sliceMarker is the value stored for each element key in a slice bucket.
// Its presence, not its content, carries meaning: the bucket is a set.
var sliceMarker = []byte{0x00, 0x01}

func rowBucketName(modelName string, pkeyEnc []byte) []byte {
	return []byte(modelName + "." + hex.EncodeToString(pkeyEnc))
}

func indexBucketName(modelName, fieldName string) []byte {
	return []byte(modelName + "." + fieldName + ".index")
}

func sliceBucketName(modelName string, pkeyEnc []byte, fieldName string) []byte {
	return []byte(modelName + "." + hex.EncodeToString(pkeyEnc) + "." + fieldName)
}

func modelBucketName(modelName string) []byte { return []byte(modelName) }

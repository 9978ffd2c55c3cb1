package store

// Hooks for store_test.

var (
	EncodeValueRecord = encodeValueRecord
	DecodeValueRecord = decodeValueRecord
)

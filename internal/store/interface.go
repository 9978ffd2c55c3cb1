package store

import "errors"

var (
	// ErrNotFound is returned when a state has no record in a value table.
	ErrNotFound = errors.New("not found")

	// ErrCorruptTable is returned when a value table is not a whole number of records.
	ErrCorruptTable = errors.New("corrupt value table")

	// ErrUnsorted is returned when keys are written or read out of order.
	ErrUnsorted = errors.New("keys not strictly increasing")

	// ErrZeroKey is returned when writing key 0, which is reserved as the end-of-stream marker.
	ErrZeroKey = errors.New("key 0 is reserved")
)

// KeyIterator yields strictly increasing state keys. Next returns io.EOF when exhausted.
type KeyIterator interface {
	Next() (uint64, error)
}

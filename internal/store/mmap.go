package store

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/sys/unix"
)

// ValueTable is a read-only, memory-mapped view of a value table.
// Lookups binary-search the mapping directly; nothing is copied into the heap.
type ValueTable struct {
	path string
	data []byte
	n    int
}

// OpenValueTable maps the value table at path.
func OpenValueTable(path string) (*ValueTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size%ValueRecordSize != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes, not a multiple of %d",
			ErrCorruptTable, path, size, ValueRecordSize)
	}
	t := &ValueTable{path: path, n: int(size / ValueRecordSize)}
	if size == 0 {
		return t, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	// Lookups jump around the file; readahead only wastes page cache.
	_ = unix.Madvise(data, unix.MADV_RANDOM)
	t.data = data
	return t, nil
}

// Path returns the file the table was opened from.
func (t *ValueTable) Path() string {
	return t.path
}

// Len returns the number of records.
func (t *ValueTable) Len() int {
	return t.n
}

func (t *ValueTable) key(i int) uint64 {
	off := i * ValueRecordSize
	return decodeValueRecord(t.data[off : off+ValueRecordSize]).State
}

// At returns the i-th record in key order.
func (t *ValueTable) At(i int) ValueRecord {
	off := i * ValueRecordSize
	return decodeValueRecord(t.data[off : off+ValueRecordSize])
}

func (t *ValueTable) search(state uint64) (int, bool) {
	i := sort.Search(t.n, func(i int) bool {
		return t.key(i) >= state
	})
	return i, i < t.n && t.key(i) == state
}

// MaybeFind looks up state and reports whether it is present.
func (t *ValueTable) MaybeFind(state uint64) (ValueRecord, bool) {
	i, ok := t.search(state)
	if !ok {
		return ValueRecord{}, false
	}
	return t.At(i), true
}

// GetValue returns the value for a state the table is expected to contain.
func (t *ValueTable) GetValue(state uint64) (float64, error) {
	value, _, err := t.GetValueAndOffset(state)
	return value, err
}

// GetValueAndOffset also returns the record's ordinal position in the table.
func (t *ValueTable) GetValueAndOffset(state uint64) (float64, int, error) {
	i, ok := t.search(state)
	if !ok {
		return 0, 0, fmt.Errorf("%s: state %#x: %w", t.path, state, ErrNotFound)
	}
	return t.At(i).Value, i, nil
}

// Close unmaps the table.
func (t *ValueTable) Close() error {
	if t.data == nil {
		return nil
	}
	err := unix.Munmap(t.data)
	t.data = nil
	t.n = 0
	return err
}

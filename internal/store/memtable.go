package store

import (
	"github.com/google/btree"
)

const stateSetDegree = 32

// StateSet is an ordered in-memory set of state keys accumulated by one
// builder pass before being flushed to a layer file.
type StateSet struct {
	tree *btree.BTreeG[uint64]
}

// NewStateSet creates an empty set.
func NewStateSet() *StateSet {
	return &StateSet{tree: btree.NewOrderedG[uint64](stateSetDegree)}
}

// Insert adds key and reports whether it was new.
func (s *StateSet) Insert(key uint64) bool {
	_, existed := s.tree.ReplaceOrInsert(key)
	return !existed
}

// Has reports whether key is in the set.
func (s *StateSet) Has(key uint64) bool {
	return s.tree.Has(key)
}

// Len returns the number of keys.
func (s *StateSet) Len() int {
	return s.tree.Len()
}

// Ascend calls fn for each key in increasing order until fn returns false.
func (s *StateSet) Ascend(fn func(key uint64) bool) {
	s.tree.Ascend(fn)
}

// Keys returns all keys in increasing order.
func (s *StateSet) Keys() []uint64 {
	keys := make([]uint64, 0, s.tree.Len())
	s.tree.Ascend(func(key uint64) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Flush writes the set to a layer file, clears it, and returns the number of keys written.
func (s *StateSet) Flush(path string) (int, error) {
	w, err := CreateLayer(path)
	if err != nil {
		return 0, err
	}
	var writeErr error
	s.tree.Ascend(func(key uint64) bool {
		writeErr = w.Write(key)
		return writeErr == nil
	})
	if writeErr != nil {
		w.Abort()
		return 0, writeErr
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	n := s.tree.Len()
	s.Clear()
	return n, nil
}

// Clear empties the set.
func (s *StateSet) Clear() {
	s.tree.Clear(false)
}

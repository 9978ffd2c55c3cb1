package store

import (
	"container/heap"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// heapItem is the current head of one input layer.
type heapItem struct {
	iter  KeyIterator
	key   uint64
	index int // source index for stable ordering
}

// mergeHeap implements heap.Interface for k-way merge
type mergeHeap []*heapItem

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	return h[i].index < h[j].index
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) {
	*h = append(*h, x.(*heapItem))
}

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// KWayMergeIterator merges several strictly increasing key streams into one
// sorted stream without duplicates. An exhausted input simply leaves the heap;
// a repeated or decreasing key within one input is ErrUnsorted.
type KWayMergeIterator struct {
	heap mergeHeap
	err  error
}

// NewKWayMergeIterator primes a head from every input.
func NewKWayMergeIterator(iters []KeyIterator) (*KWayMergeIterator, error) {
	h := make(mergeHeap, 0, len(iters))
	for i, iter := range iters {
		key, err := iter.Next()
		if err == io.EOF {
			continue
		}
		if err != nil {
			return nil, err
		}
		h = append(h, &heapItem{iter: iter, key: key, index: i})
	}
	heap.Init(&h)
	return &KWayMergeIterator{heap: h}, nil
}

// Next returns the smallest remaining key, advancing every input whose head
// equals it, or io.EOF when all inputs are exhausted.
func (m *KWayMergeIterator) Next() (uint64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.heap) == 0 {
		return 0, io.EOF
	}
	smallest := m.heap[0].key
	for len(m.heap) > 0 && m.heap[0].key == smallest {
		item := m.heap[0]
		key, err := item.iter.Next()
		switch {
		case err == io.EOF:
			heap.Pop(&m.heap)
		case err != nil:
			m.err = err
			return 0, err
		case key <= item.key:
			m.err = fmt.Errorf("%w: input %d key %#x after %#x", ErrUnsorted, item.index, key, item.key)
			return 0, m.err
		default:
			item.key = key
			heap.Fix(&m.heap, 0)
		}
	}
	return smallest, nil
}

// SliceIterator wraps a sorted slice of keys as a KeyIterator
type SliceIterator struct {
	keys []uint64
	pos  int
}

// NewSliceIterator creates an iterator from a slice of keys
func NewSliceIterator(keys []uint64) *SliceIterator {
	return &SliceIterator{keys: keys}
}

// Next returns the next key, or io.EOF if exhausted
func (s *SliceIterator) Next() (uint64, error) {
	if s.pos >= len(s.keys) {
		return 0, io.EOF
	}
	key := s.keys[s.pos]
	s.pos++
	return key, nil
}

// MergeFiles merges sorted layer files into one duplicate-free layer at
// outputPath and returns the number of distinct states written.
func MergeFiles(inputPaths []string, outputPath string) (int, error) {
	return mergeFilesDirectly(inputPaths, outputPath)
}

// MergeFilesWithLimit merges with at most maxOpen inputs open at a time.
// If there are more inputs, it performs a multi-pass merge through temporary files.
func MergeFilesWithLimit(inputPaths []string, outputPath string, maxOpen int, logFunc func(string, ...any)) (int, error) {
	log := func(format string, args ...any) {
		if logFunc != nil {
			logFunc(format, args...)
		}
	}
	if maxOpen < 2 {
		maxOpen = 2
	}
	if len(inputPaths) <= maxOpen {
		n, err := mergeFilesDirectly(inputPaths, outputPath)
		if err == nil {
			log("k-way merge complete: %d input files -> %s, %d states", len(inputPaths), outputPath, n)
		}
		return n, err
	}
	return multiPassMerge(inputPaths, outputPath, maxOpen, log)
}

// multiPassMerge merges maxOpen files at a time into intermediate layers
// until few enough remain for a final direct merge.
func multiPassMerge(inputPaths []string, outputPath string, maxOpen int, log func(string, ...any)) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return 0, err
	}
	tempDir, err := os.MkdirTemp(filepath.Dir(outputPath), "merge_temp_")
	if err != nil {
		return 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	currentFiles := inputPaths
	pass := 0
	for len(currentFiles) > maxOpen {
		pass++
		log("multi-pass merge: pass %d with %d files (batches of %d)", pass, len(currentFiles), maxOpen)

		var nextFiles []string
		for i := 0; i < len(currentFiles); i += maxOpen {
			end := i + maxOpen
			if end > len(currentFiles) {
				end = len(currentFiles)
			}
			batchPath := filepath.Join(tempDir, fmt.Sprintf("pass_%d_batch_%d.vbyte", pass, len(nextFiles)))
			n, err := mergeFilesDirectly(currentFiles[i:end], batchPath)
			if err != nil {
				return 0, fmt.Errorf("merge pass %d batch %d: %w", pass, len(nextFiles), err)
			}
			log("  pass %d batch %d: merged %d files, %d states", pass, len(nextFiles), end-i, n)
			nextFiles = append(nextFiles, batchPath)
		}
		currentFiles = nextFiles
	}

	log("multi-pass merge: final merge of %d files", len(currentFiles))
	n, err := mergeFilesDirectly(currentFiles, outputPath)
	if err != nil {
		return 0, err
	}
	log("k-way merge complete: %d input files -> %s in %d passes, %d states",
		len(inputPaths), outputPath, pass+1, n)
	return n, nil
}

// mergeFilesDirectly opens every input at once
func mergeFilesDirectly(inputPaths []string, outputPath string) (int, error) {
	readers := make([]*LayerReader, 0, len(inputPaths))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()
	iters := make([]KeyIterator, 0, len(inputPaths))
	for _, path := range inputPaths {
		r, err := OpenLayer(path)
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", path, err)
		}
		readers = append(readers, r)
		iters = append(iters, r)
	}

	merged, err := NewKWayMergeIterator(iters)
	if err != nil {
		return 0, err
	}

	w, err := CreateLayer(outputPath)
	if err != nil {
		return 0, err
	}
	for {
		key, err := merged.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			w.Abort()
			return 0, err
		}
		if err := w.Write(key); err != nil {
			w.Abort()
			return 0, err
		}
	}
	count := w.Count()
	if err := w.Close(); err != nil {
		return 0, err
	}
	return count, nil
}

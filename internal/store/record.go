package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Value table record encoding: 16 bytes, little-endian
// - State (uint64): packed canonical state key
// - Value (float64): IEEE 754 bits
const ValueRecordSize = 16

// ValueRecord pairs a state key with its computed value.
type ValueRecord struct {
	State uint64
	Value float64
}

func encodeValueRecord(buf []byte, rec ValueRecord) {
	binary.LittleEndian.PutUint64(buf[0:8], rec.State)
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(rec.Value))
}

func decodeValueRecord(buf []byte) ValueRecord {
	return ValueRecord{
		State: binary.LittleEndian.Uint64(buf[0:8]),
		Value: math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
	}
}

// ValueTableWriter streams records into a new value table.
// Records must arrive sorted by state with no duplicates.
type ValueTableWriter struct {
	path    string
	tmpPath string
	f       *os.File
	bw      *bufio.Writer
	prev    uint64
	count   int
	buf     [ValueRecordSize]byte
}

// CreateValueTable opens a new value table for writing.
func CreateValueTable(path string) (*ValueTableWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, err
	}
	return &ValueTableWriter{
		path:    path,
		tmpPath: tmpPath,
		f:       f,
		bw:      bufio.NewWriterSize(f, layerBufferSize),
	}, nil
}

// Write appends one record.
func (w *ValueTableWriter) Write(state uint64, value float64) error {
	if w.count > 0 && state <= w.prev {
		return fmt.Errorf("%w: %#x after %#x", ErrUnsorted, state, w.prev)
	}
	encodeValueRecord(w.buf[:], ValueRecord{State: state, Value: value})
	if _, err := w.bw.Write(w.buf[:]); err != nil {
		return err
	}
	w.prev = state
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *ValueTableWriter) Count() int {
	return w.count
}

// Close flushes and moves the table into place.
func (w *ValueTableWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.Abort()
		return fmt.Errorf("write value table %s: %w", w.path, err)
	}
	if err := w.f.Sync(); err != nil {
		w.Abort()
		return fmt.Errorf("sync value table %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("close value table %s: %w", w.path, err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("rename value table %s: %w", w.path, err)
	}
	return nil
}

// Abort discards a partially written table.
func (w *ValueTableWriter) Abort() {
	w.f.Close()
	os.Remove(w.tmpPath)
}

// WriteValueTable writes sorted records to a new value table.
func WriteValueTable(path string, records []ValueRecord) error {
	w, err := CreateValueTable(path)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec.State, rec.Value); err != nil {
			w.Abort()
			return fmt.Errorf("write value table %s: %w", path, err)
		}
	}
	return w.Close()
}

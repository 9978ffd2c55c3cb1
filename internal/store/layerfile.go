package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const layerBufferSize = 1 << 20

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// LayerWriter writes a layer file. Keys must be strictly increasing and non-zero.
// Nothing appears at the destination path until Close succeeds.
type LayerWriter struct {
	path    string
	tmpPath string
	f       *os.File
	zw      *zstd.Encoder
	bw      *bufio.Writer
	prev    uint64
	count   int
	buf     [binary.MaxVarintLen64]byte
}

// CreateLayer opens a new layer file for writing.
func CreateLayer(path string) (*LayerWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, err
	}
	w := &LayerWriter{path: path, tmpPath: tmpPath, f: f}
	if isCompressed(path) {
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		w.zw = zw
		w.bw = bufio.NewWriterSize(zw, layerBufferSize)
	} else {
		w.bw = bufio.NewWriterSize(f, layerBufferSize)
	}
	return w, nil
}

// Write appends a key.
func (w *LayerWriter) Write(key uint64) error {
	if key == 0 {
		return ErrZeroKey
	}
	if key <= w.prev {
		return fmt.Errorf("%w: %#x after %#x", ErrUnsorted, key, w.prev)
	}
	n := binary.PutUvarint(w.buf[:], key-w.prev)
	if _, err := w.bw.Write(w.buf[:n]); err != nil {
		return err
	}
	w.prev = key
	w.count++
	return nil
}

// Count returns the number of keys written so far.
func (w *LayerWriter) Count() int {
	return w.count
}

// Close writes the end-of-stream marker, flushes, and moves the file into place.
func (w *LayerWriter) Close() error {
	if err := w.finish(); err != nil {
		w.f.Close()
		os.Remove(w.tmpPath)
		return fmt.Errorf("write layer %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("close layer %s: %w", w.path, err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("rename layer %s: %w", w.path, err)
	}
	return nil
}

func (w *LayerWriter) finish() error {
	if err := w.bw.WriteByte(0); err != nil {
		return err
	}
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return err
		}
	}
	return w.f.Sync()
}

// Abort discards a partially written layer.
func (w *LayerWriter) Abort() {
	if w.zw != nil {
		w.zw.Close()
	}
	w.f.Close()
	os.Remove(w.tmpPath)
}

// LayerReader streams the keys of a layer file.
type LayerReader struct {
	path string
	f    *os.File
	zr   *zstd.Decoder
	br   *bufio.Reader
	prev uint64
	done bool
}

// OpenLayer opens a layer file for reading.
func OpenLayer(path string) (*LayerReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &LayerReader{path: path, f: f}
	if isCompressed(path) {
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		r.zr = zr
		r.br = bufio.NewReaderSize(zr, layerBufferSize)
	} else {
		r.br = bufio.NewReaderSize(f, layerBufferSize)
	}
	return r, nil
}

// Next returns the next key, or io.EOF once the end-of-stream marker is read.
// A file that ends before the marker is reported as io.ErrUnexpectedEOF.
func (r *LayerReader) Next() (uint64, error) {
	if r.done {
		return 0, io.EOF
	}
	delta, err := binary.ReadUvarint(r.br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("read layer %s: %w", r.path, err)
	}
	if delta == 0 {
		r.done = true
		return 0, io.EOF
	}
	key := r.prev + delta
	if key <= r.prev {
		return 0, fmt.Errorf("read layer %s: %w: delta overflow after %#x", r.path, ErrUnsorted, r.prev)
	}
	r.prev = key
	return key, nil
}

// Close releases the file.
func (r *LayerReader) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	return r.f.Close()
}

// WriteLayer writes keys, which must be strictly increasing, to a new layer file.
func WriteLayer(path string, keys []uint64) error {
	w, err := CreateLayer(path)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := w.Write(key); err != nil {
			w.Abort()
			return fmt.Errorf("write layer %s: %w", path, err)
		}
	}
	return w.Close()
}

// ReadLayer loads every key of a layer file into memory.
func ReadLayer(path string) ([]uint64, error) {
	var keys []uint64
	err := ScanLayer(path, func(key uint64) error {
		keys = append(keys, key)
		return nil
	})
	return keys, err
}

// ScanLayer calls fn for each key of a layer file, stopping at the first error.
func ScanLayer(path string, fn func(key uint64) error) error {
	r, err := OpenLayer(path)
	if err != nil {
		return err
	}
	defer r.Close()
	for {
		key, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(key); err != nil {
			return err
		}
	}
}

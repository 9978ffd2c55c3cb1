package store_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/freeeve/twenty48/internal/store"
)

func TestLayerRoundTrip(t *testing.T) {
	for _, name := range []string{"layer.vbyte", "layer.vbyte.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			keys := []uint64{1, 2, 3, 0x80, 0x1234, 0x4000, 0xffffffffffff, 0xfffffffffffffffe}
			if err := store.WriteLayer(path, keys); err != nil {
				t.Fatalf("WriteLayer: %v", err)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Errorf("temp file left behind: %v", err)
			}
			got, err := store.ReadLayer(path)
			if err != nil {
				t.Fatalf("ReadLayer: %v", err)
			}
			if len(got) != len(keys) {
				t.Fatalf("read %d keys, want %d", len(got), len(keys))
			}
			for i := range keys {
				if got[i] != keys[i] {
					t.Errorf("key[%d] = %#x, want %#x", i, got[i], keys[i])
				}
			}
		})
	}
}

func TestLayerEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.vbyte")
	if err := store.WriteLayer(path, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1 || data[0] != 0 {
		t.Errorf("empty layer bytes = %x, want 00", data)
	}
	keys, err := store.ReadLayer(path)
	if err != nil || len(keys) != 0 {
		t.Errorf("ReadLayer(empty) = %v, %v", keys, err)
	}
}

func TestLayerWriterRejects(t *testing.T) {
	dir := t.TempDir()
	w, err := store.CreateLayer(filepath.Join(dir, "bad.vbyte"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Abort()
	if err := w.Write(0); !errors.Is(err, store.ErrZeroKey) {
		t.Errorf("Write(0) = %v, want ErrZeroKey", err)
	}
	if err := w.Write(5); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(5); !errors.Is(err, store.ErrUnsorted) {
		t.Errorf("duplicate Write = %v, want ErrUnsorted", err)
	}
	if err := w.Write(4); !errors.Is(err, store.ErrUnsorted) {
		t.Errorf("decreasing Write = %v, want ErrUnsorted", err)
	}
}

func TestLayerAbortLeavesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aborted.vbyte")
	w, err := store.CreateLayer(path)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(1)
	w.Abort()
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 0 {
		t.Errorf("abort left %d files", len(entries))
	}
}

func TestLayerTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.vbyte")
	if err := store.WriteLayer(path, []uint64{10, 20, 30}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if err := os.WriteFile(path, data[:len(data)-1], 0644); err != nil {
		t.Fatal(err)
	}
	_, err := store.ReadLayer(path)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadLayer(truncated) = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestLayerReaderStopsAtMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.vbyte")
	if err := store.WriteLayer(path, []uint64{7}); err != nil {
		t.Fatal(err)
	}
	r, err := store.OpenLayer(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if key, err := r.Next(); err != nil || key != 7 {
		t.Fatalf("Next = %d, %v", key, err)
	}
	for i := 0; i < 2; i++ {
		if _, err := r.Next(); err != io.EOF {
			t.Errorf("Next after marker = %v, want io.EOF", err)
		}
	}
}

func TestStateSetFlush(t *testing.T) {
	set := store.NewStateSet()
	for _, k := range []uint64{9, 3, 7, 3, 1, 9} {
		set.Insert(k)
	}
	if set.Len() != 4 {
		t.Fatalf("Len = %d, want 4", set.Len())
	}
	if !set.Has(7) || set.Has(8) {
		t.Error("Has gave wrong answer")
	}
	if set.Insert(7) {
		t.Error("Insert of existing key reported new")
	}
	path := filepath.Join(t.TempDir(), "set.vbyte")
	n, err := set.Flush(path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || set.Len() != 0 {
		t.Errorf("Flush wrote %d, set has %d left", n, set.Len())
	}
	keys, err := store.ReadLayer(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{1, 3, 7, 9}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys = %v, want %v", keys, want)
			break
		}
	}
}

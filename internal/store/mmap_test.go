package store_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/freeeve/twenty48/internal/store"
)

func writeTestTable(t *testing.T, n int) (string, []store.ValueRecord) {
	t.Helper()
	records := make([]store.ValueRecord, n)
	for i := range records {
		records[i].State = uint64(i)*3 + 1
		records[i].Value = 1 / float64(i+1)
	}
	path := filepath.Join(t.TempDir(), "test.values")
	if err := store.WriteValueTable(path, records); err != nil {
		t.Fatalf("WriteValueTable: %v", err)
	}
	return path, records
}

func TestValueTableRoundTrip(t *testing.T) {
	path, records := writeTestTable(t, 1000)

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != int64(len(records)*store.ValueRecordSize) {
		t.Errorf("file size = %d, want %d", fi.Size(), len(records)*store.ValueRecordSize)
	}

	table, err := store.OpenValueTable(path)
	if err != nil {
		t.Fatalf("OpenValueTable: %v", err)
	}
	defer table.Close()

	if table.Len() != len(records) {
		t.Fatalf("Len = %d, want %d", table.Len(), len(records))
	}
	for i, rec := range records {
		value, err := table.GetValue(rec.State)
		if err != nil {
			t.Fatalf("GetValue(%d): %v", rec.State, err)
		}
		if value != rec.Value {
			t.Errorf("GetValue(%d) = %v, want %v", rec.State, value, rec.Value)
		}
		value, offset, err := table.GetValueAndOffset(rec.State)
		if err != nil || offset != i || value != rec.Value {
			t.Errorf("GetValueAndOffset(%d) = %v, %d, %v; want %v, %d", rec.State, value, offset, err, rec.Value, i)
		}
		if got, ok := table.MaybeFind(rec.State); !ok || got != rec {
			t.Errorf("MaybeFind(%d) = %v, %v", rec.State, got, ok)
		}
		if table.At(i) != rec {
			t.Errorf("At(%d) = %v, want %v", i, table.At(i), rec)
		}
	}
}

func TestValueTableMisses(t *testing.T) {
	path, _ := writeTestTable(t, 10)
	table, err := store.OpenValueTable(path)
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()

	for _, state := range []uint64{0, 3, 5, 29, 1000, math.MaxUint64} {
		if _, ok := table.MaybeFind(state); ok {
			t.Errorf("MaybeFind(%d) found a record", state)
		}
		if _, err := table.GetValue(state); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("GetValue(%d) error = %v, want ErrNotFound", state, err)
		}
	}
}

func TestValueTableEmptyAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.values")
	if err := store.WriteValueTable(empty, nil); err != nil {
		t.Fatal(err)
	}
	table, err := store.OpenValueTable(empty)
	if err != nil {
		t.Fatalf("OpenValueTable(empty): %v", err)
	}
	if _, ok := table.MaybeFind(1); ok {
		t.Error("empty table found a record")
	}
	if err := table.Close(); err != nil {
		t.Error(err)
	}

	corrupt := filepath.Join(dir, "corrupt.values")
	if err := os.WriteFile(corrupt, make([]byte, 17), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.OpenValueTable(corrupt); !errors.Is(err, store.ErrCorruptTable) {
		t.Errorf("OpenValueTable(corrupt) = %v, want ErrCorruptTable", err)
	}
}

func TestValueTableWriterRejectsUnsorted(t *testing.T) {
	err := store.WriteValueTable(filepath.Join(t.TempDir(), "bad.values"), []store.ValueRecord{
		{State: 5, Value: 0.5},
		{State: 5, Value: 0.25},
	})
	if !errors.Is(err, store.ErrUnsorted) {
		t.Errorf("WriteValueTable(duplicate) = %v, want ErrUnsorted", err)
	}
}

func TestValueTableKeepsNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.values")
	if err := store.WriteValueTable(path, []store.ValueRecord{{State: 2, Value: math.NaN()}}); err != nil {
		t.Fatal(err)
	}
	table, err := store.OpenValueTable(path)
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()
	value, err := table.GetValue(2)
	if err != nil || !math.IsNaN(value) {
		t.Errorf("GetValue = %v, %v; want NaN", value, err)
	}
}

package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freeeve/twenty48/internal/board"
	"github.com/freeeve/twenty48/internal/layer"
	"github.com/freeeve/twenty48/internal/store"
)

func TestBuildLayerWithValueTables(t *testing.T) {
	dir := t.TempDir()
	input := store.LayerPath(dir, 2)
	if err := store.WriteLayer(input, []uint64{board.MustNew(2, 0, 0, 0, 1).Nybbles()}); err != nil {
		t.Fatal(err)
	}
	table := filepath.Join(dir, "known.values")
	if err := store.WriteValueTable(table, []store.ValueRecord{
		{State: board.MustNew(2, 0, 1, 1, 0).Nybbles(), Value: 0.5},
	}); err != nil {
		t.Fatal(err)
	}

	opts := buildOptions{
		size:       2,
		inputPath:  input,
		outputPath: store.ShardPath(dir, 2, 1, 0),
		steps:      board.LightSteps,
		divisor:    1,
		valueFiles: table,
	}
	stats, err := buildLayer(opts, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Known != 2 || stats.Written[opts.outputPath] != 1 {
		t.Errorf("known %d written %d, want 2 and 1", stats.Known, stats.Written[opts.outputPath])
	}

	// A failing build reports the error after the tables are released.
	opts.divisor = 0
	if _, err := buildLayer(opts, zerolog.Nop()); !errors.Is(err, layer.ErrBadShard) {
		t.Errorf("divisor 0 error = %v, want ErrBadShard", err)
	}
	opts.valueFiles = filepath.Join(dir, "missing.values")
	if _, err := buildLayer(opts, zerolog.Nop()); err == nil {
		t.Error("missing value table did not fail")
	}
}

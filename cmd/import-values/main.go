package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/freeeve/twenty48/internal/board"
	"github.com/freeeve/twenty48/internal/logx"
	"github.com/freeeve/twenty48/internal/store"
)

// Reads a CSV of (state, value) rows, where state is the packed key in hex,
// and writes a sorted value table. Non-canonical states are canonicalized.
func main() {
	defaultSize := 4
	if env := os.Getenv("TWENTY48_BOARD_SIZE"); env != "" {
		if n, err := strconv.Atoi(env); err == nil {
			defaultSize = n
		}
	}

	var (
		inputPath  = flag.String("input", "", "Input CSV file (state,value)")
		outputPath = flag.String("output", "", "Output value table")
		size       = flag.Int("size", defaultSize, "Board size (2, 3 or 4)")
		header     = flag.Bool("header", true, "Input has a header row")
		logLevel   = flag.String("log-level", os.Getenv("TWENTY48_LOG_LEVEL"), "Log level")
	)
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: import-values -input <values.csv> -output <table.values>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !board.ValidSize(*size) {
		fmt.Fprintf(os.Stderr, "%v: %d\n", board.ErrBadSize, *size)
		os.Exit(1)
	}

	logger := logx.NewLoggerLevel(*logLevel)

	f, err := os.Open(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open input")
	}
	defer f.Close()

	records, err := readRecords(csv.NewReader(f), *size, *header)
	if err != nil {
		logger.Fatal().Err(err).Str("input", *inputPath).Msg("read values")
	}
	logger.Info().Int("rows", len(records)).Msg("read values")

	sort.Slice(records, func(i, j int) bool { return records[i].State < records[j].State })
	for i := 1; i < len(records); i++ {
		if records[i].State == records[i-1].State {
			logger.Fatal().
				Str("state", board.FromNybbles(*size, records[i].State).String()).
				Msg("state appears more than once")
		}
	}

	if err := store.WriteValueTable(*outputPath, records); err != nil {
		logger.Fatal().Err(err).Msg("write value table")
	}
	logger.Info().Str("output", *outputPath).Int("records", len(records)).Msg("done")
}

func readRecords(r *csv.Reader, size int, header bool) ([]store.ValueRecord, error) {
	r.FieldsPerRecord = -1
	var records []store.ValueRecord
	for line := 1; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && header {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("line %d: want state,value", line)
		}
		key, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(row[0]), "0x"), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: state: %w", line, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: value: %w", line, err)
		}
		state, err := board.ParseNybbles(size, key)
		if err != nil {
			return nil, fmt.Errorf("line %d: state: %w", line, err)
		}
		records = append(records, store.ValueRecord{State: state.Canonicalize().Nybbles(), Value: value})
	}
}

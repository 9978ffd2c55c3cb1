package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/freeeve/twenty48/internal/board"
	"github.com/freeeve/twenty48/internal/logx"
	"github.com/freeeve/twenty48/internal/store"
)

func main() {
	defaultSize := 4
	if env := os.Getenv("TWENTY48_BOARD_SIZE"); env != "" {
		if n, err := strconv.Atoi(env); err == nil {
			defaultSize = n
		}
	}

	var (
		tablePath  = flag.String("values", "", "Value table to export")
		outputPath = flag.String("output", "values.csv", "Output CSV file")
		size       = flag.Int("size", defaultSize, "Board size (2, 3 or 4)")
		skipNaN    = flag.Bool("skip-unknown", false, "Skip records whose value is NaN")
		logLevel   = flag.String("log-level", os.Getenv("TWENTY48_LOG_LEVEL"), "Log level")
	)
	flag.Parse()

	if *tablePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: export-values -values <table.values> [-output values.csv]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLoggerLevel(*logLevel)

	table, err := store.OpenValueTable(*tablePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open value table")
	}
	defer table.Close()
	logger.Info().Str("values", *tablePath).Int("records", table.Len()).Msg("opened value table")

	outFile, err := os.Create(*outputPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("create output file")
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	if err := writer.Write([]string{"state", "board", "value"}); err != nil {
		logger.Fatal().Err(err).Msg("write header")
	}

	var exported int
	for i := 0; i < table.Len(); i++ {
		rec := table.At(i)
		if *skipNaN && math.IsNaN(rec.Value) {
			continue
		}
		row := []string{
			fmt.Sprintf("%016x", rec.State),
			board.FromNybbles(*size, rec.State).String(),
			strconv.FormatFloat(rec.Value, 'g', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			logger.Fatal().Err(err).Msg("write row")
		}
		exported++
		if exported%1000000 == 0 {
			logger.Info().Int("exported", exported).Msg("progress")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		logger.Fatal().Err(err).Msg("csv writer error")
	}
	logger.Info().Int("exported", exported).Str("output", *outputPath).Msg("done")
}

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freeeve/twenty48/internal/board"
	"github.com/freeeve/twenty48/internal/layer"
	"github.com/freeeve/twenty48/internal/logx"
	"github.com/freeeve/twenty48/internal/store"
)

func main() {
	defaultDataDir := "./data/layers"
	if env := os.Getenv("TWENTY48_DATA_DIR"); env != "" {
		defaultDataDir = env
	}
	defaultSize := 4
	if env := os.Getenv("TWENTY48_BOARD_SIZE"); env != "" {
		if n, err := strconv.Atoi(env); err == nil {
			defaultSize = n
		}
	}

	var (
		dataDir     = flag.String("data-dir", defaultDataDir, "Layer directory")
		size        = flag.Int("size", defaultSize, "Board size (2, 3 or 4)")
		sum         = flag.Int("sum", 0, "Input layer sum; names input and output under -data-dir")
		inputPath   = flag.String("input", "", "Input layer file (overrides -sum)")
		outputPath  = flag.String("output", "", "Output layer file (overrides -sum)")
		stepsFlag   = flag.String("steps", "both", "Tile steps to place: both, 1 (light) or 2 (heavy)")
		remainder   = flag.Int("remainder", 0, "Shard remainder")
		divisor     = flag.Int("divisor", 1, "Shard divisor")
		maxExponent = flag.Int("max-exponent", 11, "Winning tile exponent; won and lost successors are dropped (0 = keep)")
		valueFiles  = flag.String("values", "", "Comma-separated value tables of already solved states")
		logLevel    = flag.String("log-level", os.Getenv("TWENTY48_LOG_LEVEL"), "Log level")
	)
	flag.Parse()

	logger := logx.NewLoggerLevel(*logLevel)

	steps, err := board.ParseSteps(*stepsFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse steps")
	}
	if *inputPath == "" {
		if *sum == 0 {
			fmt.Fprintln(os.Stderr, "Usage: build-layer (-sum N | -input <layer> -output <layer>) [options]")
			flag.PrintDefaults()
			os.Exit(1)
		}
		*inputPath = store.LayerPath(*dataDir, *sum)
	}
	if *outputPath == "" {
		if *sum == 0 {
			fmt.Fprintln(os.Stderr, "-output is required with -input")
			os.Exit(1)
		}
		step := 0
		if steps != board.BothSteps {
			step = int(steps.List()[0])
		}
		*outputPath = store.ShardPath(*dataDir, *sum, step, *remainder)
	}

	stats, err := buildLayer(buildOptions{
		size:        *size,
		inputPath:   *inputPath,
		outputPath:  *outputPath,
		steps:       steps,
		remainder:   *remainder,
		divisor:     *divisor,
		maxExponent: *maxExponent,
		valueFiles:  *valueFiles,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build layer")
	}
	logger.Info().
		Str("output", *outputPath).
		Int("states", stats.Written[*outputPath]).
		Dur("elapsed", stats.Elapsed).
		Msg("done")
}

type buildOptions struct {
	size                  int
	inputPath, outputPath string
	steps                 board.Steps
	remainder, divisor    int
	maxExponent           int
	valueFiles            string
}

// buildLayer returns instead of exiting so the value tables are always unmapped.
func buildLayer(opts buildOptions, logger zerolog.Logger) (*layer.BuildStats, error) {
	valuer, closeValuer, err := openValuer(opts.maxExponent, opts.valueFiles, logger)
	if err != nil {
		return nil, fmt.Errorf("open value tables: %w", err)
	}
	defer closeValuer()

	builder, err := layer.NewBuilder(layer.Config{
		Size:   opts.size,
		Valuer: valuer,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return builder.BuildLayer(opts.inputPath, opts.outputPath, opts.steps, opts.remainder, opts.divisor)
}

func openValuer(maxExponent int, valueFiles string, logger zerolog.Logger) (layer.Valuer, func(), error) {
	var chain layer.ChainValuer
	if maxExponent > 0 {
		chain = append(chain, layer.KnownValuer{MaxExponent: maxExponent})
	}
	tables := layer.NewTableValuer()
	for _, path := range strings.Split(valueFiles, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		t, err := store.OpenValueTable(path)
		if err != nil {
			tables.Close()
			return nil, nil, err
		}
		logger.Info().Str("path", path).Int("records", t.Len()).Msg("opened value table")
		tables.Tables = append(tables.Tables, t)
	}
	if len(tables.Tables) > 0 {
		chain = append(chain, tables)
	}
	closeFn := func() {
		if err := tables.Close(); err != nil {
			logger.Error().Err(err).Msg("close value tables")
		}
	}
	return chain, closeFn, nil
}

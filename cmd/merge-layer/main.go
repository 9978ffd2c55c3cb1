package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/freeeve/twenty48/internal/logx"
	"github.com/freeeve/twenty48/internal/store"
)

func main() {
	var (
		outputPath = flag.String("output", "", "Merged layer file")
		pattern    = flag.String("glob", "", "Glob of input layer files, in addition to positional arguments")
		maxOpen    = flag.Int("max-open", 256, "Maximum input files open at once")
		logLevel   = flag.String("log-level", os.Getenv("TWENTY48_LOG_LEVEL"), "Log level")
	)
	flag.Parse()

	inputs := flag.Args()
	if *pattern != "" {
		matches, err := filepath.Glob(*pattern)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad glob: %v\n", err)
			os.Exit(1)
		}
		sort.Strings(matches)
		inputs = append(inputs, matches...)
	}
	if *outputPath == "" || len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: merge-layer -output <layer> [-glob <pattern>] [input ...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLoggerLevel(*logLevel)
	logger.Info().Int("inputs", len(inputs)).Str("output", *outputPath).Msg("starting merge")

	start := time.Now()
	n, err := store.MergeFilesWithLimit(inputs, *outputPath, *maxOpen, logx.Printf(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("merge")
	}
	logger.Info().
		Str("output", *outputPath).
		Int("states", n).
		Dur("elapsed", time.Since(start)).
		Msg("done")
}

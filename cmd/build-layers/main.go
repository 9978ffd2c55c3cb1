package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/twenty48/internal/board"
	"github.com/freeeve/twenty48/internal/layer"
	"github.com/freeeve/twenty48/internal/logx"
	"github.com/freeeve/twenty48/internal/resolve"
	"github.com/freeeve/twenty48/internal/store"
)

type options struct {
	dataDir     string
	size        int
	maxExponent int
	maxSum      int
	shards      int
	workers     int
	maxOpen     int
	keepShards  bool
	valuer      layer.Valuer
}

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
		maxExponent = flag.Int("max-exponent", 11, "Winning tile exponent")
		maxSum      = flag.Int("max-sum", 0, "Stop after this layer sum (0 = until no states remain)")
		shards      = flag.Int("shards", runtime.NumCPU(), "Shards per layer and step")
		workers     = flag.Int("workers", runtime.NumCPU(), "Shards built concurrently")
		maxOpen     = flag.Int("max-open", 256, "Maximum files open per merge")
		winDepth    = flag.Int("win-depth", 0, "Resolver win search depth (-1 = no resolver)")
		loseDepth   = flag.Int("lose-depth", 0, "Resolver lose search depth")
		discount    = flag.Float64("discount", 1, "Discount applied per move by the resolver")
		keepShards  = flag.Bool("keep-shards", false, "Keep shard files after merging")
		logLevel    = flag.String("log-level", os.Getenv("TWENTY48_LOG_LEVEL"), "Log level")
	)
	flag.Parse()

	logger := logx.NewLoggerLevel(*logLevel)
	if *shards < 1 || *workers < 1 {
		logger.Fatal().Int("shards", *shards).Int("workers", *workers).Msg("shards and workers must be positive")
	}

	chain := layer.ChainValuer{layer.KnownValuer{MaxExponent: *maxExponent}}
	if *winDepth >= 0 {
		wins, err := resolve.WinTable(*size, *maxExponent, *winDepth)
		if err != nil {
			logger.Fatal().Err(err).Msg("win table")
		}
		r, err := resolve.New(*maxExponent, *loseDepth, wins)
		if err != nil {
			logger.Fatal().Err(err).Msg("create resolver")
		}
		chain = append(chain, layer.ResolverValuer{Resolver: r, Discount: *discount})
	}

	opts := options{
		dataDir:     *dataDir,
		size:        *size,
		maxExponent: *maxExponent,
		maxSum:      *maxSum,
		shards:      *shards,
		workers:     *workers,
		maxOpen:     *maxOpen,
		keepShards:  *keepShards,
		valuer:      chain,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info().
		Str("data_dir", opts.dataDir).
		Int("size", opts.size).
		Int("max_exponent", opts.maxExponent).
		Int("shards", opts.shards).
		Int("workers", opts.workers).
		Msg("starting layer build")

	if err := run(ctx, opts, logger); err != nil {
		logger.Fatal().Err(err).Msg("build layers")
	}
}

func run(ctx context.Context, opts options, logger zerolog.Logger) error {
	if err := os.MkdirAll(opts.dataDir, 0755); err != nil {
		return err
	}
	if err := writeStartLayers(opts, logger); err != nil {
		return err
	}

	start := time.Now()
	var total int64
	prevCount := -1
	for sum := 4; opts.maxSum == 0 || sum <= opts.maxSum; sum += 2 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := assembleLayer(opts, sum, logger)
		if err != nil {
			return err
		}
		total += int64(n)
		logger.Info().Int("sum", sum).Int("states", n).Int64("total", total).Msg("layer complete")

		// Heavy shards of the previous layer still feed the next one.
		if n == 0 && prevCount == 0 && sum > 8 {
			break
		}
		prevCount = n
		if err := buildShards(ctx, opts, sum, logger); err != nil {
			return err
		}
	}
	logger.Info().Int64("states", total).Dur("elapsed", time.Since(start)).Msg("all layers complete")
	return nil
}

func writeStartLayers(opts options, logger zerolog.Logger) error {
	starts, err := board.StartStates(opts.size)
	if err != nil {
		return err
	}
	bySum := make(map[int]*store.StateSet)
	for _, t := range starts {
		set, ok := bySum[t.State.Sum()]
		if !ok {
			set = store.NewStateSet()
			bySum[t.State.Sum()] = set
		}
		set.Insert(t.State.Nybbles())
	}
	for sum, set := range bySum {
		n, err := set.Flush(store.StartPath(opts.dataDir, sum))
		if err != nil {
			return fmt.Errorf("write start states: %w", err)
		}
		logger.Debug().Int("sum", sum).Int("states", n).Msg("wrote start states")
	}
	return nil
}

// assembleLayer merges everything that lands on layer sum: light shards from
// sum-2, heavy shards from sum-4 and start states.
func assembleLayer(opts options, sum int, logger zerolog.Logger) (int, error) {
	var candidates []string
	for r := 0; r < opts.shards; r++ {
		candidates = append(candidates,
			store.ShardPath(opts.dataDir, sum-2, int(board.StepLight), r),
			store.ShardPath(opts.dataDir, sum-4, int(board.StepHeavy), r))
	}
	candidates = append(candidates, store.StartPath(opts.dataDir, sum))

	var inputs []string
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			inputs = append(inputs, path)
		}
	}

	n, err := store.MergeFilesWithLimit(inputs, store.LayerPath(opts.dataDir, sum), opts.maxOpen, logx.Printf(logger))
	if err != nil {
		return 0, fmt.Errorf("merge layer %d: %w", sum, err)
	}
	if !opts.keepShards {
		for _, path := range inputs {
			if err := os.Remove(path); err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("remove merged input")
			}
		}
	}
	return n, nil
}

// buildShards expands layer sum into one light and one heavy shard file per
// remainder, with at most opts.workers builders running at once.
func buildShards(ctx context.Context, opts options, sum int, logger zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	input := store.LayerPath(opts.dataDir, sum)
	for _, step := range []board.Step{board.StepLight, board.StepHeavy} {
		step := step
		steps := board.LightSteps
		if step == board.StepHeavy {
			steps = board.HeavySteps
		}
		for r := 0; r < opts.shards; r++ {
			r := r
			output := store.ShardPath(opts.dataDir, sum, int(step), r)
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				builder, err := layer.NewBuilder(layer.Config{
					Size:   opts.size,
					Valuer: opts.valuer,
					Logger: logger.With().Int("sum", sum).Int("step", int(step)).Int("shard", r).Logger(),
				})
				if err != nil {
					return err
				}
				_, err = builder.BuildLayer(input, output, steps, r, opts.shards)
				return err
			})
		}
	}
	return g.Wait()
}

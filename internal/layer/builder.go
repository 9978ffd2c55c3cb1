// Package layer expands one layer of canonical states into the layers that
// follow it. The builder holds no visited set: whether a successor was already
// derived is the Valuer's business, and duplicates across shards are removed
// later by the external merge.
package layer

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/twenty48/internal/board"
	"github.com/freeeve/twenty48/internal/store"
)

var ErrBadShard = errors.New("invalid shard: need divisor >= 1 and remainder < divisor")

// Config configures a Builder.
type Config struct {
	Size          int            // Board size (2, 3 or 4)
	Valuer        Valuer         // Successors this knows are dropped; nil keeps all
	Logger        zerolog.Logger // Logger; the zero value discards
	ProgressEvery int            // Log progress every N input states (default 1000000)
}

// Partitions are the four successor buckets of a split build, keyed by the
// placed tile step and whether the successor's max tile differs from the input's.
type Partitions struct {
	Light         *store.StateSet
	LightPromoted *store.StateSet
	Heavy         *store.StateSet
	HeavyPromoted *store.StateSet
}

// NewPartitions allocates four empty buckets.
func NewPartitions() *Partitions {
	return &Partitions{
		Light:         store.NewStateSet(),
		LightPromoted: store.NewStateSet(),
		Heavy:         store.NewStateSet(),
		HeavyPromoted: store.NewStateSet(),
	}
}

// Bucket returns the set for one (step, promoted) pair.
func (p *Partitions) Bucket(step board.Step, promoted bool) *store.StateSet {
	switch {
	case step == board.StepLight && !promoted:
		return p.Light
	case step == board.StepLight:
		return p.LightPromoted
	case !promoted:
		return p.Heavy
	default:
		return p.HeavyPromoted
	}
}

// SplitPaths names the four outputs of BuildSplit.
type SplitPaths struct {
	Light         string
	LightPromoted string
	Heavy         string
	HeavyPromoted string
}

// PartPaths returns the conventional split outputs for layer sum under dir.
func PartPaths(dir string, sum int) SplitPaths {
	return SplitPaths{
		Light:         store.PartPath(dir, sum, int(board.StepLight), false),
		LightPromoted: store.PartPath(dir, sum, int(board.StepLight), true),
		Heavy:         store.PartPath(dir, sum, int(board.StepHeavy), false),
		HeavyPromoted: store.PartPath(dir, sum, int(board.StepHeavy), true),
	}
}

// BuildStats counts the work done by one build.
type BuildStats struct {
	InputsRead   int64         // states read from the input layer
	InputsInPart int64         // states belonging to this shard
	Generated    int64         // successors produced before lookup
	Known        int64         // successors dropped because the valuer knew them
	Written      map[string]int // distinct states written per output path
	Elapsed      time.Duration
}

// Builder expands layers. A Builder is not safe for concurrent use; run one
// per shard.
type Builder struct {
	cfg    Config
	log    zerolog.Logger
	valuer Valuer
}

// NewBuilder validates cfg and fills defaults.
func NewBuilder(cfg Config) (*Builder, error) {
	if !board.ValidSize(cfg.Size) {
		return nil, fmt.Errorf("%w: %d", board.ErrBadSize, cfg.Size)
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 1000000
	}
	valuer := cfg.Valuer
	if valuer == nil {
		valuer = NoValuer{}
	}
	return &Builder{cfg: cfg, log: cfg.Logger, valuer: valuer}, nil
}

// Expand inserts every unknown successor of s into the partition buckets,
// restricted to the selected steps. It returns the number of successors
// generated and the number dropped as known.
func (b *Builder) Expand(s board.State, steps board.Steps, parts *Partitions) (generated, known int64) {
	maxValue := s.MaxValue()
	for _, d := range board.Directions {
		moved := s.Move(d)
		if moved == s {
			continue
		}
		for i := 0; i < moved.NumCells(); i++ {
			if moved.At(i) != 0 {
				continue
			}
			for _, step := range steps.List() {
				successor := moved.NewStateWithTile(i, step).Canonicalize()
				generated++
				if _, ok := b.valuer.MaybeValue(successor); ok {
					known++
					continue
				}
				parts.Bucket(step, successor.MaxValue() != maxValue).Insert(successor.Nybbles())
			}
		}
	}
	return generated, known
}

// BuildSplit expands every state of the input layer, all of whose states have
// max tile inputMaxValue, into the four outputs.
func (b *Builder) BuildSplit(inputPath string, inputMaxValue int, outputs SplitPaths) (*BuildStats, error) {
	start := time.Now()
	parts := NewPartitions()
	stats := &BuildStats{Written: make(map[string]int, 4)}

	b.log.Info().Str("input", inputPath).Int("max_value", inputMaxValue).Msg("split build started")
	err := store.ScanLayer(inputPath, func(key uint64) error {
		s := board.FromNybbles(b.cfg.Size, key)
		if s.MaxValue() != inputMaxValue {
			return fmt.Errorf("state %s has max %d, layer %s expects %d", s, s.MaxValue(), inputPath, inputMaxValue)
		}
		stats.InputsRead++
		stats.InputsInPart++
		g, k := b.Expand(s, board.BothSteps, parts)
		stats.Generated += g
		stats.Known += k
		b.progress(stats)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("split build %s: %w", inputPath, err)
	}

	for _, out := range []struct {
		path string
		set  *store.StateSet
	}{
		{outputs.Light, parts.Light},
		{outputs.LightPromoted, parts.LightPromoted},
		{outputs.Heavy, parts.Heavy},
		{outputs.HeavyPromoted, parts.HeavyPromoted},
	} {
		n, err := out.set.Flush(out.path)
		if err != nil {
			return nil, fmt.Errorf("split build %s: %w", inputPath, err)
		}
		stats.Written[out.path] = n
	}
	stats.Elapsed = time.Since(start)
	b.logDone(inputPath, stats)
	return stats, nil
}

// BuildLayer expands the input states whose index satisfies
// index % divisor == remainder, placing only the selected steps, and writes
// the sorted union of all unknown successors to outputPath.
func (b *Builder) BuildLayer(inputPath, outputPath string, steps board.Steps, remainder, divisor int) (*BuildStats, error) {
	if divisor < 1 || remainder < 0 || remainder >= divisor {
		return nil, fmt.Errorf("%w: remainder %d, divisor %d", ErrBadShard, remainder, divisor)
	}
	start := time.Now()
	parts := NewPartitions()
	stats := &BuildStats{Written: make(map[string]int, 1)}

	b.log.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Stringer("steps", steps).
		Int("remainder", remainder).
		Int("divisor", divisor).
		Msg("layer build started")

	var index int64
	err := store.ScanLayer(inputPath, func(key uint64) error {
		i := index
		index++
		stats.InputsRead++
		if i%int64(divisor) != int64(remainder) {
			return nil
		}
		stats.InputsInPart++
		g, k := b.Expand(board.FromNybbles(b.cfg.Size, key), steps, parts)
		stats.Generated += g
		stats.Known += k
		b.progress(stats)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build layer %s: %w", inputPath, err)
	}

	// Promoted and unpromoted buckets are disjoint, so folding one into the
	// other gives the full successor set.
	for _, bucket := range []*store.StateSet{parts.LightPromoted, parts.Heavy, parts.HeavyPromoted} {
		bucket.Ascend(func(key uint64) bool {
			parts.Light.Insert(key)
			return true
		})
		bucket.Clear()
	}
	n, err := parts.Light.Flush(outputPath)
	if err != nil {
		return nil, fmt.Errorf("build layer %s: %w", inputPath, err)
	}
	stats.Written[outputPath] = n
	stats.Elapsed = time.Since(start)
	b.logDone(inputPath, stats)
	return stats, nil
}

func (b *Builder) progress(stats *BuildStats) {
	if stats.InputsInPart%int64(b.cfg.ProgressEvery) != 0 {
		return
	}
	b.log.Info().
		Int64("inputs", stats.InputsInPart).
		Int64("generated", stats.Generated).
		Int64("known", stats.Known).
		Msg("build progress")
}

func (b *Builder) logDone(inputPath string, stats *BuildStats) {
	ev := b.log.Info().
		Str("input", inputPath).
		Int64("inputs_read", stats.InputsRead).
		Int64("inputs_in_part", stats.InputsInPart).
		Int64("generated", stats.Generated).
		Int64("known", stats.Known).
		Dur("elapsed", stats.Elapsed)
	for path, n := range stats.Written {
		ev = ev.Int(path, n)
	}
	ev.Msg("build complete")
}

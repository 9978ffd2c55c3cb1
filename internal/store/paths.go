package store

import (
	"fmt"
	"path/filepath"
)

// LayerPath is the merged layer of all canonical states with the given sum.
func LayerPath(dir string, sum int) string {
	return filepath.Join(dir, fmt.Sprintf("%04d.vbyte", sum))
}

// ValuesPath is the value table computed for a layer.
func ValuesPath(dir string, sum int) string {
	return filepath.Join(dir, fmt.Sprintf("%04d.values", sum))
}

// ShardPath is one sharded builder output: the successors of layer inputSum
// reached by placing a tile of the given step, for one remainder.
func ShardPath(dir string, inputSum, step, remainder int) string {
	return filepath.Join(dir, fmt.Sprintf("%04d.%d.%03d.shard.vbyte", inputSum, step, remainder))
}

// PartPath is one bucket of a split build of layer inputSum, keyed by tile step
// and whether the successor's maximum tile differs from the input's.
func PartPath(dir string, inputSum, step int, promoted bool) string {
	p := 0
	if promoted {
		p = 1
	}
	return filepath.Join(dir, fmt.Sprintf("%04d.%d.%d.part.vbyte", inputSum, step, p))
}

// StartPath holds the start states whose sum is sum, seeding that layer.
func StartPath(dir string, sum int) string {
	return filepath.Join(dir, fmt.Sprintf("%04d.start.vbyte", sum))
}

package resolve

import (
	"fmt"

	"github.com/freeeve/twenty48/internal/board"
)

// WinTable returns depth+1 canonical win representatives for a board of the
// given size. Entry k wins in exactly k moves: entry 0 holds the target tile,
// and entry k > 0 is a chain 2^(e-1), 2^(e-2), ..., 2^(e-k), 2^(e-k) laid
// along a snake path from the bottom-right corner, which collapses one link
// per move.
func WinTable(size, maxExponent, depth int) ([]board.State, error) {
	if !board.ValidSize(size) {
		return nil, fmt.Errorf("%w: %d", board.ErrBadSize, size)
	}
	if maxExponent < 1 || maxExponent > board.MaxExponent {
		return nil, fmt.Errorf("%w: max exponent %d", ErrInvalidConfiguration, maxExponent)
	}
	n := size * size
	if depth < 0 || depth > n-1 || depth > maxExponent-1 {
		return nil, fmt.Errorf("%w: win depth %d does not fit a %dx%d board with max exponent %d",
			ErrInvalidConfiguration, depth, size, size, maxExponent)
	}
	path := snakePath(size)
	wins := make([]board.State, depth+1)
	for k := range wins {
		cells := make([]int, n)
		if k == 0 {
			cells[path[0]] = maxExponent
		} else {
			for j := 0; j < k; j++ {
				cells[path[j]] = maxExponent - 1 - j
			}
			cells[path[k]] = maxExponent - k
		}
		s, err := board.New(size, cells)
		if err != nil {
			return nil, err
		}
		wins[k] = s.Canonicalize()
	}
	return wins, nil
}

// snakePath orders the cells from the bottom-right corner, right to left
// along the bottom row, then left to right along the row above, and so on.
func snakePath(size int) []int {
	path := make([]int, 0, size*size)
	for r := size - 1; r >= 0; r-- {
		reverse := (size-1-r)%2 == 0
		for c := 0; c < size; c++ {
			col := c
			if reverse {
				col = size - 1 - c
			}
			path = append(path, r*size+col)
		}
	}
	return path
}

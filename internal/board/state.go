// Package board implements the packed board state of a 2048-style sliding-tile game.
//
// A State packs one 4-bit exponent per cell ("nybbles") into a uint64. Cell 0 is
// the top-left cell and sits in the most significant nybble, so comparing packed
// keys numerically compares boards cell by cell in row-major order. That order is
// the total order used for canonical forms, layer files and value tables.
package board

import (
	"errors"
	"fmt"
	"strings"
)

// MaxExponent is the largest tile exponent a nybble can hold (2^15).
const MaxExponent = 15

var (
	ErrBadSize = errors.New("board size must be 2, 3 or 4")
	ErrBadCell = errors.New("cell value out of range")
)

// State is a board of size x size cells. The zero value is not a valid board;
// use New, MustNew, Empty or FromNybbles.
type State struct {
	nybbles uint64
	size    uint8
}

// ValidSize reports whether size is a supported board size.
func ValidSize(size int) bool {
	return size >= 2 && size <= 4
}

// Empty returns the board with no tiles. Its packed key is 0.
func Empty(size int) State {
	return State{size: uint8(size)}
}

// New builds a state from row-major cell exponents (0 = empty).
func New(size int, cells []int) (State, error) {
	if !ValidSize(size) {
		return State{}, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if len(cells) != size*size {
		return State{}, fmt.Errorf("%w: got %d cells for size %d", ErrBadCell, len(cells), size)
	}
	s := Empty(size)
	for i, v := range cells {
		if v < 0 || v > MaxExponent {
			return State{}, fmt.Errorf("%w: cell %d = %d", ErrBadCell, i, v)
		}
		s = s.with(i, v)
	}
	return s, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and literals.
func MustNew(size int, cells ...int) State {
	s, err := New(size, cells)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseNybbles is like FromNybbles but rejects keys with bits beyond the
// board's cells.
func ParseNybbles(size int, nybbles uint64) (State, error) {
	if !ValidSize(size) {
		return State{}, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if bits := 4 * uint(size*size); bits < 64 && nybbles>>bits != 0 {
		return State{}, fmt.Errorf("%w: key %#x has more than %d cells", ErrBadCell, nybbles, size*size)
	}
	return FromNybbles(size, nybbles), nil
}

// FromNybbles wraps a packed key read from disk. Bits beyond the board's cells are dropped.
func FromNybbles(size int, nybbles uint64) State {
	n := size * size
	if n < 16 {
		nybbles &= (uint64(1) << (4 * uint(n))) - 1
	}
	return State{nybbles: nybbles, size: uint8(size)}
}

func (s State) Size() int       { return int(s.size) }
func (s State) NumCells() int   { return int(s.size) * int(s.size) }
func (s State) Nybbles() uint64 { return s.nybbles }

func (s State) shift(i int) uint {
	return 4 * uint(s.NumCells()-1-i)
}

// At returns the exponent in cell i (0 = empty).
func (s State) At(i int) int {
	return int((s.nybbles >> s.shift(i)) & 0xF)
}

func (s State) with(i, v int) State {
	sh := s.shift(i)
	s.nybbles = (s.nybbles &^ (uint64(0xF) << sh)) | (uint64(v) << sh)
	return s
}

// Cells returns the row-major cell exponents.
func (s State) Cells() []int {
	cells := make([]int, s.NumCells())
	for i := range cells {
		cells[i] = s.At(i)
	}
	return cells
}

// Sum is the total of all tile values (2^v per occupied cell).
func (s State) Sum() int {
	sum := 0
	for i := 0; i < s.NumCells(); i++ {
		if v := s.At(i); v > 0 {
			sum += 1 << uint(v)
		}
	}
	return sum
}

// MaxValue is the largest exponent on the board, 0 for the empty board.
func (s State) MaxValue() int {
	best := 0
	for i := 0; i < s.NumCells(); i++ {
		if v := s.At(i); v > best {
			best = v
		}
	}
	return best
}

// CellsAvailable counts the empty cells.
func (s State) CellsAvailable() int {
	count := 0
	for i := 0; i < s.NumCells(); i++ {
		if s.At(i) == 0 {
			count++
		}
	}
	return count
}

// NewStateWithTile places a tile of the given step in cell i, which must be empty.
func (s State) NewStateWithTile(i int, step Step) State {
	return s.with(i, int(step))
}

// Less orders states by packed key.
func (s State) Less(other State) bool {
	return s.nybbles < other.nybbles
}

// Lose reports whether no move changes the board.
func (s State) Lose() bool {
	for _, d := range Directions {
		if s.Move(d) != s {
			return false
		}
	}
	return true
}

// String renders the board as rows of tile exponents, "." for empty.
func (s State) String() string {
	var sb strings.Builder
	n := s.Size()
	for r := 0; r < n; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < n; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			if v := s.At(r*n + c); v == 0 {
				sb.WriteByte('.')
			} else {
				fmt.Fprintf(&sb, "%d", v)
			}
		}
	}
	return sb.String()
}

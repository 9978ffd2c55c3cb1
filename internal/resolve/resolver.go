// Package resolve decides states close to the end of the game without
// expanding them: a state that is certain to reach the target tile within a
// few moves is replaced by a representative win state, and one that is
// certain to lose is replaced by the lose state.
package resolve

import (
	"errors"
	"fmt"

	"github.com/freeeve/twenty48/internal/board"
)

var ErrInvalidConfiguration = errors.New("invalid resolver configuration")

// Resolver holds the win and lose search limits. It is immutable and safe for
// concurrent use.
type Resolver struct {
	maxExponent  int
	maxLoseDepth int
	winStates    []board.State
	loseState    board.State
}

// New creates a resolver for games won by reaching 2^maxExponent. winStates[k]
// is the representative for states that win in exactly k moves; its length
// bounds the win search depth.
func New(maxExponent, maxLoseDepth int, winStates []board.State) (*Resolver, error) {
	if len(winStates) < 1 {
		return nil, fmt.Errorf("%w: no resolved win states", ErrInvalidConfiguration)
	}
	if maxExponent < 1 || maxExponent > board.MaxExponent {
		return nil, fmt.Errorf("%w: max exponent %d", ErrInvalidConfiguration, maxExponent)
	}
	if maxLoseDepth < 0 {
		return nil, fmt.Errorf("%w: max lose depth %d", ErrInvalidConfiguration, maxLoseDepth)
	}
	return &Resolver{
		maxExponent:  maxExponent,
		maxLoseDepth: maxLoseDepth,
		winStates:    append([]board.State(nil), winStates...),
		loseState:    board.Empty(winStates[0].Size()),
	}, nil
}

func (r *Resolver) MaxExponent() int  { return r.maxExponent }
func (r *Resolver) MaxLoseDepth() int { return r.maxLoseDepth }

// MaxWinDepth is the deepest win the resolver looks for.
func (r *Resolver) MaxWinDepth() int { return len(r.winStates) - 1 }

// LoseState is the representative all certain losses resolve to.
func (r *Resolver) LoseState() board.State { return r.loseState }

// LoseWithin reports whether s loses within the given number of moves no
// matter how the player moves or where tiles appear.
func (r *Resolver) LoseWithin(s board.State, moves int) bool {
	// Each move fills at most one cell.
	if s.CellsAvailable() > moves {
		return false
	}
	if s.Lose() {
		return true
	}
	if moves == 0 {
		return false
	}
	for _, d := range board.Directions {
		moved := s.Move(d)
		if moved == s {
			continue
		}
		for _, t := range moved.RandomTransitions() {
			if !r.LoseWithin(t.State, moves-1) {
				return false
			}
		}
	}
	return true
}

// MovesToWin returns the number of moves in which s is certain to reach the
// target tile, if that is at most MaxWinDepth. The search assumes nothing
// about tiles placed along the way: after the first move every empty cell is
// treated as unknown.
func (r *Resolver) MovesToWin(s board.State) (int, bool) {
	return r.movesToWin(s, r.MaxWinDepth(), false)
}

func (r *Resolver) movesToWin(s board.State, depth int, zerosUnknown bool) (int, bool) {
	// The max tile grows by at most one per move.
	delta := r.maxExponent - s.MaxValue()
	if delta > depth {
		return 0, false
	}
	if delta <= 0 {
		return 0, true
	}
	if delta == 1 && s.HasAdjacentPair(r.maxExponent-1, zerosUnknown) {
		return 1, true
	}

	best, found := 0, false
	for _, d := range board.Directions {
		var moved board.State
		if zerosUnknown {
			moved = s.MoveUnknownZeros(d)
		} else {
			moved = s.Move(d)
		}
		if n, ok := r.movesToWin(moved, depth-1, true); ok && (!found || n+1 < best) {
			best, found = n+1, true
		}
	}
	return best, found
}

// Resolve maps s to its win representative, the lose state, or s itself when
// it cannot be decided.
func (r *Resolver) Resolve(s board.State) board.State {
	if k, ok := r.MovesToWin(s); ok {
		return r.winStates[k]
	}
	if r.LoseWithin(s, r.maxLoseDepth) {
		return r.loseState
	}
	return s
}

// Value computes the exact discounted probability of winning from s by
// searching at most MaxWinDepth moves ahead. It is Unknown when some line of
// play does not finish within that horizon.
func (r *Resolver) Value(s board.State, discount float64) Value {
	return r.value(s, discount, r.MaxWinDepth())
}

func (r *Resolver) value(s board.State, discount float64, depth int) Value {
	delta := r.maxExponent - s.MaxValue()
	if delta <= 0 {
		return Known(1)
	}
	if depth <= 0 || delta > depth {
		return Unknown
	}

	best := Unknown
	for _, d := range board.Directions {
		v := r.actionValue(s, d, discount, depth)
		p, ok := v.Get()
		if !ok {
			continue
		}
		if b, bok := best.Get(); !bok || p > b {
			best = v
		}
	}
	return best
}

func (r *Resolver) actionValue(s board.State, d board.Direction, discount float64, depth int) Value {
	moved := s.Move(d)
	if moved == s {
		return Unknown
	}
	sum := Known(0)
	for _, t := range moved.RandomTransitions() {
		sum = sum.Add(r.value(t.State, discount, depth-1).Scale(t.Probability * discount))
		if !sum.IsKnown() {
			return Unknown
		}
	}
	// Transition probabilities sum to 1 only up to rounding.
	if p, _ := sum.Get(); p > 1 {
		return Known(1)
	}
	return sum
}

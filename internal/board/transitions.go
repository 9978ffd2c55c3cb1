package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Step is the exponent of a newly placed tile: 1 for a 2, 2 for a 4.
type Step uint8

const (
	StepLight Step = 1
	StepHeavy Step = 2
)

// Probability is the chance that a new tile has this step.
func (s Step) Probability() float64 {
	if s == StepHeavy {
		return 0.1
	}
	return 0.9
}

// SumDelta is the increase in board sum caused by placing this tile.
func (s Step) SumDelta() int {
	return 1 << uint(s)
}

// Steps selects which tile steps a builder pass generates.
type Steps uint8

const (
	BothSteps Steps = iota
	LightSteps
	HeavySteps
)

var ErrBadSteps = errors.New("steps must be both, light (1) or heavy (2)")

// ParseSteps accepts "both", "light"/"1" and "heavy"/"2".
func ParseSteps(s string) (Steps, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "both", "", "0":
		return BothSteps, nil
	case "light", "1":
		return LightSteps, nil
	case "heavy", "2":
		return HeavySteps, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadSteps, s)
}

// Includes reports whether step is generated under this selection.
func (s Steps) Includes(step Step) bool {
	switch s {
	case LightSteps:
		return step == StepLight
	case HeavySteps:
		return step == StepHeavy
	}
	return true
}

// List returns the selected steps in increasing order.
func (s Steps) List() []Step {
	switch s {
	case LightSteps:
		return []Step{StepLight}
	case HeavySteps:
		return []Step{StepHeavy}
	}
	return []Step{StepLight, StepHeavy}
}

func (s Steps) String() string {
	switch s {
	case LightSteps:
		return "1"
	case HeavySteps:
		return "2"
	}
	return "both"
}

// Transition is one random outcome of placing a tile: a canonical successor
// and the probability of reaching it.
type Transition struct {
	State       State
	Probability float64
}

// RandomTransitions lists the canonical successors of s after one random tile
// is placed, with equivalent successors folded together. The result is sorted
// by packed key and its probabilities sum to 1. A full board has none.
func (s State) RandomTransitions() []Transition {
	available := s.CellsAvailable()
	if available == 0 {
		return nil
	}
	weights := make(map[State]float64, 2*available)
	for i := 0; i < s.NumCells(); i++ {
		if s.At(i) != 0 {
			continue
		}
		for _, step := range [2]Step{StepLight, StepHeavy} {
			successor := s.NewStateWithTile(i, step).Canonicalize()
			weights[successor] += step.Probability() / float64(available)
		}
	}
	return sortedTransitions(weights)
}

func sortedTransitions(weights map[State]float64) []Transition {
	out := make([]Transition, 0, len(weights))
	for state, pr := range weights {
		out = append(out, Transition{State: state, Probability: pr})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].State.nybbles < out[j].State.nybbles
	})
	return out
}

// StartStates lists the canonical two-tile boards a game starts from, with
// their probabilities.
func StartStates(size int) ([]Transition, error) {
	if !ValidSize(size) {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	weights := make(map[State]float64)
	for _, one := range Empty(size).RandomTransitions() {
		for _, two := range one.State.RandomTransitions() {
			weights[two.State] += one.Probability * two.Probability
		}
	}
	return sortedTransitions(weights), nil
}

package board_test

import (
	"testing"

	"github.com/freeeve/twenty48/internal/board"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name string
		from board.State
		dir  board.Direction
		want board.State
	}{
		{"2x2 merge left", board.MustNew(2, 0, 0, 1, 1), board.Left, board.MustNew(2, 0, 0, 2, 0)},
		{"2x2 merge right", board.MustNew(2, 0, 0, 1, 1), board.Right, board.MustNew(2, 0, 0, 0, 2)},
		{"2x2 slide up", board.MustNew(2, 0, 0, 1, 1), board.Up, board.MustNew(2, 1, 1, 0, 0)},
		{"2x2 no-op down", board.MustNew(2, 0, 0, 1, 1), board.Down, board.MustNew(2, 0, 0, 1, 1)},
		{"4x4 double merge", board.MustNew(4,
			1, 1, 1, 1,
			2, 1, 1, 0,
			0, 0, 0, 3,
			3, 0, 3, 3), board.Left, board.MustNew(4,
			2, 2, 0, 0,
			2, 2, 0, 0,
			3, 0, 0, 0,
			4, 3, 0, 0)},
		{"4x4 right merges from the right edge", board.MustNew(4,
			1, 1, 1, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
			2, 2, 2, 2), board.Right, board.MustNew(4,
			0, 0, 1, 2,
			0, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 3, 3)},
		{"3x3 down", board.MustNew(3,
			1, 0, 2,
			1, 0, 0,
			2, 1, 2), board.Down, board.MustNew(3,
			0, 0, 0,
			2, 0, 0,
			2, 1, 3)},
		{"merged tile does not merge again", board.MustNew(4,
			2, 1, 1, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0), board.Left, board.MustNew(4,
			2, 2, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.Move(tt.dir)
			if got != tt.want {
				t.Errorf("%v.Move(%v) = %v, want %v", tt.from, tt.dir, got, tt.want)
			}
			if got.Sum() != tt.from.Sum() {
				t.Errorf("move changed sum from %d to %d", tt.from.Sum(), got.Sum())
			}
		})
	}
}

func TestMoveUnknownZeros(t *testing.T) {
	tests := []struct {
		name string
		from board.State
		dir  board.Direction
		want board.State
	}{
		{"run behind unknown stays", board.MustNew(4,
			0, 0, 0, 3,
			1, 0, 1, 1,
			0, 0, 0, 0,
			0, 0, 0, 0), board.Left, board.MustNew(4,
			0, 0, 0, 3,
			1, 0, 1, 1,
			0, 0, 0, 0,
			0, 0, 0, 0)},
		{"wall run merges once", board.MustNew(4,
			1, 1, 1, 0,
			2, 2, 0, 2,
			0, 0, 0, 0,
			3, 3, 3, 3), board.Left, board.MustNew(4,
			2, 1, 0, 0,
			3, 0, 0, 2,
			0, 0, 0, 0,
			4, 4, 0, 0)},
		{"run against the wall merges", board.MustNew(3,
			0, 0, 0,
			1, 0, 0,
			1, 2, 0), board.Down, board.MustNew(3,
			0, 0, 0,
			0, 0, 0,
			2, 2, 0)},
		{"lone tile stays put", board.MustNew(2,
			2, 0,
			2, 3), board.Up, board.MustNew(2,
			3, 0,
			0, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.MoveUnknownZeros(tt.dir); got != tt.want {
				t.Errorf("%v.MoveUnknownZeros(%v) = %v, want %v", tt.from, tt.dir, got, tt.want)
			}
		})
	}
}

func TestHasAdjacentPair(t *testing.T) {
	tests := []struct {
		name         string
		state        board.State
		value        int
		zerosUnknown bool
		want         bool
	}{
		{"row neighbours", board.MustNew(2, 0, 0, 1, 1), 1, true, true},
		{"column neighbours", board.MustNew(3, 0, 2, 0, 0, 2, 0, 0, 0, 0), 2, true, true},
		{"diagonal", board.MustNew(2, 0, 1, 1, 0), 1, false, false},
		{"gap known empty", board.MustNew(3, 2, 0, 2, 0, 0, 0, 0, 0, 0), 2, false, true},
		{"gap unknown", board.MustNew(3, 2, 0, 2, 0, 0, 0, 0, 0, 0), 2, true, false},
		{"blocked by other tile", board.MustNew(3, 2, 1, 2, 0, 0, 0, 0, 0, 0), 2, false, false},
		{"wrong value", board.MustNew(2, 0, 0, 1, 1), 2, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.HasAdjacentPair(tt.value, tt.zerosUnknown); got != tt.want {
				t.Errorf("HasAdjacentPair(%v, %d, %v) = %v, want %v",
					tt.state, tt.value, tt.zerosUnknown, got, tt.want)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range board.Directions {
		got, err := board.ParseDirection(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := board.ParseDirection("north"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

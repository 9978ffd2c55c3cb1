package resolve_test

import (
	"errors"
	"math"
	"testing"

	"github.com/freeeve/twenty48/internal/board"
	"github.com/freeeve/twenty48/internal/resolve"
)

func TestWinTable(t *testing.T) {
	wins, err := resolve.WinTable(2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []board.State{
		board.MustNew(2, 0, 0, 0, 3),
		board.MustNew(2, 0, 0, 2, 2),
		board.MustNew(2, 1, 0, 1, 2),
	}
	for k := range want {
		if wins[k] != want[k] {
			t.Errorf("entry %d = %v, want %v", k, wins[k], want[k])
		}
	}
	if wins, err := resolve.WinTable(2, 2, 1); err != nil || wins[1] != board.MustNew(2, 0, 0, 1, 1) {
		t.Errorf("WinTable(2, 2, 1) = %v, %v", wins, err)
	}
}

func TestWinTableEntriesWinInExactlyK(t *testing.T) {
	for size := 2; size <= 4; size++ {
		for maxExponent := 1; maxExponent <= 6; maxExponent++ {
			depth := size*size - 1
			if depth > maxExponent-1 {
				depth = maxExponent - 1
			}
			wins, err := resolve.WinTable(size, maxExponent, depth)
			if err != nil {
				t.Fatalf("WinTable(%d, %d, %d): %v", size, maxExponent, depth, err)
			}
			r, err := resolve.New(maxExponent, 0, wins)
			if err != nil {
				t.Fatal(err)
			}
			seen := make(map[board.State]bool)
			for k, s := range wins {
				if n, ok := r.MovesToWin(s); !ok || n != k {
					t.Errorf("size %d max %d: MovesToWin(entry %d = %v) = %d, %v", size, maxExponent, k, s, n, ok)
				}
				if !s.IsCanonical() || seen[s] {
					t.Errorf("size %d max %d: entry %d = %v not canonical or repeated", size, maxExponent, k, s)
				}
				seen[s] = true
			}
		}
	}
}

// Replacing a state by its representative must not change its value.
func TestResolvePreservesValue(t *testing.T) {
	wins, err := resolve.WinTable(2, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	r, err := resolve.New(3, 0, wins)
	if err != nil {
		t.Fatal(err)
	}
	resolved := 0
	forEachBoard(3, func(s board.State) {
		rep := r.Resolve(s)
		if rep == s || rep == r.LoseState() {
			return
		}
		resolved++
		v, ok := r.Value(s, 0.9).Get()
		w, wok := r.Value(rep, 0.9).Get()
		if !ok || !wok || math.Abs(v-w) > 1e-9 {
			t.Errorf("Value(%v) = %v, %v but Value(%v) = %v, %v", s, v, ok, rep, w, wok)
		}
	})
	if resolved == 0 {
		t.Fatal("no state resolved to a win")
	}

	pair := board.MustNew(2, 0, 0, 1, 1)
	r2, err := resolve.New(2, 0, mustWinTable(t, 2, 2, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := r2.Resolve(pair); got != pair {
		t.Errorf("Resolve(%v) = %v, want the 1-to-win representative %v", pair, got, pair)
	}
}

func mustWinTable(t *testing.T, size, maxExponent, depth int) []board.State {
	t.Helper()
	wins, err := resolve.WinTable(size, maxExponent, depth)
	if err != nil {
		t.Fatal(err)
	}
	return wins
}

func TestWinTableTargetOne(t *testing.T) {
	wins := mustWinTable(t, 2, 1, 0)
	if len(wins) != 1 || wins[0] != board.MustNew(2, 0, 0, 0, 1) {
		t.Errorf("WinTable(2, 1, 0) = %v", wins)
	}
}

func TestWinTableRejects(t *testing.T) {
	if _, err := resolve.WinTable(2, 5, 4); !errors.Is(err, resolve.ErrInvalidConfiguration) {
		t.Errorf("depth 4 on 2x2 = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := resolve.WinTable(4, 3, 3); !errors.Is(err, resolve.ErrInvalidConfiguration) {
		t.Errorf("depth 3 to 8 = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := resolve.WinTable(5, 5, 1); !errors.Is(err, board.ErrBadSize) {
		t.Errorf("size 5 = %v, want ErrBadSize", err)
	}
}

package layer

import (
	"math"

	"github.com/freeeve/twenty48/internal/board"
	"github.com/freeeve/twenty48/internal/resolve"
	"github.com/freeeve/twenty48/internal/store"
)

// Valuer reports values already derived for states. The builder drops any
// successor a Valuer knows, since it needs no further expansion.
type Valuer interface {
	MaybeValue(s board.State) (float64, bool)
}

// TableValuer looks states up in mapped value tables, first known hit wins.
// A NaN record marks an unknown value and falls through.
type TableValuer struct {
	Tables []*store.ValueTable
}

// NewTableValuer wraps already opened tables.
func NewTableValuer(tables ...*store.ValueTable) *TableValuer {
	return &TableValuer{Tables: tables}
}

func (v *TableValuer) MaybeValue(s board.State) (float64, bool) {
	key := s.Nybbles()
	for _, t := range v.Tables {
		if rec, ok := t.MaybeFind(key); ok && !math.IsNaN(rec.Value) {
			return rec.Value, true
		}
	}
	return 0, false
}

// Close unmaps every table.
func (v *TableValuer) Close() error {
	var first error
	for _, t := range v.Tables {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// KnownValuer values terminal states: 1 once a tile reaches MaxExponent, 0 when
// no move is possible.
type KnownValuer struct {
	MaxExponent int
}

func (v KnownValuer) MaybeValue(s board.State) (float64, bool) {
	if s.MaxValue() >= v.MaxExponent {
		return 1, true
	}
	if s.Lose() {
		return 0, true
	}
	return 0, false
}

// ChainValuer asks each valuer in turn.
type ChainValuer []Valuer

func (c ChainValuer) MaybeValue(s board.State) (float64, bool) {
	for _, v := range c {
		if value, ok := v.MaybeValue(s); ok {
			return value, true
		}
	}
	return 0, false
}

// NoValuer knows nothing; every successor is kept.
type NoValuer struct{}

func (NoValuer) MaybeValue(board.State) (float64, bool) { return 0, false }

// ResolverValuer knows the states whose exact value the resolver can compute
// within its search horizon.
type ResolverValuer struct {
	Resolver *resolve.Resolver
	Discount float64
}

func (v ResolverValuer) MaybeValue(s board.State) (float64, bool) {
	return v.Resolver.Value(s, v.Discount).Get()
}

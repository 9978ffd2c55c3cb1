package resolve

import (
	"math"
	"strconv"
)

// Value is a probability that may be unknown. Unknown propagates through
// arithmetic, so callers must check IsKnown before comparing values.
type Value struct {
	p     float64
	known bool
}

// Unknown is the value of a state the resolver cannot decide.
var Unknown = Value{}

// Known wraps a decided value.
func Known(p float64) Value {
	return Value{p: p, known: true}
}

// FromFloat64 converts a stored float, where NaN encodes unknown.
func FromFloat64(f float64) Value {
	if math.IsNaN(f) {
		return Unknown
	}
	return Known(f)
}

// Get returns the value and whether it is known.
func (v Value) Get() (float64, bool) {
	return v.p, v.known
}

func (v Value) IsKnown() bool {
	return v.known
}

// Float64 returns the value, or NaN when unknown.
func (v Value) Float64() float64 {
	if !v.known {
		return math.NaN()
	}
	return v.p
}

// Scale multiplies a known value by f.
func (v Value) Scale(f float64) Value {
	if !v.known {
		return Unknown
	}
	return Known(v.p * f)
}

// Add sums two values; the sum is unknown if either side is.
func (v Value) Add(w Value) Value {
	if !v.known || !w.known {
		return Unknown
	}
	return Known(v.p + w.p)
}

func (v Value) String() string {
	if !v.known {
		return "unknown"
	}
	return strconv.FormatFloat(v.p, 'g', -1, 64)
}

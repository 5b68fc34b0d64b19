// Package indicators provides technical analysis indicators for strategies.
//
// Indicators come in two shapes: streaming indicators that consume one bar at
// a time, and Series caches computed once over a whole bar series.
package indicators

import (
	"errors"

	"github.com/rustyeddy/backtester/market"
)

// ErrInvalidPeriod is returned for non-positive or otherwise unusable periods.
var ErrInvalidPeriod = errors.New("invalid period")

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in replay and backtests.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool
}

type ValueF64 interface {
	// Value returns the current indicator value. If !Ready(), it returns 0.
	// Callers should always check Ready().
	Value() float64
}

// Float is a streaming indicator producing a float64 value.
type Float interface {
	Indicator
	ValueF64
}

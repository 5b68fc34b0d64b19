package market

import (
	"fmt"
	"strings"
)

// Signal is the directional decision a strategy emits for one bar.
type Signal int8

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Actionable reports whether the signal should produce an order.
func (s Signal) Actionable() bool {
	return s == Buy || s == Sell
}

func ParseSignal(s string) (Signal, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "HOLD", "":
		return Hold, nil
	default:
		return Hold, fmt.Errorf("unknown signal %q", s)
	}
}

// Package sizing decides how many shares an actionable signal trades.
package sizing

import (
	"fmt"
	"math"
	"strings"
)

// Funds is the part of the portfolio a sizer may look at.
type Funds interface {
	Cash() float64
}

// PositionSizer turns a fill price into a whole-share quantity.
// Quantity never returns a negative value and returns 0 when price <= 0.
type PositionSizer interface {
	Name() string
	Quantity(price float64, f Funds) float64
}

type fixedQuantity struct {
	n float64
}

// FixedQuantity always trades n shares.
func FixedQuantity(n float64) (PositionSizer, error) {
	if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("sizing: fixed quantity must be positive, got %v", n)
	}
	return fixedQuantity{n: math.Floor(n)}, nil
}

func (s fixedQuantity) Name() string {
	return fmt.Sprintf("Fixed Quantity (%g shares)", s.n)
}

func (s fixedQuantity) Quantity(price float64, _ Funds) float64 {
	if price <= 0 {
		return 0
	}
	return s.n
}

type fixedCash struct {
	amount float64
}

// FixedCash trades as many shares as amount buys at the fill price.
func FixedCash(amount float64) (PositionSizer, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("sizing: fixed cash amount must be positive, got %v", amount)
	}
	return fixedCash{amount: amount}, nil
}

func (s fixedCash) Name() string {
	return fmt.Sprintf("Fixed Cash ($%.2f)", s.amount)
}

func (s fixedCash) Quantity(price float64, _ Funds) float64 {
	if price <= 0 {
		return 0
	}
	return math.Floor(s.amount / price)
}

type cashPercentage struct {
	fraction float64
}

// CashPercentage spends fraction of the currently available cash.
// fraction must be in (0, 1].
func CashPercentage(fraction float64) (PositionSizer, error) {
	if !(fraction > 0 && fraction <= 1) {
		return nil, fmt.Errorf("sizing: cash fraction must be in (0, 1], got %v", fraction)
	}
	return cashPercentage{fraction: fraction}, nil
}

func (s cashPercentage) Name() string {
	return fmt.Sprintf("Cash Percentage (%g%%)", s.fraction*100)
}

func (s cashPercentage) Quantity(price float64, f Funds) float64 {
	if price <= 0 || f == nil {
		return 0
	}
	cash := f.Cash()
	if cash <= 0 {
		return 0
	}
	return math.Floor(cash * s.fraction / price)
}

// Config selects a sizer by kind. Value is the share count, cash amount or
// fraction depending on the kind.
type Config struct {
	Kind  string  `json:"kind" yaml:"kind"`
	Value float64 `json:"value" yaml:"value"`
}

// New builds the sizer described by cfg.
func New(cfg Config) (PositionSizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "fixed-qty", "fixed-quantity", "qty", "shares":
		return FixedQuantity(cfg.Value)
	case "fixed-cash", "cash":
		return FixedCash(cfg.Value)
	case "cash-pct", "percent", "pct":
		return CashPercentage(cfg.Value)
	}
	return nil, fmt.Errorf("unknown sizer %q (supported: fixed-qty, fixed-cash, cash-pct)", cfg.Kind)
}

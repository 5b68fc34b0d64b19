// Package portfolio is the cash and holdings ledger a backtest trades
// against. Money is tracked with decimal arithmetic; the float64 accessors
// are for reporting.
package portfolio

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/shopspring/decimal"
)

// quantityEpsilon is the remaining position size treated as flat.
var quantityEpsilon = decimal.NewFromFloat(0.0001)

type holding struct {
	qty     decimal.Decimal
	avgCost decimal.Decimal
}

// EquityPoint is the portfolio value at the close of one bar.
type EquityPoint struct {
	Index int
	Time  time.Time
	Value float64
}

// Portfolio holds cash, long positions and the realized profit log of a
// single backtest run. It is not safe for concurrent use.
type Portfolio struct {
	initialCash decimal.Decimal
	cash        decimal.Decimal
	rate        decimal.Decimal
	commission  decimal.Decimal

	holdings map[string]*holding
	marks    map[string]decimal.Decimal
	profits  []decimal.Decimal
	equity   []EquityPoint
}

// New returns a portfolio holding initialCash with no positions.
// commissionRate is charged on the gross value of every fill.
func New(initialCash, commissionRate float64) (*Portfolio, error) {
	if initialCash < 0 || math.IsNaN(initialCash) || math.IsInf(initialCash, 0) {
		return nil, fmt.Errorf("portfolio: initial cash must be non-negative, got %v", initialCash)
	}
	if !(commissionRate >= 0 && commissionRate < 1) {
		return nil, fmt.Errorf("portfolio: commission rate must be in [0, 1), got %v", commissionRate)
	}
	cash := decimal.NewFromFloat(initialCash)
	return &Portfolio{
		initialCash: cash,
		cash:        cash,
		rate:        decimal.NewFromFloat(commissionRate),
		holdings:    make(map[string]*holding),
		marks:       make(map[string]decimal.Decimal),
	}, nil
}

// ExecuteOrder applies a fill to the ledger. A buy needs enough cash for
// gross value plus commission and a sell needs enough shares. When either
// check fails, or the order itself is malformed, nothing changes and false
// is returned.
func (p *Portfolio) ExecuteOrder(o Order) bool {
	if !validAmount(o.Quantity) || !validAmount(o.Price) || o.Symbol == "" {
		return false
	}

	qty := decimal.NewFromFloat(o.Quantity)
	price := decimal.NewFromFloat(o.Price)
	gross := qty.Mul(price)
	commission := gross.Mul(p.rate)

	switch o.Signal {
	case market.Buy:
		total := gross.Add(commission)
		if p.cash.LessThan(total) {
			return false
		}
		h := p.holdings[o.Symbol]
		if h == nil {
			h = &holding{}
			p.holdings[o.Symbol] = h
		}
		newQty := h.qty.Add(qty)
		h.avgCost = h.avgCost.Mul(h.qty).Add(gross).Div(newQty)
		h.qty = newQty
		p.cash = p.cash.Sub(total)

	case market.Sell:
		h := p.holdings[o.Symbol]
		if h == nil || h.qty.LessThan(qty) {
			return false
		}
		p.profits = append(p.profits, price.Sub(h.avgCost).Mul(qty))
		p.cash = p.cash.Add(gross.Sub(commission))
		h.qty = h.qty.Sub(qty)
		// A remainder within quantityEpsilon is dust: it is written off
		// together with the cost basis and the position is flat.
		if h.qty.Abs().LessThanOrEqual(quantityEpsilon) {
			delete(p.holdings, o.Symbol)
		}

	default:
		return false
	}

	p.commission = p.commission.Add(commission)
	return true
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// MarkToMarket values the portfolio at price for symbol and appends the
// result to the equity curve.
func (p *Portfolio) MarkToMarket(symbol string, price float64, index int, at time.Time) EquityPoint {
	if validAmount(price) {
		p.marks[symbol] = decimal.NewFromFloat(price)
	}
	pt := EquityPoint{Index: index, Time: at, Value: toFloat(p.value())}
	p.equity = append(p.equity, pt)
	return pt
}

// value is cash plus every position at its last mark. A position that was
// never marked is carried at cost.
func (p *Portfolio) value() decimal.Decimal {
	total := p.cash
	for sym, h := range p.holdings {
		mark, ok := p.marks[sym]
		if !ok {
			mark = h.avgCost
		}
		total = total.Add(h.qty.Mul(mark))
	}
	return total
}

// TotalValue values cash plus positions at the given prices. Symbols missing
// from prices use their last mark.
func (p *Portfolio) TotalValue(prices map[string]float64) float64 {
	total := p.cash
	for sym, h := range p.holdings {
		mark, ok := p.marks[sym]
		if px, found := prices[sym]; found && validAmount(px) {
			mark, ok = decimal.NewFromFloat(px), true
		}
		if !ok {
			mark = h.avgCost
		}
		total = total.Add(h.qty.Mul(mark))
	}
	return toFloat(total)
}

// Cash returns the uninvested cash balance.
func (p *Portfolio) Cash() float64 { return toFloat(p.cash) }

// InitialCash returns the cash the portfolio was created with.
func (p *Portfolio) InitialCash() float64 { return toFloat(p.initialCash) }

// CommissionRate returns the fraction of gross value charged per fill.
func (p *Portfolio) CommissionRate() float64 { return toFloat(p.rate) }

// CommissionPaid returns the total commission charged so far.
func (p *Portfolio) CommissionPaid() float64 { return toFloat(p.commission) }

// Quantity returns the shares held of symbol, 0 when flat.
func (p *Portfolio) Quantity(symbol string) float64 {
	if h, ok := p.holdings[symbol]; ok {
		return toFloat(h.qty)
	}
	return 0
}

// AvgCost returns the weighted average cost of an open position. ok is
// false when there is no position.
func (p *Portfolio) AvgCost(symbol string) (cost float64, ok bool) {
	h, ok := p.holdings[symbol]
	if !ok {
		return 0, false
	}
	return toFloat(h.avgCost), true
}

// Symbols lists the symbols with an open position, sorted.
func (p *Portfolio) Symbols() []string {
	out := make([]string, 0, len(p.holdings))
	for s := range p.holdings {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// RealizedProfits returns the gross profit of every completed sell, in
// order.
func (p *Portfolio) RealizedProfits() []float64 {
	out := make([]float64, len(p.profits))
	for i, d := range p.profits {
		out[i] = toFloat(d)
	}
	return out
}

// EquityCurve returns a copy of the recorded equity points.
func (p *Portfolio) EquityCurve() []EquityPoint {
	out := make([]EquityPoint, len(p.equity))
	copy(out, p.equity)
	return out
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

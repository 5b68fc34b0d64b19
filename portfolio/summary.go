package portfolio

import (
	"math"

	"github.com/shopspring/decimal"
)

// Summary holds statistics derived from the realized profit log and the
// equity curve. Percentages are in the 0-100 range.
type Summary struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64

	GrossProfit  float64
	GrossLoss    float64
	ProfitFactor float64
	AvgWin       float64
	AvgLoss      float64
	WinLossRatio float64

	Cash           float64
	FinalValue     float64
	NetPL          float64
	ReturnPct      float64
	MaxDrawdownPct float64
	CommissionPaid float64
}

// Summary computes trade statistics. Open positions are not counted as
// trades. With no trades the ratios are 0; with trades but no losers
// ProfitFactor and WinLossRatio are +Inf.
func (p *Portfolio) Summary() Summary {
	var s Summary
	var wins, losses decimal.Decimal
	for _, pl := range p.profits {
		switch {
		case pl.IsPositive():
			s.WinningTrades++
			wins = wins.Add(pl)
		case pl.IsNegative():
			s.LosingTrades++
			losses = losses.Add(pl.Abs())
		}
	}
	s.TotalTrades = len(p.profits)
	s.GrossProfit = toFloat(wins)
	s.GrossLoss = toFloat(losses)

	if s.TotalTrades > 0 {
		s.WinRate = 100 * float64(s.WinningTrades) / float64(s.TotalTrades)
	}
	if s.WinningTrades > 0 {
		s.AvgWin = s.GrossProfit / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.LosingTrades)
	}

	// Break-even trades count as neither wins nor losses, so a run of
	// only break-even trades still has no losers.
	switch {
	case s.TotalTrades == 0:
	case s.LosingTrades == 0:
		s.ProfitFactor = math.Inf(1)
		s.WinLossRatio = math.Inf(1)
	default:
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
		s.WinLossRatio = s.AvgWin / s.AvgLoss
	}

	s.Cash = p.Cash()
	s.FinalValue = toFloat(p.value())
	if n := len(p.equity); n > 0 {
		s.FinalValue = p.equity[n-1].Value
	}
	initial := p.InitialCash()
	s.NetPL = s.FinalValue - initial
	if initial > 0 {
		s.ReturnPct = 100 * s.NetPL / initial
	}
	s.MaxDrawdownPct = MaxDrawdownPct(p.equity)
	s.CommissionPaid = p.CommissionPaid()
	return s
}

// MaxDrawdownPct returns the largest peak-to-trough fall of the curve as a
// percentage of the peak.
func MaxDrawdownPct(curve []EquityPoint) float64 {
	var peak, dd float64
	for _, pt := range curve {
		if pt.Value > peak {
			peak = pt.Value
			continue
		}
		if peak > 0 {
			if d := (peak - pt.Value) / peak; d > dd {
				dd = d
			}
		}
	}
	return 100 * dd
}

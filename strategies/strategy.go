package strategies

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// Holdings is the read-only view of the portfolio a strategy may consult.
type Holdings interface {
	Cash() float64
	Quantity(symbol string) float64
}

// Strategy turns bar history into a trading signal.
//
// Indicator caches are computed once from the series handed to the
// constructor. Signal only consults cached values at positions <= index and
// returns market.Hold for every index below Warmup().
type Strategy interface {
	Name() string
	Warmup() int
	Signal(index int, series *market.BarSeries, h Holdings) market.Signal
}

// Charted is implemented by strategies that can expose their indicator
// caches for charting.
type Charted interface {
	Overlays() []indicators.Series
}

// Config selects a strategy by name and carries the parameters of every
// variant. Fields that do not apply to the named strategy are ignored; zero
// values take the variant's defaults.
type Config struct {
	Name string `json:"name" yaml:"name"`

	// sma-cross / ema-cross
	Short int `json:"short,omitempty" yaml:"short,omitempty"` // 10
	Long  int `json:"long,omitempty" yaml:"long,omitempty"`   // 30

	// rsi / bollinger
	Period int     `json:"period,omitempty" yaml:"period,omitempty"` // 14 (rsi), 20 (bollinger)
	Lower  float64 `json:"lower,omitempty" yaml:"lower,omitempty"`   // 30
	Upper  float64 `json:"upper,omitempty" yaml:"upper,omitempty"`   // 70
	K      float64 `json:"k,omitempty" yaml:"k,omitempty"`           // 2.0

	// macd
	Fast   int `json:"fast,omitempty" yaml:"fast,omitempty"`     // 12
	Slow   int `json:"slow,omitempty" yaml:"slow,omitempty"`     // 26
	Signal int `json:"signal,omitempty" yaml:"signal,omitempty"` // 9
}

func (c Config) JSON() ([]byte, error) {
	return json.Marshal(c)
}

// Factory builds a strategy over series.
type Factory func(cfg Config, series *market.BarSeries) (Strategy, error)

var registry = map[string]Factory{}

// Register makes a strategy constructor available to New under name and its
// aliases.
func Register(f Factory, names ...string) {
	for _, n := range names {
		registry[normalize(n)] = f
	}
}

func init() {
	Register(func(c Config, s *market.BarSeries) (Strategy, error) {
		return NewMACross(SMA, withDefault(c.Short, 10), withDefault(c.Long, 30), s)
	}, "sma-cross", "smacross", "sma", "ma-cross")

	Register(func(c Config, s *market.BarSeries) (Strategy, error) {
		return NewMACross(EMA, withDefault(c.Short, 10), withDefault(c.Long, 30), s)
	}, "ema-cross", "emacross", "ema")

	Register(func(c Config, s *market.BarSeries) (Strategy, error) {
		return NewRSIThreshold(withDefault(c.Period, 14), withDefaultF(c.Lower, 30), withDefaultF(c.Upper, 70), s)
	}, "rsi")

	Register(func(c Config, s *market.BarSeries) (Strategy, error) {
		return NewBollingerReversion(withDefault(c.Period, 20), withDefaultF(c.K, 2.0), s)
	}, "bollinger", "bbands", "bb")

	Register(func(c Config, s *market.BarSeries) (Strategy, error) {
		return NewMACDCross(withDefault(c.Fast, 12), withDefault(c.Slow, 26), withDefault(c.Signal, 9), s)
	}, "macd")
}

// New builds the strategy named by cfg.Name over series.
func New(cfg Config, series *market.BarSeries) (Strategy, error) {
	f, ok := registry[normalize(cfg.Name)]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", cfg.Name, strings.Join(Names(), ", "))
	}
	return f(cfg, series)
}

// Names returns every registered strategy name and alias, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func withDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func withDefaultF(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

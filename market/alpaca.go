package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// barsClient is the part of the Alpaca market-data client used here.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaSource fetches US equity bars from the Alpaca market-data API.
type AlpacaSource struct {
	Feed   marketdata.Feed
	client barsClient
}

// NewAlpacaSource creates a source authenticated with the given key pair.
// dataURL may be empty to use the default endpoint.
func NewAlpacaSource(apiKey, apiSecret, dataURL string) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaSource{
		Feed:   marketdata.IEX,
		client: marketdata.NewClient(opts),
	}
}

func alpacaTimeFrame(tf Timeframe) marketdata.TimeFrame {
	switch tf {
	case Minute:
		return marketdata.OneMin
	case Hour:
		return marketdata.OneHour
	case Weekly:
		return marketdata.NewTimeFrame(1, marketdata.Week)
	case Monthly:
		return marketdata.NewTimeFrame(1, marketdata.Month)
	default:
		return marketdata.OneDay
	}
}

// Fetch requests bars for [start, end). Alpaca stamps bars with their start
// time; the returned bars are stamped with the end of the interval.
func (s *AlpacaSource) Fetch(ctx context.Context, symbol string, start, end time.Time, tf Timeframe) (*BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sym := strings.ToUpper(strings.TrimSpace(symbol))
	raw, err := s.client.GetBars(sym, marketdata.GetBarsRequest{
		TimeFrame: alpacaTimeFrame(tf),
		Start:     start,
		End:       end,
		Feed:      s.Feed,
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", sym, err)
	}

	bars := make([]Bar, 0, len(raw))
	for _, ab := range raw {
		bars = append(bars, Bar{
			Time:   ab.Timestamp.Add(tf.Duration()).UTC(),
			Open:   ab.Open,
			High:   ab.High,
			Low:    ab.Low,
			Close:  ab.Close,
			Volume: float64(ab.Volume),
		})
	}

	return NewBarSeries(sym, tf, sortBars(bars))
}

package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrUnavailable marks a fetch that produced no usable data. Callers treat it
// as "nothing to backtest" rather than a fault.
var ErrUnavailable = errors.New("bars unavailable")

// BarSource returns the bars for symbol in [start, end), oldest first.
// An empty series with a nil error is a valid response.
type BarSource interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time, tf Timeframe) (*BarSeries, error)
}

// RetrySource retries a flaky source with an exponentially growing delay.
// After the last failed attempt it returns an empty series and an error
// wrapping ErrUnavailable.
type RetrySource struct {
	Source   BarSource
	Attempts int           // default 3
	Delay    time.Duration // initial delay, doubled after each failure; default 1s
	Logger   *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetrySource(src BarSource, attempts int, delay time.Duration, log *slog.Logger) *RetrySource {
	return &RetrySource{Source: src, Attempts: attempts, Delay: delay, Logger: log}
}

func (r *RetrySource) Fetch(ctx context.Context, symbol string, start, end time.Time, tf Timeframe) (*BarSeries, error) {
	if r.Source == nil {
		return nil, fmt.Errorf("market: retry source has no underlying source")
	}
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := r.Delay
	if delay <= 0 {
		delay = time.Second
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		series, err := r.Source.Fetch(ctx, symbol, start, end, tf)
		if err == nil {
			return series, nil
		}
		lastErr = err
		log.Warn("fetch bars failed",
			"symbol", symbol, "attempt", attempt, "max_attempts", attempts, "err", err)

		if attempt == attempts {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			return EmptySeries(symbol, tf), fmt.Errorf("%w: %s: %w", ErrUnavailable, symbol, err)
		}
		delay *= 2
	}

	log.Error("giving up fetching bars", "symbol", symbol, "attempts", attempts)
	return EmptySeries(symbol, tf), fmt.Errorf("%w: %s after %d attempts: %w", ErrUnavailable, symbol, attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

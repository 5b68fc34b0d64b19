package market

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is the interval covered by each bar of a series.
type Timeframe int

const (
	Daily Timeframe = iota
	Minute
	Hour
	Weekly
	Monthly
)

func (tf Timeframe) String() string {
	switch tf {
	case Minute:
		return "1m"
	case Hour:
		return "1h"
	case Weekly:
		return "1w"
	case Monthly:
		return "1mo"
	default:
		return "1d"
	}
}

// Duration is the nominal length of one bar. Monthly bars use 30 days.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	case Weekly:
		return 7 * 24 * time.Hour
	case Monthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func ParseTimeframe(s string) (Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1d", "d", "day", "daily", "":
		return Daily, nil
	case "1m", "m1", "min", "minute":
		return Minute, nil
	case "1h", "h1", "hour", "hourly":
		return Hour, nil
	case "1w", "w", "week", "weekly":
		return Weekly, nil
	case "1mo", "mo", "month", "monthly":
		return Monthly, nil
	default:
		return Daily, fmt.Errorf("unknown timeframe %q (supported: 1m, 1h, 1d, 1w, 1mo)", s)
	}
}

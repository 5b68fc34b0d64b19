package portfolio

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/market"
)

// Order is a filled trade instruction. Orders are immutable once created.
type Order struct {
	ID       string
	Symbol   string
	Signal   market.Signal
	Quantity float64
	Price    float64
	Time     time.Time

	// Index is the bar index the order was filled on.
	Index int
}

// Gross is the traded value before commission.
func (o Order) Gross() float64 {
	return o.Quantity * o.Price
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s %g @ %.4f (%s)", o.Signal, o.Symbol, o.Quantity, o.Price, o.Time.Format(time.RFC3339))
}

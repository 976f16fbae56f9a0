package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChartPoint daily close.
type ChartPoint struct {
	Time  time.Time
	Close decimal.Decimal
}

// Chart recent daily closes of a coin with simple and exponential moving averages aligned to the tail.
type Chart struct {
	Symbol CoinSymbol
	Points []ChartPoint
	// SMA has len(Points)-period+1 values, the last one matches the last point.
	SMA []decimal.Decimal
	// EMA is aligned the same way and may be shorter.
	EMA    []decimal.Decimal
	Period int
}

// Closes returns close prices in chronological order.
func (c Chart) Closes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Close
	}
	return out
}

// Sparkline draws closes with block characters scaled between min and max.
func (c Chart) Sparkline() string {
	if len(c.Points) == 0 {
		return ""
	}
	levels := []rune("▁▂▃▄▅▆▇█")

	lo, hi := c.Points[0].Close, c.Points[0].Close
	for _, p := range c.Points[1:] {
		lo = decimal.Min(lo, p.Close)
		hi = decimal.Max(hi, p.Close)
	}
	span := hi.Sub(lo)

	out := make([]rune, len(c.Points))
	for i, p := range c.Points {
		if span.IsZero() {
			out[i] = levels[len(levels)/2]
			continue
		}
		idx := p.Close.Sub(lo).Div(span).Mul(decimal.NewFromInt(int64(len(levels) - 1))).Round(0).IntPart()
		out[i] = levels[idx]
	}
	return string(out)
}

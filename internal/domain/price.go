package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord latest quote for one coin. Each refresh replaces the previous record.
type PriceRecord struct {
	Symbol           CoinSymbol
	Price            decimal.Decimal
	PercentChange24h decimal.Decimal
	PercentChange7d  decimal.Decimal
	// Identifier provider slug or exchange symbol.
	Identifier string
}

// PercentChange returns the change for the selected interval.
func (r PriceRecord) PercentChange(interval ChangeInterval) decimal.Decimal {
	if interval == ChangeInterval7d {
		return r.PercentChange7d
	}
	return r.PercentChange24h
}

// ChangeInterval window used for the change indicator.
type ChangeInterval string

const (
	ChangeInterval24h ChangeInterval = "24h"
	ChangeInterval7d  ChangeInterval = "7d"
)

// String returns the string representation.
func (c ChangeInterval) String() string {
	return string(c)
}

// IsValid checks if the ChangeInterval value is valid.
func (c ChangeInterval) IsValid() bool {
	return c == ChangeInterval24h || c == ChangeInterval7d
}

// Toggle switches between 24h and 7d.
func (c ChangeInterval) Toggle() ChangeInterval {
	if c == ChangeInterval7d {
		return ChangeInterval24h
	}
	return ChangeInterval7d
}

// RefreshIntervals refresh periods offered in the widget.
var RefreshIntervals = []time.Duration{5 * time.Minute, 15 * time.Minute, time.Hour}

// NextRefreshInterval cycles through RefreshIntervals. Unknown values restart the cycle.
func NextRefreshInterval(current time.Duration) time.Duration {
	for i, d := range RefreshIntervals {
		if d == current {
			return RefreshIntervals[(i+1)%len(RefreshIntervals)]
		}
	}
	return RefreshIntervals[0]
}

// RefreshLabel renders an interval the way the selector shows it: "5 min", "1 hour".
func RefreshLabel(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return d.String()
}

// Package pricer fetches watch-list quotes from price providers.
package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

// quoteAsset every provider quotes in USD or a USD stablecoin.
const quoteAsset = "USDT"

var (
	// ErrAPIStatus provider answered with an explicit error status.
	ErrAPIStatus = errors.New("price API returned an error status")
	// ErrMalformedResponse provider payload could not be decoded.
	ErrMalformedResponse = errors.New("malformed price API response")
)

// Pricer returns the latest quotes for symbols. Symbols unknown to the provider are absent
// from the result; any other failure is returned as an error and no partial data is used.
type Pricer interface {
	GetQuotes(ctx context.Context, symbols []domain.CoinSymbol) (map[domain.CoinSymbol]domain.PriceRecord, error)
}

// InfoLinker builds a web page link from a record identifier.
type InfoLinker interface {
	InfoURL(identifier string) (string, error)
}

// IsRetryable reports whether a failed fetch is worth another attempt.
func IsRetryable(err error) bool {
	return !errors.Is(err, ErrAPIStatus) && !errors.Is(err, ErrMalformedResponse) &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// percentChange returns (to-from)/from*100, zero when from is zero.
func percentChange(from, to decimal.Decimal) decimal.Decimal {
	if from.IsZero() {
		return decimal.Zero
	}
	return to.Sub(from).Div(from).Mul(decimal.NewFromInt(100))
}

// weeklyChange derives the 7d change from chronological daily closes,
// comparing the last close with the one seven days earlier.
func weeklyChange(closes []decimal.Decimal) decimal.Decimal {
	if len(closes) < 2 {
		return decimal.Zero
	}
	ref := 0
	if len(closes) > 8 {
		ref = len(closes) - 8
	}
	return percentChange(closes[ref], closes[len(closes)-1])
}

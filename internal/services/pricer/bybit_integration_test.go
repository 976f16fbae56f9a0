//go:build integration

package pricer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/coinwatch/internal/clients"
	"github.com/vadiminshakov/coinwatch/internal/domain"
)

// TestBybitPricer_GetQuotes_Integration calls the real Bybit API.
// To run this test, use: go test -tags=integration -v ./...
func TestBybitPricer_GetQuotes_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	pricer := NewBybitPricer(clients.NewBybitClient())

	t.Run("returns quotes for BTC and ETH", func(t *testing.T) {
		quotes, err := pricer.GetQuotes(context.Background(), []domain.CoinSymbol{"BTC", "ETH"})
		require.NoError(t, err)
		for _, sym := range []domain.CoinSymbol{"BTC", "ETH"} {
			rec, ok := quotes[sym]
			require.True(t, ok, "missing %s", sym)
			assert.True(t, rec.Price.GreaterThan(decimal.Zero))
			t.Logf("%s: %s (24h %s%%, 7d %s%%)", sym, rec.Price, rec.PercentChange24h, rec.PercentChange7d)
		}
	})

	t.Run("unknown symbol is absent", func(t *testing.T) {
		quotes, err := pricer.GetQuotes(context.Background(), []domain.CoinSymbol{"QQQQQ"})
		require.NoError(t, err)
		assert.Empty(t, quotes)
	})

	t.Run("daily closes are chronological", func(t *testing.T) {
		points, err := pricer.DailyCloses(context.Background(), "BTC", 7)
		require.NoError(t, err)
		require.Len(t, points, 7)
		for i := 1; i < len(points); i++ {
			assert.True(t, points[i-1].Time.Before(points[i].Time))
		}
	})
}

package widget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

func TestAddCoin(t *testing.T) {
	f := newFixture(t, []domain.CoinSymbol{"BTC"}, nil)

	sym, err := f.w.AddCoin(context.Background(), " eth ")
	require.NoError(t, err)
	assert.Equal(t, domain.CoinSymbol("ETH"), sym)

	assert.Equal(t, []domain.CoinSymbol{"BTC", "ETH"}, f.w.Coins())
	assert.Equal(t, []domain.CoinSymbol{"BTC", "ETH"}, f.coins.coins, "persisted")
	assert.Equal(t, 1, f.pricer.calls, "refreshed immediately")
	assert.Contains(t, f.w.Snapshot().Prices, domain.CoinSymbol("ETH"))
}

func TestAddCoin_Rejections(t *testing.T) {
	tests := []struct {
		name string
		code string
		err  error
	}{
		{name: "too short", code: "BT", err: domain.ErrInvalidCode},
		{name: "too long", code: "BITCOIN", err: domain.ErrInvalidCode},
		{name: "empty", code: "  ", err: domain.ErrInvalidCode},
		{name: "duplicate", code: "btc", err: domain.ErrDuplicateCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, []domain.CoinSymbol{"BTC"}, nil)

			_, err := f.w.AddCoin(context.Background(), tt.code)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, []domain.CoinSymbol{"BTC"}, f.w.Coins())
			assert.Empty(t, f.coins.saved)
			assert.Zero(t, f.pricer.calls)
		})
	}
}

func TestAddCoin_FetchFailureKeepsCoin(t *testing.T) {
	f := newFixture(t, []domain.CoinSymbol{"BTC"}, nil)
	f.pricer.set(nil, assert.AnError)

	_, err := f.w.AddCoin(context.Background(), "SOL")
	require.NoError(t, err)
	assert.Equal(t, []domain.CoinSymbol{"BTC", "SOL"}, f.w.Coins())
}

func TestRemoveCoin_PurgesPricesAndAlarms(t *testing.T) {
	f := newFixture(t, []domain.CoinSymbol{"BTC", "ETH"}, []domain.AlarmRule{
		rule("BTC", domain.AlarmPriceAbove, "1"),
		rule("ETH", domain.AlarmPriceAbove, "1"),
		rule("BTC", domain.AlarmPriceBelow, "100000"),
	})
	require.NoError(t, f.w.Refresh(context.Background()))

	sym, err := f.w.RemoveCoin("btc")
	require.NoError(t, err)
	assert.Equal(t, domain.CoinSymbol("BTC"), sym)

	s := f.w.Snapshot()
	assert.Equal(t, []domain.CoinSymbol{"ETH"}, s.Coins)
	assert.NotContains(t, s.Prices, domain.CoinSymbol("BTC"))
	require.Len(t, s.Alarms, 1)
	assert.Equal(t, domain.CoinSymbol("ETH"), s.Alarms[0].Coin)

	assert.Equal(t, []domain.CoinSymbol{"ETH"}, f.coins.coins)
	assert.Len(t, f.alarms.rules, 1)

	for _, d := range f.w.Descriptors() {
		assert.NotEqual(t, domain.CoinSymbol("BTC"), d.Symbol)
	}
}

func TestRemoveCoin_NotFound(t *testing.T) {
	f := newFixture(t, []domain.CoinSymbol{"BTC"}, []domain.AlarmRule{rule("BTC", domain.AlarmPriceAbove, "1")})

	_, err := f.w.RemoveCoin("DOGE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []domain.CoinSymbol{"BTC"}, f.w.Coins())
	assert.Len(t, f.w.Alarms(), 1)
	assert.Empty(t, f.coins.saved)
}

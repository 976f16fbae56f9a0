package watchlist

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

func TestStore_LoadDefaults(t *testing.T) {
	store := NewStore(t.TempDir())

	coins, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.CoinSymbol{"BTC", "ETH", "ADA", "BNB"}, coins)

	coins[0] = "XXX"
	again, _ := store.Load()
	assert.Equal(t, domain.CoinSymbol("BTC"), again[0], "defaults must not be shared")
}

func TestStore_CorruptFileFallsBack(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"coins":`), 0o644))

	coins, err := store.Load()
	assert.Error(t, err)
	assert.Equal(t, domain.DefaultWatchList, coins)
}

func TestStore_SaveLoad(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save([]domain.CoinSymbol{"SOL", "BTC"}))

	payload, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `["SOL","BTC"]`, string(payload))

	coins, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.CoinSymbol{"SOL", "BTC"}, coins)
}

func TestStore_LoadNormalizesHandEditedFile(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path(), []byte(`["btc","BTC"," eth",""]`), 0o644))

	coins, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.CoinSymbol{"BTC", "ETH"}, coins)
}

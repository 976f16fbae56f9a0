package pricer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decs(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestPercentChange(t *testing.T) {
	assert.True(t, percentChange(decimal.NewFromInt(100), decimal.NewFromInt(110)).Equal(decimal.NewFromInt(10)))
	assert.True(t, percentChange(decimal.NewFromInt(200), decimal.NewFromInt(150)).Equal(decimal.NewFromInt(-25)))
	assert.True(t, percentChange(decimal.Zero, decimal.NewFromInt(5)).IsZero())
}

func TestWeeklyChange(t *testing.T) {
	t.Run("eight closes compares first and last", func(t *testing.T) {
		got := weeklyChange(decs("100", "1", "1", "1", "1", "1", "1", "120"))
		assert.True(t, got.Equal(decimal.NewFromInt(20)), got.String())
	})

	t.Run("longer series uses the close seven days back", func(t *testing.T) {
		got := weeklyChange(decs("999", "50", "1", "1", "1", "1", "1", "1", "25"))
		assert.True(t, got.Equal(decimal.NewFromInt(-50)), got.String())
	})

	t.Run("too short", func(t *testing.T) {
		assert.True(t, weeklyChange(decs("100")).IsZero())
		assert.True(t, weeklyChange(nil).IsZero())
	})
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(ErrAPIStatus))
	assert.False(t, IsRetryable(ErrMalformedResponse))
	assert.True(t, IsRetryable(assert.AnError))
}

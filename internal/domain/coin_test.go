package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoinSymbol_Validate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "sol", wantErr: false},
		{input: " doge ", wantErr: false},
		{input: "1INCH", wantErr: false},
		{input: "xr", wantErr: true},
		{input: "toolong", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := NormalizeSymbol(tt.input).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, CoinSymbol("SOL"), NormalizeSymbol(" sol"))
}

func TestNextRefreshInterval(t *testing.T) {
	assert.Equal(t, 15*time.Minute, NextRefreshInterval(5*time.Minute))
	assert.Equal(t, time.Hour, NextRefreshInterval(15*time.Minute))
	assert.Equal(t, 5*time.Minute, NextRefreshInterval(time.Hour))
	assert.Equal(t, 5*time.Minute, NextRefreshInterval(42*time.Second))
}

func TestRefreshLabel(t *testing.T) {
	assert.Equal(t, "5 min", RefreshLabel(5*time.Minute))
	assert.Equal(t, "1 hour", RefreshLabel(time.Hour))
	assert.Equal(t, "2 hours", RefreshLabel(2*time.Hour))
	assert.Equal(t, "30s", RefreshLabel(30*time.Second))
}

func TestChangeInterval_Toggle(t *testing.T) {
	assert.Equal(t, ChangeInterval7d, ChangeInterval24h.Toggle())
	assert.Equal(t, ChangeInterval24h, ChangeInterval7d.Toggle())
}

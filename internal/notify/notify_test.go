package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

func firedAlarm(sound string) domain.FiredAlarm {
	return domain.FiredAlarm{
		Rule: domain.AlarmRule{
			Coin:      "BTC",
			Kind:      domain.AlarmPriceAbove,
			Threshold: decimal.NewFromInt(65000),
			Sound:     sound,
		},
		Record: domain.PriceRecord{
			Symbol:           "BTC",
			Price:            decimal.NewFromInt(65500),
			PercentChange24h: decimal.RequireFromString("1.5"),
		},
	}
}

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Notify(context.Context, domain.FiredAlarm) error {
	c.calls++
	return c.err
}

func TestMulti_ContinuesAfterFailure(t *testing.T) {
	failing := &countingNotifier{err: assert.AnError}
	ok := &countingNotifier{}
	m := NewMulti(zap.NewNop(), failing)
	m.Add(ok)

	require.NoError(t, m.Notify(context.Background(), firedAlarm("")))
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(zap.NewNop()).Notify(context.Background(), firedAlarm("")))
}

func TestSoundNotifier(t *testing.T) {
	type call struct {
		name string
		args []string
	}

	newNotifier := func(calls *[]call, goos string) *SoundNotifier {
		return NewSoundNotifier().WithRunner(func(_ context.Context, name string, args ...string) error {
			*calls = append(*calls, call{name: name, args: args})
			return nil
		}, goos)
	}

	soundFile := filepath.Join(t.TempDir(), "ding.wav")
	require.NoError(t, os.WriteFile(soundFile, []byte("RIFF"), 0o644))

	t.Run("plays existing file", func(t *testing.T) {
		var calls []call
		require.NoError(t, newNotifier(&calls, "linux").Notify(context.Background(), firedAlarm(soundFile)))
		require.Len(t, calls, 1)
		assert.Equal(t, "aplay", calls[0].name)
		assert.Equal(t, []string{"-q", soundFile}, calls[0].args)
	})

	t.Run("uses afplay on darwin", func(t *testing.T) {
		var calls []call
		require.NoError(t, newNotifier(&calls, "darwin").Notify(context.Background(), firedAlarm(soundFile)))
		require.Len(t, calls, 1)
		assert.Equal(t, "afplay", calls[0].name)
	})

	t.Run("missing file is skipped", func(t *testing.T) {
		var calls []call
		missing := filepath.Join(t.TempDir(), "gone.wav")
		require.NoError(t, newNotifier(&calls, "linux").Notify(context.Background(), firedAlarm(missing)))
		assert.Empty(t, calls)
	})

	t.Run("no sound configured", func(t *testing.T) {
		var calls []call
		require.NoError(t, newNotifier(&calls, "linux").Notify(context.Background(), firedAlarm("")))
		assert.Empty(t, calls)
	})

	t.Run("player failure is returned", func(t *testing.T) {
		n := NewSoundNotifier().WithRunner(func(context.Context, string, ...string) error {
			return assert.AnError
		}, "linux")
		assert.ErrorIs(t, n.Notify(context.Background(), firedAlarm(soundFile)), assert.AnError)
	})
}

func TestTelegramNotifier(t *testing.T) {
	var gotPath string
	var got telegramMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("123:abc", "42").WithBaseURL(srv.URL)
	require.NoError(t, n.Notify(context.Background(), firedAlarm("")))

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "42", got.ChatID)
	assert.Contains(t, got.Text, "Alarm for BTC: Price above 65000")
	assert.Contains(t, got.Text, "24h: 1.50%")
}

func TestTelegramNotifier_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewTelegramNotifier("t", "c").WithBaseURL(srv.URL).Notify(context.Background(), firedAlarm(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

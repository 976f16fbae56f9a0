package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

func TestQuoteBroadcaster_FanOut(t *testing.T) {
	b := NewQuoteBroadcaster(1)
	first := b.Subscribe()
	second := b.Subscribe()

	b.Publish(QuoteSnapshot{Interval: domain.ChangeInterval24h})

	got := <-first
	assert.Equal(t, domain.ChangeInterval24h, got.Interval)
	got = <-second
	assert.Equal(t, domain.ChangeInterval24h, got.Interval)
}

func TestQuoteBroadcaster_DropsForSlowReader(t *testing.T) {
	b := NewQuoteBroadcaster(1)
	ch := b.Subscribe()

	b.Publish(QuoteSnapshot{Status: "one"})
	b.Publish(QuoteSnapshot{Status: "two"})

	got := <-ch
	assert.Equal(t, "one", got.Status)
	select {
	case <-ch:
		t.Fatal("second snapshot should have been dropped")
	default:
	}

	last, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, "two", last.Status)
}

func TestQuoteBroadcaster_Unsubscribe(t *testing.T) {
	b := NewQuoteBroadcaster(1)
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	b.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	_, ok := b.Last()
	assert.False(t, ok)
}

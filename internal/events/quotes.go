package events

import (
	"sync"
	"time"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

// QuoteSnapshot is what renderers receive after every refresh or interval change.
// Status carries a transient notice such as a failed fetch.
type QuoteSnapshot struct {
	Timestamp time.Time                  `json:"ts"`
	Interval  domain.ChangeInterval      `json:"interval"`
	Coins     []domain.DisplayDescriptor `json:"coins"`
	Status    string                     `json:"status,omitempty"`
	Fired     []domain.AlarmEvent        `json:"fired,omitempty"`
}

// QuoteBroadcaster fans out snapshots to all subscribers via buffered channels.
type QuoteBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan QuoteSnapshot]struct{}
	buffer int
	last   *QuoteSnapshot
}

// NewQuoteBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewQuoteBroadcaster(buffer int) *QuoteBroadcaster {
	if buffer < 1 {
		buffer = 16
	}
	return &QuoteBroadcaster{
		subs:   make(map[chan QuoteSnapshot]struct{}),
		buffer: buffer,
	}
}

// Publish sends the snapshot to all subscribers, dropping if a reader is slow.
func (b *QuoteBroadcaster) Publish(s QuoteSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = &s
	for ch := range b.subs {
		select {
		case ch <- s:
		default:
			// drop slow consumer
		}
	}
}

// Last returns the most recent snapshot, if any.
func (b *QuoteBroadcaster) Last() (QuoteSnapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil {
		return QuoteSnapshot{}, false
	}
	return *b.last, true
}

// Subscribe returns a channel that receives snapshots until Unsubscribe is called.
func (b *QuoteBroadcaster) Subscribe() chan QuoteSnapshot {
	ch := make(chan QuoteSnapshot, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *QuoteBroadcaster) Unsubscribe(ch chan QuoteSnapshot) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

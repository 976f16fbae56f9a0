package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/internal/events"
)

type fakeAlarms struct {
	mu      sync.Mutex
	records []domain.AlarmEventRecord
	after   []uint64
	limits  []int
	err     error
}

func (f *fakeAlarms) firstAfter() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.after[0]
}

func (f *fakeAlarms) EventsAfter(index uint64) ([]domain.AlarmEventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.after = append(f.after, index)
	var out []domain.AlarmEventRecord
	for _, r := range f.records {
		if r.Index > index {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAlarms) Recent(limit int) ([]domain.AlarmEventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	from := max(len(f.records)-limit, 0)
	return f.records[from:], nil
}

func sampleSnapshot() events.QuoteSnapshot {
	return events.QuoteSnapshot{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Interval:  domain.ChangeInterval24h,
		Coins: []domain.DisplayDescriptor{
			{Symbol: "BTC", Arrow: domain.ArrowUp, Color: domain.ColorGreen, IntegerPart: "65,000", FractionalPart: ".12", Interval: domain.ChangeInterval24h},
		},
	}
}

// readEvent returns the event name and data of the first SSE event in the stream.
func readEvent(t *testing.T, url string, header http.Header) (string, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var event string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			return event, strings.TrimPrefix(line, "data: ")
		}
	}
	t.Fatal("stream ended without an event")
	return "", ""
}

func TestHandleIndex(t *testing.T) {
	s := NewServer(zap.NewNop(), "", events.NewQuoteBroadcaster(1), nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/quotes/stream")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCoins(t *testing.T) {
	quotes := events.NewQuoteBroadcaster(1)
	s := NewServer(zap.NewNop(), "", quotes, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/coins", nil))
	assert.JSONEq(t, `{"ts":"0001-01-01T00:00:00Z","interval":"","coins":[]}`, rec.Body.String())

	quotes.Publish(sampleSnapshot())
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/coins", nil))

	var got events.QuoteSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Coins, 1)
	assert.Equal(t, domain.CoinSymbol("BTC"), got.Coins[0].Symbol)
	assert.Equal(t, "65,000", got.Coins[0].IntegerPart)
}

func TestQuoteStream_SendsLastSnapshot(t *testing.T) {
	quotes := events.NewQuoteBroadcaster(1)
	quotes.Publish(sampleSnapshot())

	srv := httptest.NewServer(NewServer(zap.NewNop(), "", quotes, nil).Handler())
	defer srv.Close()

	event, data := readEvent(t, srv.URL+"/quotes/stream", nil)
	assert.Equal(t, "quotes", event)
	assert.Contains(t, data, `"symbol":"BTC"`)
	assert.Contains(t, data, `"arrow":"up"`)
}

func TestQuoteStream_NoData(t *testing.T) {
	srv := httptest.NewServer(NewServer(zap.NewNop(), "", events.NewQuoteBroadcaster(1), nil).Handler())
	defer srv.Close()

	event, _ := readEvent(t, srv.URL+"/quotes/stream", nil)
	assert.Equal(t, "no_data", event)
}

func TestAlarmStream_ResumesAfterLastEventID(t *testing.T) {
	alarms := &fakeAlarms{records: []domain.AlarmEventRecord{
		{Index: 1, Event: domain.AlarmEvent{Coin: "BTC", Message: "Alarm for BTC: Price above 1"}},
		{Index: 2, Event: domain.AlarmEvent{Coin: "ETH", Message: "Alarm for ETH: Price below 5"}},
	}}
	srv := httptest.NewServer(NewServer(zap.NewNop(), "", events.NewQuoteBroadcaster(1), alarms).Handler())
	defer srv.Close()

	event, data := readEvent(t, srv.URL+"/alarms/stream", http.Header{"Last-Event-Id": []string{"1"}})
	assert.Equal(t, "alarm", event)
	assert.Contains(t, data, `"coin":"ETH"`)
	assert.Equal(t, uint64(1), alarms.firstAfter())
}

func TestAlarmStream_Unavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(zap.NewNop(), "", events.NewQuoteBroadcaster(1), nil).Handler().
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alarms/stream", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAlarmHistory(t *testing.T) {
	alarms := &fakeAlarms{records: []domain.AlarmEventRecord{
		{Index: 1, Event: domain.AlarmEvent{Coin: "BTC", Message: "Alarm for BTC: Price above 1"}},
		{Index: 2, Event: domain.AlarmEvent{Coin: "ETH", Message: "Alarm for ETH: Price below 5"}},
		{Index: 3, Event: domain.AlarmEvent{Coin: "SOL", Message: "Alarm for SOL: Price above 9"}},
	}}
	handler := NewServer(zap.NewNop(), "", events.NewQuoteBroadcaster(1), alarms).Handler()

	tests := []struct {
		name      string
		query     string
		code      int
		wantLimit int
		wantIDs   []uint64
	}{
		{name: "default limit", query: "", code: http.StatusOK, wantLimit: defaultHistoryLimit, wantIDs: []uint64{1, 2, 3}},
		{name: "latest two", query: "?limit=2", code: http.StatusOK, wantLimit: 2, wantIDs: []uint64{2, 3}},
		{name: "capped", query: "?limit=100000", code: http.StatusOK, wantLimit: maxHistoryLimit, wantIDs: []uint64{1, 2, 3}},
		{name: "zero", query: "?limit=0", code: http.StatusBadRequest},
		{name: "not a number", query: "?limit=ten", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alarms.limits = nil

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alarms"+tt.query, nil))
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				assert.Empty(t, alarms.limits)
				return
			}
			assert.Equal(t, []int{tt.wantLimit}, alarms.limits)

			var got []alarmEntry
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			ids := make([]uint64, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, "SOL", got[len(got)-1].Event.Coin)
		})
	}
}

func TestAlarmHistory_Errors(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(zap.NewNop(), "", events.NewQuoteBroadcaster(1), nil).Handler().
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alarms", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	NewServer(zap.NewNop(), "", events.NewQuoteBroadcaster(1), &fakeAlarms{err: assert.AnError}).Handler().
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alarms", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestParseLastEventID(t *testing.T) {
	assert.Equal(t, uint64(7), parseLastEventID("7", ""))
	assert.Equal(t, uint64(9), parseLastEventID("", "9"))
	assert.Equal(t, uint64(0), parseLastEventID("x", ""))
	assert.Equal(t, uint64(0), parseLastEventID("", ""))
}

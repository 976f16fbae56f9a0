package pricer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

const bybitTickersBody = `{
  "retCode": 0,
  "retMsg": "OK",
  "result": {
    "category": "spot",
    "list": [
      {"symbol": "BTCUSDT", "lastPrice": "65000", "price24hPcnt": "0.0123"},
      {"symbol": "ETHUSDT", "lastPrice": "3200.5", "price24hPcnt": "-0.05"}
    ]
  },
  "retExtInfo": {},
  "time": 1709251200000
}`

// bybitKlines renders daily klines newest first, the order Bybit uses. closes are chronological.
func bybitKlines(symbol string, closes ...string) string {
	rows := make([]string, len(closes))
	for i, c := range closes {
		start := klineStart.AddDate(0, 0, i).UnixMilli()
		rows[len(closes)-1-i] = fmt.Sprintf(`["%d","1","1","1",%q,"10","100"]`, start, c)
	}
	return fmt.Sprintf(`{"retCode":0,"retMsg":"OK","result":{"symbol":%q,"category":"spot","list":[%s]},"retExtInfo":{},"time":1709251200000}`,
		symbol, strings.Join(rows, ","))
}

type bybitServer struct {
	mu        sync.Mutex
	klines    map[string]string
	intervals []string
	retCode   int
}

func (s *bybitServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retCode != 0 {
		_, _ = fmt.Fprintf(w, `{"retCode":%d,"retMsg":"rate limited","result":{},"retExtInfo":{},"time":0}`, s.retCode)
		return
	}

	switch r.URL.Path {
	case "/v5/market/tickers":
		_, _ = w.Write([]byte(bybitTickersBody))
	case "/v5/market/kline":
		s.intervals = append(s.intervals, r.URL.Query().Get("interval"))
		body, ok := s.klines[r.URL.Query().Get("symbol")]
		if !ok {
			_, _ = w.Write([]byte(`{"retCode":10001,"retMsg":"Not supported symbols","result":{},"retExtInfo":{},"time":0}`))
			return
		}
		_, _ = w.Write([]byte(body))
	default:
		http.NotFound(w, r)
	}
}

func (s *bybitServer) gotIntervals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervals
}

func newBybitTestPricer(t *testing.T, s *bybitServer) *BybitPricer {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	return NewBybitPricer(bybit.NewClient().WithBaseURL(srv.URL))
}

func TestBybitPricer_GetQuotes(t *testing.T) {
	s := &bybitServer{klines: map[string]string{
		"BTCUSDT": bybitKlines("BTCUSDT", "50000", "51000", "52000", "53000", "54000", "55000", "56000", "60000"),
	}}
	p := newBybitTestPricer(t, s)

	quotes, err := p.GetQuotes(context.Background(), []domain.CoinSymbol{"BTC", "ETH", "ZZZZ"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	btc := quotes["BTC"]
	assert.True(t, btc.Price.Equal(decimal.NewFromInt(65000)))
	assert.True(t, btc.PercentChange24h.Equal(decimal.RequireFromString("1.23")), "fraction is scaled to percent, got %s", btc.PercentChange24h)
	assert.True(t, btc.PercentChange7d.Equal(decimal.NewFromInt(20)), "got %s", btc.PercentChange7d)
	assert.Equal(t, "BTC/USDT", btc.Identifier)

	eth := quotes["ETH"]
	assert.True(t, eth.PercentChange24h.Equal(decimal.NewFromInt(-5)), "got %s", eth.PercentChange24h)
	assert.True(t, eth.PercentChange7d.IsZero(), "failed kline request leaves 7d at zero")

	assert.Equal(t, []string{"D", "D"}, s.gotIntervals())
}

func TestBybitPricer_GetQuotes_APIError(t *testing.T) {
	p := newBybitTestPricer(t, &bybitServer{retCode: 10006})

	_, err := p.GetQuotes(context.Background(), []domain.CoinSymbol{"BTC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tickers")
}

func TestBybitPricer_GetQuotes_CancelledContext(t *testing.T) {
	p := newBybitTestPricer(t, &bybitServer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetQuotes(ctx, []domain.CoinSymbol{"BTC"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBybitPricer_DailyCloses_Chronological(t *testing.T) {
	s := &bybitServer{klines: map[string]string{"SOLUSDT": bybitKlines("SOLUSDT", "100", "110.5", "99")}}
	p := newBybitTestPricer(t, s)

	points, err := p.DailyCloses(context.Background(), "SOL", 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, klineStart, points[0].Time)
	assert.True(t, points[0].Close.Equal(decimal.NewFromInt(100)))
	assert.True(t, points[1].Close.Equal(decimal.RequireFromString("110.5")))
	assert.True(t, points[2].Close.Equal(decimal.NewFromInt(99)))
}

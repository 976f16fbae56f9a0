package pricer

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

const (
	binanceDailyInterval = "1d"
	binanceTradeURL      = "https://www.binance.com/en/trade/%s"
	weekKlines           = 8
)

// BinancePricer quotes coins against USDT on Binance spot using public market data.
type BinancePricer struct {
	client *binance.Client
}

func NewBinancePricer(client *binance.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

// GetQuotes reads 24h ticker statistics for all symbols in one call and derives
// the 7d change from daily klines. A failed kline request leaves the 7d change at zero.
func (p *BinancePricer) GetQuotes(ctx context.Context, symbols []domain.CoinSymbol) (map[domain.CoinSymbol]domain.PriceRecord, error) {
	results := make(map[domain.CoinSymbol]domain.PriceRecord, len(symbols))
	if len(symbols) == 0 {
		return results, nil
	}

	stats, err := p.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch ticker statistics from Binance")
	}

	bySymbol := make(map[string]*binance.PriceChangeStats, len(stats))
	for _, s := range stats {
		bySymbol[s.Symbol] = s
	}

	for _, sym := range symbols {
		s, ok := bySymbol[pairSymbol(sym)]
		if !ok {
			continue
		}

		price, err := decimal.NewFromString(s.LastPrice)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedResponse, fmt.Sprintf("last price %q for %s", s.LastPrice, sym))
		}
		change24h, err := decimal.NewFromString(s.PriceChangePercent)
		if err != nil {
			change24h = decimal.Zero
		}

		record := domain.PriceRecord{
			Symbol:           sym,
			Price:            price,
			PercentChange24h: change24h,
			Identifier:       string(sym) + "_" + quoteAsset,
		}

		if points, err := p.DailyCloses(ctx, sym, weekKlines); err == nil {
			record.PercentChange7d = weeklyChange(closesOf(points))
		}

		results[sym] = record
	}

	return results, nil
}

// DailyCloses returns up to days daily closes in chronological order.
func (p *BinancePricer) DailyCloses(ctx context.Context, symbol domain.CoinSymbol, days int) ([]domain.ChartPoint, error) {
	klines, err := p.client.NewKlinesService().
		Symbol(pairSymbol(symbol)).
		Interval(binanceDailyInterval).
		Limit(days).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Binance for %s", symbol)
	}

	points := make([]domain.ChartPoint, 0, len(klines))
	for i, k := range klines {
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
		points = append(points, domain.ChartPoint{
			Time:  time.Unix(0, k.OpenTime*int64(time.Millisecond)).UTC(),
			Close: closePrice,
		})
	}

	return points, nil
}

// InfoURL returns the Binance trade page for a BASE_QUOTE identifier.
func (p *BinancePricer) InfoURL(identifier string) (string, error) {
	if identifier == "" {
		return "", domain.ErrNoIdentifier
	}
	return fmt.Sprintf(binanceTradeURL, identifier), nil
}

func pairSymbol(sym domain.CoinSymbol) string {
	return string(sym) + quoteAsset
}

func closesOf(points []domain.ChartPoint) []decimal.Decimal {
	out := make([]decimal.Decimal, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

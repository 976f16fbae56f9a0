package pricer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

const (
	bybitCategory      = "spot"
	bybitDailyInterval = bybit.Interval("D")
	bybitTradeURL      = "https://www.bybit.com/en/trade/spot/%s"
)

// BybitPricer quotes coins against USDT on Bybit spot.
type BybitPricer struct {
	client *bybit.Client
}

func NewBybitPricer(client *bybit.Client) *BybitPricer {
	return &BybitPricer{client: client}
}

// GetQuotes reads all spot tickers at once; the 7d change comes from daily klines.
func (p *BybitPricer) GetQuotes(ctx context.Context, symbols []domain.CoinSymbol) (map[domain.CoinSymbol]domain.PriceRecord, error) {
	results := make(map[domain.CoinSymbol]domain.PriceRecord, len(symbols))
	if len(symbols) == 0 {
		return results, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tickers, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybitCategory,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tickers from Bybit")
	}
	bySymbol := make(map[string]int, len(tickers.Result.Spot.List))
	for i, t := range tickers.Result.Spot.List {
		bySymbol[string(t.Symbol)] = i
	}

	for _, sym := range symbols {
		i, ok := bySymbol[pairSymbol(sym)]
		if !ok {
			continue
		}
		t := tickers.Result.Spot.List[i]

		price, err := decimal.NewFromString(t.LastPrice)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedResponse, fmt.Sprintf("last price %q for %s", t.LastPrice, sym))
		}

		// bybit reports the 24h change as a fraction
		change24h, err := decimal.NewFromString(t.Price24HPcnt)
		if err != nil {
			change24h = decimal.Zero
		}

		record := domain.PriceRecord{
			Symbol:           sym,
			Price:            price,
			PercentChange24h: change24h.Mul(decimal.NewFromInt(100)),
			Identifier:       string(sym) + "/" + quoteAsset,
		}

		if points, err := p.DailyCloses(ctx, sym, weekKlines); err == nil {
			record.PercentChange7d = weeklyChange(closesOf(points))
		}

		results[sym] = record
	}

	return results, nil
}

// DailyCloses returns up to days daily closes in chronological order.
func (p *BybitPricer) DailyCloses(ctx context.Context, symbol domain.CoinSymbol, days int) ([]domain.ChartPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := days
	klines, err := p.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: bybitCategory,
		Symbol:   bybit.SymbolV5(pairSymbol(symbol)),
		Interval: bybitDailyInterval,
		Limit:    &limit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get klines from Bybit for %s", symbol)
	}

	points := make([]domain.ChartPoint, 0, len(klines.Result.List))
	for _, k := range klines.Result.List {
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price: %s", k.Close)
		}
		startMs, err := strconv.ParseInt(k.StartTime, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse start time: %s", k.StartTime)
		}
		points = append(points, domain.ChartPoint{
			Time:  time.UnixMilli(startMs).UTC(),
			Close: closePrice,
		})
	}

	// bybit lists newest first
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	return points, nil
}

// InfoURL returns the Bybit spot trade page for a BASE/QUOTE identifier.
func (p *BybitPricer) InfoURL(identifier string) (string, error) {
	if identifier == "" {
		return "", domain.ErrNoIdentifier
	}
	return fmt.Sprintf(bybitTradeURL, identifier), nil
}

// Package chart builds short daily price charts with moving average overlays.
package chart

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/pkg/indicators"
)

const (
	// DefaultDays matches one week of daily candles.
	DefaultDays   = 7
	DefaultPeriod = 3
)

// ErrNoData returned when the source has no candles for a coin.
var ErrNoData = errors.New("no chart data")

// ClosesSource fetches chronological daily closes.
type ClosesSource interface {
	DailyCloses(ctx context.Context, symbol domain.CoinSymbol, days int) ([]domain.ChartPoint, error)
}

type Provider struct {
	source ClosesSource
	period int
}

func NewProvider(source ClosesSource, period int) *Provider {
	if period < 1 {
		period = DefaultPeriod
	}
	return &Provider{source: source, period: period}
}

// Build fetches days of closes for symbol. Averages are left empty when the series is shorter than the period.
func (p *Provider) Build(ctx context.Context, symbol domain.CoinSymbol, days int) (domain.Chart, error) {
	if days < 1 {
		days = DefaultDays
	}

	points, err := p.source.DailyCloses(ctx, symbol, days)
	if err != nil {
		return domain.Chart{}, errors.Wrapf(err, "failed to fetch chart data for %s", symbol)
	}
	if len(points) == 0 {
		return domain.Chart{}, errors.Wrapf(ErrNoData, "%s", symbol)
	}

	c := domain.Chart{
		Symbol: symbol,
		Points: points,
		Period: p.period,
	}

	if len(points) >= p.period {
		sma, err := indicators.CalculateSMA(c.Closes(), p.period)
		if err != nil {
			return domain.Chart{}, errors.Wrap(err, "failed to calculate SMA")
		}
		c.SMA = sma

		ema, err := indicators.CalculateEMA(c.Closes(), p.period)
		if err != nil {
			return domain.Chart{}, errors.Wrap(err, "failed to calculate EMA")
		}
		c.EMA = ema
	}

	return c, nil
}

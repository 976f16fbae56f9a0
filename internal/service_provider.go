// Package internal wires the configured price provider to its services.
package internal

import (
	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinwatch/config"
	"github.com/vadiminshakov/coinwatch/internal/clients"
	"github.com/vadiminshakov/coinwatch/internal/services/chart"
	"github.com/vadiminshakov/coinwatch/internal/services/pricer"
)

// ServiceProvider defines a factory interface for creating provider-specific services.
type ServiceProvider interface {
	Pricer() pricer.Pricer
	// ChartSource supplies daily closes for the detail view.
	ChartSource() chart.ClosesSource
}

// NewServiceProvider creates a service provider for cfg.Provider.
// This is the single point of truth for dispatching to provider-specific implementations.
func NewServiceProvider(cfg config.Config) (ServiceProvider, error) {
	switch cfg.Provider {
	case config.ProviderCoinMarketCap:
		return &coinMarketCapProvider{
			pricer: pricer.NewCoinMarketCapPricer(cfg.APIKey),
			charts: pricer.NewBinancePricer(clients.NewBinanceClient()),
		}, nil
	case config.ProviderBinance:
		return &binanceProvider{pricer: pricer.NewBinancePricer(clients.NewBinanceClient())}, nil
	case config.ProviderBybit:
		return &bybitProvider{pricer: pricer.NewBybitPricer(clients.NewBybitClient())}, nil
	default:
		return nil, errors.Wrapf(config.ErrUnknownProvider, "%q", cfg.Provider)
	}
}

// coinMarketCapProvider has no candle endpoint on the free plan, charts come from Binance.
type coinMarketCapProvider struct {
	pricer *pricer.CoinMarketCapPricer
	charts *pricer.BinancePricer
}

func (p *coinMarketCapProvider) Pricer() pricer.Pricer           { return p.pricer }
func (p *coinMarketCapProvider) ChartSource() chart.ClosesSource { return p.charts }

type binanceProvider struct {
	pricer *pricer.BinancePricer
}

func (p *binanceProvider) Pricer() pricer.Pricer           { return p.pricer }
func (p *binanceProvider) ChartSource() chart.ClosesSource { return p.pricer }

type bybitProvider struct {
	pricer *pricer.BybitPricer
}

func (p *bybitProvider) Pricer() pricer.Pricer           { return p.pricer }
func (p *bybitProvider) ChartSource() chart.ClosesSource { return p.pricer }

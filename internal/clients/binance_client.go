package clients

import (
	"github.com/adshao/go-binance/v2"
)

// NewBinanceClient returns a client for public market data; no credentials are needed.
func NewBinanceClient() *binance.Client {
	client := binance.NewClient("", "")
	return client
}

package clients

import (
	"github.com/hirokisan/bybit/v2"
)

// NewBybitClient returns an unauthenticated client for public market endpoints.
func NewBybitClient() *bybit.Client {
	client := bybit.NewClient()

	return client
}

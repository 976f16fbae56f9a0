package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/coinwatch/internal/domain"
	"github.com/vadiminshakov/coinwatch/pkg/retrier"
)

const (
	// DefaultCoinMarketCapURL production API host.
	DefaultCoinMarketCapURL = "https://pro-api.coinmarketcap.com"

	quotesPath     = "/v1/cryptocurrency/quotes/latest"
	convertTo      = "USD"
	defaultTimeout = 10 * time.Second
	infoURLPattern = "https://coinmarketcap.com/currencies/%s/"
)

// CoinMarketCapPricer fetches quotes from the CoinMarketCap pro API.
type CoinMarketCapPricer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// CoinMarketCapOption configures the pricer.
type CoinMarketCapOption func(*CoinMarketCapPricer)

// WithBaseURL points the pricer at another host (sandbox or tests).
func WithBaseURL(u string) CoinMarketCapOption {
	return func(p *CoinMarketCapPricer) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the default client with a 10s timeout.
func WithHTTPClient(c *http.Client) CoinMarketCapOption {
	return func(p *CoinMarketCapPricer) {
		p.httpClient = c
	}
}

// WithRetrier replaces the default retry policy.
func WithRetrier(r *retrier.Retrier) CoinMarketCapOption {
	return func(p *CoinMarketCapPricer) {
		p.retrier = r
	}
}

// NewCoinMarketCapPricer creates a pricer authenticated with apiKey.
func NewCoinMarketCapPricer(apiKey string, opts ...CoinMarketCapOption) *CoinMarketCapPricer {
	p := &CoinMarketCapPricer{
		baseURL: DefaultCoinMarketCapURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retrier: retrier.New(
			retrier.WithMaxRetries(2),
			retrier.WithInitialInterval(500*time.Millisecond),
			retrier.WithRetryIf(IsRetryable),
		),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type cmcResponse struct {
	Status cmcStatus          `json:"status"`
	Data   map[string]cmcCoin `json:"data"`
}

type cmcStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type cmcCoin struct {
	Symbol string              `json:"symbol"`
	Slug   string              `json:"slug"`
	Quote  map[string]cmcQuote `json:"quote"`
}

type cmcQuote struct {
	Price            decimal.NullDecimal `json:"price"`
	PercentChange24h decimal.NullDecimal `json:"percent_change_24h"`
	PercentChange7d  decimal.NullDecimal `json:"percent_change_7d"`
}

// GetQuotes requests all symbols in one call.
func (p *CoinMarketCapPricer) GetQuotes(ctx context.Context, symbols []domain.CoinSymbol) (map[domain.CoinSymbol]domain.PriceRecord, error) {
	if len(symbols) == 0 {
		return map[domain.CoinSymbol]domain.PriceRecord{}, nil
	}

	resp, err := retrier.DoWithData(p.retrier, ctx, func(ctx context.Context) (*cmcResponse, error) {
		return p.fetch(ctx, symbols)
	})
	if err != nil {
		return nil, err
	}

	results := make(map[domain.CoinSymbol]domain.PriceRecord, len(symbols))
	for _, sym := range symbols {
		coin, ok := resp.Data[sym.String()]
		if !ok {
			continue
		}
		quote, ok := coin.Quote[convertTo]
		if !ok || !quote.Price.Valid {
			continue
		}

		results[sym] = domain.PriceRecord{
			Symbol:           sym,
			Price:            quote.Price.Decimal,
			PercentChange24h: nullToZero(quote.PercentChange24h),
			PercentChange7d:  nullToZero(quote.PercentChange7d),
			Identifier:       coin.Slug,
		}
	}

	return results, nil
}

// InfoURL returns the CoinMarketCap page for a slug.
func (p *CoinMarketCapPricer) InfoURL(slug string) (string, error) {
	if slug == "" {
		return "", domain.ErrNoIdentifier
	}
	return fmt.Sprintf(infoURLPattern, url.PathEscape(slug)), nil
}

func (p *CoinMarketCapPricer) fetch(ctx context.Context, symbols []domain.CoinSymbol) (*cmcResponse, error) {
	params := url.Values{}
	params.Set("symbol", strings.Join(domain.SymbolsToStrings(symbols), ","))
	params.Set("convert", convertTo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+quotesPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}

	req.Header.Set("Accepts", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	var parsed cmcResponse
	decodeErr := json.Unmarshal(body, &parsed)

	// error responses still carry a status block
	if decodeErr == nil && parsed.Status.ErrorCode != 0 {
		return nil, errors.Wrapf(ErrAPIStatus, "code %d: %s", parsed.Status.ErrorCode, parsed.Status.ErrorMessage)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("CoinMarketCap API returned status %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return nil, errors.Wrap(ErrMalformedResponse, decodeErr.Error())
	}

	return &parsed, nil
}

func nullToZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

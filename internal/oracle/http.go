package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

// priceResponse is the oracle's JSON wire format. Prices are decimal
// strings to avoid float precision loss in transit.
type priceResponse struct {
	Asset        string `json:"asset"`
	PriceUsd     string `json:"price_usd"` // 1e30 scale
	BaseDecimals int32  `json:"base_decimals"`
}

// HTTPOracle fetches prices from a REST price feed:
// GET {base}/price?asset={asset} → {"price_usd": "...", "base_decimals": N}
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

// NewHTTPOracle creates an oracle client against the given base URL.
func NewHTTPOracle(baseURL string) *HTTPOracle {
	return &HTTPOracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (o *HTTPOracle) Price(ctx context.Context, asset string) (model.PriceQuote, error) {
	u := fmt.Sprintf("%s/price?asset=%s", o.baseURL, url.QueryEscape(asset))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("oracle: build request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("oracle: fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.PriceQuote{}, fmt.Errorf("oracle: unexpected status %d", resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.PriceQuote{}, fmt.Errorf("oracle: decode response: %w", err)
	}

	price, err := decimal.NewFromString(body.PriceUsd)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("oracle: parse price %q: %w", body.PriceUsd, err)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return model.PriceQuote{}, ErrInvalidPrice
	}

	return model.PriceQuote{PriceUsd: price, BaseDecimals: body.BaseDecimals}, nil
}

// FixtureOracle serves a fixed quote. Used for development and testing.
type FixtureOracle struct {
	Quote model.PriceQuote
}

// NewFixtureOracle creates an oracle that always returns the given price.
func NewFixtureOracle(priceUsd decimal.Decimal, baseDecimals int32) *FixtureOracle {
	return &FixtureOracle{Quote: model.PriceQuote{PriceUsd: priceUsd, BaseDecimals: baseDecimals}}
}

func (o *FixtureOracle) Price(_ context.Context, _ string) (model.PriceQuote, error) {
	if o.Quote.PriceUsd.LessThanOrEqual(decimal.Zero) {
		return model.PriceQuote{}, ErrInvalidPrice
	}
	return o.Quote, nil
}

package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

const exchangeDefaultURL = "https://v6.exchangerate-api.com/v6"

// CurrencyClient fetches pair conversion rates from ExchangeRate-API.
type CurrencyClient struct {
	apiKey  string
	baseURL string
	http    transport
}

// NewCurrencyClient constructs a CurrencyClient from cfg.
func NewCurrencyClient(cfg Config) *CurrencyClient {
	return &CurrencyClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.baseURL(exchangeDefaultURL),
		http:    newTransport("exchangerate-api", cfg, 1),
	}
}

type pairResponse struct {
	Result         string           `json:"result"`
	ErrorType      string           `json:"error-type"`
	ConversionRate *decimal.Decimal `json:"conversion_rate"`
}

// Fetch returns how many toCode one unit of fromCode buys.
func (c *CurrencyClient) Fetch(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(c.apiKey) + "/pair/" + url.PathEscape(fromCode) + "/" + url.PathEscape(toCode)

	var raw pairResponse
	status, err := c.http.getJSON(ctx, endpoint, &raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchangerate-api %s/%s: %w", fromCode, toCode, err)
	}
	if raw.Result != "success" {
		return decimal.Zero, fmt.Errorf("exchangerate-api %s/%s: %w: %s", fromCode, toCode, ErrRejected, statusMessage(raw.ErrorType, status))
	}
	if raw.ConversionRate == nil {
		return decimal.Zero, fmt.Errorf("exchangerate-api %s/%s: %w: missing conversion_rate", fromCode, toCode, ErrMalformed)
	}
	if !raw.ConversionRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("exchangerate-api %s/%s: %w: non-positive rate %s", fromCode, toCode, ErrMalformed, raw.ConversionRate)
	}

	return *raw.ConversionRate, nil
}

// Package provider contains the HTTP clients for the external travel data sources.
// Each client performs a single GET, decodes one JSON shape, and returns a
// normalized travel value or an error classified by one of the sentinels below.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultBreakerCooldown = 30 * time.Second
)

var (
	// ErrUnavailable covers transport failures, 5xx responses and an open circuit.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrRejected is returned when the provider answers but reports a failure.
	ErrRejected = errors.New("provider rejected request")

	// ErrMalformed is returned when the body cannot be decoded or lacks a required field.
	ErrMalformed = errors.New("malformed provider response")
)

// Config holds the connection settings for one provider.
// An empty BaseURL selects the provider's production endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// BreakerCooldown is how long an open circuit rejects calls before probing
	// again. Zero means 30s.
	BreakerCooldown time.Duration
}

func (c Config) baseURL(fallback string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fallback
}

// transport is the HTTP client and circuit breaker shared by a single provider client.
type transport struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// newTransport builds the client and breaker for one provider. halfOpen is the
// number of calls let through while the breaker probes a recovering provider;
// it must cover every call the provider can receive concurrently in one lookup.
func newTransport(name string, cfg Config, halfOpen uint32) transport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	return transport{
		client: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: halfOpen,
			Interval:    time.Minute,
			Timeout:     cooldown,
		}),
	}
}

// getJSON performs a GET request and decodes the JSON body into dst whatever the
// status code, so callers can read the provider's own failure message. Only
// transport errors and 5xx responses count against the circuit breaker.
func (t transport) getJSON(ctx context.Context, rawURL string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", stripURL(err))
	}
	req.Header.Set("Accept", "application/json")

	result, err := t.breaker.Execute(func() (interface{}, error) {
		resp, doErr := t.client.Do(req)
		if doErr != nil {
			return nil, stripURL(doErr)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected result type %T", ErrUnavailable, result)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("%w: decoding body: %v", ErrMalformed, err)
	}

	return resp.StatusCode, nil
}

// stripURL drops the request URL from net/http errors. Provider URLs carry
// credentials and errors end up in logs and on screen.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

// statusMessage returns msg, or the HTTP status text when the provider sent none.
func statusMessage(msg string, status int) string {
	if msg != "" {
		return msg
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprintf("status %d", status)
}

package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const unsplashDefaultURL = "https://api.unsplash.com/photos/random"

// ImageryClient fetches one representative photo URL from Unsplash.
type ImageryClient struct {
	apiKey  string
	baseURL string
	http    transport
}

// NewImageryClient constructs an ImageryClient from cfg.
func NewImageryClient(cfg Config) *ImageryClient {
	return &ImageryClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.baseURL(unsplashDefaultURL),
		http:    newTransport("unsplash", cfg, 1),
	}
}

type randomPhotoResponse struct {
	URLs *struct {
		Regular string `json:"regular"`
	} `json:"urls"`
	Errors []string `json:"errors"`
}

// Fetch returns the regular-size URL of a random photo matching city.
func (c *ImageryClient) Fetch(ctx context.Context, city string) (string, error) {
	q := url.Values{}
	q.Set("query", city)
	q.Set("client_id", c.apiKey)

	var raw randomPhotoResponse
	status, err := c.http.getJSON(ctx, c.baseURL+"?"+q.Encode(), &raw)
	if err != nil {
		return "", fmt.Errorf("unsplash fetch for %s: %w", city, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("unsplash fetch for %s: %w: %s", city, ErrRejected, statusMessage(strings.Join(raw.Errors, "; "), status))
	}
	if raw.URLs == nil || raw.URLs.Regular == "" {
		return "", fmt.Errorf("unsplash fetch for %s: %w: missing urls.regular", city, ErrMalformed)
	}

	return raw.URLs.Regular, nil
}

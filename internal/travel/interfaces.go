package travel

import (
	"context"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -package=travel_test -destination=mock_interfaces_test.go -source=interfaces.go

// WeatherFetcher is satisfied by provider.WeatherClient.
type WeatherFetcher interface {
	Fetch(ctx context.Context, city string) (*WeatherInfo, error)
}

// PlacesFetcher is satisfied by provider.PlacesClient.
type PlacesFetcher interface {
	Fetch(ctx context.Context, q PlaceQuery) ([]PlaceListing, error)
}

// RateFetcher is satisfied by provider.CurrencyClient.
type RateFetcher interface {
	Fetch(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)
}

// ImageFetcher is satisfied by provider.ImageryClient.
type ImageFetcher interface {
	Fetch(ctx context.Context, city string) (string, error)
}

// HistoryStore is the append-only log of completed lookups.
// Implementations must assign strictly increasing ids under concurrent Append calls.
type HistoryStore interface {
	// Initialize idempotently prepares the durable log.
	Initialize(ctx context.Context) error

	// Append stores rec and returns the id assigned to it.
	Append(ctx context.Context, rec HistoryRecord) (int64, error)

	// ListAll returns every record, newest first (ties broken by id descending).
	ListAll(ctx context.Context) ([]HistoryRecord, error)
}

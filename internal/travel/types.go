package travel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxListings is the number of places kept per category, in provider order.
const MaxListings = 5

// ProviderName identifies the data source a ProviderError came from.
type ProviderName string

const (
	ProviderImagery  ProviderName = "Imagery"
	ProviderWeather  ProviderName = "Weather"
	ProviderPlaces   ProviderName = "Places"
	ProviderLodging  ProviderName = "Lodging"
	ProviderDining   ProviderName = "Dining"
	ProviderCurrency ProviderName = "Currency"
)

// Place categories understood by the places provider.
const (
	CategoryAttraction = "tourist_attraction"
	CategoryLodging    = "lodging"
	CategoryRestaurant = "restaurant"
)

// WeatherInfo holds current conditions and the location fix for a city.
type WeatherInfo struct {
	Description  string    `json:"description"`
	TemperatureC float64   `json:"temperature_c"`
	FeelsLikeC   float64   `json:"feels_like_c"`
	LocalTime    time.Time `json:"local_time"`
	CountryCode  string    `json:"country_code"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
}

// PlaceQuery describes one nearby search.
type PlaceQuery struct {
	Latitude  float64
	Longitude float64
	Category  string
	OpenNow   bool
}

// PlaceListing is a single venue returned by the places provider.
type PlaceListing struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	MapURL  string `json:"map_url"`
}

// CurrencyConversion is the exchange rate between the base currency and the destination's.
type CurrencyConversion struct {
	FromCode string          `json:"from_code"`
	ToCode   string          `json:"to_code"`
	Rate     decimal.Decimal `json:"rate"`
}

// Summary renders the conversion as "1 CAD = 0.68 EUR".
func (c CurrencyConversion) Summary() string {
	return fmt.Sprintf("1 %s = %s %s", c.FromCode, c.Rate.StringFixed(2), c.ToCode)
}

// ProviderError records a single failed provider call. It never aborts a lookup.
type ProviderError struct {
	Provider ProviderName `json:"provider"`
	Message  string       `json:"message"`
}

func (e ProviderError) Error() string {
	return string(e.Provider) + ": " + e.Message
}

// TravelSnapshot is the possibly partial result of one destination lookup.
type TravelSnapshot struct {
	LookupID string              `json:"lookup_id"`
	City     string              `json:"city"`
	Weather  *WeatherInfo        `json:"weather,omitempty"`
	Places   []PlaceListing      `json:"places,omitempty"`
	Lodging  []PlaceListing      `json:"lodging,omitempty"`
	Dining   []PlaceListing      `json:"dining,omitempty"`
	Currency *CurrencyConversion `json:"currency,omitempty"`
	ImageURL string              `json:"image_url,omitempty"`
	Errors   []ProviderError     `json:"errors,omitempty"`
}

// HistoryRecord is one durable log entry for a completed lookup.
// ID is assigned by the HistoryStore on append.
type HistoryRecord struct {
	ID              int64     `json:"id"`
	UserCity        string    `json:"user_city"`
	DestinationCity string    `json:"destination_city"`
	TemperatureC    *float64  `json:"temperature_c,omitempty"`
	CurrencySummary string    `json:"currency_summary"`
	Timestamp       time.Time `json:"timestamp"`
}

// Plan is what PlanTrip returns: the snapshot and, when one was written, its history record.
type Plan struct {
	Snapshot TravelSnapshot
	Record   *HistoryRecord
}

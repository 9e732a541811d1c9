package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/neexbeast/travel-planner/internal/travel"
)

const (
	placesDefaultURL   = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	searchRadiusMeters = 5000

	// concurrentSearches is the attraction, lodging and dining searches of one lookup.
	concurrentSearches = 3

	mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="
	mapsPlaceURL  = "https://www.google.com/maps/place/?q=place_id:"
)

// PlacesClient runs nearby searches against the Google Places API.
type PlacesClient struct {
	apiKey  string
	baseURL string
	http    transport
}

// NewPlacesClient constructs a PlacesClient from cfg.
func NewPlacesClient(cfg Config) *PlacesClient {
	return &PlacesClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.baseURL(placesDefaultURL),
		http:    newTransport("google-places", cfg, concurrentSearches),
	}
}

type nearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		PlaceID  string `json:"place_id"`
	} `json:"results"`
}

// Fetch returns up to travel.MaxListings places within 5 km of the query
// coordinate, in the provider's ranking order.
func (c *PlacesClient) Fetch(ctx context.Context, q travel.PlaceQuery) ([]travel.PlaceListing, error) {
	v := url.Values{}
	v.Set("location", formatCoord(q.Latitude)+","+formatCoord(q.Longitude))
	v.Set("radius", strconv.Itoa(searchRadiusMeters))
	v.Set("type", q.Category)
	if q.OpenNow {
		v.Set("opennow", "true")
	}
	v.Set("key", c.apiKey)

	var raw nearbyResponse
	status, err := c.http.getJSON(ctx, c.baseURL+"?"+v.Encode(), &raw)
	if err != nil {
		return nil, fmt.Errorf("google places %s search: %w", q.Category, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("google places %s search: %w: %s", q.Category, ErrRejected, statusMessage(raw.ErrorMessage, status))
	}

	switch raw.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []travel.PlaceListing{}, nil
	default:
		msg := strings.TrimSpace(raw.Status + " " + raw.ErrorMessage)
		if msg == "" {
			msg = "missing status"
		}
		return nil, fmt.Errorf("google places %s search: %w: %s", q.Category, ErrRejected, msg)
	}

	results := raw.Results
	if len(results) > travel.MaxListings {
		results = results[:travel.MaxListings]
	}

	listings := make([]travel.PlaceListing, 0, len(results))
	for _, r := range results {
		name := r.Name
		if name == "" {
			name = "Unknown"
		}
		address := r.Vicinity
		if address == "" {
			address = "No address"
		}
		listings = append(listings, travel.PlaceListing{
			Name:    name,
			Address: address,
			MapURL:  mapURL(q.Category, name, r.PlaceID),
		})
	}

	return listings, nil
}

// mapURL builds the Google Maps link for a listing. Attraction searches link by
// name; categorized searches link by place id and yield "" when the id is absent.
func mapURL(category, name, placeID string) string {
	if category == travel.CategoryAttraction {
		return mapsSearchURL + url.QueryEscape(name)
	}
	if placeID == "" {
		return ""
	}
	return mapsPlaceURL + url.QueryEscape(placeID)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

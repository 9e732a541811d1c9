package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neexbeast/travel-planner/internal/travel"
)

const owmDefaultURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherClient fetches current weather and the location fix from OpenWeatherMap.
type WeatherClient struct {
	apiKey  string
	baseURL string
	http    transport
	now     func() time.Time
}

// NewWeatherClient constructs a WeatherClient from cfg.
func NewWeatherClient(cfg Config) *WeatherClient {
	return &WeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.baseURL(owmDefaultURL),
		http:    newTransport("openweathermap", cfg, 1),
		now:     time.Now,
	}
}

type owmResponse struct {
	Message string `json:"message"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
	} `json:"main"`
	Timezone *int `json:"timezone"`
	Sys      struct {
		Country string `json:"country"`
	} `json:"sys"`
	Coord *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"coord"`
}

// missing lists the required fields absent from the response.
func (r *owmResponse) missing() []string {
	var out []string
	if len(r.Weather) == 0 || r.Weather[0].Description == "" {
		out = append(out, "weather[0].description")
	}
	if r.Main == nil || r.Main.Temp == nil {
		out = append(out, "main.temp")
	}
	if r.Main == nil || r.Main.FeelsLike == nil {
		out = append(out, "main.feels_like")
	}
	if r.Timezone == nil {
		out = append(out, "timezone")
	}
	if r.Sys.Country == "" {
		out = append(out, "sys.country")
	}
	if r.Coord == nil || r.Coord.Lat == nil {
		out = append(out, "coord.lat")
	}
	if r.Coord == nil || r.Coord.Lon == nil {
		out = append(out, "coord.lon")
	}
	return out
}

// Fetch retrieves weather data for the given city.
func (c *WeatherClient) Fetch(ctx context.Context, city string) (*travel.WeatherInfo, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	var raw owmResponse
	status, err := c.http.getJSON(ctx, c.baseURL+"?"+q.Encode(), &raw)
	if err != nil {
		return nil, fmt.Errorf("openweathermap fetch for %s: %w", city, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("openweathermap fetch for %s: %w: %s", city, ErrRejected, statusMessage(raw.Message, status))
	}
	if missing := raw.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("openweathermap fetch for %s: %w: missing %s", city, ErrMalformed, strings.Join(missing, ", "))
	}

	offset := *raw.Timezone

	return &travel.WeatherInfo{
		Description:  raw.Weather[0].Description,
		TemperatureC: *raw.Main.Temp,
		FeelsLikeC:   *raw.Main.FeelsLike,
		LocalTime:    c.now().UTC().In(time.FixedZone("", offset)),
		CountryCode:  raw.Sys.Country,
		Latitude:     *raw.Coord.Lat,
		Longitude:    *raw.Coord.Lon,
	}, nil
}

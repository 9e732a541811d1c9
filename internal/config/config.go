// Package config loads and validates settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/neexbeast/travel-planner/internal/provider"
)

// Config holds every value the binary reads from its environment.
type Config struct {
	OpenWeatherAPIKey string `env:"OPENWEATHER_API_KEY"`
	GoogleAPIKey      string `env:"GOOGLE_API_KEY"`
	ExchangeAPIKey    string `env:"EXCHANGE_API_KEY"`
	UnsplashAccessKey string `env:"UNSPLASH_ACCESS_KEY"`

	// BaseCurrency is the ISO 4217 code rates are quoted from. Defaults to CAD.
	BaseCurrency    string        `env:"BASE_CURRENCY" validate:"len=3,uppercase"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" validate:"gt=0"`

	// HistoryBackend is one of postgres (default), redis or memory.
	HistoryBackend string `env:"HISTORY_BACKEND" validate:"oneof=postgres redis memory"`
	DatabaseURL    string `env:"DATABASE_URL" validate:"required_if=HistoryBackend postgres"`
	RedisURL       string `env:"REDIS_URL" validate:"required_if=HistoryBackend redis"`

	// KafkaBrokers enables audit publication when non-empty. KafkaTopic
	// defaults to travel.history.
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC"`

	LogLevel string `env:"LOG_LEVEL"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	return v
}

// Load reads .env when present, then the process environment, and validates
// the result. Missing API keys are not an error; see MissingKeys.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Config{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		ExchangeAPIKey:    os.Getenv("EXCHANGE_API_KEY"),
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		BaseCurrency:      strings.ToUpper(getEnv("BASE_CURRENCY", "CAD")),
		HistoryBackend:    strings.ToLower(getEnv("HISTORY_BACKEND", "postgres")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		KafkaBrokers:      splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "travel.history"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	timeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}
	cfg.ProviderTimeout = timeout

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cross-field rules, naming each offending variable.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s (%s)", fe.Field(), rule))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}

// MissingKeys lists the provider API key variables that are unset.
func (c Config) MissingKeys() []string {
	var missing []string
	for _, k := range []struct {
		name, value string
	}{
		{"OPENWEATHER_API_KEY", c.OpenWeatherAPIKey},
		{"GOOGLE_API_KEY", c.GoogleAPIKey},
		{"EXCHANGE_API_KEY", c.ExchangeAPIKey},
		{"UNSPLASH_ACCESS_KEY", c.UnsplashAccessKey},
	} {
		if k.value == "" {
			missing = append(missing, k.name)
		}
	}
	return missing
}

// SlogLevel parses LogLevel, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Weather is the OpenWeather client config.
func (c Config) Weather() provider.Config {
	return provider.Config{APIKey: c.OpenWeatherAPIKey, Timeout: c.ProviderTimeout}
}

// Places is the Google Places client config.
func (c Config) Places() provider.Config {
	return provider.Config{APIKey: c.GoogleAPIKey, Timeout: c.ProviderTimeout}
}

// Currency is the ExchangeRate-API client config.
func (c Config) Currency() provider.Config {
	return provider.Config{APIKey: c.ExchangeAPIKey, Timeout: c.ProviderTimeout}
}

// Imagery is the Unsplash client config.
func (c Config) Imagery() provider.Config {
	return provider.Config{APIKey: c.UnsplashAccessKey, Timeout: c.ProviderTimeout}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

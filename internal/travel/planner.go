// Package travel assembles a travel snapshot for a destination from several
// independent providers and records completed lookups in a history store.
package travel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/travel-planner/internal/currency"
)

// ErrPersistence wraps a HistoryStore failure after a completed lookup.
var ErrPersistence = errors.New("saving history record")

// Clients groups the provider clients a Planner drives.
type Clients struct {
	Weather WeatherFetcher
	Places  PlacesFetcher
	Rates   RateFetcher
	Images  ImageFetcher
}

// Planner sequences provider calls for one destination lookup.
type Planner struct {
	clients      Clients
	history      HistoryStore
	baseCurrency string
	log          *slog.Logger
	now          func() time.Time
}

// NewPlanner constructs a Planner converting prices from baseCurrency.
func NewPlanner(clients Clients, history HistoryStore, baseCurrency string, log *slog.Logger) *Planner {
	return &Planner{
		clients:      clients,
		history:      history,
		baseCurrency: baseCurrency,
		log:          log,
		now:          time.Now,
	}
}

// errorOrder fixes the order in which provider failures appear in a snapshot.
var errorOrder = [...]ProviderName{
	ProviderImagery,
	ProviderWeather,
	ProviderPlaces,
	ProviderLodging,
	ProviderDining,
	ProviderCurrency,
}

// outcome collects branch results. Each goroutine writes only its own fields.
type outcome struct {
	imageURL   string
	weather    *WeatherInfo
	places     []PlaceListing
	lodging    []PlaceListing
	dining     []PlaceListing
	conversion *CurrencyConversion
	errs       [len(errorOrder)]error
}

func (o *outcome) fail(name ProviderName, err error) {
	for i, n := range errorOrder {
		if n == name {
			o.errs[i] = err
			return
		}
	}
}

// PlanTrip looks up destination and, when an exchange rate was obtained, appends
// a history record attributed to homeCity (destination when blank).
//
// Provider failures never fail PlanTrip; they are listed in Snapshot.Errors. A
// weather failure suppresses every call that needs its coordinates or country.
// The returned Plan is never nil. The error is non-nil only when the history
// append failed, in which case the snapshot is complete and Record is nil.
func (p *Planner) PlanTrip(ctx context.Context, destination, homeCity string) (*Plan, error) {
	destination = strings.TrimSpace(destination)
	homeCity = strings.TrimSpace(homeCity)
	if homeCity == "" {
		homeCity = destination
	}

	lookupID := uuid.NewString()
	log := p.log.With("lookup_id", lookupID, "destination", destination)

	var out outcome
	var g errgroup.Group

	g.Go(func() error {
		imageURL, err := guard(func() (string, error) { return p.clients.Images.Fetch(ctx, destination) })
		if err != nil {
			out.fail(ProviderImagery, err)
			return nil
		}
		out.imageURL = imageURL
		return nil
	})

	g.Go(func() error {
		p.weatherBranch(ctx, destination, &out, log)
		return nil
	})

	_ = g.Wait()

	plan := &Plan{Snapshot: p.assemble(lookupID, destination, &out, log)}

	if out.conversion == nil {
		return plan, nil
	}

	temp := out.weather.TemperatureC
	rec := HistoryRecord{
		UserCity:        homeCity,
		DestinationCity: destination,
		TemperatureC:    &temp,
		CurrencySummary: out.conversion.Summary(),
		Timestamp:       p.now().UTC(),
	}

	id, err := p.history.Append(ctx, rec)
	if err != nil {
		log.Error("history append failed", "err", err)
		return plan, fmt.Errorf("%w for %s: %w", ErrPersistence, destination, err)
	}
	rec.ID = id
	plan.Record = &rec

	log.Info("lookup recorded", "history_id", id, "summary", rec.CurrencySummary)
	return plan, nil
}

// weatherBranch fetches the location fix and then everything that depends on it.
func (p *Planner) weatherBranch(ctx context.Context, destination string, out *outcome, log *slog.Logger) {
	w, err := guard(func() (*WeatherInfo, error) { return p.clients.Weather.Fetch(ctx, destination) })
	if err == nil && w == nil {
		err = errors.New("weather provider returned no data")
	}
	if err != nil {
		out.fail(ProviderWeather, err)
		return
	}
	out.weather = w

	var g errgroup.Group

	searches := []struct {
		name     ProviderName
		category string
		openNow  bool
		dst      *[]PlaceListing
	}{
		{ProviderPlaces, CategoryAttraction, false, &out.places},
		{ProviderLodging, CategoryLodging, true, &out.lodging},
		{ProviderDining, CategoryRestaurant, true, &out.dining},
	}
	for _, s := range searches {
		g.Go(func() error {
			q := PlaceQuery{Latitude: w.Latitude, Longitude: w.Longitude, Category: s.category, OpenNow: s.openNow}
			listings, err := guard(func() ([]PlaceListing, error) { return p.clients.Places.Fetch(ctx, q) })
			if err != nil {
				out.fail(s.name, err)
				return nil
			}
			*s.dst = truncate(listings)
			return nil
		})
	}

	g.Go(func() error {
		code, ok := currency.Resolve(w.CountryCode)
		if !ok {
			log.Debug("no currency mapping", "country", w.CountryCode)
			return nil
		}
		rate, err := guard(func() (decimal.Decimal, error) { return p.clients.Rates.Fetch(ctx, p.baseCurrency, code) })
		if err == nil && !rate.IsPositive() {
			err = fmt.Errorf("non-positive rate %s for %s/%s", rate, p.baseCurrency, code)
		}
		if err != nil {
			out.fail(ProviderCurrency, err)
			return nil
		}
		out.conversion = &CurrencyConversion{FromCode: p.baseCurrency, ToCode: code, Rate: rate}
		return nil
	})

	_ = g.Wait()
}

// assemble builds the snapshot once every branch has finished.
func (p *Planner) assemble(lookupID, destination string, out *outcome, log *slog.Logger) TravelSnapshot {
	snap := TravelSnapshot{
		LookupID: lookupID,
		City:     destination,
		Weather:  out.weather,
		Places:   out.places,
		Lodging:  out.lodging,
		Dining:   out.dining,
		Currency: out.conversion,
		ImageURL: out.imageURL,
	}

	for i, err := range out.errs {
		if err == nil {
			continue
		}
		name := errorOrder[i]
		log.Warn("provider fetch failed", "provider", string(name), "err", err)
		snap.Errors = append(snap.Errors, ProviderError{Provider: name, Message: err.Error()})
	}

	return snap
}

// truncate keeps the first MaxListings entries in provider order.
func truncate(listings []PlaceListing) []PlaceListing {
	if len(listings) > MaxListings {
		return listings[:MaxListings]
	}
	return listings
}

// guard runs fn and turns a panic into an error so one misbehaving client
// cannot take down the lookup.
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return fn()
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/neexbeast/travel-planner/internal/travel"
)

const timeLayout = "2006-01-02 15:04:05"

// RenderSnapshot formats one lookup for the terminal.
func RenderSnapshot(snap travel.TravelSnapshot) string {
	var b strings.Builder

	if snap.ImageURL != "" {
		fmt.Fprintf(&b, "\nCity Image for %s: %s\n", snap.City, snap.ImageURL)
	} else {
		b.WriteString("\nNo image found for this city.\n")
	}

	b.WriteString("\n--- Travel Info ---\n")

	w := snap.Weather
	if w == nil {
		fmt.Fprintf(&b, "Error: %s\n", failureFor(snap, travel.ProviderWeather))
		writeErrors(&b, snap.Errors)
		return b.String()
	}

	fmt.Fprintf(&b, "City: %s\n", snap.City)
	fmt.Fprintf(&b, "Weather: %s\n", w.Description)
	fmt.Fprintf(&b, "Temperature: %s°C\n", formatTemp(w.TemperatureC))
	fmt.Fprintf(&b, "Feels Like: %s°C\n", formatTemp(w.FeelsLikeC))
	fmt.Fprintf(&b, "Local Time: %s\n", w.LocalTime.Format(timeLayout))

	writeListings(&b, "Top 5 Places to Visit", snap.Places)

	switch {
	case snap.Currency != nil:
		fmt.Fprintf(&b, "\nCurrency: %s\n", snap.Currency.Summary())
	case hasFailure(snap, travel.ProviderCurrency):
		b.WriteString("\nCurrency: Rate unavailable.\n")
	default:
		b.WriteString("\nCurrency data not available for this country.\n")
	}

	writeListings(&b, "Top 5 Hotels", snap.Lodging)
	writeListings(&b, "Top 5 Restaurants", snap.Dining)
	writeErrors(&b, snap.Errors)

	return b.String()
}

// RenderHistory formats history rows in the order given.
func RenderHistory(records []travel.HistoryRecord) string {
	if len(records) == 0 {
		return "No history found.\n"
	}

	var b strings.Builder
	b.WriteString("\n--- Travel Query History ---\n")
	for _, r := range records {
		temp := "n/a"
		if r.TemperatureC != nil {
			temp = formatTemp(*r.TemperatureC) + "°C"
		}
		fmt.Fprintf(&b, "ID: %d | From: %s | To: %s | Temp: %s | Rate: %s | Time: %s UTC\n",
			r.ID, r.UserCity, r.DestinationCity, temp, r.CurrencySummary, r.Timestamp.UTC().Format(timeLayout))
	}
	return b.String()
}

func writeListings(b *strings.Builder, title string, listings []travel.PlaceListing) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(listings) == 0 {
		b.WriteString("No results.\n")
		return
	}
	for i, l := range listings {
		if l.MapURL == "" {
			fmt.Fprintf(b, "%d. %s - %s\n", i+1, l.Name, l.Address)
			continue
		}
		fmt.Fprintf(b, "%d. [%s](%s) - %s\n", i+1, l.Name, l.MapURL, l.Address)
	}
}

func writeErrors(b *strings.Builder, errs []travel.ProviderError) {
	if len(errs) == 0 {
		return
	}
	b.WriteString("\nSome information could not be loaded:\n")
	for _, e := range errs {
		fmt.Fprintf(b, "- %s\n", e.Error())
	}
}

func hasFailure(snap travel.TravelSnapshot, name travel.ProviderName) bool {
	for _, e := range snap.Errors {
		if e.Provider == name {
			return true
		}
	}
	return false
}

func failureFor(snap travel.TravelSnapshot, name travel.ProviderName) string {
	for _, e := range snap.Errors {
		if e.Provider == name {
			return e.Message
		}
	}
	return "no weather data"
}

func formatTemp(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// Package currency maps ISO-3166 alpha-2 country codes to ISO-4217 currency codes.
package currency

import "strings"

var byCountry = map[string]string{
	"US": "USD",
	"CA": "CAD",
	"MX": "MXN",
	"BR": "BRL",
	"AR": "ARS",
	"GB": "GBP",
	"CH": "CHF",
	"NO": "NOK",
	"SE": "SEK",
	"DK": "DKK",
	"PL": "PLN",
	"CZ": "CZK",
	"HU": "HUF",
	"TR": "TRY",
	"FR": "EUR",
	"DE": "EUR",
	"IT": "EUR",
	"ES": "EUR",
	"PT": "EUR",
	"NL": "EUR",
	"BE": "EUR",
	"AT": "EUR",
	"IE": "EUR",
	"FI": "EUR",
	"GR": "EUR",
	"HR": "EUR",
	"JP": "JPY",
	"CN": "CNY",
	"KR": "KRW",
	"IN": "INR",
	"TH": "THB",
	"SG": "SGD",
	"AU": "AUD",
	"NZ": "NZD",
	"ZA": "ZAR",
	"EG": "EGP",
	"AE": "AED",
}

// Resolve returns the currency used in countryCode. The lookup is case-insensitive.
// ok is false when the country is not in the table.
func Resolve(countryCode string) (code string, ok bool) {
	code, ok = byCountry[strings.ToUpper(strings.TrimSpace(countryCode))]
	return code, ok
}

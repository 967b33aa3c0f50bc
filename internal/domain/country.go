package domain

import "strings"

// Country is one of the supported delivery markets
type Country string

const (
	CountryColombia Country = "colombia"
	CountryUSA      Country = "usa"
	CountrySpain    Country = "spain"
	CountryUnknown  Country = "unknown"
)

// Timezones of the supported markets
const (
	TimezoneBogota  = "America/Bogota"
	TimezoneNewYork = "America/New_York"
	TimezoneMadrid  = "Europe/Madrid"
)

var timezoneCountries = map[string]Country{
	TimezoneBogota:  CountryColombia,
	TimezoneNewYork: CountryUSA,
	TimezoneMadrid:  CountrySpain,
}

// AllowedTimezones returns the timezones a site must have to be served
func AllowedTimezones() []string {
	return []string{TimezoneBogota, TimezoneNewYork, TimezoneMadrid}
}

// CountryFromTimezone derives the market of a site. Anything outside the table is unknown.
func CountryFromTimezone(tz string) Country {
	if c, ok := timezoneCountries[tz]; ok {
		return c
	}
	return CountryUnknown
}

// IsKnown reports whether c is one of the three supported markets
func (c Country) IsKnown() bool {
	switch c {
	case CountryColombia, CountryUSA, CountrySpain:
		return true
	default:
		return false
	}
}

// ParseCountry parses a query filter value such as "usa" or " Spain "
func ParseCountry(s string) (Country, bool) {
	c := Country(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsKnown()
}

// ParseCountryHint maps the free-text country sent with an address to a market by
// substring, so "Bogotá, Colombia" resolves too. Unrecognised hints return false and
// disable country scoping of zones.
func ParseCountryHint(hint string) (Country, bool) {
	h := strings.ToLower(hint)
	switch {
	case strings.Contains(h, "colombia"):
		return CountryColombia, true
	case strings.Contains(h, "estados unidos"), strings.Contains(h, "usa"):
		return CountryUSA, true
	case strings.Contains(h, "españa"), strings.Contains(h, "spain"):
		return CountrySpain, true
	default:
		return CountryUnknown, false
	}
}

// DefaultCountryHint is used when a resolve request carries no country
const DefaultCountryHint = "Colombia"

// DefaultCity is sent to the logistics validation when the request has no city
const DefaultCity = "Bogota"

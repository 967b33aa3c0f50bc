package domain

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCity lowercases, trims and strips accents so "Bogotá" matches "bogota"
func NormalizeCity(city string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(city)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(city))
	}
	return out
}

// FilterSitesByCountry keeps sites whose timezone maps to country
func FilterSitesByCountry(sites []Site, country Country) []Site {
	out := make([]Site, 0, len(sites))
	for _, s := range sites {
		if s.Country() == country {
			out = append(out, s)
		}
	}
	return out
}

// FilterZonesByCountry keeps zones whose explicit or site-derived country matches.
// Zones with no resolvable country are dropped.
func FilterZonesByCountry(zones []Zone, sites []Site, country Country) []Zone {
	index := IndexSites(sites)
	out := make([]Zone, 0, len(zones))
	for i := range zones {
		if zones[i].ResolveCountry(index) == country {
			out = append(out, zones[i])
		}
	}
	return out
}

// FilterPickupPointsByCountry keeps pickup points whose site belongs to country
func FilterPickupPointsByCountry(points []PickupPoint, sites []Site, country Country) []PickupPoint {
	index := IndexSites(sites)
	out := make([]PickupPoint, 0, len(points))
	for _, p := range points {
		site, ok := index[p.SiteID]
		if ok && site.Country() == country {
			out = append(out, p)
		}
	}
	return out
}

// FilterOrdersByCountry keeps orders whose country field names country, or whose
// city is one of the country's site cities when the field does not match
func FilterOrdersByCountry(orders []Order, sites []Site, country Country) []Order {
	cities := make(map[string]struct{})
	for _, s := range FilterSitesByCountry(sites, country) {
		if s.CityName != "" {
			cities[NormalizeCity(s.CityName)] = struct{}{}
		}
	}

	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if Country(strings.ToLower(strings.TrimSpace(o.Country))) == country {
			out = append(out, o)
			continue
		}
		if o.City == "" {
			continue
		}
		if _, ok := cities[NormalizeCity(o.City)]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Cities returns the sorted unique city names of the sites
func Cities(sites []Site) []string {
	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for _, s := range sites {
		if s.CityName == "" {
			continue
		}
		if _, ok := seen[s.CityName]; ok {
			continue
		}
		seen[s.CityName] = struct{}{}
		cities = append(cities, s.CityName)
	}
	sort.Strings(cities)
	return cities
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/location-manager/zone-service/internal/geo"
)

// DateLayout is the calendar date format used by order filters
const DateLayout = "2006-01-02"

// NoZoneLabel is the zone statistics bucket for orders outside every zone
const NoZoneLabel = "Sin zona"

// Order is a storefront order recorded for delivery analytics
type Order struct {
	ID               int64     `bson:"_id" json:"id"`
	Latitude         float64   `bson:"latitude" json:"latitude"`
	Longitude        float64   `bson:"longitude" json:"longitude"`
	Address          string    `bson:"address" json:"address"`
	FormattedAddress string    `bson:"formatted_address,omitempty" json:"formatted_address,omitempty"`
	FirstName        string    `bson:"first_name" json:"first_name"`
	LastName         string    `bson:"last_name" json:"last_name"`
	Phone            string    `bson:"phone" json:"phone"`
	Email            string    `bson:"email" json:"email"`
	Complement       string    `bson:"complement,omitempty" json:"complement,omitempty"`
	City             string    `bson:"city,omitempty" json:"city,omitempty"`
	Country          string    `bson:"country,omitempty" json:"country,omitempty"`
	Comments         string    `bson:"comments,omitempty" json:"comments,omitempty"`
	OrderDate        time.Time `bson:"order_date" json:"order_date"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// OrderFilter selects orders for listing. Zero values disable a criterion.
type OrderFilter struct {
	StartDate string
	EndDate   string
	Cities    []string
	Country   Country
}

// ParseOrderFilter validates the date bounds of a filter
func ParseOrderFilter(startDate, endDate string, cities []string, country string) (OrderFilter, error) {
	f := OrderFilter{
		StartDate: datePart(startDate),
		EndDate:   datePart(endDate),
		Cities:    nonBlank(cities),
	}
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return OrderFilter{}, fmt.Errorf("%w: %q", ErrInvalidDateFilter, d)
		}
	}
	if country != "" {
		c, ok := ParseCountry(country)
		if !ok {
			return OrderFilter{}, fmt.Errorf("%w: %q", ErrInvalidCountryFilter, country)
		}
		f.Country = c
	}
	return f, nil
}

// MatchesDate reports whether the order date falls within the inclusive calendar bounds
func (f OrderFilter) MatchesDate(o Order) bool {
	if f.StartDate == "" && f.EndDate == "" {
		return true
	}
	day := o.OrderDate.Format(DateLayout)
	if f.StartDate != "" && day < f.StartDate {
		return false
	}
	if f.EndDate != "" && day > f.EndDate {
		return false
	}
	return true
}

// MatchesCity reports whether the order city is one of the filter cities,
// ignoring case and accents
func (f OrderFilter) MatchesCity(o Order) bool {
	if len(f.Cities) == 0 {
		return true
	}
	city := NormalizeCity(o.City)
	for _, c := range f.Cities {
		if NormalizeCity(c) == city {
			return true
		}
	}
	return false
}

// Apply filters orders by country, city and date
func (f OrderFilter) Apply(orders []Order, sites []Site) []Order {
	if f.Country != "" {
		orders = FilterOrdersByCountry(orders, sites, f.Country)
	}
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		if f.MatchesCity(o) && f.MatchesDate(o) {
			result = append(result, o)
		}
	}
	return result
}

// ZoneStats counts orders per containing zone. Each order counts once, for the
// first zone that contains it, or under NoZoneLabel. Orders without coordinates are skipped.
func ZoneStats(orders []Order, zones []Zone) map[string]int {
	stats := make(map[string]int)
	for _, o := range orders {
		if o.Latitude == 0 || o.Longitude == 0 {
			continue
		}
		label := NoZoneLabel
		for i := range zones {
			if geo.PointInPolygon(o.Latitude, o.Longitude, zones[i].Coordinates) {
				label = zones[i].Name
				break
			}
		}
		stats[label]++
	}
	return stats
}

func datePart(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

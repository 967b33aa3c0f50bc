package domain

import (
	"github.com/location-manager/zone-service/internal/geo"
)

// CountryRates are the hardcoded fallback rates of a market
type CountryRates struct {
	PricePerKm float64
	MinFee     float64
}

var defaultRates = map[Country]CountryRates{
	CountryUSA:      {PricePerKm: 2.0, MinFee: 5.0},
	CountrySpain:    {PricePerKm: 1.5, MinFee: 3.0},
	CountryColombia: {PricePerKm: 2000.0, MinFee: 5000.0},
}

// DefaultRates returns the fallback rates for a known country
func DefaultRates(c Country) (CountryRates, bool) {
	r, ok := defaultRates[c]
	return r, ok
}

// RateOverride forces rate inputs ahead of any stored tariff
type RateOverride struct {
	PricePerKm *float64
	MinFee     *float64
}

// Quote is the outcome of a delivery price computation
type Quote struct {
	Price                 *float64   `json:"price"`
	DistanceKm            float64    `json:"distance_km"`
	PricePerKm            *float64   `json:"price_per_km"`
	MinFee                *float64   `json:"min_fee"`
	MaxFee                *float64   `json:"max_fee"`
	Country               Country    `json:"country"`
	Mode                  TariffMode `json:"tariff_mode,omitempty"`
	UsesExternalLogistics bool       `json:"uses_external_logistics"`
}

// ComputeDeliveryPrice prices a delivery of distanceKm from site.
//
// Rate inputs resolve in order: override, tariff, site inline values, country defaults.
// A zero value counts as unset at every level. Sites of unknown country never get a
// calculated price and are flagged for external logistics.
func ComputeDeliveryPrice(distanceKm float64, site Site, tariff *Tariff, override RateOverride) Quote {
	country := site.Country()
	defaults, ok := DefaultRates(country)
	if !ok {
		return Quote{
			DistanceKm:            distanceKm,
			Country:               country,
			UsesExternalLogistics: true,
		}
	}

	var tariffRate, tariffMin, maxFee, baseKm, surchargeKm *float64
	mode := TariffModeFixed
	if tariff != nil {
		tariffRate = &tariff.PricePerKm
		tariffMin = &tariff.MinFee
		maxFee = tariff.MaxFee
		baseKm = tariff.BaseDistanceKm
		surchargeKm = tariff.SurchargePerKm
		if tariff.Mode != "" {
			mode = tariff.Mode
		}
	}

	rate := firstSet(override.PricePerKm, tariffRate, site.PricePerKm)
	if rate == nil {
		rate = &defaults.PricePerKm
	}
	minFee := firstSet(override.MinFee, tariffMin, site.MinDeliveryFee)
	if minFee == nil {
		minFee = &defaults.MinFee
	}

	r := *rate
	price := distanceKm * r
	if mode == TariffModeSurcharge && baseKm != nil && surchargeKm != nil {
		if base := *baseKm; distanceKm > base {
			price = base*r + (distanceKm-base)*(*surchargeKm)
		}
	}

	if price < *minFee {
		price = *minFee
	}
	var maxCopy *float64
	if maxFee != nil {
		m := *maxFee
		maxCopy = &m
		if price > m {
			price = m
		}
	}
	price = geo.Round(price, 2)

	minCopy := *minFee
	return Quote{
		Price:      &price,
		DistanceKm: geo.Round(distanceKm, 2),
		PricePerKm: &r,
		MinFee:     &minCopy,
		MaxFee:     maxCopy,
		Country:    country,
		Mode:       mode,
	}
}

// firstSet returns the first non-nil, non-zero value
func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil && *v != 0 {
			return v
		}
	}
	return nil
}

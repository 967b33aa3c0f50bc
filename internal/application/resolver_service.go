package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/internal/geo"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
	"github.com/location-manager/zone-service/pkg/tracing"
)

// Resolution outcomes reported to metrics
const (
	outcomeNotGeocoded = "not_geocoded"
	outcomeMatched     = "matched"
	outcomeUnmatched   = "unmatched"
	outcomeConfigError = "configuration_error"
	outcomeError       = "error"
)

// ResolveAddressQuery asks which zone, site and delivery policy serve an address
type ResolveAddressQuery struct {
	Address string
	City    string
	Country string
}

// ResolverService runs the address decision pipeline:
// geocode, match zones, select a site, then validate or price the delivery.
type ResolverService struct {
	geocoder     Geocoder
	sites        SiteProvider
	zones        domain.ZoneRepository
	pickupPoints domain.PickupPointRepository
	config       domain.ConfigRepository
	validator    LogisticsValidator
	pricing      *PricingService
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewResolverService creates a new ResolverService. m may be nil.
func NewResolverService(
	geocoder Geocoder,
	sites SiteProvider,
	zones domain.ZoneRepository,
	pickupPoints domain.PickupPointRepository,
	config domain.ConfigRepository,
	validator LogisticsValidator,
	pricing *PricingService,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ResolverService {
	return &ResolverService{
		geocoder:     geocoder,
		sites:        sites,
		zones:        zones,
		pickupPoints: pickupPoints,
		config:       config,
		validator:    validator,
		pricing:      pricing,
		metrics:      m,
		logger:       logger.WithComponent("resolver"),
	}
}

// ResolveAddress geocodes the address and decides zone membership, serving site and
// delivery policy. Collaborator failures leave the affected fields empty; only a missing
// geocoding credential or a failing local store aborts the request.
func (s *ResolverService) ResolveAddress(ctx context.Context, query ResolveAddressQuery) (result *DecisionResult, err error) {
	hint := strings.TrimSpace(query.Country)
	if hint == "" {
		hint = domain.DefaultCountryHint
	}

	ctx, span := tracing.StartSpan(ctx, "resolver.resolve_address",
		attribute.String("address.country_hint", hint),
		attribute.String("address.city", query.City),
	)
	defer func() { tracing.EndSpan(span, err) }()

	outcome := outcomeError
	defer func() { s.recordOutcome(outcome) }()

	geocoded, err := s.geocoder.Geocode(ctx, query.Address, query.City, hint)
	if err != nil {
		if stderrors.Is(err, domain.ErrGeocodingNotConfigured) {
			outcome = outcomeConfigError
			s.logger.WithError(err).Error("Geocoding is not configured")
			return nil, errors.ErrConfiguration("geocoding API key is not configured").Wrap(err)
		}
		s.logger.WithError(err).Warn("Geocoding failed", "address", query.Address)
		geocoded = nil
		err = nil
	}

	result = &DecisionResult{
		Address:       query.Address,
		MatchingZones: []ZoneMatchDTO{},
	}
	if geocoded == nil {
		outcome = outcomeNotGeocoded
		return result, nil
	}

	lat, lng := geocoded.Latitude, geocoded.Longitude
	formatted := geocoded.FormattedAddress
	result.Geocoded = true
	result.Latitude = &lat
	result.Longitude = &lng
	result.FormattedAddress = &formatted

	cfg, err := loadConfig(ctx, s.config)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load config")
		return nil, err
	}

	sites, err := s.sites.GetAvailableSites(ctx, false)
	if err != nil {
		s.logger.WithError(err).Warn("Resolving without sites")
		sites = nil
	}

	zones, err := s.zones.FindAll(ctx, 0, 0)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load zones")
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}

	if cfg.ValidationMode == domain.ValidationModeNearestSite {
		result.MatchingZones = matchNearestSite(lat, lng, sites, zones)
	} else {
		result.MatchingZones = matchPolygons(lat, lng, hint, sites, zones)
	}
	result.IsInsideAny = len(result.MatchingZones) > 0

	var selected *domain.Site
	if result.IsInsideAny {
		selected = result.MatchingZones[0].Site
	} else if site, distance, ok := nearestSite(lat, lng, sites); ok {
		selected = &site
		d := geo.Round(distance, 2)
		result.DistanceToSiteKm = &d
	}

	if selected != nil && !result.IsInsideAny && result.DistanceToSiteKm != nil &&
		cfg.MaxDeliveryDistanceKm != nil && cfg.UsesCalculatedTariff(selected.Country()) {
		exceeds := *result.DistanceToSiteKm > *cfg.MaxDeliveryDistanceKm
		result.ExceedsMaxDistance = &exceeds
	}

	if result.IsInsideAny && selected != nil {
		s.dispatch(ctx, cfg, *selected, query, geocoded, result)
	}

	outcome = outcomeUnmatched
	if result.IsInsideAny {
		outcome = outcomeMatched
	}
	span.SetAttributes(
		attribute.Bool("zone.inside_any", result.IsInsideAny),
		attribute.Int("zone.matches", len(result.MatchingZones)),
	)
	return result, nil
}

// dispatch applies the country policy of the selected site: logistics validation for
// colombia in cargo mode, a calculated quote otherwise. Failures leave both empty.
func (s *ResolverService) dispatch(ctx context.Context, cfg domain.AppConfig, site domain.Site, query ResolveAddressQuery, geocoded *domain.GeocodedAddress, result *DecisionResult) {
	country := site.Country()

	switch {
	case cfg.UsesCargo(country):
		externalID := s.externalPickupPointID(ctx, site)
		if externalID == "" {
			s.logger.Debug("Site has no pickup point, skipping logistics validation", "siteId", site.SiteID)
			return
		}

		address := geocoded.FormattedAddress
		if address == "" {
			address = query.Address
		}
		city := query.City
		if city == "" {
			city = domain.DefaultCity
		}

		validation, err := s.validator.Validate(ctx, domain.ValidationRequest{
			Address:                address,
			Latitude:               geocoded.Latitude,
			Longitude:              geocoded.Longitude,
			City:                   city,
			ExternalPickingPointID: externalID,
		})
		if err != nil {
			s.logger.WithError(err).Warn("Logistics validation failed", "siteId", site.SiteID)
			return
		}
		result.LogisticsValidation = validation

	case cfg.UsesCalculatedTariff(country):
		quote, err := s.pricing.QuoteFromCoordinates(ctx, site, geocoded.Latitude, geocoded.Longitude)
		if err != nil {
			s.logger.WithError(err).Warn("Delivery pricing failed", "siteId", site.SiteID)
			return
		}
		result.DeliveryPricing = quote
	}
}

// externalPickupPointID returns the enriched external id, else the one stored on the
// site's pickup point
func (s *ResolverService) externalPickupPointID(ctx context.Context, site domain.Site) string {
	if site.PickingPointExternalID != "" {
		return site.PickingPointExternalID
	}
	pp, err := s.pickupPoints.FindBySiteID(ctx, site.SiteID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to look up pickup point", "siteId", site.SiteID)
		return ""
	}
	if pp == nil {
		return ""
	}
	return pp.ExternalID
}

func (s *ResolverService) recordOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordResolution(outcome)
	}
}

// matchPolygons returns the zone containing the point. Zones are scoped to the country
// hint when it names a supported market. When several zones contain the point only the
// one with the nearest centroid is kept; the first wins a tie.
func matchPolygons(lat, lng float64, hint string, sites []domain.Site, zones []domain.Zone) []ZoneMatchDTO {
	if country, ok := domain.ParseCountryHint(hint); ok {
		zones = domain.FilterZonesByCountry(zones, sites, country)
	}
	index := domain.IndexSites(sites)

	var best *domain.Zone
	bestDistance := 0.0
	for i := range zones {
		zone := &zones[i]
		if !zone.Contains(lat, lng) {
			continue
		}
		d := zone.CentroidDistanceKm(lat, lng)
		if best == nil || d < bestDistance {
			best, bestDistance = zone, d
		}
	}
	if best == nil {
		return []ZoneMatchDTO{}
	}

	var site *domain.Site
	if best.SiteID != nil {
		if s, ok := index[*best.SiteID]; ok {
			site = &s
		}
	}
	return []ZoneMatchDTO{{Zone: *ToZoneDTO(best), IsInside: true, Site: site}}
}

// matchNearestSite pairs the point with the nearest site. The site's zone is tested for
// membership; a site without a zone gets a display-only placeholder counted as inside.
func matchNearestSite(lat, lng float64, sites []domain.Site, zones []domain.Zone) []ZoneMatchDTO {
	site, _, ok := nearestSite(lat, lng, sites)
	if !ok {
		return []ZoneMatchDTO{}
	}

	for i := range zones {
		if zones[i].BelongsTo(site.SiteID) {
			return []ZoneMatchDTO{{
				Zone:     *ToZoneDTO(&zones[i]),
				IsInside: zones[i].Contains(lat, lng),
				Site:     &site,
			}}
		}
	}

	return []ZoneMatchDTO{{Zone: *ToZoneDTO(domain.PlaceholderZone(site)), IsInside: true, Site: &site}}
}

// nearestSite returns the site closest to the point. Sites without a location are skipped.
func nearestSite(lat, lng float64, sites []domain.Site) (domain.Site, float64, bool) {
	var best domain.Site
	bestDistance := 0.0
	found := false
	for _, site := range sites {
		if !site.HasLocation() {
			continue
		}
		siteLat, siteLng := site.LatLng()
		d := geo.HaversineKm(lat, lng, siteLat, siteLng)
		if !found || d < bestDistance {
			best, bestDistance, found = site, d, true
		}
	}
	return best, bestDistance, found
}

package application

import (
	"context"
	"fmt"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/internal/geo"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
)

// PricingService quotes distance based delivery fees for a site
type PricingService struct {
	tariffs domain.TariffRepository
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewPricingService creates a new PricingService. m may be nil.
func NewPricingService(tariffs domain.TariffRepository, m *metrics.Metrics, logger *logging.Logger) *PricingService {
	return &PricingService{
		tariffs: tariffs,
		metrics: m,
		logger:  logger.WithComponent("pricing"),
	}
}

// QuoteFromCoordinates prices a delivery from site to the given point using the
// site's stored tariff. It returns nil, nil when the site has no usable location.
func (s *PricingService) QuoteFromCoordinates(ctx context.Context, site domain.Site, lat, lng float64) (*domain.Quote, error) {
	if !site.HasLocation() {
		return nil, nil
	}
	siteLat, siteLng := site.LatLng()
	distance := geo.HaversineKm(siteLat, siteLng, lat, lng)
	return s.Quote(ctx, site, distance, domain.RateOverride{})
}

// Quote prices a delivery of distanceKm from site
func (s *PricingService) Quote(ctx context.Context, site domain.Site, distanceKm float64, override domain.RateOverride) (*domain.Quote, error) {
	tariff, err := s.tariffs.FindBySiteID(ctx, site.SiteID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load tariff", "siteId", site.SiteID)
		return nil, fmt.Errorf("failed to load tariff: %w", err)
	}

	quote := domain.ComputeDeliveryPrice(distanceKm, site, tariff, override)

	mode := string(quote.Mode)
	if quote.UsesExternalLogistics {
		mode = "external"
	}
	if s.metrics != nil {
		s.metrics.RecordQuote(string(quote.Country), mode)
	}
	s.logger.Debug("Delivery quoted",
		"siteId", site.SiteID,
		"country", quote.Country,
		"mode", mode,
		"distanceKm", quote.DistanceKm,
		"customTariff", tariff != nil,
	)

	return &quote, nil
}

package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/logging"
)

// SiteApplicationService exposes the served site list
type SiteApplicationService struct {
	sites  SiteProvider
	logger *logging.Logger
}

// NewSiteApplicationService creates a new SiteApplicationService
func NewSiteApplicationService(sites SiteProvider, logger *logging.Logger) *SiteApplicationService {
	return &SiteApplicationService{
		sites:  sites,
		logger: logger.WithComponent("sites"),
	}
}

// ListSites returns the served sites, optionally scoped to a country
func (s *SiteApplicationService) ListSites(ctx context.Context, forceRefresh bool, country string) ([]domain.Site, error) {
	sites, err := s.load(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	if country == "" {
		return sites, nil
	}
	c, ok := domain.ParseCountry(country)
	if !ok {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid country filter: %q", country))
	}
	return domain.FilterSitesByCountry(sites, c), nil
}

// RefreshSites forces a refresh and returns the new list
func (s *SiteApplicationService) RefreshSites(ctx context.Context) ([]domain.Site, error) {
	sites, err := s.load(ctx, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Sites refreshed on request", "count", len(sites))
	return sites, nil
}

// ListCities returns the sorted unique city names of the served sites
func (s *SiteApplicationService) ListCities(ctx context.Context, country string) ([]string, error) {
	sites, err := s.ListSites(ctx, false, country)
	if err != nil {
		return nil, err
	}
	return domain.Cities(sites), nil
}

func (s *SiteApplicationService) load(ctx context.Context, forceRefresh bool) ([]domain.Site, error) {
	sites, err := s.sites.GetAvailableSites(ctx, forceRefresh)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load sites", "forceRefresh", forceRefresh)
		if stderrors.Is(err, domain.ErrSitesSourceUnavailable) {
			return nil, errors.ErrServiceUnavailable("sites source").Wrap(err)
		}
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	if sites == nil {
		sites = []domain.Site{}
	}
	return sites, nil
}

package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/logging"
)

// DefaultZoneListLimit is the page size when a listing asks for none
const DefaultZoneListLimit = 100

// ZoneApplicationService handles zone-related use cases
type ZoneApplicationService struct {
	repo     domain.ZoneRepository
	sites    SiteProvider
	recorder EventRecorder
	logger   *logging.Logger
}

// NewZoneApplicationService creates a new ZoneApplicationService
func NewZoneApplicationService(repo domain.ZoneRepository, sites SiteProvider, recorder EventRecorder, logger *logging.Logger) *ZoneApplicationService {
	return &ZoneApplicationService{
		repo:     repo,
		sites:    sites,
		recorder: recorder,
		logger:   logger.WithComponent("zones"),
	}
}

// ListZones returns a page of zones. With a country, zones are scoped by their own
// country or the country of their site before paging.
func (s *ZoneApplicationService) ListZones(ctx context.Context, query ListZonesQuery) ([]ZoneDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultZoneListLimit
	}
	skip := query.Skip
	if skip < 0 {
		skip = 0
	}

	if query.Country == "" {
		zones, err := s.repo.FindAll(ctx, skip, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list zones: %w", err)
		}
		return ToZoneDTOs(zones), nil
	}

	country, ok := domain.ParseCountry(query.Country)
	if !ok {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid country filter: %q", query.Country))
	}
	zones, err := s.repo.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	sites, err := s.sites.GetAvailableSites(ctx, false)
	if err != nil {
		s.logger.WithError(err).Warn("Filtering zones without sites")
		sites = nil
	}
	zones = domain.FilterZonesByCountry(zones, sites, country)

	if skip >= len(zones) {
		return []ZoneDTO{}, nil
	}
	zones = zones[skip:]
	if limit < len(zones) {
		zones = zones[:limit]
	}
	return ToZoneDTOs(zones), nil
}

// GetZone retrieves a zone by ID
func (s *ZoneApplicationService) GetZone(ctx context.Context, id int64) (*ZoneDTO, error) {
	zone, err := s.findZone(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToZoneDTO(zone), nil
}

// CreateZone creates a new zone
func (s *ZoneApplicationService) CreateZone(ctx context.Context, cmd CreateZoneCommand) (*ZoneDTO, error) {
	points, err := domain.ToPoints(cmd.Coordinates)
	if err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}
	country, err := parseZoneCountry(cmd.Country)
	if err != nil {
		return nil, err
	}

	zone, err := domain.NewZone(cmd.Name, cmd.Description, points, cmd.Color, cmd.SiteID, country)
	if err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}
	if zone.SiteID != nil {
		if err := s.checkSite(ctx, *zone.SiteID, 0); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, zone); err != nil {
		if isConflict(err) {
			return nil, errors.ErrConflict(err.Error()).Wrap(err)
		}
		s.logger.WithError(err).Error("Failed to create zone", "name", zone.Name)
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}

	s.logger.Info("Zone created", "zoneId", zone.ID, "name", zone.Name, "siteId", zone.SiteID)
	dto := ToZoneDTO(zone)
	recordEvent(ctx, s.recorder, s.logger, aggregateZone, zone.ID, cloudevents.ZoneCreated, cloudevents.EntityData{
		ID:     zone.ID,
		SiteID: zone.SiteID,
		Entity: dto,
	})
	return dto, nil
}

// UpdateZone applies a partial update to a zone
func (s *ZoneApplicationService) UpdateZone(ctx context.Context, cmd UpdateZoneCommand) (*ZoneDTO, error) {
	zone, err := s.findZone(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		zone.Name = *cmd.Name
	}
	if cmd.Description != nil {
		zone.Description = *cmd.Description
	}
	if cmd.Coordinates != nil {
		points, err := domain.ToPoints(cmd.Coordinates)
		if err != nil {
			return nil, errors.ErrValidation(err.Error()).Wrap(err)
		}
		zone.Coordinates = points
	}
	if cmd.Color != nil {
		zone.Color = *cmd.Color
	}
	if cmd.Country != nil {
		country, err := parseZoneCountry(cmd.Country)
		if err != nil {
			return nil, err
		}
		zone.Country = country
	}
	if err := zone.Validate(); err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	if cmd.SiteID != nil {
		if err := s.checkSite(ctx, *cmd.SiteID, zone.ID); err != nil {
			return nil, err
		}
		siteID := *cmd.SiteID
		zone.SiteID = &siteID
	}

	zone.Touch()
	if err := s.repo.Update(ctx, zone); err != nil {
		if isConflict(err) {
			return nil, errors.ErrConflict(err.Error()).Wrap(err)
		}
		s.logger.WithError(err).Error("Failed to update zone", "zoneId", zone.ID)
		return nil, fmt.Errorf("failed to update zone: %w", err)
	}

	s.logger.Info("Zone updated", "zoneId", zone.ID)
	dto := ToZoneDTO(zone)
	recordEvent(ctx, s.recorder, s.logger, aggregateZone, zone.ID, cloudevents.ZoneUpdated, cloudevents.EntityData{
		ID:     zone.ID,
		SiteID: zone.SiteID,
		Entity: dto,
	})
	return dto, nil
}

// DeleteZone removes a zone
func (s *ZoneApplicationService) DeleteZone(ctx context.Context, id int64) error {
	zone, err := s.findZone(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.WithError(err).Error("Failed to delete zone", "zoneId", id)
		return fmt.Errorf("failed to delete zone: %w", err)
	}

	s.logger.Info("Zone deleted", "zoneId", id)
	recordEvent(ctx, s.recorder, s.logger, aggregateZone, id, cloudevents.ZoneDeleted, cloudevents.EntityData{
		ID:     id,
		SiteID: zone.SiteID,
	})
	return nil
}

func (s *ZoneApplicationService) findZone(ctx context.Context, id int64) (*domain.Zone, error) {
	zone, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}
	if zone == nil {
		return nil, errors.ErrNotFound("zone").Wrap(domain.ErrZoneNotFound)
	}
	return zone, nil
}

// checkSite verifies the site is available and not bound to another zone.
// exceptZoneID is the zone being updated, 0 on create.
func (s *ZoneApplicationService) checkSite(ctx context.Context, siteID, exceptZoneID int64) error {
	if _, err := findAvailableSite(ctx, s.sites, siteID, false); err != nil {
		return err
	}

	existing, err := s.repo.FindBySiteID(ctx, siteID)
	if err != nil {
		return fmt.Errorf("failed to find zone by site: %w", err)
	}
	if existing != nil && existing.ID != exceptZoneID {
		return errors.ErrConflict(fmt.Sprintf("site %d is already bound to zone %q (id %d)", siteID, existing.Name, existing.ID)).
			Wrap(domain.ErrSiteAlreadyHasZone)
	}
	return nil
}

func parseZoneCountry(raw *string) (*domain.Country, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	country, ok := domain.ParseCountry(*raw)
	if !ok {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid country: %q", *raw)).Wrap(domain.ErrInvalidCountryFilter)
	}
	return &country, nil
}

// findAvailableSite looks a site up in the served site list. An unknown site is a
// not found error; an unreachable sites source with no snapshot is unavailable.
func findAvailableSite(ctx context.Context, sites SiteProvider, siteID int64, forceRefresh bool) (domain.Site, error) {
	available, err := sites.GetAvailableSites(ctx, forceRefresh)
	if err != nil {
		return domain.Site{}, errors.ErrServiceUnavailable("sites source").Wrap(err)
	}
	site, ok := domain.FindSite(available, siteID)
	if !ok {
		return domain.Site{}, errors.ErrNotFoundWithID("site", fmt.Sprint(siteID)).Wrap(domain.ErrSiteNotFound)
	}
	return site, nil
}

// isConflict reports whether a store rejected a write for breaking a one-to-one association
func isConflict(err error) bool {
	return stderrors.Is(err, domain.ErrSiteAlreadyHasZone) ||
		stderrors.Is(err, domain.ErrSiteAlreadyHasPickupPoint) ||
		stderrors.Is(err, domain.ErrSiteAlreadyHasTariff)
}

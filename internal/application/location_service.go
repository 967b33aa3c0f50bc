package application

import (
	"context"
	"fmt"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/logging"
)

// DefaultLocationListLimit is the page size when a listing asks for none
const DefaultLocationListLimit = 100

// LocationApplicationService handles location use cases. A location may name a
// zone, which must exist when the location is written.
type LocationApplicationService struct {
	repo     domain.LocationRepository
	zones    domain.ZoneRepository
	recorder EventRecorder
	logger   *logging.Logger
}

// NewLocationApplicationService creates a new LocationApplicationService
func NewLocationApplicationService(repo domain.LocationRepository, zones domain.ZoneRepository, recorder EventRecorder, logger *logging.Logger) *LocationApplicationService {
	return &LocationApplicationService{
		repo:     repo,
		zones:    zones,
		recorder: recorder,
		logger:   logger.WithComponent("locations"),
	}
}

// ListLocations returns a page of locations, filtered to one zone first when asked
func (s *LocationApplicationService) ListLocations(ctx context.Context, query ListLocationsQuery) ([]LocationDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLocationListLimit
	}
	skip := query.Skip
	if skip < 0 {
		skip = 0
	}

	locations, err := s.repo.FindAll(ctx, query.ZoneID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return ToLocationDTOs(locations), nil
}

// GetLocation retrieves a location by ID
func (s *LocationApplicationService) GetLocation(ctx context.Context, id int64) (*LocationDTO, error) {
	location, err := s.findLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToLocationDTO(location), nil
}

// CreateLocation creates a new location
func (s *LocationApplicationService) CreateLocation(ctx context.Context, cmd CreateLocationCommand) (*LocationDTO, error) {
	location, err := domain.NewLocation(cmd.Name, cmd.Description, cmd.Latitude, cmd.Longitude, cmd.Address, cmd.ZoneID)
	if err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}
	if location.ZoneID != nil {
		if err := s.checkZone(ctx, *location.ZoneID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, location); err != nil {
		s.logger.WithError(err).Error("Failed to create location", "name", location.Name)
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	s.logger.Info("Location created", "locationId", location.ID, "name", location.Name, "zoneId", location.ZoneID)
	dto := ToLocationDTO(location)
	recordEvent(ctx, s.recorder, s.logger, aggregateLocation, location.ID, cloudevents.LocationCreated, cloudevents.EntityData{
		ID:     location.ID,
		Entity: dto,
	})
	return dto, nil
}

// UpdateLocation applies a partial update to a location
func (s *LocationApplicationService) UpdateLocation(ctx context.Context, cmd UpdateLocationCommand) (*LocationDTO, error) {
	location, err := s.findLocation(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		location.Name = *cmd.Name
	}
	if cmd.Description != nil {
		location.Description = *cmd.Description
	}
	if cmd.Latitude != nil {
		location.Latitude = *cmd.Latitude
	}
	if cmd.Longitude != nil {
		location.Longitude = *cmd.Longitude
	}
	if cmd.Address != nil {
		location.Address = *cmd.Address
	}
	if err := location.Validate(); err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	if cmd.ZoneID != nil {
		if err := s.checkZone(ctx, *cmd.ZoneID); err != nil {
			return nil, err
		}
		zoneID := *cmd.ZoneID
		location.ZoneID = &zoneID
	}

	location.Touch()
	if err := s.repo.Update(ctx, location); err != nil {
		s.logger.WithError(err).Error("Failed to update location", "locationId", location.ID)
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	s.logger.Info("Location updated", "locationId", location.ID)
	dto := ToLocationDTO(location)
	recordEvent(ctx, s.recorder, s.logger, aggregateLocation, location.ID, cloudevents.LocationUpdated, cloudevents.EntityData{
		ID:     location.ID,
		Entity: dto,
	})
	return dto, nil
}

// DeleteLocation removes a location
func (s *LocationApplicationService) DeleteLocation(ctx context.Context, id int64) error {
	if _, err := s.findLocation(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.WithError(err).Error("Failed to delete location", "locationId", id)
		return fmt.Errorf("failed to delete location: %w", err)
	}

	s.logger.Info("Location deleted", "locationId", id)
	recordEvent(ctx, s.recorder, s.logger, aggregateLocation, id, cloudevents.LocationDeleted, cloudevents.EntityData{
		ID: id,
	})
	return nil
}

func (s *LocationApplicationService) findLocation(ctx context.Context, id int64) (*domain.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find location: %w", err)
	}
	if location == nil {
		return nil, errors.ErrNotFound("location").Wrap(domain.ErrLocationNotFound)
	}
	return location, nil
}

// checkZone verifies the zone a location points at exists
func (s *LocationApplicationService) checkZone(ctx context.Context, zoneID int64) error {
	zone, err := s.zones.FindByID(ctx, zoneID)
	if err != nil {
		return fmt.Errorf("failed to find zone: %w", err)
	}
	if zone == nil {
		return errors.ErrNotFoundWithID("zone", fmt.Sprint(zoneID)).Wrap(domain.ErrZoneNotFound)
	}
	return nil
}

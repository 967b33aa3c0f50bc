package application

import (
	"context"
	"fmt"
	"time"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
)

const logisticsProvider = "logistics provider"

// PickupPointApplicationService manages site registrations with the logistics provider
// and their local mirror
type PickupPointApplicationService struct {
	repo     domain.PickupPointRepository
	sites    SiteProvider
	provider PickupPointProvider
	recorder EventRecorder
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewPickupPointApplicationService creates a new PickupPointApplicationService. m may be nil.
func NewPickupPointApplicationService(
	repo domain.PickupPointRepository,
	sites SiteProvider,
	provider PickupPointProvider,
	recorder EventRecorder,
	m *metrics.Metrics,
	logger *logging.Logger,
) *PickupPointApplicationService {
	return &PickupPointApplicationService{
		repo:     repo,
		sites:    sites,
		provider: provider,
		recorder: recorder,
		metrics:  m,
		logger:   logger.WithComponent("pickup-points"),
	}
}

// ListPickupPoints returns the pickup point of one site, or all of them scoped to a country
func (s *PickupPointApplicationService) ListPickupPoints(ctx context.Context, query ListPickupPointsQuery) ([]PickupPointDTO, error) {
	var points []domain.PickupPoint
	if query.SiteID != nil {
		pp, err := s.repo.FindBySiteID(ctx, *query.SiteID)
		if err != nil {
			return nil, fmt.Errorf("failed to find pickup point: %w", err)
		}
		if pp != nil {
			points = append(points, *pp)
		}
	} else {
		all, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list pickup points: %w", err)
		}
		points = all
	}

	if query.Country != "" {
		country, ok := domain.ParseCountry(query.Country)
		if !ok {
			return nil, errors.ErrValidation(fmt.Sprintf("invalid country filter: %q", query.Country))
		}
		sites, err := s.sites.GetAvailableSites(ctx, false)
		if err != nil {
			s.logger.WithError(err).Warn("Filtering pickup points without sites")
			sites = nil
		}
		points = domain.FilterPickupPointsByCountry(points, sites, country)
	}
	return ToPickupPointDTOs(points), nil
}

// GetPickupPoint retrieves a pickup point by ID
func (s *PickupPointApplicationService) GetPickupPoint(ctx context.Context, id int64) (*PickupPointDTO, error) {
	pp, err := s.findPickupPoint(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToPickupPointDTO(pp), nil
}

// CreatePickupPoint registers the site with the provider, then stores the registration
// locally. Nothing is stored when the provider call fails.
func (s *PickupPointApplicationService) CreatePickupPoint(ctx context.Context, cmd CreatePickupPointCommand) (*PickupPointDTO, error) {
	if _, err := findAvailableSite(ctx, s.sites, cmd.SiteID, false); err != nil {
		return nil, err
	}
	if err := s.checkSiteFree(ctx, cmd.SiteID, 0); err != nil {
		return nil, err
	}

	reg := toRegistration(cmd.PickupPointAttributes, cmd.SiteID)
	if err := reg.Validate(); err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	providerID, err := s.provider.Create(ctx, reg)
	if err != nil {
		s.logger.WithError(err).Error("Provider rejected pickup point creation", "siteId", cmd.SiteID)
		return nil, errors.ErrBadGateway(logisticsProvider).Wrap(err)
	}

	pp := &domain.PickupPoint{
		ProviderID: &providerID,
		CreatedAt:  time.Now().UTC(),
	}
	pp.ApplyRegistration(reg, cmd.SiteID)
	pp.UpdatedAt = nil

	if err := s.repo.Create(ctx, pp); err != nil {
		s.logger.WithError(err).Error("Failed to store pickup point", "siteId", cmd.SiteID, "providerId", providerID)
		s.compensate(ctx, providerID)
		if isConflict(err) {
			return nil, errors.ErrConflict(err.Error()).Wrap(err)
		}
		return nil, fmt.Errorf("failed to create pickup point: %w", err)
	}

	s.logger.Info("Pickup point created", "pickupPointId", pp.ID, "siteId", pp.SiteID, "providerId", providerID)
	dto := ToPickupPointDTO(pp)
	recordEvent(ctx, s.recorder, s.logger, aggregatePickupPoint, pp.ID, cloudevents.PickupPointCreated, cloudevents.EntityData{
		ID:     pp.ID,
		SiteID: &pp.SiteID,
		Entity: dto,
	})
	return dto, nil
}

// RelinkPickupPoint refreshes the site list, completes blank attributes from the site
// and pushes them to the provider registration before storing them locally
func (s *PickupPointApplicationService) RelinkPickupPoint(ctx context.Context, cmd RelinkPickupPointCommand) (*PickupPointDTO, error) {
	pp, err := s.findPickupPoint(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if !pp.IsLinked() {
		return nil, errors.ErrValidation(domain.ErrPickupPointNotLinked.Error()).Wrap(domain.ErrPickupPointNotLinked)
	}

	site, err := findAvailableSite(ctx, s.sites, cmd.SiteID, true)
	if err != nil {
		return nil, err
	}
	if cmd.SiteID != pp.SiteID {
		if err := s.checkSiteFree(ctx, cmd.SiteID, pp.ID); err != nil {
			return nil, err
		}
	}

	attrs := cmd.PickupPointAttributes
	if attrs.ExternalID == "" {
		attrs.ExternalID = pp.ExternalIDOrDefault()
	}
	reg := toRegistration(attrs, cmd.SiteID)
	reg.FillFromSite(site)
	if err := reg.Validate(); err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	providerID := *pp.ProviderID
	if err := s.provider.Update(ctx, providerID, reg); err != nil {
		s.recordRelink(false)
		s.logger.WithError(err).Error("Provider rejected pickup point relink", "pickupPointId", pp.ID, "providerId", providerID)
		return nil, errors.ErrBadGateway(logisticsProvider).Wrap(err)
	}

	pp.ApplyRegistration(reg, cmd.SiteID)
	if err := s.repo.Update(ctx, pp); err != nil {
		s.recordRelink(false)
		s.logger.WithError(err).Error("Failed to store relinked pickup point", "pickupPointId", pp.ID)
		return nil, fmt.Errorf("failed to update pickup point: %w", err)
	}

	s.recordRelink(true)
	s.logger.Info("Pickup point relinked", "pickupPointId", pp.ID, "siteId", pp.SiteID, "providerId", providerID)
	dto := ToPickupPointDTO(pp)
	recordEvent(ctx, s.recorder, s.logger, aggregatePickupPoint, pp.ID, cloudevents.PickupPointRelinked, cloudevents.EntityData{
		ID:     pp.ID,
		SiteID: &pp.SiteID,
		Entity: dto,
	})
	return dto, nil
}

// DeletePickupPoint removes the provider registration, when there is one, then the local record
func (s *PickupPointApplicationService) DeletePickupPoint(ctx context.Context, id int64) error {
	pp, err := s.findPickupPoint(ctx, id)
	if err != nil {
		return err
	}

	if pp.IsLinked() {
		if err := s.provider.Delete(ctx, *pp.ProviderID); err != nil {
			s.logger.WithError(err).Error("Provider rejected pickup point deletion", "pickupPointId", id, "providerId", *pp.ProviderID)
			return errors.ErrBadGateway(logisticsProvider).Wrap(err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.WithError(err).Error("Failed to delete pickup point", "pickupPointId", id)
		return fmt.Errorf("failed to delete pickup point: %w", err)
	}

	s.logger.Info("Pickup point deleted", "pickupPointId", id, "siteId", pp.SiteID)
	recordEvent(ctx, s.recorder, s.logger, aggregatePickupPoint, id, cloudevents.PickupPointDeleted, cloudevents.EntityData{
		ID:     id,
		SiteID: &pp.SiteID,
	})
	return nil
}

// ListProviderPickupPoints returns the registrations as the provider reports them
func (s *PickupPointApplicationService) ListProviderPickupPoints(ctx context.Context) ([]map[string]interface{}, error) {
	points, err := s.provider.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list provider pickup points")
		return nil, errors.ErrBadGateway(logisticsProvider).Wrap(err)
	}
	if points == nil {
		points = []map[string]interface{}{}
	}
	return points, nil
}

func (s *PickupPointApplicationService) findPickupPoint(ctx context.Context, id int64) (*domain.PickupPoint, error) {
	pp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find pickup point: %w", err)
	}
	if pp == nil {
		return nil, errors.ErrNotFoundWithID("pickup point", fmt.Sprint(id)).Wrap(domain.ErrPickupPointNotFound)
	}
	return pp, nil
}

// checkSiteFree rejects a site already registered by another pickup point
func (s *PickupPointApplicationService) checkSiteFree(ctx context.Context, siteID, exceptID int64) error {
	existing, err := s.repo.FindBySiteID(ctx, siteID)
	if err != nil {
		return fmt.Errorf("failed to find pickup point by site: %w", err)
	}
	if existing != nil && existing.ID != exceptID {
		return errors.ErrConflict(fmt.Sprintf("site %d already has pickup point %d", siteID, existing.ID)).
			Wrap(domain.ErrSiteAlreadyHasPickupPoint)
	}
	return nil
}

// compensate removes a provider registration whose local record could not be stored
func (s *PickupPointApplicationService) compensate(ctx context.Context, providerID int64) {
	if err := s.provider.Delete(ctx, providerID); err != nil {
		s.logger.WithError(err).Warn("Failed to remove orphaned provider pickup point", "providerId", providerID)
	}
}

func (s *PickupPointApplicationService) recordRelink(success bool) {
	if s.metrics != nil {
		s.metrics.RecordPickupPointRelink(relinkManual, success)
	}
}

// toRegistration applies the provider defaults to the requested attributes
func toRegistration(attrs PickupPointAttributes, siteID int64) domain.ProviderPickupPoint {
	reg := domain.ProviderPickupPoint{
		Lat:              attrs.Lat,
		Lng:              attrs.Lng,
		Address:          attrs.Address,
		City:             attrs.City,
		Phone:            attrs.Phone,
		ZipCode:          attrs.ZipCode,
		Status:           attrs.Status,
		Name:             attrs.Name,
		ContactName:      attrs.ContactName,
		ContactEmail:     attrs.ContactEmail,
		PreparationTime:  attrs.PreparationTime,
		ExternalID:       attrs.ExternalID,
		StoreID:          attrs.StoreID,
		DefaultTip:       domain.DefaultTip,
		HandshakeEnabled: boolOr(attrs.HandshakeEnabled, true),
		ReturnEnabled:    boolOr(attrs.ReturnEnabled, true),
		HandoffEnabled:   boolOr(attrs.HandoffEnabled, true),
	}
	if attrs.DefaultTip != nil {
		reg.DefaultTip = *attrs.DefaultTip
	}
	if reg.Status == 0 {
		reg.Status = domain.DefaultPickupPointStatus
	}
	if reg.PreparationTime == 0 {
		reg.PreparationTime = domain.DefaultPreparationTime
	}
	if reg.ExternalID == "" {
		reg.ExternalID = (&domain.PickupPoint{SiteID: siteID}).ExternalIDOrDefault()
	}
	return reg
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

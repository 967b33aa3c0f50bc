package application

import (
	"context"
	"fmt"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/logging"
)

// TariffApplicationService handles per-site tariffs
type TariffApplicationService struct {
	repo     domain.TariffRepository
	sites    SiteProvider
	config   domain.ConfigRepository
	recorder EventRecorder
	logger   *logging.Logger
}

// NewTariffApplicationService creates a new TariffApplicationService
func NewTariffApplicationService(
	repo domain.TariffRepository,
	sites SiteProvider,
	config domain.ConfigRepository,
	recorder EventRecorder,
	logger *logging.Logger,
) *TariffApplicationService {
	return &TariffApplicationService{
		repo:     repo,
		sites:    sites,
		config:   config,
		recorder: recorder,
		logger:   logger.WithComponent("tariffs"),
	}
}

// ListTariffs returns the tariff of one site, or every tariff scoped to a country
func (s *TariffApplicationService) ListTariffs(ctx context.Context, query ListTariffsQuery) ([]TariffDTO, error) {
	if query.SiteID != nil {
		tariff, err := s.repo.FindBySiteID(ctx, *query.SiteID)
		if err != nil {
			return nil, fmt.Errorf("failed to find tariff: %w", err)
		}
		if tariff == nil {
			return []TariffDTO{}, nil
		}
		return []TariffDTO{*ToTariffDTO(tariff)}, nil
	}

	tariffs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tariffs: %w", err)
	}
	if query.Country == "" {
		return ToTariffDTOs(tariffs), nil
	}

	country, ok := domain.ParseCountry(query.Country)
	if !ok {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid country filter: %q", query.Country))
	}
	sites, err := s.sites.GetAvailableSites(ctx, false)
	if err != nil {
		s.logger.WithError(err).Warn("Filtering tariffs without sites")
		sites = nil
	}
	index := domain.IndexSites(domain.FilterSitesByCountry(sites, country))

	filtered := make([]domain.Tariff, 0, len(tariffs))
	for _, t := range tariffs {
		if _, ok := index[t.SiteID]; ok {
			filtered = append(filtered, t)
		}
	}
	return ToTariffDTOs(filtered), nil
}

// GetTariff retrieves the tariff of a site
func (s *TariffApplicationService) GetTariff(ctx context.Context, siteID int64) (*TariffDTO, error) {
	tariff, err := s.findTariff(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return ToTariffDTO(tariff), nil
}

// CreateTariff creates the tariff of a site. Colombian sites only accept one while
// colombian deliveries are priced internally.
func (s *TariffApplicationService) CreateTariff(ctx context.Context, cmd CreateTariffCommand) (*TariffDTO, error) {
	site, err := findAvailableSite(ctx, s.sites, cmd.SiteID, false)
	if err != nil {
		return nil, err
	}

	if site.Country() == domain.CountryColombia {
		cfg, err := loadConfig(ctx, s.config)
		if err != nil {
			return nil, err
		}
		if cfg.ColombiaDeliveryMode != domain.ColombiaModeCalculated {
			return nil, errors.ErrValidation(domain.ErrTariffNeedsCalculated.Error()).Wrap(domain.ErrTariffNeedsCalculated)
		}
	}

	tariff, err := domain.NewTariff(site, domain.TariffMode(cmd.TariffMode), cmd.PricePerKm, cmd.MinFee, cmd.MaxFee, cmd.BaseDistanceKm, cmd.SurchargePerKm)
	if err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	existing, err := s.repo.FindBySiteID(ctx, cmd.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tariff: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("site %d already has a tariff", cmd.SiteID)).Wrap(domain.ErrSiteAlreadyHasTariff)
	}

	if err := s.repo.Create(ctx, tariff); err != nil {
		if isConflict(err) {
			return nil, errors.ErrConflict(err.Error()).Wrap(err)
		}
		s.logger.WithError(err).Error("Failed to create tariff", "siteId", cmd.SiteID)
		return nil, fmt.Errorf("failed to create tariff: %w", err)
	}

	s.logger.Info("Tariff created", "siteId", tariff.SiteID, "country", tariff.Country, "mode", tariff.Mode)
	return s.upserted(ctx, tariff), nil
}

// UpdateTariff applies a partial update and re-validates the merged tariff
func (s *TariffApplicationService) UpdateTariff(ctx context.Context, cmd UpdateTariffCommand) (*TariffDTO, error) {
	tariff, err := s.findTariff(ctx, cmd.SiteID)
	if err != nil {
		return nil, err
	}

	patch := domain.TariffPatch{
		PricePerKm:     cmd.PricePerKm,
		MinFee:         cmd.MinFee,
		MaxFee:         cmd.MaxFee,
		BaseDistanceKm: cmd.BaseDistanceKm,
		SurchargePerKm: cmd.SurchargePerKm,
	}
	if cmd.TariffMode != nil {
		mode := domain.TariffMode(*cmd.TariffMode)
		patch.Mode = &mode
	}
	if err := tariff.Apply(patch); err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	if err := s.repo.Update(ctx, tariff); err != nil {
		s.logger.WithError(err).Error("Failed to update tariff", "siteId", cmd.SiteID)
		return nil, fmt.Errorf("failed to update tariff: %w", err)
	}

	s.logger.Info("Tariff updated", "siteId", tariff.SiteID, "mode", tariff.Mode)
	return s.upserted(ctx, tariff), nil
}

// DeleteTariff removes the tariff of a site
func (s *TariffApplicationService) DeleteTariff(ctx context.Context, siteID int64) error {
	if _, err := s.findTariff(ctx, siteID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, siteID); err != nil {
		s.logger.WithError(err).Error("Failed to delete tariff", "siteId", siteID)
		return fmt.Errorf("failed to delete tariff: %w", err)
	}

	s.logger.Info("Tariff deleted", "siteId", siteID)
	recordEvent(ctx, s.recorder, s.logger, aggregateTariff, siteID, cloudevents.TariffDeleted, cloudevents.EntityData{
		ID:     siteID,
		SiteID: &siteID,
	})
	return nil
}

func (s *TariffApplicationService) upserted(ctx context.Context, tariff *domain.Tariff) *TariffDTO {
	dto := ToTariffDTO(tariff)
	siteID := tariff.SiteID
	recordEvent(ctx, s.recorder, s.logger, aggregateTariff, siteID, cloudevents.TariffUpserted, cloudevents.EntityData{
		ID:     siteID,
		SiteID: &siteID,
		Entity: dto,
	})
	return dto
}

func (s *TariffApplicationService) findTariff(ctx context.Context, siteID int64) (*domain.Tariff, error) {
	tariff, err := s.repo.FindBySiteID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tariff: %w", err)
	}
	if tariff == nil {
		return nil, errors.ErrNotFoundWithID("tariff", fmt.Sprint(siteID)).Wrap(domain.ErrTariffNotFound)
	}
	return tariff, nil
}

package application

import (
	"context"
	"fmt"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/logging"
)

// UpdateConfigCommand changes the operator configuration.
// Nil optional fields keep their current value.
type UpdateConfigCommand struct {
	ValidationMode        string
	ColombiaDeliveryMode  *string
	MaxDeliveryDistanceKm *float64
}

// ConfigApplicationService handles the operator configuration singleton
type ConfigApplicationService struct {
	repo     domain.ConfigRepository
	recorder EventRecorder
	logger   *logging.Logger
}

// NewConfigApplicationService creates a new ConfigApplicationService
func NewConfigApplicationService(repo domain.ConfigRepository, recorder EventRecorder, logger *logging.Logger) *ConfigApplicationService {
	return &ConfigApplicationService{
		repo:     repo,
		recorder: recorder,
		logger:   logger.WithComponent("config"),
	}
}

// GetConfig returns the current configuration, or the defaults when none is stored
func (s *ConfigApplicationService) GetConfig(ctx context.Context) (*AppConfigDTO, error) {
	cfg, err := loadConfig(ctx, s.repo)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load config")
		return nil, err
	}
	return ToAppConfigDTO(cfg), nil
}

// UpdateConfig validates and stores a configuration change
func (s *ConfigApplicationService) UpdateConfig(ctx context.Context, cmd UpdateConfigCommand) (*AppConfigDTO, error) {
	cfg, err := loadConfig(ctx, s.repo)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load config")
		return nil, err
	}

	patch := domain.AppConfigPatch{
		ValidationMode:        domain.ValidationMode(cmd.ValidationMode),
		MaxDeliveryDistanceKm: cmd.MaxDeliveryDistanceKm,
	}
	if cmd.ColombiaDeliveryMode != nil {
		mode := domain.ColombiaDeliveryMode(*cmd.ColombiaDeliveryMode)
		patch.ColombiaDeliveryMode = &mode
	}
	if err := cfg.Apply(patch); err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	if err := s.repo.Save(ctx, &cfg); err != nil {
		s.logger.WithError(err).Error("Failed to save config")
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	s.logger.Info("Config updated",
		"validationMode", cfg.ValidationMode,
		"colombiaDeliveryMode", cfg.ColombiaDeliveryMode,
		"maxDeliveryDistanceKm", cfg.MaxDeliveryDistanceKm,
	)
	recordEvent(ctx, s.recorder, s.logger, aggregateConfig, 1, cloudevents.ConfigUpdated, cloudevents.EntityData{
		ID:     1,
		Entity: ToAppConfigDTO(cfg),
	})

	return ToAppConfigDTO(cfg), nil
}

// loadConfig reads the stored configuration, falling back to the defaults
func loadConfig(ctx context.Context, repo domain.ConfigRepository) (domain.AppConfig, error) {
	stored, err := repo.Get(ctx)
	if err != nil {
		return domain.AppConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	if stored == nil {
		return domain.DefaultAppConfig(), nil
	}
	cfg := *stored
	cfg.Normalize()
	return cfg, nil
}

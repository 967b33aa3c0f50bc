package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/logging"
)

// OrderApplicationService records storefront orders and reports on them
type OrderApplicationService struct {
	repo     domain.OrderRepository
	zones    domain.ZoneRepository
	sites    SiteProvider
	recorder EventRecorder
	logger   *logging.Logger
}

// NewOrderApplicationService creates a new OrderApplicationService
func NewOrderApplicationService(
	repo domain.OrderRepository,
	zones domain.ZoneRepository,
	sites SiteProvider,
	recorder EventRecorder,
	logger *logging.Logger,
) *OrderApplicationService {
	return &OrderApplicationService{
		repo:     repo,
		zones:    zones,
		sites:    sites,
		recorder: recorder,
		logger:   logger.WithComponent("orders"),
	}
}

// CreateOrder stores an order. The order date defaults to now.
func (s *OrderApplicationService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	now := time.Now().UTC()
	order := &domain.Order{
		Latitude:         cmd.Latitude,
		Longitude:        cmd.Longitude,
		Address:          strings.TrimSpace(cmd.Address),
		FormattedAddress: cmd.FormattedAddress,
		FirstName:        cmd.FirstName,
		LastName:         cmd.LastName,
		Phone:            cmd.Phone,
		Email:            cmd.Email,
		Complement:       cmd.Complement,
		City:             cmd.City,
		Country:          cmd.Country,
		Comments:         cmd.Comments,
		OrderDate:        now,
		CreatedAt:        now,
	}
	if cmd.OrderDate != nil {
		order.OrderDate = cmd.OrderDate.UTC()
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.WithError(err).Error("Failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order recorded", "orderId", order.ID, "city", order.City)
	dto := ToOrderDTO(order)
	recordEvent(ctx, s.recorder, s.logger, aggregateOrder, order.ID, cloudevents.OrderRecorded, cloudevents.EntityData{
		ID:     order.ID,
		Entity: dto,
	})
	return dto, nil
}

// ListOrders filters orders and counts them per containing zone
func (s *OrderApplicationService) ListOrders(ctx context.Context, query ListOrdersQuery) (*OrderListDTO, error) {
	filter, err := domain.ParseOrderFilter(query.StartDate, query.EndDate, query.Cities, query.Country)
	if err != nil {
		return nil, errors.ErrValidation(err.Error()).Wrap(err)
	}

	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	var sites []domain.Site
	if filter.Country != "" {
		sites, err = s.sites.GetAvailableSites(ctx, false)
		if err != nil {
			s.logger.WithError(err).Warn("Filtering orders without sites")
			sites = nil
		}
	}
	orders = filter.Apply(orders, sites)

	zones, err := s.zones.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}

	return &OrderListDTO{
		Orders:    ToOrderDTOs(orders),
		Total:     len(orders),
		ZoneStats: domain.ZoneStats(orders, zones),
	}, nil
}

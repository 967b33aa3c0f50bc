package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/errors"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// ResolverService answers address checks
type ResolverService interface {
	ResolveAddress(ctx context.Context, query application.ResolveAddressQuery) (*application.DecisionResult, error)
}

// ZoneService manages delivery zones
type ZoneService interface {
	ListZones(ctx context.Context, query application.ListZonesQuery) ([]application.ZoneDTO, error)
	GetZone(ctx context.Context, id int64) (*application.ZoneDTO, error)
	CreateZone(ctx context.Context, cmd application.CreateZoneCommand) (*application.ZoneDTO, error)
	UpdateZone(ctx context.Context, cmd application.UpdateZoneCommand) (*application.ZoneDTO, error)
	DeleteZone(ctx context.Context, id int64) error
}

// LocationService manages locations
type LocationService interface {
	ListLocations(ctx context.Context, query application.ListLocationsQuery) ([]application.LocationDTO, error)
	GetLocation(ctx context.Context, id int64) (*application.LocationDTO, error)
	CreateLocation(ctx context.Context, cmd application.CreateLocationCommand) (*application.LocationDTO, error)
	UpdateLocation(ctx context.Context, cmd application.UpdateLocationCommand) (*application.LocationDTO, error)
	DeleteLocation(ctx context.Context, id int64) error
}

// TariffService manages site tariffs
type TariffService interface {
	ListTariffs(ctx context.Context, query application.ListTariffsQuery) ([]application.TariffDTO, error)
	GetTariff(ctx context.Context, siteID int64) (*application.TariffDTO, error)
	CreateTariff(ctx context.Context, cmd application.CreateTariffCommand) (*application.TariffDTO, error)
	UpdateTariff(ctx context.Context, cmd application.UpdateTariffCommand) (*application.TariffDTO, error)
	DeleteTariff(ctx context.Context, siteID int64) error
}

// PickupPointService manages pickup point registrations
type PickupPointService interface {
	ListPickupPoints(ctx context.Context, query application.ListPickupPointsQuery) ([]application.PickupPointDTO, error)
	GetPickupPoint(ctx context.Context, id int64) (*application.PickupPointDTO, error)
	CreatePickupPoint(ctx context.Context, cmd application.CreatePickupPointCommand) (*application.PickupPointDTO, error)
	RelinkPickupPoint(ctx context.Context, cmd application.RelinkPickupPointCommand) (*application.PickupPointDTO, error)
	DeletePickupPoint(ctx context.Context, id int64) error
	ListProviderPickupPoints(ctx context.Context) ([]map[string]interface{}, error)
}

// OrderService records and reports storefront orders
type OrderService interface {
	CreateOrder(ctx context.Context, cmd application.CreateOrderCommand) (*application.OrderDTO, error)
	ListOrders(ctx context.Context, query application.ListOrdersQuery) (*application.OrderListDTO, error)
}

// ConfigService reads and changes the operator configuration
type ConfigService interface {
	GetConfig(ctx context.Context) (*application.AppConfigDTO, error)
	UpdateConfig(ctx context.Context, cmd application.UpdateConfigCommand) (*application.AppConfigDTO, error)
}

// SiteService exposes the cached site list
type SiteService interface {
	ListSites(ctx context.Context, forceRefresh bool, country string) ([]domain.Site, error)
	RefreshSites(ctx context.Context) ([]domain.Site, error)
	ListCities(ctx context.Context, country string) ([]string, error)
}

// domainErrors maps sentinel errors that reach a handler without an AppError
var domainErrors = errors.NewMapper().
	On(domain.ErrZoneNotFound, errors.CodeNotFound, http.StatusNotFound).
	On(domain.ErrLocationNotFound, errors.CodeNotFound, http.StatusNotFound).
	On(domain.ErrTariffNotFound, errors.CodeNotFound, http.StatusNotFound).
	On(domain.ErrPickupPointNotFound, errors.CodeNotFound, http.StatusNotFound).
	On(domain.ErrSiteNotFound, errors.CodeNotFound, http.StatusNotFound).
	On(domain.ErrSiteAlreadyHasZone, errors.CodeConflict, http.StatusConflict).
	On(domain.ErrSiteAlreadyHasPickupPoint, errors.CodeConflict, http.StatusConflict).
	On(domain.ErrSiteAlreadyHasTariff, errors.CodeConflict, http.StatusConflict).
	On(domain.ErrGeocodingNotConfigured, errors.CodeConfiguration, http.StatusInternalServerError).
	On(domain.ErrSitesSourceUnavailable, errors.CodeServiceUnavailable, http.StatusServiceUnavailable).
	On(domain.ErrProviderRejected, errors.CodeBadGateway, http.StatusBadGateway)

// ErrorMapper returns the domain error mapping used by the handlers, for
// errors attached with c.Error outside them.
func ErrorMapper() *errors.Mapper {
	return domainErrors
}

// respondError renders err, mapping bare domain errors first
func respondError(responder *middleware.ErrorResponder, err error) {
	responder.RespondWithAppError(domainErrors.Map(err))
}

// int64Param reads a numeric path parameter
func int64Param(c *gin.Context, name string) (int64, *errors.AppError) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.ErrBadRequest(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return id, nil
}

// bindQuery binds and validates query parameters
func bindQuery(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindQuery(obj); err != nil {
		fields := middleware.ValidationErrorFormatter(err)
		if len(fields) > 0 {
			return errors.ErrValidationWithFields("invalid query parameters", fields)
		}
		return errors.ErrBadRequest("invalid query parameters: " + err.Error())
	}
	return nil
}

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

type routeRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func testLogger() *logging.Logger {
	return logging.NewNop()
}

func newTestRouter(handlers routeRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.InitValidator()
	router := gin.New()
	handlers.RegisterRoutes(router.Group("/api"))
	return router
}

func performRequest(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type mockResolverService struct {
	resolveFn func(ctx context.Context, query application.ResolveAddressQuery) (*application.DecisionResult, error)
}

func (m *mockResolverService) ResolveAddress(ctx context.Context, query application.ResolveAddressQuery) (*application.DecisionResult, error) {
	if m.resolveFn == nil {
		panic("ResolveAddress not implemented")
	}
	return m.resolveFn(ctx, query)
}

type mockZoneService struct {
	listFn   func(ctx context.Context, query application.ListZonesQuery) ([]application.ZoneDTO, error)
	getFn    func(ctx context.Context, id int64) (*application.ZoneDTO, error)
	createFn func(ctx context.Context, cmd application.CreateZoneCommand) (*application.ZoneDTO, error)
	updateFn func(ctx context.Context, cmd application.UpdateZoneCommand) (*application.ZoneDTO, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockZoneService) ListZones(ctx context.Context, query application.ListZonesQuery) ([]application.ZoneDTO, error) {
	if m.listFn == nil {
		panic("ListZones not implemented")
	}
	return m.listFn(ctx, query)
}

func (m *mockZoneService) GetZone(ctx context.Context, id int64) (*application.ZoneDTO, error) {
	if m.getFn == nil {
		panic("GetZone not implemented")
	}
	return m.getFn(ctx, id)
}

func (m *mockZoneService) CreateZone(ctx context.Context, cmd application.CreateZoneCommand) (*application.ZoneDTO, error) {
	if m.createFn == nil {
		panic("CreateZone not implemented")
	}
	return m.createFn(ctx, cmd)
}

func (m *mockZoneService) UpdateZone(ctx context.Context, cmd application.UpdateZoneCommand) (*application.ZoneDTO, error) {
	if m.updateFn == nil {
		panic("UpdateZone not implemented")
	}
	return m.updateFn(ctx, cmd)
}

func (m *mockZoneService) DeleteZone(ctx context.Context, id int64) error {
	if m.deleteFn == nil {
		panic("DeleteZone not implemented")
	}
	return m.deleteFn(ctx, id)
}

type mockLocationService struct {
	listFn   func(ctx context.Context, query application.ListLocationsQuery) ([]application.LocationDTO, error)
	getFn    func(ctx context.Context, id int64) (*application.LocationDTO, error)
	createFn func(ctx context.Context, cmd application.CreateLocationCommand) (*application.LocationDTO, error)
	updateFn func(ctx context.Context, cmd application.UpdateLocationCommand) (*application.LocationDTO, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockLocationService) ListLocations(ctx context.Context, query application.ListLocationsQuery) ([]application.LocationDTO, error) {
	if m.listFn == nil {
		panic("ListLocations not implemented")
	}
	return m.listFn(ctx, query)
}

func (m *mockLocationService) GetLocation(ctx context.Context, id int64) (*application.LocationDTO, error) {
	if m.getFn == nil {
		panic("GetLocation not implemented")
	}
	return m.getFn(ctx, id)
}

func (m *mockLocationService) CreateLocation(ctx context.Context, cmd application.CreateLocationCommand) (*application.LocationDTO, error) {
	if m.createFn == nil {
		panic("CreateLocation not implemented")
	}
	return m.createFn(ctx, cmd)
}

func (m *mockLocationService) UpdateLocation(ctx context.Context, cmd application.UpdateLocationCommand) (*application.LocationDTO, error) {
	if m.updateFn == nil {
		panic("UpdateLocation not implemented")
	}
	return m.updateFn(ctx, cmd)
}

func (m *mockLocationService) DeleteLocation(ctx context.Context, id int64) error {
	if m.deleteFn == nil {
		panic("DeleteLocation not implemented")
	}
	return m.deleteFn(ctx, id)
}

type mockTariffService struct {
	listFn   func(ctx context.Context, query application.ListTariffsQuery) ([]application.TariffDTO, error)
	getFn    func(ctx context.Context, siteID int64) (*application.TariffDTO, error)
	createFn func(ctx context.Context, cmd application.CreateTariffCommand) (*application.TariffDTO, error)
	updateFn func(ctx context.Context, cmd application.UpdateTariffCommand) (*application.TariffDTO, error)
	deleteFn func(ctx context.Context, siteID int64) error
}

func (m *mockTariffService) ListTariffs(ctx context.Context, query application.ListTariffsQuery) ([]application.TariffDTO, error) {
	if m.listFn == nil {
		panic("ListTariffs not implemented")
	}
	return m.listFn(ctx, query)
}

func (m *mockTariffService) GetTariff(ctx context.Context, siteID int64) (*application.TariffDTO, error) {
	if m.getFn == nil {
		panic("GetTariff not implemented")
	}
	return m.getFn(ctx, siteID)
}

func (m *mockTariffService) CreateTariff(ctx context.Context, cmd application.CreateTariffCommand) (*application.TariffDTO, error) {
	if m.createFn == nil {
		panic("CreateTariff not implemented")
	}
	return m.createFn(ctx, cmd)
}

func (m *mockTariffService) UpdateTariff(ctx context.Context, cmd application.UpdateTariffCommand) (*application.TariffDTO, error) {
	if m.updateFn == nil {
		panic("UpdateTariff not implemented")
	}
	return m.updateFn(ctx, cmd)
}

func (m *mockTariffService) DeleteTariff(ctx context.Context, siteID int64) error {
	if m.deleteFn == nil {
		panic("DeleteTariff not implemented")
	}
	return m.deleteFn(ctx, siteID)
}

type mockPickupPointService struct {
	listFn         func(ctx context.Context, query application.ListPickupPointsQuery) ([]application.PickupPointDTO, error)
	getFn          func(ctx context.Context, id int64) (*application.PickupPointDTO, error)
	createFn       func(ctx context.Context, cmd application.CreatePickupPointCommand) (*application.PickupPointDTO, error)
	relinkFn       func(ctx context.Context, cmd application.RelinkPickupPointCommand) (*application.PickupPointDTO, error)
	deleteFn       func(ctx context.Context, id int64) error
	listProviderFn func(ctx context.Context) ([]map[string]interface{}, error)
}

func (m *mockPickupPointService) ListPickupPoints(ctx context.Context, query application.ListPickupPointsQuery) ([]application.PickupPointDTO, error) {
	if m.listFn == nil {
		panic("ListPickupPoints not implemented")
	}
	return m.listFn(ctx, query)
}

func (m *mockPickupPointService) GetPickupPoint(ctx context.Context, id int64) (*application.PickupPointDTO, error) {
	if m.getFn == nil {
		panic("GetPickupPoint not implemented")
	}
	return m.getFn(ctx, id)
}

func (m *mockPickupPointService) CreatePickupPoint(ctx context.Context, cmd application.CreatePickupPointCommand) (*application.PickupPointDTO, error) {
	if m.createFn == nil {
		panic("CreatePickupPoint not implemented")
	}
	return m.createFn(ctx, cmd)
}

func (m *mockPickupPointService) RelinkPickupPoint(ctx context.Context, cmd application.RelinkPickupPointCommand) (*application.PickupPointDTO, error) {
	if m.relinkFn == nil {
		panic("RelinkPickupPoint not implemented")
	}
	return m.relinkFn(ctx, cmd)
}

func (m *mockPickupPointService) DeletePickupPoint(ctx context.Context, id int64) error {
	if m.deleteFn == nil {
		panic("DeletePickupPoint not implemented")
	}
	return m.deleteFn(ctx, id)
}

func (m *mockPickupPointService) ListProviderPickupPoints(ctx context.Context) ([]map[string]interface{}, error) {
	if m.listProviderFn == nil {
		panic("ListProviderPickupPoints not implemented")
	}
	return m.listProviderFn(ctx)
}

type mockOrderService struct {
	createFn func(ctx context.Context, cmd application.CreateOrderCommand) (*application.OrderDTO, error)
	listFn   func(ctx context.Context, query application.ListOrdersQuery) (*application.OrderListDTO, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, cmd application.CreateOrderCommand) (*application.OrderDTO, error) {
	if m.createFn == nil {
		panic("CreateOrder not implemented")
	}
	return m.createFn(ctx, cmd)
}

func (m *mockOrderService) ListOrders(ctx context.Context, query application.ListOrdersQuery) (*application.OrderListDTO, error) {
	if m.listFn == nil {
		panic("ListOrders not implemented")
	}
	return m.listFn(ctx, query)
}

type mockConfigService struct {
	getFn    func(ctx context.Context) (*application.AppConfigDTO, error)
	updateFn func(ctx context.Context, cmd application.UpdateConfigCommand) (*application.AppConfigDTO, error)
}

func (m *mockConfigService) GetConfig(ctx context.Context) (*application.AppConfigDTO, error) {
	if m.getFn == nil {
		panic("GetConfig not implemented")
	}
	return m.getFn(ctx)
}

func (m *mockConfigService) UpdateConfig(ctx context.Context, cmd application.UpdateConfigCommand) (*application.AppConfigDTO, error) {
	if m.updateFn == nil {
		panic("UpdateConfig not implemented")
	}
	return m.updateFn(ctx, cmd)
}

type mockSiteService struct {
	listFn    func(ctx context.Context, forceRefresh bool, country string) ([]domain.Site, error)
	refreshFn func(ctx context.Context) ([]domain.Site, error)
	citiesFn  func(ctx context.Context, country string) ([]string, error)
}

func (m *mockSiteService) ListSites(ctx context.Context, forceRefresh bool, country string) ([]domain.Site, error) {
	if m.listFn == nil {
		panic("ListSites not implemented")
	}
	return m.listFn(ctx, forceRefresh, country)
}

func (m *mockSiteService) RefreshSites(ctx context.Context) ([]domain.Site, error) {
	if m.refreshFn == nil {
		panic("RefreshSites not implemented")
	}
	return m.refreshFn(ctx)
}

func (m *mockSiteService) ListCities(ctx context.Context, country string) ([]string, error) {
	if m.citiesFn == nil {
		panic("ListCities not implemented")
	}
	return m.citiesFn(ctx, country)
}

func ptrInt64(v int64) *int64 { return &v }

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// TariffHandlers contains handlers for site tariffs
type TariffHandlers struct {
	service TariffService
	logger  *logging.Logger
}

func NewTariffHandlers(service TariffService, logger *logging.Logger) *TariffHandlers {
	return &TariffHandlers{service: service, logger: logger}
}

// RegisterRoutes registers tariff routes on the router
func (h *TariffHandlers) RegisterRoutes(router *gin.RouterGroup) {
	tariffs := router.Group("/site-tariffs")
	{
		tariffs.GET("", h.ListTariffs)
		tariffs.POST("", h.CreateTariff)
		tariffs.GET("/:siteId", h.GetTariff)
		tariffs.PUT("/:siteId", h.UpdateTariff)
		tariffs.DELETE("/:siteId", h.DeleteTariff)
	}
}

type listTariffsRequest struct {
	SiteID  *int64 `form:"site_id"`
	Country string `form:"country"`
}

type createTariffRequest struct {
	SiteID         int64    `json:"site_id" binding:"required"`
	TariffMode     string   `json:"tariff_mode" binding:"tariff_mode"`
	PricePerKm     float64  `json:"price_per_km" binding:"required,gt=0"`
	MinFee         float64  `json:"min_fee" binding:"required,gt=0"`
	MaxFee         *float64 `json:"max_fee" binding:"omitempty,gt=0"`
	BaseDistanceKm *float64 `json:"base_distance_km" binding:"omitempty,gt=0"`
	SurchargePerKm *float64 `json:"surcharge_per_km" binding:"omitempty,gt=0"`
}

type updateTariffRequest struct {
	TariffMode     *string  `json:"tariff_mode" binding:"omitempty,tariff_mode"`
	PricePerKm     *float64 `json:"price_per_km" binding:"omitempty,gt=0"`
	MinFee         *float64 `json:"min_fee" binding:"omitempty,gt=0"`
	MaxFee         *float64 `json:"max_fee" binding:"omitempty,gt=0"`
	BaseDistanceKm *float64 `json:"base_distance_km" binding:"omitempty,gt=0"`
	SurchargePerKm *float64 `json:"surcharge_per_km" binding:"omitempty,gt=0"`
}

func (h *TariffHandlers) ListTariffs(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req listTariffsRequest
	if appErr := bindQuery(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	tariffs, err := h.service.ListTariffs(c.Request.Context(), application.ListTariffsQuery{
		SiteID:  req.SiteID,
		Country: req.Country,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, tariffs)
}

func (h *TariffHandlers) GetTariff(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	siteID, appErr := int64Param(c, "siteId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"site.id": siteID})

	tariff, err := h.service.GetTariff(c.Request.Context(), siteID)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, tariff)
}

func (h *TariffHandlers) CreateTariff(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req createTariffRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"site.id": req.SiteID})

	tariff, err := h.service.CreateTariff(c.Request.Context(), application.CreateTariffCommand{
		SiteID:         req.SiteID,
		TariffMode:     req.TariffMode,
		PricePerKm:     req.PricePerKm,
		MinFee:         req.MinFee,
		MaxFee:         req.MaxFee,
		BaseDistanceKm: req.BaseDistanceKm,
		SurchargePerKm: req.SurchargePerKm,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, tariff)
}

func (h *TariffHandlers) UpdateTariff(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	siteID, appErr := int64Param(c, "siteId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"site.id": siteID})

	var req updateTariffRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	tariff, err := h.service.UpdateTariff(c.Request.Context(), application.UpdateTariffCommand{
		SiteID:         siteID,
		TariffMode:     req.TariffMode,
		PricePerKm:     req.PricePerKm,
		MinFee:         req.MinFee,
		MaxFee:         req.MaxFee,
		BaseDistanceKm: req.BaseDistanceKm,
		SurchargePerKm: req.SurchargePerKm,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, tariff)
}

func (h *TariffHandlers) DeleteTariff(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	siteID, appErr := int64Param(c, "siteId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"site.id": siteID})

	if err := h.service.DeleteTariff(c.Request.Context(), siteID); err != nil {
		respondError(responder, err)
		return
	}

	c.Status(http.StatusNoContent)
}

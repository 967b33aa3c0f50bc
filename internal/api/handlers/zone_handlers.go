package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// ZoneHandlers contains handlers for delivery zones
type ZoneHandlers struct {
	service ZoneService
	logger  *logging.Logger
}

func NewZoneHandlers(service ZoneService, logger *logging.Logger) *ZoneHandlers {
	return &ZoneHandlers{service: service, logger: logger}
}

// RegisterRoutes registers zone routes on the router
func (h *ZoneHandlers) RegisterRoutes(router *gin.RouterGroup) {
	zones := router.Group("/zones")
	{
		zones.GET("", h.ListZones)
		zones.POST("", h.CreateZone)
		zones.GET("/:zoneId", h.GetZone)
		zones.PUT("/:zoneId", h.UpdateZone)
		zones.DELETE("/:zoneId", h.DeleteZone)
	}
}

type listZonesRequest struct {
	Skip    int    `form:"skip" binding:"gte=0"`
	Limit   int    `form:"limit" binding:"gte=0,lte=1000"`
	Country string `form:"country"`
}

type createZoneRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	Coordinates [][]float64 `json:"coordinates" binding:"required,min=3,dive,len=2"`
	Color       string      `json:"color" binding:"omitempty,hex_color"`
	SiteID      *int64      `json:"site_id"`
	Country     *string     `json:"country"`
}

type updateZoneRequest struct {
	Name        *string     `json:"name" binding:"omitempty,min=1"`
	Description *string     `json:"description"`
	Coordinates [][]float64 `json:"coordinates" binding:"omitempty,min=3,dive,len=2"`
	Color       *string     `json:"color" binding:"omitempty,hex_color"`
	SiteID      *int64      `json:"site_id"`
	Country     *string     `json:"country"`
}

func (h *ZoneHandlers) ListZones(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req listZonesRequest
	if appErr := bindQuery(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	zones, err := h.service.ListZones(c.Request.Context(), application.ListZonesQuery{
		Skip:    req.Skip,
		Limit:   req.Limit,
		Country: req.Country,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, zones)
}

func (h *ZoneHandlers) GetZone(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "zoneId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"zone.id": id})

	zone, err := h.service.GetZone(c.Request.Context(), id)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, zone)
}

func (h *ZoneHandlers) CreateZone(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req createZoneRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	zone, err := h.service.CreateZone(c.Request.Context(), application.CreateZoneCommand{
		Name:        req.Name,
		Description: req.Description,
		Coordinates: req.Coordinates,
		Color:       req.Color,
		SiteID:      req.SiteID,
		Country:     req.Country,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, zone)
}

func (h *ZoneHandlers) UpdateZone(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "zoneId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"zone.id": id})

	var req updateZoneRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	zone, err := h.service.UpdateZone(c.Request.Context(), application.UpdateZoneCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Coordinates: req.Coordinates,
		Color:       req.Color,
		SiteID:      req.SiteID,
		Country:     req.Country,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, zone)
}

func (h *ZoneHandlers) DeleteZone(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "zoneId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"zone.id": id})

	if err := h.service.DeleteZone(c.Request.Context(), id); err != nil {
		respondError(responder, err)
		return
	}

	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// LocationHandlers contains handlers for locations
type LocationHandlers struct {
	service LocationService
	logger  *logging.Logger
}

func NewLocationHandlers(service LocationService, logger *logging.Logger) *LocationHandlers {
	return &LocationHandlers{service: service, logger: logger}
}

// RegisterRoutes registers location routes on the router
func (h *LocationHandlers) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/locations")
	{
		locations.GET("", h.ListLocations)
		locations.POST("", h.CreateLocation)
		locations.GET("/:locationId", h.GetLocation)
		locations.PUT("/:locationId", h.UpdateLocation)
		locations.DELETE("/:locationId", h.DeleteLocation)
	}
}

type listLocationsRequest struct {
	Skip      int    `form:"skip" binding:"gte=0"`
	Limit     int    `form:"limit" binding:"gte=0,lte=1000"`
	PolygonID *int64 `form:"polygon_id"`
}

type createLocationRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Address     string   `json:"address"`
	PolygonID   *int64   `json:"polygon_id"`
}

type updateLocationRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Address     *string  `json:"address"`
	PolygonID   *int64   `json:"polygon_id"`
}

func (h *LocationHandlers) ListLocations(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req listLocationsRequest
	if appErr := bindQuery(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	locations, err := h.service.ListLocations(c.Request.Context(), application.ListLocationsQuery{
		Skip:   req.Skip,
		Limit:  req.Limit,
		ZoneID: req.PolygonID,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, locations)
}

func (h *LocationHandlers) GetLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "locationId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"location.id": id})

	location, err := h.service.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandlers) CreateLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req createLocationRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	location, err := h.service.CreateLocation(c.Request.Context(), application.CreateLocationCommand{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Address:     req.Address,
		ZoneID:      req.PolygonID,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, location)
}

func (h *LocationHandlers) UpdateLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "locationId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"location.id": id})

	var req updateLocationRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	location, err := h.service.UpdateLocation(c.Request.Context(), application.UpdateLocationCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		ZoneID:      req.PolygonID,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandlers) DeleteLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "locationId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"location.id": id})

	if err := h.service.DeleteLocation(c.Request.Context(), id); err != nil {
		respondError(responder, err)
		return
	}

	c.Status(http.StatusNoContent)
}

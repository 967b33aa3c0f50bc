package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// PickupPointHandlers contains handlers for pickup point registrations
type PickupPointHandlers struct {
	service PickupPointService
	logger  *logging.Logger
}

func NewPickupPointHandlers(service PickupPointService, logger *logging.Logger) *PickupPointHandlers {
	return &PickupPointHandlers{service: service, logger: logger}
}

// RegisterRoutes registers pickup point routes on the router
func (h *PickupPointHandlers) RegisterRoutes(router *gin.RouterGroup) {
	points := router.Group("/pickup-points")
	{
		points.GET("", h.ListPickupPoints)
		points.POST("", h.CreatePickupPoint)
		points.GET("/provider", h.ListProviderPickupPoints)
		points.GET("/:pickupPointId", h.GetPickupPoint)
		points.PUT("/:pickupPointId/relink", h.RelinkPickupPoint)
		points.DELETE("/:pickupPointId", h.DeletePickupPoint)
	}
}

type listPickupPointsRequest struct {
	SiteID  *int64 `form:"site_id"`
	Country string `form:"country"`
}

// pickupPointAttributes is the provider payload shared by create and relink
type pickupPointAttributes struct {
	Lat              float64 `json:"lat" binding:"latitude_range"`
	Lng              float64 `json:"lng" binding:"longitude_range"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	Phone            string  `json:"phone"`
	ZipCode          string  `json:"zip_code"`
	Status           int     `json:"status" binding:"gte=0"`
	Name             string  `json:"name"`
	ContactName      string  `json:"contact_name"`
	ContactEmail     string  `json:"contact_email" binding:"omitempty,email"`
	PreparationTime  int     `json:"preparation_time" binding:"gte=0"`
	ExternalID       string  `json:"external_id"`
	StoreID          *int64  `json:"store_id"`
	DefaultTip       *int    `json:"default_tip" binding:"omitempty,gte=0"`
	HandshakeEnabled *bool   `json:"handshake_enabled"`
	ReturnEnabled    *bool   `json:"return_enabled"`
	HandoffEnabled   *bool   `json:"handoff_enabled"`
}

func (a pickupPointAttributes) toCommand() application.PickupPointAttributes {
	return application.PickupPointAttributes{
		Lat:              a.Lat,
		Lng:              a.Lng,
		Address:          a.Address,
		City:             a.City,
		Phone:            a.Phone,
		ZipCode:          a.ZipCode,
		Status:           a.Status,
		Name:             a.Name,
		ContactName:      a.ContactName,
		ContactEmail:     a.ContactEmail,
		PreparationTime:  a.PreparationTime,
		ExternalID:       a.ExternalID,
		StoreID:          a.StoreID,
		DefaultTip:       a.DefaultTip,
		HandshakeEnabled: a.HandshakeEnabled,
		ReturnEnabled:    a.ReturnEnabled,
		HandoffEnabled:   a.HandoffEnabled,
	}
}

type createPickupPointRequest struct {
	SiteID int64 `json:"site_id" binding:"required"`
	pickupPointAttributes
}

type relinkPickupPointRequest struct {
	SiteID int64 `json:"site_id" binding:"required"`
	pickupPointAttributes
}

func (h *PickupPointHandlers) ListPickupPoints(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req listPickupPointsRequest
	if appErr := bindQuery(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	points, err := h.service.ListPickupPoints(c.Request.Context(), application.ListPickupPointsQuery{
		SiteID:  req.SiteID,
		Country: req.Country,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, points)
}

func (h *PickupPointHandlers) GetPickupPoint(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "pickupPointId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"pickup_point.id": id})

	point, err := h.service.GetPickupPoint(c.Request.Context(), id)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, point)
}

func (h *PickupPointHandlers) CreatePickupPoint(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req createPickupPointRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"site.id": req.SiteID})

	point, err := h.service.CreatePickupPoint(c.Request.Context(), application.CreatePickupPointCommand{
		SiteID:                req.SiteID,
		PickupPointAttributes: req.toCommand(),
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, point)
}

// RelinkPickupPoint pushes the current site data to the provider registration
func (h *PickupPointHandlers) RelinkPickupPoint(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "pickupPointId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	var req relinkPickupPointRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"pickup_point.id": id,
		"site.id":         req.SiteID,
	})

	point, err := h.service.RelinkPickupPoint(c.Request.Context(), application.RelinkPickupPointCommand{
		ID:                    id,
		SiteID:                req.SiteID,
		PickupPointAttributes: req.toCommand(),
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, point)
}

func (h *PickupPointHandlers) DeletePickupPoint(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	id, appErr := int64Param(c, "pickupPointId")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"pickup_point.id": id})

	if err := h.service.DeletePickupPoint(c.Request.Context(), id); err != nil {
		respondError(responder, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProviderPickupPoints returns the registrations as the logistics provider reports them
func (h *PickupPointHandlers) ListProviderPickupPoints(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	points, err := h.service.ListProviderPickupPoints(c.Request.Context())
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, points)
}

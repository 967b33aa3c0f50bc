package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// ConfigHandlers serves the operator configuration
type ConfigHandlers struct {
	service ConfigService
	logger  *logging.Logger
}

func NewConfigHandlers(service ConfigService, logger *logging.Logger) *ConfigHandlers {
	return &ConfigHandlers{service: service, logger: logger}
}

func (h *ConfigHandlers) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/config", h.GetConfig)
	router.PUT("/config", h.UpdateConfig)
}

type updateConfigRequest struct {
	ValidationMode        string   `json:"validation_mode" binding:"required,validation_mode"`
	ColombiaDeliveryMode  *string  `json:"colombia_delivery_mode" binding:"omitempty,colombia_mode"`
	MaxDeliveryDistanceKm *float64 `json:"max_delivery_distance_km" binding:"omitempty,gte=0"`
}

func (h *ConfigHandlers) GetConfig(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cfg, err := h.service.GetConfig(c.Request.Context())
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func (h *ConfigHandlers) UpdateConfig(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req updateConfigRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"config.validation_mode": req.ValidationMode})

	cfg, err := h.service.UpdateConfig(c.Request.Context(), application.UpdateConfigCommand{
		ValidationMode:        req.ValidationMode,
		ColombiaDeliveryMode:  req.ColombiaDeliveryMode,
		MaxDeliveryDistanceKm: req.MaxDeliveryDistanceKm,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

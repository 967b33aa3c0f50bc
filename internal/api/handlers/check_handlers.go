package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// CheckHandlers serves the address decision endpoint
type CheckHandlers struct {
	service ResolverService
	logger  *logging.Logger
}

func NewCheckHandlers(service ResolverService, logger *logging.Logger) *CheckHandlers {
	return &CheckHandlers{service: service, logger: logger}
}

func (h *CheckHandlers) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/check/address", h.CheckAddress)
}

type checkAddressRequest struct {
	Address string `json:"address" binding:"required"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// CheckAddress geocodes an address and reports the zone, site and delivery terms serving it
func (h *CheckHandlers) CheckAddress(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req checkAddressRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	req.Address = middleware.SanitizeString(req.Address)
	if req.Address == "" {
		responder.RespondValidationError("validation failed", map[string]string{"address": "is required"})
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"address.city":    req.City,
		"address.country": req.Country,
	})

	result, err := h.service.ResolveAddress(c.Request.Context(), application.ResolveAddressQuery{
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// SiteHandlers exposes the cached site list
type SiteHandlers struct {
	service SiteService
	logger  *logging.Logger
}

func NewSiteHandlers(service SiteService, logger *logging.Logger) *SiteHandlers {
	return &SiteHandlers{service: service, logger: logger}
}

// RegisterRoutes registers site routes on the router
func (h *SiteHandlers) RegisterRoutes(router *gin.RouterGroup) {
	sites := router.Group("/sites")
	{
		sites.GET("", h.ListSites)
		sites.POST("/refresh", h.RefreshSites)
		sites.GET("/cities", h.ListCities)
	}
}

type listSitesRequest struct {
	ForceRefresh bool   `form:"force_refresh"`
	Country      string `form:"country"`
}

type listCitiesRequest struct {
	Country string `form:"country"`
}

type refreshSitesResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (h *SiteHandlers) ListSites(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req listSitesRequest
	if appErr := bindQuery(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"sites.force_refresh": req.ForceRefresh})

	sites, err := h.service.ListSites(c.Request.Context(), req.ForceRefresh, req.Country)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, sites)
}

// RefreshSites forces a fetch from the sites source
func (h *SiteHandlers) RefreshSites(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	sites, err := h.service.RefreshSites(c.Request.Context())
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, refreshSitesResponse{Message: "sites refreshed", Count: len(sites)})
}

func (h *SiteHandlers) ListCities(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req listCitiesRequest
	if appErr := bindQuery(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cities, err := h.service.ListCities(c.Request.Context(), req.Country)
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, cities)
}

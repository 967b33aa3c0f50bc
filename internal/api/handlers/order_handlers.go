package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/middleware"
)

// OrderHandlers contains handlers for storefront orders
type OrderHandlers struct {
	service OrderService
	logger  *logging.Logger
}

func NewOrderHandlers(service OrderService, logger *logging.Logger) *OrderHandlers {
	return &OrderHandlers{service: service, logger: logger}
}

// RegisterRoutes registers order routes on the router
func (h *OrderHandlers) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
	}
}

type createOrderRequest struct {
	Latitude         float64    `json:"latitude" binding:"latitude_range"`
	Longitude        float64    `json:"longitude" binding:"longitude_range"`
	Address          string     `json:"address" binding:"required"`
	FormattedAddress string     `json:"formatted_address"`
	FirstName        string     `json:"first_name" binding:"required"`
	LastName         string     `json:"last_name" binding:"required"`
	Phone            string     `json:"phone" binding:"required"`
	Email            string     `json:"email" binding:"required,email"`
	Complement       string     `json:"complement"`
	City             string     `json:"city"`
	Country          string     `json:"country"`
	Comments         string     `json:"comments"`
	OrderDate        *time.Time `json:"order_date"`
}

type listOrdersRequest struct {
	StartDate string   `form:"start_date"`
	EndDate   string   `form:"end_date"`
	Cities    []string `form:"cities"`
	Country   string   `form:"country"`
}

func (h *OrderHandlers) CreateOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req createOrderRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	middleware.AddSpanAttributes(c, map[string]interface{}{"order.city": req.City})

	order, err := h.service.CreateOrder(c.Request.Context(), application.CreateOrderCommand{
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Address:          req.Address,
		FormattedAddress: req.FormattedAddress,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		Email:            req.Email,
		Complement:       req.Complement,
		City:             req.City,
		Country:          req.Country,
		Comments:         req.Comments,
		OrderDate:        req.OrderDate,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders filters orders by date range, city and country and counts them per zone
func (h *OrderHandlers) ListOrders(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req listOrdersRequest
	if appErr := bindQuery(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	orders, err := h.service.ListOrders(c.Request.Context(), application.ListOrdersQuery{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Cities:    req.Cities,
		Country:   req.Country,
	})
	if err != nil {
		respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

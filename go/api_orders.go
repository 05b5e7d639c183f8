package commerceserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/http/mapper"
	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	ordersports "github.com/edumartvn/commerce-api/internal/domains/orders/ports"
)

var errMissingUserID = errors.New("userId query parameter is required")

// OrdersAPI wires HTTP transport with the orders bounded context service.
type OrdersAPI struct {
	service ordersports.Service
}

// NewOrdersAPI creates an OrdersAPI backed by the provided service.
func NewOrdersAPI(service ordersports.Service) OrdersAPI {
	return OrdersAPI{service: service}
}

// Post /v1/orders
// Price and open a new order
func (api *OrdersAPI) CreateOrder(c *gin.Context) {
	var payload orderhttpmapper.CreateOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	order, err := api.service.CreateOrder(c.Request.Context(), orderhttpmapper.ToCreateOrderInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

// Get /v1/orders
// Page a user's order history, newest first
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondBindingError(c, errMissingUserID)
		return
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "pageSize", 20)
	orders, total, err := api.service.ListOrders(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrderList(orders, total, page, pageSize))
}

// Get /v1/orders/:orderNo
// Load a single order
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	order, err := api.service.GetOrder(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Post /v1/orders/:orderNo/cancel
// Cancel an order that has not settled
func (api *OrdersAPI) CancelOrder(c *gin.Context) {
	var payload struct {
		Reason string `json:"reason"`
	}
	// The body is optional; a bare POST cancels without a reason.
	_ = c.ShouldBindJSON(&payload)
	order, err := api.service.CancelOrder(c.Request.Context(), c.Param("orderNo"), payload.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Post /v1/orders/:orderNo/fulfillment
// Step a physical order along confirmed -> delivering -> delivered -> completed
func (api *OrdersAPI) AdvanceFulfillment(c *gin.Context) {
	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	order, err := api.service.AdvanceFulfillment(c.Request.Context(), c.Param("orderNo"), ordersdomain.Status(payload.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

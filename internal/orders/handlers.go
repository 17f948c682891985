package orders

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietcharm/vietcharm/internal/auth"
	"github.com/vietcharm/vietcharm/internal/logging"
	"github.com/vietcharm/vietcharm/internal/validation"
)

// Events receives order status changes for realtime broadcast.
type Events interface {
	OrderStatusChanged(userID, orderID string, status Status)
}

// Handler provides HTTP endpoints for order operations.
type Handler struct {
	service *Service
	events  Events
}

// NewHandler creates a new order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// WithEvents adds a broadcaster for order status events.
func (h *Handler) WithEvents(e Events) *Handler {
	h.events = e
	return h
}

// RegisterProtectedRoutes sets up auth-required order routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/me/orders", h.ListMyOrders)
}

// RegisterAdminRoutes sets up admin-only order routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/orders/:id/status", h.AdvanceOrderStatus)
}

// CreateOrder handles POST /v1/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	order, err := h.service.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		var verrs validation.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": verrs.Error(),
				"details": verrs,
			})
		case errors.Is(err, ErrEmptyOrder):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "Order must contain at least one item",
			})
		case errors.Is(err, ErrUnknownProduct):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "unknown_product",
				"message": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "order_failed",
				"message": "Failed to create order",
			})
		}
		return
	}

	logging.L(c.Request.Context()).Info("order created",
		"order_id", order.ID, "total", order.Total, "items", len(order.Items))

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrder handles GET /v1/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load order",
		})
		return
	}

	if order.UserID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Order belongs to another user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListMyOrders handles GET /v1/me/orders
func (h *Handler) ListMyOrders(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
			if limit > 200 {
				limit = 200
			}
		}
	}

	list, err := h.service.ListByUser(c.Request.Context(), auth.UserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": list,
		"count":  len(list),
	})
}

// AdvanceStatusRequest moves an order to its next lifecycle state.
type AdvanceStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// AdvanceOrderStatus handles POST /v1/admin/orders/:id/status
func (h *Handler) AdvanceOrderStatus(c *gin.Context) {
	var req AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	order, err := h.service.AdvanceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Order not found",
			})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "invalid_transition",
				"message": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to update order status",
			})
		}
		return
	}

	logging.L(c.Request.Context()).Info("order status advanced",
		"order_id", order.ID, "status", string(order.Status))

	if h.events != nil {
		h.events.OrderStatusChanged(order.UserID, order.ID, order.Status)
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

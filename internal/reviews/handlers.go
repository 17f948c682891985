package reviews

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietcharm/vietcharm/internal/auth"
	"github.com/vietcharm/vietcharm/internal/catalog"
)

// Handler provides HTTP endpoints for product reviews.
type Handler struct {
	service *Service
}

// NewHandler creates a new review handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up public (read-only) review routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/products/:id/reviews", h.ListReviews)
}

// RegisterProtectedRoutes sets up auth-required review routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/reviews", h.CreateReview)
}

// CreateReview handles POST /v1/reviews
func (h *Handler) CreateReview(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	review, err := h.service.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_rating",
				"message": "Rating must be between 1 and 5",
			})
		case errors.Is(err, catalog.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to post review",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// ListReviews handles GET /v1/products/:id/reviews
func (h *Handler) ListReviews(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
			if limit > 200 {
				limit = 200
			}
		}
	}

	list, err := h.service.ListByProduct(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": list,
		"count":   len(list),
	})
}

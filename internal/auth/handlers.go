package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietcharm/vietcharm/internal/logging"
)

// Handler provides HTTP endpoints for session management.
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up session routes. Minting is guarded by the
// provider secret rather than a user session.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/sessions", h.MintSession)
	r.DELETE("/auth/sessions", h.RevokeSession)
	r.GET("/me", h.WhoAmI)
}

// MintRequest is the identity provider's session request.
type MintRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// MintSession handles POST /v1/auth/sessions
func (h *Handler) MintSession(c *gin.Context) {
	if !h.service.CheckProviderSecret(c.GetHeader("X-Provider-Secret")) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Invalid provider secret",
		})
		return
	}

	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	token, err := h.service.Mint(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create session",
		})
		return
	}

	logging.L(c.Request.Context()).Info("session minted", "user_id", req.UserID)

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// RevokeSession handles DELETE /v1/auth/sessions
func (h *Handler) RevokeSession(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_required",
			"message": "No session to revoke",
		})
		return
	}

	if err := h.service.Revoke(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to revoke session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": true})
}

// WhoAmI handles GET /v1/me
func (h *Handler) WhoAmI(c *gin.Context) {
	userID := UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_required",
			"message": "Sign in to continue",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID})
}

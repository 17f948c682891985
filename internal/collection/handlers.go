package collection

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietcharm/vietcharm/internal/auth"
	"github.com/vietcharm/vietcharm/internal/catalog"
	"github.com/vietcharm/vietcharm/internal/logging"
	"github.com/vietcharm/vietcharm/internal/metrics"
	"github.com/vietcharm/vietcharm/internal/traces"
)

// Events receives collection progress for realtime broadcast.
type Events interface {
	ProductsUnlocked(userID string, products []string)
	BadgeAwarded(userID, badge string)
}

// Handler provides HTTP endpoints for the unlock flow.
type Handler struct {
	engine  *Engine
	catalog *catalog.Catalog
	events  Events
}

// NewHandler creates a new collection handler.
func NewHandler(engine *Engine, cat *catalog.Catalog) *Handler {
	return &Handler{engine: engine, catalog: cat}
}

// WithEvents adds a broadcaster for unlock and badge events.
func (h *Handler) WithEvents(e Events) *Handler {
	h.events = e
	return h
}

// RegisterProtectedRoutes sets up auth-required collection routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/unlock", h.Unlock)
	r.GET("/me/collection", h.GetCollection)
}

// UnlockRequest carries a scanned or deep-linked code.
type UnlockRequest struct {
	Code string `json:"code" binding:"required"`
}

// Unlock handles POST /v1/unlock
func (h *Handler) Unlock(c *gin.Context) {
	var req UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	ctx, span := traces.StartSpan(c.Request.Context(), "collection.unlock", traces.UnlockCode(req.Code))
	defer span.End()

	res, err := Resolve(h.catalog, req.Code)
	if err != nil {
		// Unrecognized codes are a normal outcome; scanning resumes.
		metrics.UnlocksTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid_code",
			"message": "This code is not recognized",
		})
		return
	}

	userID := auth.UserID(c)
	result, err := h.engine.Unlock(ctx, userID, res)
	if err != nil {
		logging.L(ctx).Error("unlock failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "persistence_error",
			"message": "Could not save your progress, please scan again",
		})
		return
	}

	if !result.NoOp {
		logging.L(ctx).Info("products unlocked",
			"user_id", userID,
			"newly_unlocked", result.NewlyUnlocked,
			"new_badges", result.NewBadges,
		)
		if h.events != nil {
			h.events.ProductsUnlocked(userID, result.NewlyUnlocked)
			for _, b := range result.NewBadges {
				h.events.BadgeAwarded(userID, b)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"unlockedProducts": result.Profile.Unlocked,
		"badges":           result.Profile.Badges,
		"newlyUnlocked":    result.NewlyUnlocked,
		"newBadges":        result.NewBadges,
		"alreadyUnlocked":  result.NoOp,
	})
}

// GetCollection handles GET /v1/me/collection
func (h *Handler) GetCollection(c *gin.Context) {
	userID := auth.UserID(c)
	profile, err := h.engine.Profile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load collection",
		})
		return
	}

	regions := h.engine.CompletedRegions(profile.Unlocked)
	c.JSON(http.StatusOK, gin.H{
		"unlockedProducts": profile.Unlocked,
		"badges":           profile.Badges,
		"completedRegions": regions,
		"totalCollectible": len(h.catalog.Collectibles()),
	})
}

// Package reviews implements product reviews: public to read, session
// required to write.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vietcharm/vietcharm/internal/catalog"
	"github.com/vietcharm/vietcharm/internal/idgen"
	"github.com/vietcharm/vietcharm/internal/retry"
	"github.com/vietcharm/vietcharm/internal/validation"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)

// Review is one shopper's rating of a product.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists review data.
type Store interface {
	Create(ctx context.Context, review *Review) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]*Review, error)
}

// CreateRequest contains the parameters for posting a review.
type CreateRequest struct {
	ProductID string `json:"productId" binding:"required"`
	UserName  string `json:"userName"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// Service implements review business logic.
type Service struct {
	store   Store
	catalog *catalog.Catalog
}

// NewService creates a new review service.
func NewService(store Store, cat *catalog.Catalog) *Service {
	return &Service{store: store, catalog: cat}
}

// Create posts a review for a catalog product.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if !s.catalog.Has(req.ProductID) {
		return nil, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, req.ProductID)
	}

	review := &Review{
		ID:        idgen.WithPrefix("rev_"),
		ProductID: req.ProductID,
		UserID:    userID,
		UserName:  validation.SanitizeString(req.UserName, 100),
		Rating:    req.Rating,
		Comment:   validation.SanitizeString(req.Comment, validation.MaxStringLength),
		CreatedAt: time.Now(),
	}

	err := retry.Do(ctx, 3, 50*time.Millisecond, func() error {
		return s.store.Create(ctx, review)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist review: %w", err)
	}
	return review, nil
}

// ListByProduct returns a product's reviews, newest first.
func (s *Service) ListByProduct(ctx context.Context, productID string, limit int) ([]*Review, error) {
	if limit <= 0 {
		limit = 50
	}
	if !s.catalog.Has(productID) {
		return nil, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, productID)
	}
	return s.store.ListByProduct(ctx, productID, limit)
}

// Package orders implements the order lifecycle for the storefront.
//
// An order moves forward only: pending -> confirmed -> shipped ->
// delivered. Payment status moves unpaid -> paid exactly once; the
// transition is idempotent so gateway callback replays are harmless.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vietcharm/vietcharm/internal/catalog"
	"github.com/vietcharm/vietcharm/internal/idgen"
	"github.com/vietcharm/vietcharm/internal/metrics"
	"github.com/vietcharm/vietcharm/internal/retry"
	"github.com/vietcharm/vietcharm/internal/validation"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrUnknownProduct    = errors.New("order references an unknown product")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Status is the fulfillment state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

// statusRank orders the statuses; transitions never decrease rank.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// PaymentStatus tracks whether the gateway confirmed payment.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// LineItem is one product line on an order. Name and UnitPrice are
// filled from the catalog at creation time, never trusted from the
// client.
type LineItem struct {
	ProductID string `json:"productId" binding:"required"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// ShippingInfo is the delivery contact block on an order.
type ShippingInfo struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email"`
	Address string `json:"address" binding:"required"`
	Note    string `json:"note"`
}

// Validate checks the shipping block at the persistence boundary.
func (si ShippingInfo) Validate() validation.ValidationErrors {
	var errs validation.ValidationErrors
	if si.Name == "" {
		errs = errs.Add("name", "recipient name is required")
	}
	if !validation.IsValidPhone(si.Phone) {
		errs = errs.Add("phone", "not a valid Vietnamese phone number")
	}
	if si.Email != "" && !validation.IsValidEmail(si.Email) {
		errs = errs.Add("email", "not a valid email address")
	}
	if si.Address == "" {
		errs = errs.Add("address", "delivery address is required")
	}
	return errs
}

// Order is a checkout record.
type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Items         []LineItem    `json:"items"`
	Total         int64         `json:"total"` // VND, sum of line totals
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	TxnRef        string        `json:"txnRef,omitempty"` // gateway transaction reference
	Shipping      ShippingInfo  `json:"shippingInfo"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Store persists order data.
type Store interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByTxnRef(ctx context.Context, txnRef string) (*Order, error)
	Update(ctx context.Context, order *Order) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Order, error)
}

// Persistence retry parameters shared by all order writes.
const (
	persistAttempts  = 3
	persistBaseDelay = 50 * time.Millisecond
)

// CreateRequest contains the parameters for creating an order.
type CreateRequest struct {
	Items    []LineItem   `json:"items" binding:"required"`
	Shipping ShippingInfo `json:"shippingInfo" binding:"required"`
}

// Service implements order business logic.
type Service struct {
	store   Store
	catalog *catalog.Catalog
	locks   sync.Map // per-order ID locks for status transitions
}

// NewService creates a new order service.
func NewService(store Store, cat *catalog.Catalog) *Service {
	return &Service{store: store, catalog: cat}
}

func (s *Service) orderLock(id string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Create builds and persists a new order. Prices come from the
// catalog, never from the client; unknown products reject the whole
// order.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if errs := req.Shipping.Validate(); len(errs) > 0 {
		return nil, errs
	}

	items := make([]LineItem, 0, len(req.Items))
	var total int64
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity %d for %s", ErrEmptyOrder, line.Quantity, line.ProductID)
		}
		p, err := s.catalog.Product(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, line.ProductID)
		}
		items = append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
		})
		total += p.Price * int64(line.Quantity)
	}

	now := time.Now()
	order := &Order{
		ID:            idgen.WithPrefix("ord_"),
		UserID:        userID,
		Items:         items,
		Total:         total,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		Shipping: ShippingInfo{
			Name:    validation.SanitizeString(req.Shipping.Name, 200),
			Phone:   validation.SanitizeString(req.Shipping.Phone, 20),
			Email:   validation.SanitizeString(req.Shipping.Email, 200),
			Address: validation.SanitizeString(req.Shipping.Address, 500),
			Note:    validation.SanitizeString(req.Shipping.Note, validation.MaxStringLength),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := retry.Do(ctx, persistAttempts, persistBaseDelay, func() error {
		return s.store.Create(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	metrics.OrdersTotal.WithLabelValues(string(StatusPending)).Inc()
	return order, nil
}

// Get returns an order by ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

// ListByUser returns a user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListByUser(ctx, userID, limit)
}

// AttachTxnRef records the gateway transaction reference for an order
// so the payment callback can find it later.
func (s *Service) AttachTxnRef(ctx context.Context, id, txnRef string) error {
	mu := s.orderLock(id)
	mu.Lock()
	defer mu.Unlock()

	order, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.TxnRef == txnRef {
		return nil
	}
	order.TxnRef = txnRef
	order.UpdatedAt = time.Now()

	return retry.Do(ctx, persistAttempts, persistBaseDelay, func() error {
		return s.store.Update(ctx, order)
	})
}

// ConfirmPaidByTxnRef marks the order behind a transaction reference
// as paid and confirmed. Calling it again for an already-paid order is
// a no-op, which makes gateway callback replays safe. The second
// return value reports whether this call changed anything.
func (s *Service) ConfirmPaidByTxnRef(ctx context.Context, txnRef string) (*Order, bool, error) {
	order, err := s.store.GetByTxnRef(ctx, txnRef)
	if err != nil {
		return nil, false, err
	}

	mu := s.orderLock(order.ID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under lock so two racing callbacks see each other.
	order, err = s.store.Get(ctx, order.ID)
	if err != nil {
		return nil, false, err
	}

	if order.PaymentStatus == PaymentPaid {
		return order, false, nil
	}

	now := time.Now()
	order.PaymentStatus = PaymentPaid
	if statusRank[order.Status] < statusRank[StatusConfirmed] {
		order.Status = StatusConfirmed
	}
	order.UpdatedAt = now

	err = retry.Do(ctx, persistAttempts, persistBaseDelay, func() error {
		return s.store.Update(ctx, order)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to persist payment confirmation: %w", err)
	}

	metrics.OrdersTotal.WithLabelValues(string(StatusConfirmed)).Inc()
	return order, true, nil
}

// AdvanceStatus moves an order forward in its lifecycle. Setting the
// current status again is a no-op; moving backward is an error.
func (s *Service) AdvanceStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	mu := s.orderLock(id)
	mu.Lock()
	defer mu.Unlock()

	order, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if next == order.Status {
		return order, nil
	}
	if statusRank[next] < statusRank[order.Status] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	order.Status = next
	order.UpdatedAt = time.Now()

	err = retry.Do(ctx, persistAttempts, persistBaseDelay, func() error {
		return s.store.Update(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist status change: %w", err)
	}

	metrics.OrdersTotal.WithLabelValues(string(next)).Inc()
	return order, nil
}

package vnpay

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietcharm/vietcharm/internal/auth"
	"github.com/vietcharm/vietcharm/internal/logging"
	"github.com/vietcharm/vietcharm/internal/metrics"
	"github.com/vietcharm/vietcharm/internal/orders"
	"github.com/vietcharm/vietcharm/internal/traces"
)

// OrderService is the slice of order behavior the payment flow needs.
type OrderService interface {
	Get(ctx context.Context, id string) (*orders.Order, error)
	AttachTxnRef(ctx context.Context, id, txnRef string) error
	ConfirmPaidByTxnRef(ctx context.Context, txnRef string) (*orders.Order, bool, error)
}

// Events receives payment outcomes for realtime broadcast.
type Events interface {
	PaymentConfirmed(userID, orderID, txnRef string)
	PaymentFailed(txnRef, code string)
}

// Handler provides HTTP endpoints for the payment flow.
type Handler struct {
	signer *Signer
	orders OrderService
	events Events
}

// NewHandler creates a new payment handler.
func NewHandler(signer *Signer, orderSvc OrderService) *Handler {
	return &Handler{signer: signer, orders: orderSvc}
}

// WithEvents adds a broadcaster for payment outcome events.
func (h *Handler) WithEvents(e Events) *Handler {
	h.events = e
	return h
}

// RegisterRoutes sets up the public payment routes. The gateway return
// URL must stay unauthenticated: the shopper arrives via redirect
// without our session header.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/payments/vnpay/return", h.PaymentReturn)
}

// RegisterProtectedRoutes sets up auth-required payment routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/payments", h.CreatePayment)
}

// CreatePaymentRequest starts a checkout attempt for an existing order.
type CreatePaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreatePayment handles POST /v1/payments
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	ctx, span := traces.StartSpan(c.Request.Context(), "vnpay.create_payment", traces.OrderID(req.OrderID))
	defer span.End()

	order, err := h.orders.Get(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
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

	if order.PaymentStatus == orders.PaymentPaid {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "already_paid",
			"message": "Order is already paid",
		})
		return
	}

	redirectURL, txnRef, err := h.signer.BuildPaymentURL(PaymentRequest{
		OrderID:  order.ID,
		Amount:   float64(order.Total),
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, ErrMissingConfig) {
			logging.L(ctx).Error("payment gateway not configured")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "configuration_error",
				"message": "Payment gateway is not configured",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "payment_failed",
			"message": "Failed to build payment request",
		})
		return
	}

	if err := h.orders.AttachTxnRef(ctx, order.ID, txnRef); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "payment_failed",
			"message": "Failed to record payment attempt",
		})
		return
	}

	logging.L(ctx).Info("payment URL created", "order_id", order.ID, "txn_ref", txnRef)

	c.JSON(http.StatusCreated, gin.H{
		"paymentUrl": redirectURL,
		"txnRef":     txnRef,
	})
}

// PaymentReturn handles GET /v1/payments/vnpay/return
//
// The gateway may deliver the same callback more than once (retries,
// shopper refreshing the return page); confirming an already-confirmed
// order is a no-op, so the handler is safe to invoke repeatedly.
func (h *Handler) PaymentReturn(c *gin.Context) {
	params := make(map[string]string)
	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	v := h.signer.VerifyCallback(params)

	ctx, span := traces.StartSpan(c.Request.Context(), "vnpay.payment_return", traces.TxnRef(v.TxnRef))
	defer span.End()

	switch v.Outcome {
	case OutcomeInvalidSignature:
		// Possible forgery, not a failed payment. Logged with both
		// digests for audit; the secret never appears.
		metrics.SignatureInvalidTotal.Inc()
		metrics.PaymentsTotal.WithLabelValues("signature_invalid").Inc()
		logging.L(ctx).Warn("payment callback signature mismatch",
			"txn_ref", v.TxnRef,
			"expected", v.Expected,
			"received", v.Received,
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "signature_invalid",
			"message": "Callback signature verification failed",
		})
		return

	case OutcomeFailure:
		metrics.PaymentsTotal.WithLabelValues("failure").Inc()
		logging.L(ctx).Info("payment failed at gateway",
			"txn_ref", v.TxnRef,
			"response_code", v.ResponseCode,
		)
		if h.events != nil {
			h.events.PaymentFailed(v.TxnRef, v.ResponseCode)
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "failed",
			"responseCode": v.ResponseCode,
			"message":      "Payment was not completed",
		})
		return
	}

	order, changed, err := h.orders.ConfirmPaidByTxnRef(ctx, v.TxnRef)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No order matches this transaction reference",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to confirm payment",
		})
		return
	}

	metrics.PaymentsTotal.WithLabelValues("success").Inc()
	if changed {
		logging.L(ctx).Info("payment confirmed", "order_id", order.ID, "txn_ref", v.TxnRef)
		if h.events != nil {
			h.events.PaymentConfirmed(order.UserID, order.ID, v.TxnRef)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"orderId": order.ID,
		"txnRef":  v.TxnRef,
	})
}

package vnpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vietcharm/vietcharm/internal/catalog"
	"github.com/vietcharm/vietcharm/internal/orders"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupPaymentTest(t *testing.T) (*gin.Engine, *Signer, *orders.Service, *orders.Order) {
	t.Helper()

	orderSvc := orders.NewService(orders.NewMemoryStore(), catalog.Default())
	order, err := orderSvc.Create(context.Background(), "user-1", orders.CreateRequest{
		Items: []orders.LineItem{{ProductID: "bac-man", Quantity: 1}},
		Shipping: orders.ShippingInfo{
			Name:    "Nguyen Van A",
			Phone:   "0912345678",
			Address: "12 Hang Bac, Ha Noi",
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	signer := testSigner()
	h := NewHandler(signer, orderSvc)

	r := gin.New()
	// Auth middleware stand-in: every request is user-1.
	r.Use(func(c *gin.Context) { c.Set("authUserID", "user-1") })
	v1 := r.Group("/v1")
	h.RegisterRoutes(v1)
	h.RegisterProtectedRoutes(v1)

	return r, signer, orderSvc, order
}

// signedReturnQuery builds the query string of a successful gateway
// callback for the given transaction reference.
func signedReturnQuery(signer *Signer, txnRef, responseCode string) string {
	params := map[string]string{
		"vnp_TxnRef":       txnRef,
		"vnp_ResponseCode": responseCode,
		"vnp_Amount":       "4900000",
		"vnp_TmnCode":      "VIETCHRM",
	}
	params[paramSecureHash] = signer.sign(Canonicalize(params))

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return q.Encode()
}

func TestCreatePayment(t *testing.T) {
	r, _, _, order := setupPaymentTest(t)

	body := strings.NewReader(`{"orderId":"` + order.ID + `"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		PaymentURL string `json:"paymentUrl"`
		TxnRef     string `json:"txnRef"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !strings.HasPrefix(resp.PaymentURL, "https://sandbox.vnpayment.vn/") {
		t.Errorf("payment URL = %q", resp.PaymentURL)
	}
	if resp.TxnRef == "" {
		t.Error("response missing txn ref")
	}
}

func TestCreatePayment_UnknownOrder(t *testing.T) {
	r, _, _, _ := setupPaymentTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments", strings.NewReader(`{"orderId":"ord_missing"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPaymentReturn_ReplaySafe(t *testing.T) {
	r, signer, orderSvc, order := setupPaymentTest(t)
	ctx := context.Background()

	txnRef := SanitizeTxnRef(order.ID)
	if err := orderSvc.AttachTxnRef(ctx, order.ID, txnRef); err != nil {
		t.Fatalf("attach txn ref: %v", err)
	}

	path := "/v1/payments/vnpay/return?" + signedReturnQuery(signer, txnRef, "00")

	// First delivery confirms the order.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first callback: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Replay (user refreshes the return page): same response, no
	// error, no second transition.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("replayed callback: status = %d, body = %s", w.Code, w.Body.String())
	}

	final, err := orderSvc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if final.Status != orders.StatusConfirmed {
		t.Errorf("status = %s, want confirmed exactly once", final.Status)
	}
	if final.PaymentStatus != orders.PaymentPaid {
		t.Errorf("payment status = %s, want paid", final.PaymentStatus)
	}
}

func TestPaymentReturn_TamperedSignature(t *testing.T) {
	r, signer, orderSvc, order := setupPaymentTest(t)

	txnRef := SanitizeTxnRef(order.ID)
	if err := orderSvc.AttachTxnRef(context.Background(), order.ID, txnRef); err != nil {
		t.Fatalf("attach txn ref: %v", err)
	}

	query := signedReturnQuery(signer, txnRef, "00")
	query = strings.Replace(query, "vnp_Amount=4900000", "vnp_Amount=1", 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/vnpay/return?"+query, nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "signature_invalid") {
		t.Errorf("body = %s", w.Body.String())
	}

	// The order must be left untouched.
	final, _ := orderSvc.Get(context.Background(), order.ID)
	if final.PaymentStatus != orders.PaymentUnpaid {
		t.Errorf("tampered callback changed payment status to %s", final.PaymentStatus)
	}
}

func TestPaymentReturn_GatewayFailure(t *testing.T) {
	r, signer, orderSvc, order := setupPaymentTest(t)

	txnRef := SanitizeTxnRef(order.ID)
	if err := orderSvc.AttachTxnRef(context.Background(), order.ID, txnRef); err != nil {
		t.Fatalf("attach txn ref: %v", err)
	}

	path := "/v1/payments/vnpay/return?" + signedReturnQuery(signer, txnRef, "24")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"failed"`) {
		t.Errorf("body = %s", w.Body.String())
	}

	final, _ := orderSvc.Get(context.Background(), order.ID)
	if final.PaymentStatus != orders.PaymentUnpaid {
		t.Errorf("failed payment changed status to %s", final.PaymentStatus)
	}
}

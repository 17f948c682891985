package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrMissingConfig = errors.New("vnpay: gateway configuration incomplete")

// Protocol constants fixed by the gateway.
const (
	Version             = "2.1.0"
	CommandPay          = "pay"
	LocaleVN            = "vn"
	CurrencyVND         = "VND"
	OrderTypeOther      = "other"
	ResponseCodeSuccess = "00"

	// createDateFormat is the gateway's yyyyMMddHHmmss timestamp.
	createDateFormat = "20060102150405"

	// maxTxnRefLen is the gateway's transaction reference limit.
	maxTxnRefLen = 34
)

// Config holds the merchant credentials and URLs. All four fields are
// required; missing values fail fast before any request is built.
type Config struct {
	TmnCode    string // merchant code assigned by the gateway
	HashSecret string // shared HMAC secret, never logged
	BaseURL    string // gateway payment endpoint
	ReturnURL  string // where the gateway redirects the shopper
}

func (c Config) complete() bool {
	return c.TmnCode != "" && c.HashSecret != "" && c.BaseURL != "" && c.ReturnURL != ""
}

// Signer builds and signs payment redirect URLs.
type Signer struct {
	cfg Config
	now func() time.Time
}

// NewSigner creates a signer for the given gateway configuration.
func NewSigner(cfg Config) *Signer {
	return &Signer{cfg: cfg, now: time.Now}
}

// PaymentRequest is one checkout attempt to be signed.
type PaymentRequest struct {
	OrderID   string
	Amount    float64 // major currency units
	OrderInfo string
	ClientIP  string
}

// BuildPaymentURL assembles the full signed parameter set for a
// checkout attempt and returns the redirect URL together with the
// transaction reference embedded in it. No state is mutated; the
// callback is the only point where the order changes.
func (s *Signer) BuildPaymentURL(req PaymentRequest) (redirectURL, txnRef string, err error) {
	if !s.cfg.complete() {
		return "", "", ErrMissingConfig
	}

	txnRef = SanitizeTxnRef(req.OrderID)
	info := req.OrderInfo
	if info == "" {
		info = "Thanh toan don hang " + txnRef
	}

	params := map[string]string{
		"vnp_Version":    Version,
		"vnp_Command":    CommandPay,
		"vnp_TmnCode":    s.cfg.TmnCode,
		"vnp_Locale":     LocaleVN,
		"vnp_CurrCode":   CurrencyVND,
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  info,
		"vnp_OrderType":  OrderTypeOther,
		"vnp_Amount":     strconv.FormatInt(MinorUnits(req.Amount), 10),
		"vnp_ReturnUrl":  s.cfg.ReturnURL,
		"vnp_IpAddr":     NormalizeClientIP(req.ClientIP),
		"vnp_CreateDate": s.now().Format(createDateFormat),
	}

	base := Canonicalize(params)
	sig := s.sign(base)
	return s.cfg.BaseURL + "?" + base + "&" + paramSecureHash + "=" + sig, txnRef, nil
}

func (s *Signer) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(s.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// MinorUnits converts a major-unit amount to the gateway's integer
// minor units. Rounds rather than truncates: 1500.5 must become
// exactly 150050, and float artifacts like 19.99*100 = 1998.999...
// must not lose a unit.
func MinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// SanitizeTxnRef derives a gateway-safe transaction reference from an
// order ID: alphanumerics only, truncated to the gateway's limit.
func SanitizeTxnRef(orderID string) string {
	var b strings.Builder
	for i := 0; i < len(orderID); i++ {
		c := orderID[i]
		if 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' {
			b.WriteByte(c)
		}
	}
	ref := b.String()
	if len(ref) > maxTxnRefLen {
		ref = ref[:maxTxnRefLen]
	}
	return ref
}

// NormalizeClientIP maps the caller's address to what the gateway
// expects: the first entry of a forwarded chain, and the IPv6 loopback
// rewritten to its IPv4 form.
func NormalizeClientIP(ip string) string {
	if i := strings.IndexByte(ip, ','); i >= 0 {
		ip = ip[:i]
	}
	ip = strings.TrimSpace(ip)
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}

package vnpay

import (
	"crypto/hmac"
	"strings"
)

// Outcome classifies a verified callback. A signature mismatch is a
// distinct, more severe outcome than a gateway-reported failure and is
// never surfaced as "payment failed".
type Outcome string

const (
	OutcomeSuccess          Outcome = "verified_success"
	OutcomeFailure          Outcome = "verified_failure"
	OutcomeInvalidSignature Outcome = "signature_invalid"
)

// Verification is the result of checking a gateway callback.
type Verification struct {
	Outcome      Outcome
	TxnRef       string
	ResponseCode string

	// Expected and Received digests are kept for audit logging on a
	// signature mismatch. The shared secret itself is never exposed.
	Expected string
	Received string
}

// VerifyCallback checks the signature on a gateway return/callback
// request. The secure-hash fields are stripped, the remainder is
// recanonicalized with the same rules used for signing, and the
// recomputed digest is compared in constant time.
//
// Verifying the same callback twice is safe; the order transition it
// gates is itself idempotent.
func (s *Signer) VerifyCallback(params map[string]string) Verification {
	received := strings.ToLower(params[paramSecureHash])
	expected := s.sign(Canonicalize(params))

	if received == "" || !hmac.Equal([]byte(expected), []byte(received)) {
		return Verification{
			Outcome:  OutcomeInvalidSignature,
			TxnRef:   params["vnp_TxnRef"],
			Expected: expected,
			Received: received,
		}
	}

	code := params["vnp_ResponseCode"]
	out := OutcomeFailure
	if code == ResponseCodeSuccess {
		out = OutcomeSuccess
	}
	return Verification{
		Outcome:      out,
		TxnRef:       params["vnp_TxnRef"],
		ResponseCode: code,
	}
}

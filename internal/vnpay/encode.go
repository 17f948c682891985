// Package vnpay implements the payment gateway signing protocol:
// canonical parameter encoding, HMAC-SHA512 request signing, and
// callback signature verification.
//
// The gateway verifies signatures over its own canonicalization of the
// query string, so the encoding here must match the gateway's rules
// bit-for-bit or every signature silently fails.
package vnpay

import (
	"sort"
	"strings"
)

const (
	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
)

const upperhex = "0123456789ABCDEF"

// Canonicalize produces the deterministic signing base for a parameter
// set: keys sorted bytewise, keys and values percent-encoded with the
// gateway's escaping rules, joined as k=v pairs with &. The secure-hash
// fields are always excluded. Pure function.
func Canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == paramSecureHash || k == paramSecureHashType {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(k))
		b.WriteByte('=')
		b.WriteString(escape(params[k]))
	}
	return b.String()
}

// escape percent-encodes a string the way the gateway does. The
// unreserved set is A-Za-z0-9-_.!~*'() and a space becomes '+', not
// %20. net/url.QueryEscape encodes !*'()~ and so cannot be used here.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case isUnreserved(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	if 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' {
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

package vnpay

import (
	"testing"
)

func TestCanonicalize_Deterministic(t *testing.T) {
	params := map[string]string{
		"vnp_Amount":  "4900000",
		"vnp_TmnCode": "VIETCHRM",
		"vnp_TxnRef":  "ordabc123",
	}

	first := Canonicalize(params)
	second := Canonicalize(params)
	if first != second {
		t.Errorf("encoding is not deterministic:\n%s\n%s", first, second)
	}

	want := "vnp_Amount=4900000&vnp_TmnCode=VIETCHRM&vnp_TxnRef=ordabc123"
	if first != want {
		t.Errorf("got %q, want %q", first, want)
	}
}

func TestCanonicalize_SortsByKey(t *testing.T) {
	// Maps have no insertion order, so build two value-identical maps
	// and check the output matches byte-sorted key order.
	a := map[string]string{"b": "2", "a": "1", "c": "3"}
	b := map[string]string{"c": "3", "a": "1", "b": "2"}

	want := "a=1&b=2&c=3"
	if got := Canonicalize(a); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := Canonicalize(b); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCanonicalize_SpaceBecomesPlus(t *testing.T) {
	got := Canonicalize(map[string]string{
		"vnp_OrderInfo": "Thanh toan don hang",
	})
	want := "vnp_OrderInfo=Thanh+toan+don+hang"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCanonicalize_ExcludesSecureHashFields(t *testing.T) {
	got := Canonicalize(map[string]string{
		"vnp_Amount":         "100",
		"vnp_SecureHash":     "deadbeef",
		"vnp_SecureHashType": "HmacSHA512",
	})
	want := "vnp_Amount=100"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCanonicalize_EmptyValueIncluded(t *testing.T) {
	got := Canonicalize(map[string]string{"vnp_OrderInfo": "", "vnp_Amount": "5"})
	want := "vnp_Amount=5&vnp_OrderInfo="
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEscape_GatewayRules(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"abc123", "abc123"},
		{"a b", "a+b"},
		{"-_.!~*'()", "-_.!~*'()"}, // unreserved per the gateway's escaping
		{"a&b=c", "a%26b%3Dc"},
		{"100%", "100%25"},
		{"Mứt", "M%E1%BB%A9t"}, // UTF-8 bytes percent-encoded
		{"a/b:c", "a%2Fb%3Ac"},
	}
	for _, tc := range cases {
		if got := escape(tc.in); got != tc.want {
			t.Errorf("escape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package collection

import (
	"errors"
	"testing"

	"github.com/vietcharm/vietcharm/internal/catalog"
)

func TestResolve_BareCode(t *testing.T) {
	cat := catalog.Default()

	res, err := Resolve(cat, "BAC_MAN_01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.All || res.ProductID != "bac-man" {
		t.Errorf("got %+v, want bac-man", res)
	}
}

func TestResolve_DeepLink(t *testing.T) {
	cat := catalog.Default()

	res, err := Resolve(cat, "https://vietcharm.vn/unlock?code=NAM_DUA_01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ProductID != "nam-dua" {
		t.Errorf("got %q, want nam-dua", res.ProductID)
	}
}

func TestResolve_Sentinel(t *testing.T) {
	cat := catalog.Default()

	res, err := Resolve(cat, "VIETCHARM_ALL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.All {
		t.Error("sentinel should resolve to All")
	}

	// Sentinel embedded in a deep link works too.
	res, err = Resolve(cat, "https://vietcharm.vn/unlock?code=VIETCHARM_ALL")
	if err != nil || !res.All {
		t.Errorf("deep-linked sentinel: res=%+v err=%v", res, err)
	}
}

func TestResolve_InvalidCodes(t *testing.T) {
	cat := catalog.Default()

	for _, code := range []string{
		"GARBAGE_CODE",
		"",
		"bac-man",           // catalog ID, not a printed code
		"BAC_MAN_01_EXTRA3", // malformed sequence
		"https://vietcharm.vn/unlock?code=NOPE_NOPE_01",
		"TRUNG_SEN_XX",   // non-numeric sequence
		"COMBO_6_VI",     // combos are not collectible
		"VIETCHARM_all",  // sentinel is case-sensitive and not a region code
	} {
		_, err := Resolve(cat, code)
		if !errors.Is(err, ErrInvalidCode) {
			t.Errorf("Resolve(%q): expected ErrInvalidCode, got %v", code, err)
		}
	}
}

func TestResolve_CaseAndSequenceVariants(t *testing.T) {
	cat := catalog.Default()

	cases := map[string]string{
		"TRUNG_SEN_07":   "trung-sen",
		"NAM_MANGCAU_02": "nam-mangcau",
		"bac_mo_01":      "bac-mo", // case-normalized
		"TRUNG_DAU":      "trung-dau", // sequence suffix optional
	}
	for code, want := range cases {
		res, err := Resolve(cat, code)
		if err != nil {
			t.Errorf("Resolve(%q): %v", code, err)
			continue
		}
		if res.ProductID != want {
			t.Errorf("Resolve(%q) = %q, want %q", code, res.ProductID, want)
		}
	}
}

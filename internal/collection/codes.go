// Package collection implements the QR unlock flow: resolving scanned
// codes to catalog products and advancing each user's collection
// profile through an idempotent, atomic progression engine.
package collection

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/vietcharm/vietcharm/internal/catalog"
)

var ErrInvalidCode = errors.New("unrecognized unlock code")

// SentinelAll is the printed master code that unlocks the whole
// collectible catalog.
const SentinelAll = "VIETCHARM_ALL"

// Resolution is the outcome of resolving a scanned code. Resolution is
// pure; unlocking happens separately in the engine.
type Resolution struct {
	All       bool
	ProductID string
}

var (
	// codeShape matches the printed label grammar REGION_ITEM or
	// REGION_ITEM_SEQ, e.g. BAC_MAN_01.
	codeShape = regexp.MustCompile(`^[A-Za-z]+_[A-Za-z]+(_[0-9]+)?$`)
	seqSuffix = regexp.MustCompile(`_[0-9]+$`)
)

// Resolve maps a scanned string to a catalog product or the unlock-all
// sentinel. The input may be the bare code or a deep-link URL carrying
// it as the code query parameter.
func Resolve(cat *catalog.Catalog, raw string) (Resolution, error) {
	code := extractCode(strings.TrimSpace(raw))

	if code == SentinelAll {
		return Resolution{All: true}, nil
	}

	if !codeShape.MatchString(code) {
		return Resolution{}, ErrInvalidCode
	}

	// BAC_MAN_01 -> bac_man -> bac-man
	id := seqSuffix.ReplaceAllString(strings.ToLower(code), "")
	id = strings.Replace(id, "_", "-", 1)

	p, err := cat.Product(id)
	if err != nil || p.IsCombo {
		return Resolution{}, ErrInvalidCode
	}
	return Resolution{ProductID: p.ID}, nil
}

// extractCode pulls the embedded code out of a deep-link URL, or
// returns the input unchanged when it is not one.
func extractCode(raw string) string {
	if !strings.Contains(raw, "unlock") || !strings.Contains(raw, "code=") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if code := u.Query().Get("code"); code != "" {
		return code
	}
	return raw
}

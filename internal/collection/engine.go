package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vietcharm/vietcharm/internal/catalog"
	"github.com/vietcharm/vietcharm/internal/metrics"
	"github.com/vietcharm/vietcharm/internal/retry"
)

var ErrVersionConflict = errors.New("profile modified concurrently")

// Badge tiers, earned at 1, 2 and 3 fully collected regions. Once
// earned a badge is never removed; the unlocked set only grows, so the
// tier predicates can only keep holding.
const (
	BadgeKhoiHanh = "khoi-hanh" // first region complete
	BadgeKetNoi   = "ket-noi"   // two regions complete
	BadgeDaiSu    = "dai-su"    // all three regions complete
)

var badgeTiers = []string{BadgeKhoiHanh, BadgeKetNoi, BadgeDaiSu}

// Profile is a user's persisted collection state. Badges are always
// recomputed from the unlocked set, never mutated independently.
type Profile struct {
	UserID    string    `json:"userId"`
	Unlocked  []string  `json:"unlockedProducts"`
	Badges    []string  `json:"badges"`
	Version   int64     `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists collection profiles.
//
// Save is a compare-and-swap: it commits only when the stored version
// still equals expectedVersion (0 meaning "no profile yet") and
// returns ErrVersionConflict otherwise. The engine re-reads and
// recomputes on conflict, so concurrent unlocks never lose updates.
type Store interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, profile *Profile, expectedVersion int64) error
}

// Persistence retry parameters. Version conflicts and transient store
// failures both go through the same backoff.
const (
	persistAttempts  = 8
	persistBaseDelay = 25 * time.Millisecond
)

// UnlockResult reports what an unlock call changed.
type UnlockResult struct {
	Profile       *Profile `json:"profile"`
	NewlyUnlocked []string `json:"newlyUnlocked"`
	NewBadges     []string `json:"newBadges"`
	NoOp          bool     `json:"noOp"`
}

// Engine is the collection progression state machine.
type Engine struct {
	store   Store
	catalog *catalog.Catalog
}

// NewEngine creates a progression engine over the given catalog.
func NewEngine(store Store, cat *catalog.Catalog) *Engine {
	return &Engine{store: store, catalog: cat}
}

// Unlock adds the resolved product (or, for the sentinel, the whole
// collectible catalog) to the user's unlocked set, recomputes badges,
// and persists both in one atomic write. Re-scanning an already
// unlocked product is a no-op with no write at all.
func (e *Engine) Unlock(ctx context.Context, userID string, res Resolution) (*UnlockResult, error) {
	items := []string{res.ProductID}
	if res.All {
		items = e.catalog.Collectibles()
	}

	var result *UnlockResult
	err := retry.Do(ctx, persistAttempts, persistBaseDelay, func() error {
		current, err := e.store.Get(ctx, userID)
		if err != nil {
			return err
		}

		have := make(map[string]bool, len(current.Unlocked))
		for _, id := range current.Unlocked {
			have[id] = true
		}
		var newly []string
		for _, id := range items {
			if !have[id] {
				newly = append(newly, id)
			}
		}

		if len(newly) == 0 {
			result = &UnlockResult{Profile: current, NoOp: true}
			return nil
		}

		updated := &Profile{
			UserID:    userID,
			Unlocked:  sortedUnion(current.Unlocked, newly),
			UpdatedAt: time.Now(),
		}
		updated.Badges = e.BadgesFor(updated.Unlocked)

		if err := e.store.Save(ctx, updated, current.Version); err != nil {
			return err
		}

		result = &UnlockResult{
			Profile:       updated,
			NewlyUnlocked: newly,
			NewBadges:     diff(updated.Badges, current.Badges),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist unlock: %w", err)
	}

	if result.NoOp {
		metrics.UnlocksTotal.WithLabelValues("noop").Inc()
	} else {
		metrics.UnlocksTotal.WithLabelValues("unlocked").Inc()
		for _, b := range result.NewBadges {
			metrics.BadgesAwardedTotal.WithLabelValues(b).Inc()
		}
	}
	return result, nil
}

// Profile returns the user's current collection state.
func (e *Engine) Profile(ctx context.Context, userID string) (*Profile, error) {
	return e.store.Get(ctx, userID)
}

// BadgesFor derives the badge set from an unlocked set. Pure function:
// a tier is present exactly when enough regions are complete.
func (e *Engine) BadgesFor(unlocked []string) []string {
	complete := len(e.CompletedRegions(unlocked))
	var badges []string
	for i, tier := range badgeTiers {
		if complete >= i+1 {
			badges = append(badges, tier)
		}
	}
	return badges
}

// CompletedRegions returns the regions whose collectibles are all in
// the unlocked set.
func (e *Engine) CompletedRegions(unlocked []string) []catalog.Region {
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}

	var complete []catalog.Region
	for _, region := range e.catalog.Regions() {
		all := true
		for _, id := range e.catalog.RegionProducts(region) {
			if !have[id] {
				all = false
				break
			}
		}
		if all {
			complete = append(complete, region)
		}
	}
	return complete
}

func sortedUnion(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// diff returns the elements of a that are not in b.
func diff(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	var out []string
	for _, s := range a {
		if !in[s] {
			out = append(out, s)
		}
	}
	return out
}

package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietcharm/vietcharm/internal/testutil"
)

func TestPostgresStore_FirstSave(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	// Absent profile reads as empty, version 0
	p, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Version != 0 || len(p.Unlocked) != 0 {
		t.Errorf("expected empty profile, got %+v", p)
	}

	p.Unlocked = []string{"bac-man"}
	p.UpdatedAt = time.Now()
	if err := store.Save(ctx, p, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	if p.Version != 1 {
		t.Errorf("expected version 1 after first save, got %d", p.Version)
	}

	got, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	if len(got.Unlocked) != 1 || got.Unlocked[0] != "bac-man" {
		t.Errorf("unlocked = %v", got.Unlocked)
	}
}

func TestPostgresStore_VersionConflict(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	p := &Profile{UserID: "user-1", Unlocked: []string{"bac-man"}, UpdatedAt: time.Now()}
	if err := store.Save(ctx, p, 0); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// A second insert for the same user loses the race
	stale := &Profile{UserID: "user-1", Unlocked: []string{"bac-mo"}, UpdatedAt: time.Now()}
	if err := store.Save(ctx, stale, 0); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict on duplicate insert, got %v", err)
	}

	// Update with a stale version loses too
	stale.Version = 0
	if err := store.Save(ctx, stale, 99); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict on stale update, got %v", err)
	}

	// Update with the committed version wins
	p.Unlocked = append(p.Unlocked, "bac-mo")
	p.UpdatedAt = time.Now()
	if err := store.Save(ctx, p, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Version != 2 {
		t.Errorf("expected version 2, got %d", p.Version)
	}
}

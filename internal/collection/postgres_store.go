package collection

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// PostgresStore persists collection profiles in PostgreSQL. Writes are
// guarded by a version column so the engine's compare-and-swap loop
// sees every concurrent commit.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Get(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	err := p.db.QueryRowContext(ctx, `
		SELECT id, unlocked_products, badges, version, updated_at
		FROM profiles WHERE id = $1`, userID).
		Scan(&profile.UserID, pq.Array(&profile.Unlocked), pq.Array(&profile.Badges),
			&profile.Version, &profile.UpdatedAt)
	if err == sql.ErrNoRows {
		return &Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *PostgresStore) Save(ctx context.Context, profile *Profile, expectedVersion int64) error {
	if expectedVersion == 0 {
		result, err := p.db.ExecContext(ctx, `
			INSERT INTO profiles (id, unlocked_products, badges, version, updated_at)
			VALUES ($1, $2, $3, 1, $4)
			ON CONFLICT (id) DO NOTHING`,
			profile.UserID, pq.Array(profile.Unlocked), pq.Array(profile.Badges), profile.UpdatedAt,
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Someone created the profile first.
			return ErrVersionConflict
		}
		profile.Version = 1
		return nil
	}

	result, err := p.db.ExecContext(ctx, `
		UPDATE profiles
		SET unlocked_products = $1, badges = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5`,
		pq.Array(profile.Unlocked), pq.Array(profile.Badges), profile.UpdatedAt,
		profile.UserID, expectedVersion,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVersionConflict
	}
	profile.Version = expectedVersion + 1
	return nil
}

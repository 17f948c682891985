package reviews

import (
	"context"
	"database/sql"
)

// PostgresStore persists review data in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed review store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Create(ctx context.Context, r *Review) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO product_reviews (id, product_id, user_id, user_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.ProductID, r.UserID, r.UserName, r.Rating, r.Comment, r.CreatedAt,
	)
	return err
}

func (p *PostgresStore) ListByProduct(ctx context.Context, productID string, limit int) ([]*Review, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, product_id, user_id, user_name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

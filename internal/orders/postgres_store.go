package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists order data in PostgreSQL. Items and shipping
// info are stored as JSONB and validated before they reach this layer.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed order store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orderColumns = `id, user_id, items, total, status, payment_status, txn_ref, shipping_info, created_at, updated_at`

func (p *PostgresStore) Create(ctx context.Context, o *Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("marshal shipping info: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, items, total, status, payment_status, txn_ref, shipping_info, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.UserID, itemsJSON, o.Total,
		string(o.Status), string(o.PaymentStatus), nullString(o.TxnRef),
		shippingJSON, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Order, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (p *PostgresStore) GetByTxnRef(ctx context.Context, txnRef string) (*Order, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE txn_ref = $1`, txnRef)
	return scanOrder(row)
}

func (p *PostgresStore) Update(ctx context.Context, o *Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("marshal shipping info: %w", err)
	}

	result, err := p.db.ExecContext(ctx, `
		UPDATE orders SET
			items = $1, total = $2, status = $3, payment_status = $4,
			txn_ref = $5, shipping_info = $6, updated_at = $7
		WHERE id = $8`,
		itemsJSON, o.Total, string(o.Status), string(o.PaymentStatus),
		nullString(o.TxnRef), shippingJSON, o.UpdatedAt, o.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (p *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Order, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o            Order
		itemsJSON    []byte
		shippingJSON []byte
		status       string
		payStatus    string
		txnRef       sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &o.Total,
		&status, &payStatus, &txnRef,
		&shippingJSON, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	o.Status = Status(status)
	o.PaymentStatus = PaymentStatus(payStatus)
	o.TxnRef = txnRef.String
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &o.Shipping); err != nil {
		return nil, fmt.Errorf("unmarshal shipping info: %w", err)
	}
	return &o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

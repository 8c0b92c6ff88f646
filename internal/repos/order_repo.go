package repos

import (
	"context"
	"encoding/json"
	"fmt"

	"myshop/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// Add stores o as a new record. The same order added twice gives two records.
func (r *OrderRepo) Add(ctx context.Context, uid string, o domain.Order) (string, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("encode order: %w", err)
	}
	rid := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
	  INSERT INTO orders(record_id, uid, order_id, payload)
	  VALUES(?, ?, ?, ?)
	`, rid, uid, o.OrderID, string(payload))
	if err != nil {
		return "", err
	}
	return rid, nil
}

type orderRow struct {
	RecordID string `db:"record_id"`
	Payload  string `db:"payload"`
}

// List returns a user's orders, oldest first.
func (r *OrderRepo) List(ctx context.Context, uid string) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, `
	  SELECT record_id, payload FROM orders
	  WHERE uid = ?
	  ORDER BY rowid
	`, uid); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		var o domain.Order
		if err := json.Unmarshal([]byte(row.Payload), &o); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", row.RecordID, err)
		}
		out = append(out, o)
	}
	return out, nil
}

package repos

import (
	"context"

	"myshop/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReconcileRepo struct{ db *sqlx.DB }

func NewReconcileRepo(db *sqlx.DB) *ReconcileRepo { return &ReconcileRepo{db: db} }

func (r *ReconcileRepo) Record(ctx context.Context, rec domain.Reconciliation) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO payment_reconciliations
	    (id, uid, order_id, gateway_order_id, payment_id, amount, reason, refund_status, refund_id)
	  VALUES
	    (:id, :uid, :order_id, :gateway_order_id, :payment_id, :amount, :reason, :refund_status, :refund_id)
	`, rec)
	return rec.ID, err
}

func (r *ReconcileRepo) List(ctx context.Context) ([]domain.Reconciliation, error) {
	out := []domain.Reconciliation{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, uid, order_id, gateway_order_id, payment_id, amount, reason, refund_status, refund_id,
	         COALESCE(created_at,'') AS created_at
	  FROM payment_reconciliations
	  ORDER BY created_at DESC
	`)
	return out, err
}

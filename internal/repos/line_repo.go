package repos

import (
	"context"
	"time"

	"myshop/internal/domain"

	"github.com/jmoiron/sqlx"
)

// LineRepo is a per-user collection of cart lines. Carts and wishlists
// use the same shape in different tables.
type LineRepo struct {
	db    *sqlx.DB
	table string
}

func NewCartRepo(db *sqlx.DB) *LineRepo     { return &LineRepo{db: db, table: "cart_lines"} }
func NewWishlistRepo(db *sqlx.DB) *LineRepo { return &LineRepo{db: db, table: "wishlist_lines"} }

// Put replaces any line with the same product id.
func (r *LineRepo) Put(ctx context.Context, uid string, l domain.CartLine) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO `+r.table+`(uid, product_id, product_name, product_image, category, size, color, quantity, total_price, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	  ON CONFLICT(uid, product_id) DO UPDATE SET
	    product_name  = excluded.product_name,
	    product_image = excluded.product_image,
	    category      = excluded.category,
	    size          = excluded.size,
	    color         = excluded.color,
	    quantity      = excluded.quantity,
	    total_price   = excluded.total_price,
	    updated_at    = excluded.updated_at
	`, uid, l.ProductID, l.ProductName, l.ProductImage, l.Category, l.Size, l.Color, l.Quantity, l.TotalPrice,
		time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Delete is a no-op for a line that is not there.
func (r *LineRepo) Delete(ctx context.Context, uid, productID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE uid = ? AND product_id = ?`, uid, productID)
	return err
}

func (r *LineRepo) List(ctx context.Context, uid string) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT product_id, product_name, product_image, category, size, color, quantity, total_price
	  FROM `+r.table+`
	  WHERE uid = ?
	  ORDER BY updated_at, product_id
	`, uid)
	return out, err
}

func (r *LineRepo) Clear(ctx context.Context, uid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE uid = ?`, uid)
	return err
}

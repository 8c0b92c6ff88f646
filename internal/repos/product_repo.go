package repos

import (
	"context"
	"database/sql"
	"errors"

	"myshop/internal/domain"
)

const productCols = `id, name, price, final_price, category, description, available_units, image`

func (r *CatalogRepo) Products(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+productCols+` FROM products ORDER BY name`)
	return out, err
}

func (r *CatalogRepo) Product(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.NotFound("product", id)
	}
	return p, err
}

func (r *CatalogRepo) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE category = ?
	  ORDER BY name
	`, category)
	return out, err
}

// ProductsFrom is a name-prefix range scan: name >= q and name < q+U+F8FF,
// the same bounds a document-store startAt/endAt query uses.
func (r *CatalogRepo) ProductsFrom(ctx context.Context, q string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE name >= ? AND name < ?
	  ORDER BY name
	`, q, q+"\uf8ff")
	return out, err
}

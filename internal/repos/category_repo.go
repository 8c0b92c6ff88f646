package repos

import (
	"context"

	"myshop/internal/domain"

	"github.com/jmoiron/sqlx"
)

// CatalogRepo serves the read-only storefront collections.
type CatalogRepo struct{ db *sqlx.DB }

func NewCatalogRepo(db *sqlx.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func (r *CatalogRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, name, description, image
	  FROM categories
	  ORDER BY name
	`)
	return out, err
}

func (r *CatalogRepo) Banners(ctx context.Context) ([]domain.Banner, error) {
	out := []domain.Banner{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, title, description, image FROM banners ORDER BY id`)
	return out, err
}

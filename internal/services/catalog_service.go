package services

import (
	"context"
	"strings"

	"myshop/internal/domain"
	"myshop/internal/result"
)

func (r *Repo) ListCategories() result.Stream[[]domain.Category] {
	return result.FromCall(r.Catalog.Categories)
}

func (r *Repo) ListProducts() result.Stream[[]domain.Product] {
	return result.FromCall(r.Catalog.Products)
}

func (r *Repo) ListBanners() result.Stream[[]domain.Banner] {
	return result.FromCall(r.Catalog.Banners)
}

func (r *Repo) ProductByID(id string) result.Stream[domain.Product] {
	return result.FromCall(func(ctx context.Context) (domain.Product, error) {
		return r.Catalog.Product(ctx, id)
	})
}

func (r *Repo) ProductsByCategory(category string) result.Stream[[]domain.Product] {
	return result.FromCall(func(ctx context.Context) ([]domain.Product, error) {
		return r.Catalog.ProductsByCategory(ctx, category)
	})
}

// SearchProducts asks the backend for products whose name starts with q.
func (r *Repo) SearchProducts(q string) result.Stream[[]domain.Product] {
	return result.FromCall(func(ctx context.Context) ([]domain.Product, error) {
		return r.Catalog.ProductsFrom(ctx, strings.TrimSpace(q))
	})
}

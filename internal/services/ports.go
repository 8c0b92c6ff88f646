package services

import (
	"context"
	"io"

	"myshop/internal/domain"
)

// CatalogStore reads the storefront collections.
type CatalogStore interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Products(ctx context.Context) ([]domain.Product, error)
	Banners(ctx context.Context) ([]domain.Banner, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ProductsFrom(ctx context.Context, q string) ([]domain.Product, error)
}

type UserStore interface {
	Put(ctx context.Context, uid string, u domain.User) error
	Get(ctx context.Context, uid string) (domain.User, error)
	Patch(ctx context.Context, uid string, p domain.ProfilePatch) error
	SetImage(ctx context.Context, uid, url string) error
}

// LineStore holds one line per product id for each user.
type LineStore interface {
	Put(ctx context.Context, uid string, l domain.CartLine) error
	Delete(ctx context.Context, uid, productID string) error
	List(ctx context.Context, uid string) ([]domain.CartLine, error)
	Clear(ctx context.Context, uid string) error
}

type OrderStore interface {
	Add(ctx context.Context, uid string, o domain.Order) (string, error)
	List(ctx context.Context, uid string) ([]domain.Order, error)
}

type AuthProvider interface {
	Register(ctx context.Context, email, password string) (domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
	SignOut(ctx context.Context, token string) error
	Identify(ctx context.Context, token string) (domain.Identity, error)
}

type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	URL(ctx context.Context, key string) (string, error)
}

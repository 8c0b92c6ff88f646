package services

import (
	"context"

	"myshop/internal/domain"
	"myshop/internal/result"
)

// Repo is the single entry point the state holders use. Every method
// returns a cold stream: Pending first, then one terminal result.
type Repo struct {
	Catalog  CatalogStore
	Users    UserStore
	Cart     LineStore
	Wishlist LineStore
	Orders   OrderStore
	Auth     AuthProvider
	Blobs    BlobStore
}

func NewRepo(catalog CatalogStore, users UserStore, cart, wishlist LineStore, orders OrderStore, auth AuthProvider, blobs BlobStore) *Repo {
	return &Repo{Catalog: catalog, Users: users, Cart: cart, Wishlist: wishlist, Orders: orders, Auth: auth, Blobs: blobs}
}

// scoped runs call for an authenticated identity only.
func scoped[T any](id domain.Identity, call func(ctx context.Context, uid string) (T, error)) result.Stream[T] {
	return result.FromCall(func(ctx context.Context) (T, error) {
		if id.Anonymous() {
			var zero T
			return zero, domain.ErrUnauthenticated
		}
		return call(ctx, id.UID)
	})
}

package services

import (
	"context"

	"myshop/internal/domain"
	"myshop/internal/result"
)

const (
	MsgAddedToCart     = "Added to cart"
	MsgRemovedFromCart = "Removed from cart"
)

// AddToCart stores l under its product id, replacing any earlier line.
func (r *Repo) AddToCart(id domain.Identity, l domain.CartLine) result.Stream[string] {
	return scoped(id, func(ctx context.Context, uid string) (string, error) {
		if err := r.Cart.Put(ctx, uid, l); err != nil {
			return "", err
		}
		return MsgAddedToCart, nil
	})
}

func (r *Repo) CartLines(id domain.Identity) result.Stream[[]domain.CartLine] {
	return scoped(id, r.Cart.List)
}

func (r *Repo) RemoveFromCart(id domain.Identity, productID string) result.Stream[string] {
	return scoped(id, func(ctx context.Context, uid string) (string, error) {
		if err := r.Cart.Delete(ctx, uid, productID); err != nil {
			return "", err
		}
		return MsgRemovedFromCart, nil
	})
}

// ClearCart deletes every line in the caller's cart.
func (r *Repo) ClearCart(ctx context.Context, id domain.Identity) error {
	if id.Anonymous() {
		return domain.ErrUnauthenticated
	}
	return r.Cart.Clear(ctx, id.UID)
}

package services

import (
	"context"

	"myshop/internal/domain"
	"myshop/internal/result"
)

const (
	MsgAddedToWishlist     = "Added to wishlist"
	MsgRemovedFromWishlist = "Removed from wishlist"
)

func (r *Repo) AddToWishlist(id domain.Identity, l domain.CartLine) result.Stream[string] {
	return scoped(id, func(ctx context.Context, uid string) (string, error) {
		if err := r.Wishlist.Put(ctx, uid, l); err != nil {
			return "", err
		}
		return MsgAddedToWishlist, nil
	})
}

func (r *Repo) WishlistLines(id domain.Identity) result.Stream[[]domain.CartLine] {
	return scoped(id, r.Wishlist.List)
}

func (r *Repo) RemoveFromWishlist(id domain.Identity, productID string) result.Stream[string] {
	return scoped(id, func(ctx context.Context, uid string) (string, error) {
		if err := r.Wishlist.Delete(ctx, uid, productID); err != nil {
			return "", err
		}
		return MsgRemovedFromWishlist, nil
	})
}

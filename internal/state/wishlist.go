package state

import (
	"context"

	"myshop/internal/domain"
	"myshop/internal/result"
)

type WishlistSource interface {
	WishlistLines(id domain.Identity) result.Stream[[]domain.CartLine]
	RemoveFromWishlist(id domain.Identity, productID string) result.Stream[string]
}

type Wishlist struct {
	src WishlistSource
	id  domain.Identity

	State         *Cell[Load[[]domain.CartLine]]
	RemoveMessage *Cell[string]
}

func NewWishlist(src WishlistSource, id domain.Identity) *Wishlist {
	return &Wishlist{
		src:           src,
		id:            id,
		State:         NewCell(Load[[]domain.CartLine]{}),
		RemoveMessage: NewCell(""),
	}
}

// Refresh reloads the wishlist. The previous lines stay visible while loading.
func (w *Wishlist) Refresh(ctx context.Context) Load[[]domain.CartLine] {
	_, s := observe(ctx, w.State, w.src.WishlistLines(w.id), func(prev Load[[]domain.CartLine], r result.Result[[]domain.CartLine]) Load[[]domain.CartLine] {
		switch r.State {
		case result.StatePending:
			prev.Loading = true
			return prev
		case result.StateFailed:
			return Load[[]domain.CartLine]{Error: r.Message}
		}
		return Load[[]domain.CartLine]{Data: r.Data}
	})
	return s
}

// Remove deletes a line and, when that worked, reloads the wishlist. It
// returns the feedback message and the reloaded wishlist.
func (w *Wishlist) Remove(ctx context.Context, productID string) (string, Load[[]domain.CartLine], error) {
	r, msg := observe(ctx, w.RemoveMessage, w.src.RemoveFromWishlist(w.id, productID), message)
	if _, err := outcome(ctx, r); err != nil {
		return msg, Load[[]domain.CartLine]{}, err
	}
	return msg, w.Refresh(ctx), nil
}

func (w *Wishlist) ClearRemoveMessage() { w.RemoveMessage.Set("") }

package services

import (
	"context"

	"myshop/internal/domain"
	"myshop/internal/result"
)

// PlaceOrder appends o to the caller's order history and yields its order id.
// Placing the same order twice stores it twice.
func (r *Repo) PlaceOrder(id domain.Identity, o domain.Order) result.Stream[string] {
	o = o.Clone()
	return scoped(id, func(ctx context.Context, uid string) (string, error) {
		if _, err := r.Orders.Add(ctx, uid, o); err != nil {
			return "", err
		}
		return o.OrderID, nil
	})
}

func (r *Repo) ListOrders(ctx context.Context, id domain.Identity) ([]domain.Order, error) {
	if id.Anonymous() {
		return nil, domain.ErrUnauthenticated
	}
	return r.Orders.List(ctx, id.UID)
}

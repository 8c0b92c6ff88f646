package state

import (
	"context"

	"myshop/internal/domain"
	"myshop/internal/result"
)

type CartSource interface {
	CartLines(id domain.Identity) result.Stream[[]domain.CartLine]
	RemoveFromCart(id domain.Identity, productID string) result.Stream[string]
	PlaceOrder(id domain.Identity, o domain.Order) result.Stream[string]
	ClearCart(ctx context.Context, id domain.Identity) error
	ListOrders(ctx context.Context, id domain.Identity) ([]domain.Order, error)
}

type CartState struct {
	Loading  bool              `json:"isLoading"`
	Lines    []domain.CartLine `json:"cart"`
	Subtotal int64             `json:"subtotal"`
	Error    string            `json:"error,omitempty"`
}

type RemoveState struct {
	Removing bool   `json:"isRemoving"`
	Message  string `json:"message,omitempty"`
}

type PlaceOrderState struct {
	Loading bool   `json:"isLoading"`
	Success string `json:"successMessage,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Cart backs the cart, checkout and order history screens.
type Cart struct {
	src CartSource
	id  domain.Identity

	State      *Cell[CartState]
	Remove     *Cell[RemoveState]
	PlaceOrder *Cell[PlaceOrderState]
	Orders     *Cell[Load[[]domain.Order]]
}

func NewCart(src CartSource, id domain.Identity) *Cart {
	return &Cart{
		src:        src,
		id:         id,
		State:      NewCell(CartState{}),
		Remove:     NewCell(RemoveState{}),
		PlaceOrder: NewCell(PlaceOrderState{}),
		Orders:     NewCell(Load[[]domain.Order]{}),
	}
}

// Refresh reloads the cart and returns the state this load ended with.
func (c *Cart) Refresh(ctx context.Context) CartState {
	_, st := observe(ctx, c.State, c.src.CartLines(c.id), func(_ CartState, r result.Result[[]domain.CartLine]) CartState {
		switch r.State {
		case result.StatePending:
			return CartState{Loading: true}
		case result.StateFailed:
			return CartState{Error: r.Message}
		}
		return CartState{Lines: r.Data, Subtotal: domain.Subtotal(r.Data).IntPart()}
	})
	return st
}

// Current reloads the cart and returns a copy of its lines, or the backend
// failure.
func (c *Cart) Current(ctx context.Context) ([]domain.CartLine, error) {
	st := c.Refresh(ctx)
	if st.Error != "" {
		return nil, &result.Error{Message: st.Error}
	}
	return append([]domain.CartLine(nil), st.Lines...), nil
}

// RemoveLine deletes a line and, when that worked, reloads the cart. It
// returns the feedback message and the reloaded cart.
func (c *Cart) RemoveLine(ctx context.Context, productID string) (string, CartState, error) {
	r, fb := observe(ctx, c.Remove, c.src.RemoveFromCart(c.id, productID), func(_ RemoveState, r result.Result[string]) RemoveState {
		switch r.State {
		case result.StatePending:
			return RemoveState{Removing: true}
		case result.StateFailed:
			return RemoveState{Message: r.Message}
		}
		return RemoveState{Message: r.Data}
	})
	if _, err := outcome(ctx, r); err != nil {
		return fb.Message, CartState{}, err
	}
	return fb.Message, c.Refresh(ctx), nil
}

func (c *Cart) ClearRemoveMessage() {
	c.Remove.Update(func(s RemoveState) RemoveState { s.Message = ""; return s })
}

// Place submits o and reports the stored order id.
func (c *Cart) Place(ctx context.Context, o domain.Order) (string, error) {
	r, _ := observe(ctx, c.PlaceOrder, c.src.PlaceOrder(c.id, o), func(_ PlaceOrderState, r result.Result[string]) PlaceOrderState {
		switch r.State {
		case result.StatePending:
			return PlaceOrderState{Loading: true}
		case result.StateFailed:
			return PlaceOrderState{Error: r.Message}
		}
		return PlaceOrderState{Success: r.Data}
	})
	return outcome(ctx, r)
}

// Clear empties the cart on the backend and then shows an empty cart
// without reloading.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.src.ClearCart(ctx, c.id); err != nil {
		return err
	}
	c.State.Set(CartState{Lines: []domain.CartLine{}})
	return nil
}

func (c *Cart) FetchOrders(ctx context.Context) Load[[]domain.Order] {
	s := result.FromCall(func(ctx context.Context) ([]domain.Order, error) {
		return c.src.ListOrders(ctx, c.id)
	})
	_, st := observe(ctx, c.Orders, s, replace[[]domain.Order])
	return st
}

package state

import (
	"context"

	"myshop/internal/domain"
	"myshop/internal/result"
)

type ProductSource interface {
	ProductByID(id string) result.Stream[domain.Product]
	ProductsByCategory(category string) result.Stream[[]domain.Product]
	AddToCart(id domain.Identity, l domain.CartLine) result.Stream[string]
	AddToWishlist(id domain.Identity, l domain.CartLine) result.Stream[string]
	RemoveFromWishlist(id domain.Identity, productID string) result.Stream[string]
}

type ProductDetail struct {
	Loading  bool            `json:"isLoading"`
	Product  *domain.Product `json:"product,omitempty"`
	Discount int64           `json:"discountPercent"`
	Error    string          `json:"error,omitempty"`
}

// Product backs the product detail and category listing screens.
type Product struct {
	src ProductSource
	id  domain.Identity

	Detail         *Cell[ProductDetail]
	ByCategory     *Cell[Load[[]domain.Product]]
	AddedToCart    *Cell[string]
	AddedWishlist  *Cell[string]
	RemovedMessage *Cell[string]
}

func NewProduct(src ProductSource, id domain.Identity) *Product {
	return &Product{
		src:            src,
		id:             id,
		Detail:         NewCell(ProductDetail{}),
		ByCategory:     NewCell(Load[[]domain.Product]{}),
		AddedToCart:    NewCell(""),
		AddedWishlist:  NewCell(""),
		RemovedMessage: NewCell(""),
	}
}

// LoadProduct fetches one product and returns the detail this call ended with.
func (p *Product) LoadProduct(ctx context.Context, productID string) ProductDetail {
	_, d := observe(ctx, p.Detail, p.src.ProductByID(productID), func(_ ProductDetail, r result.Result[domain.Product]) ProductDetail {
		switch r.State {
		case result.StatePending:
			return ProductDetail{Loading: true}
		case result.StateFailed:
			return ProductDetail{Error: r.Message}
		}
		prod := r.Data
		return ProductDetail{Product: &prod, Discount: domain.DiscountPercent(prod)}
	})
	return d
}

func (p *Product) LoadByCategory(ctx context.Context, category string) Load[[]domain.Product] {
	_, s := observe(ctx, p.ByCategory, p.src.ProductsByCategory(category), replace[[]domain.Product])
	return s
}

func (p *Product) AddToCart(ctx context.Context, l domain.CartLine) (string, error) {
	r, _ := observe(ctx, p.AddedToCart, p.src.AddToCart(p.id, l), message)
	return outcome(ctx, r)
}

func (p *Product) ClearAddToCart() { p.AddedToCart.Set("") }

func (p *Product) AddToWishlist(ctx context.Context, l domain.CartLine) (string, error) {
	r, _ := observe(ctx, p.AddedWishlist, p.src.AddToWishlist(p.id, l), message)
	return outcome(ctx, r)
}

func (p *Product) ClearAddToWishlist() { p.AddedWishlist.Set("") }

func (p *Product) RemoveFromWishlist(ctx context.Context, productID string) (string, error) {
	r, _ := observe(ctx, p.RemovedMessage, p.src.RemoveFromWishlist(p.id, productID), message)
	return outcome(ctx, r)
}

func (p *Product) ClearRemoveMessage() { p.RemovedMessage.Set("") }

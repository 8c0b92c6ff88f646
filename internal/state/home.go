package state

import (
	"context"
	"sync"

	"myshop/internal/domain"
	"myshop/internal/result"
)

type HomeSource interface {
	ListCategories() result.Stream[[]domain.Category]
	ListProducts() result.Stream[[]domain.Product]
	ListBanners() result.Stream[[]domain.Banner]
}

// Home backs the landing screen. It is shared by every visitor.
type Home struct {
	src HomeSource

	Categories *Cell[Load[[]domain.Category]]
	Products   *Cell[Load[[]domain.Product]]
	Banners    *Cell[Load[[]domain.Banner]]
	Search     *Cell[Load[[]domain.Product]]

	mu  sync.Mutex
	all []domain.Product
}

func NewHome(src HomeSource) *Home {
	return &Home{
		src:        src,
		Categories: NewCell(Load[[]domain.Category]{}),
		Products:   NewCell(Load[[]domain.Product]{}),
		Banners:    NewCell(Load[[]domain.Banner]{}),
		Search:     NewCell(Load[[]domain.Product]{}),
	}
}

// Landing is what one home load ended with.
type Landing struct {
	Categories Load[[]domain.Category] `json:"categories"`
	Products   Load[[]domain.Product]  `json:"products"`
	Banners    Load[[]domain.Banner]   `json:"banners"`
}

// Load fetches the three home collections concurrently. A failure in one
// leaves the others alone.
func (h *Home) Load(ctx context.Context) Landing {
	var l Landing
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); l.Categories = h.LoadCategories(ctx) }()
	go func() { defer wg.Done(); l.Products = h.LoadProducts(ctx) }()
	go func() { defer wg.Done(); l.Banners = h.LoadBanners(ctx) }()
	wg.Wait()
	return l
}

func (h *Home) LoadCategories(ctx context.Context) Load[[]domain.Category] {
	_, s := observe(ctx, h.Categories, h.src.ListCategories(), replace[[]domain.Category])
	return s
}

func (h *Home) LoadBanners(ctx context.Context) Load[[]domain.Banner] {
	_, s := observe(ctx, h.Banners, h.src.ListBanners(), replace[[]domain.Banner])
	return s
}

func (h *Home) LoadProducts(ctx context.Context) Load[[]domain.Product] {
	r, s := observe(ctx, h.Products, h.src.ListProducts(), replace[[]domain.Product])
	if r.State == result.StateSucceeded {
		h.mu.Lock()
		h.all = r.Data
		h.mu.Unlock()
	}
	return s
}

// Loaded reports whether a product list has been loaded for search.
func (h *Home) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.all != nil
}

// SearchProducts filters the last loaded product list by name.
// A blank query shows the whole list.
func (h *Home) SearchProducts(q string) []domain.Product {
	h.mu.Lock()
	found := domain.FilterByName(h.all, q)
	h.mu.Unlock()
	h.Search.Set(Load[[]domain.Product]{Data: found})
	return found
}

func (h *Home) ResetSearch() { h.SearchProducts("") }

package state

import (
	"sync"

	"myshop/internal/domain"
)

// Source is everything the holders read from.
type Source interface {
	HomeSource
	ProductSource
	CartSource
	WishlistSource
	ProfileSource
}

// Holders is the set of screens that belong to one signed-in account.
type Holders struct {
	Product  *Product
	Cart     *Cart
	Wishlist *Wishlist
	Profile  *Profile
}

// Registry hands out holders per identity, creating them on first use.
type Registry struct {
	src  Source
	home *Home

	mu  sync.Mutex
	per map[string]*Holders
}

func NewRegistry(src Source) *Registry {
	return &Registry{src: src, home: NewHome(src), per: map[string]*Holders{}}
}

func (r *Registry) Home() *Home { return r.home }

// For returns the holders of id. An anonymous identity gets a fresh,
// unshared set every time.
func (r *Registry) For(id domain.Identity) *Holders {
	if id.Anonymous() {
		return r.build(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.per[id.UID]
	if !ok {
		h = r.build(id)
		r.per[id.UID] = h
	}
	return h
}

// Forget drops the holders of uid, e.g. after logout.
func (r *Registry) Forget(uid string) {
	r.mu.Lock()
	delete(r.per, uid)
	r.mu.Unlock()
}

func (r *Registry) build(id domain.Identity) *Holders {
	return &Holders{
		Product:  NewProduct(r.src, id),
		Cart:     NewCart(r.src, id),
		Wishlist: NewWishlist(r.src, id),
		Profile:  NewProfile(r.src, id),
	}
}

package state_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"myshop/internal/domain"
	"myshop/internal/repos"
	"myshop/internal/result"
	"myshop/internal/services"
	"myshop/internal/state"
)

type nopAuth struct{}

func (nopAuth) Register(_ context.Context, email, _ string) (domain.Identity, error) {
	return domain.Identity{UID: "uid-" + email, Email: email}, nil
}
func (nopAuth) SignIn(_ context.Context, email, password string) (domain.Session, error) {
	if password != "pw" {
		return domain.Session{}, errors.New("INVALID_PASSWORD")
	}
	return domain.Session{Token: "tok", Identity: domain.Identity{UID: "uid-" + email}}, nil
}
func (nopAuth) SignOut(context.Context, string) error { return nil }
func (nopAuth) Identify(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrUnauthenticated
}

type memBlobs struct{}

func (memBlobs) Put(_ context.Context, _, _ string, r io.Reader) error {
	_, err := io.ReadAll(r)
	return err
}
func (memBlobs) URL(_ context.Context, key string) (string, error) { return "/media/" + key, nil }

func newRepo(t *testing.T) *services.Repo {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	db.MustExec(`INSERT INTO products(id,name,price,final_price,category) VALUES
	  ('p1','Red Shirt','100','80','men'),
	  ('p2','Blue Jeans','300','200','men'),
	  ('p3','Summer Dress','500','500','women')`)
	db.MustExec(`INSERT INTO categories(id,name) VALUES ('men','Men'),('women','Women')`)
	db.MustExec(`INSERT INTO banners(id,title) VALUES ('b1','Sale')`)
	t.Cleanup(func() { _ = db.Close() })
	return services.NewRepo(repos.NewCatalogRepo(db), repos.NewUserRepo(db), repos.NewCartRepo(db),
		repos.NewWishlistRepo(db), repos.NewOrderRepo(db), nopAuth{}, memBlobs{})
}

var bob = domain.Identity{UID: "u-bob", Email: "bob@shop.test"}

func TestHomeLoadAndSearch(t *testing.T) {
	h := state.NewHome(newRepo(t))
	h.Load(context.Background())

	if got := h.Categories.Get(); got.Loading || len(got.Data) != 2 {
		t.Fatalf("categories: %+v", got)
	}
	if got := h.Banners.Get(); len(got.Data) != 1 {
		t.Fatalf("banners: %+v", got)
	}
	if got := h.Products.Get(); len(got.Data) != 3 {
		t.Fatalf("products: %+v", got)
	}

	if found := h.SearchProducts("  SHIRT "); len(found) != 1 || found[0].ID != "p1" {
		t.Fatalf("search: %+v", found)
	}
	if got := h.Search.Get(); len(got.Data) != 1 {
		t.Fatalf("search snapshot: %+v", got)
	}
	if found := h.SearchProducts(""); len(found) != 3 {
		t.Fatalf("blank query should reset to the full list, got %d", len(found))
	}
}

type failingHome struct{ *services.Repo }

func (failingHome) ListBanners() result.Stream[[]domain.Banner] {
	return result.Fail[[]domain.Banner](errors.New("UNAVAILABLE"))
}

func TestHomeFailuresAreIndependent(t *testing.T) {
	h := state.NewHome(failingHome{newRepo(t)})
	h.Load(context.Background())
	if got := h.Banners.Get(); got.Error != "UNAVAILABLE" {
		t.Fatalf("banners: %+v", got)
	}
	if got := h.Categories.Get(); got.Error != "" || len(got.Data) != 2 {
		t.Fatalf("categories should still load: %+v", got)
	}
}

func TestProductDetailAndMessages(t *testing.T) {
	ctx := context.Background()
	p := state.NewProduct(newRepo(t), bob)

	p.LoadProduct(ctx, "p1")
	d := p.Detail.Get()
	if d.Product == nil || d.Product.ID != "p1" || d.Discount != 20 {
		t.Fatalf("detail: %+v", d)
	}
	if d := p.LoadProduct(ctx, "missing"); d.Product != nil || d.Error == "" {
		t.Fatalf("missing product: %+v", d)
	}

	p.LoadByCategory(ctx, "men")
	if got := p.ByCategory.Get(); len(got.Data) != 2 {
		t.Fatalf("by category: %+v", got)
	}

	line := domain.NewCartLine(domain.Product{ID: "p1", FinalPrice: "80"}, "M", "#ff0000", 2)
	if msg, err := p.AddToCart(ctx, line); err != nil || msg != services.MsgAddedToCart {
		t.Fatalf("add: %q %v", msg, err)
	}
	if got := p.AddedToCart.Get(); got != services.MsgAddedToCart {
		t.Fatalf("add to cart: %q", got)
	}
	p.ClearAddToCart()
	if p.AddedToCart.Get() != "" {
		t.Fatal("message not cleared")
	}

	p.AddToWishlist(ctx, line)
	if got := p.AddedWishlist.Get(); got != services.MsgAddedToWishlist {
		t.Fatalf("add to wishlist: %q", got)
	}
	p.RemoveFromWishlist(ctx, "p1")
	if got := p.RemovedMessage.Get(); got != services.MsgRemovedFromWishlist {
		t.Fatalf("remove: %q", got)
	}
	p.ClearAddToWishlist()
	p.ClearRemoveMessage()
	if p.AddedWishlist.Get() != "" || p.RemovedMessage.Get() != "" {
		t.Fatal("messages not cleared")
	}

	anon := state.NewProduct(newRepo(t), domain.Identity{})
	if _, err := anon.AddToCart(ctx, line); err == nil || err.Error() != "User not logged in" {
		t.Fatalf("anonymous add error: %v", err)
	}
	if got := anon.AddedToCart.Get(); got != "User not logged in" {
		t.Fatalf("anonymous add: %q", got)
	}
}

// slowProducts delays ProductByID per product id.
type slowProducts struct {
	*services.Repo
	delay map[string]time.Duration
}

func (s slowProducts) ProductByID(id string) result.Stream[domain.Product] {
	inner := s.Repo.ProductByID(id)
	return result.FromCall(func(ctx context.Context) (domain.Product, error) {
		select {
		case <-time.After(s.delay[id]):
		case <-ctx.Done():
			return domain.Product{}, ctx.Err()
		}
		return result.Await(ctx, inner)
	})
}

func TestOverlappingLoadsReturnOwnDetail(t *testing.T) {
	ctx := context.Background()
	src := slowProducts{Repo: newRepo(t), delay: map[string]time.Duration{
		"p1": 50 * time.Millisecond,
		"p2": 200 * time.Millisecond,
	}}
	p := state.NewProduct(src, bob)

	var first, second state.ProductDetail
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); first = p.LoadProduct(ctx, "p1") }()
	time.Sleep(10 * time.Millisecond)
	go func() { defer wg.Done(); second = p.LoadProduct(ctx, "p2") }()
	wg.Wait()

	if first.Loading || first.Product == nil || first.Product.ID != "p1" {
		t.Fatalf("first caller: %+v", first)
	}
	if second.Loading || second.Product == nil || second.Product.ID != "p2" {
		t.Fatalf("second caller: %+v", second)
	}
	if d := p.Detail.Get(); d.Product == nil || d.Product.ID != "p2" {
		t.Fatalf("cell should hold the latest run: %+v", d)
	}
}

func TestCancelledLoadReportsError(t *testing.T) {
	src := slowProducts{Repo: newRepo(t), delay: map[string]time.Duration{"p1": time.Second}}
	p := state.NewProduct(src, bob)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	d := p.LoadProduct(ctx, "p1")
	if d.Loading || d.Product != nil || d.Error == "" {
		t.Fatalf("cancelled load: %+v", d)
	}
}

func TestCartRemoveRefetchesAndClear(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	c := state.NewCart(repo, bob)

	for _, l := range []domain.CartLine{
		{ProductID: "p1", Quantity: "2", TotalPrice: "200"},
		{ProductID: "p2", Quantity: "1", TotalPrice: "50"},
	} {
		if _, err := result.Await(ctx, repo.AddToCart(bob, l)); err != nil {
			t.Fatal(err)
		}
	}
	c.Refresh(ctx)
	if s := c.State.Get(); len(s.Lines) != 2 || s.Subtotal != 250 {
		t.Fatalf("cart: %+v", s)
	}

	c.RemoveLine(ctx, "p2")
	if r := c.Remove.Get(); r.Removing || r.Message != services.MsgRemovedFromCart {
		t.Fatalf("remove state: %+v", r)
	}
	if s := c.State.Get(); len(s.Lines) != 1 {
		t.Fatalf("cart was not refetched: %+v", s)
	}
	c.ClearRemoveMessage()
	if c.Remove.Get().Message != "" {
		t.Fatal("remove message not cleared")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if s := c.State.Get(); len(s.Lines) != 0 || s.Loading {
		t.Fatalf("cart should be empty: %+v", s)
	}
}

func TestCartPlaceOrderAndHistory(t *testing.T) {
	ctx := context.Background()
	c := state.NewCart(newRepo(t), bob)
	o := domain.NewOrder([]domain.CartLine{{ProductID: "p1", TotalPrice: "80"}}, domain.ShippingInfo{}, time.UnixMilli(42))

	id, err := c.Place(ctx, o)
	if err != nil || id != "42" {
		t.Fatalf("place: %q %v", id, err)
	}
	if s := c.PlaceOrder.Get(); s.Success != "42" || s.Loading {
		t.Fatalf("place state: %+v", s)
	}
	c.FetchOrders(ctx)
	if s := c.Orders.Get(); len(s.Data) != 1 || s.Data[0].TotalPrice != 80 {
		t.Fatalf("orders: %+v", s)
	}

	anon := state.NewCart(newRepo(t), domain.Identity{})
	if _, err := anon.Place(ctx, o); err == nil {
		t.Fatal("anonymous order should fail")
	}
	if s := anon.PlaceOrder.Get(); s.Error != "User not logged in" {
		t.Fatalf("anon place state: %+v", s)
	}
	anon.FetchOrders(ctx)
	if s := anon.Orders.Get(); s.Error != "User not logged in" {
		t.Fatalf("anon orders: %+v", s)
	}
}

// gatedWishlist holds WishlistLines open until release is closed.
type gatedWishlist struct {
	*services.Repo
	release chan struct{}
	started chan struct{}
}

func (g *gatedWishlist) WishlistLines(id domain.Identity) result.Stream[[]domain.CartLine] {
	inner := g.Repo.WishlistLines(id)
	return result.FromCall(func(ctx context.Context) ([]domain.CartLine, error) {
		g.started <- struct{}{}
		<-g.release
		return result.Await(ctx, inner)
	})
}

func TestWishlistPendingKeepsData(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	if _, err := result.Await(ctx, repo.AddToWishlist(bob, domain.CartLine{ProductID: "p3"})); err != nil {
		t.Fatal(err)
	}
	g := &gatedWishlist{Repo: repo, release: make(chan struct{}), started: make(chan struct{}, 2)}
	w := state.NewWishlist(g, bob)

	done := make(chan struct{})
	go func() { w.Refresh(ctx); close(done) }()
	<-g.started
	g.release <- struct{}{}
	<-done
	if s := w.State.Get(); len(s.Data) != 1 || s.Loading {
		t.Fatalf("first load: %+v", s)
	}

	done = make(chan struct{})
	go func() { w.Refresh(ctx); close(done) }()
	<-g.started
	deadline := time.Now().Add(2 * time.Second)
	for !w.State.Get().Loading && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s := w.State.Get(); !s.Loading || len(s.Data) != 1 {
		t.Fatalf("pending should keep previous lines: %+v", s)
	}
	close(g.release)
	<-done
}

func TestWishlistRemoveRefetches(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	_, _ = result.Await(ctx, repo.AddToWishlist(bob, domain.CartLine{ProductID: "p1"}))
	_, _ = result.Await(ctx, repo.AddToWishlist(bob, domain.CartLine{ProductID: "p2"}))
	w := state.NewWishlist(repo, bob)
	w.Refresh(ctx)

	w.Remove(ctx, "p1")
	if got := w.RemoveMessage.Get(); got != services.MsgRemovedFromWishlist {
		t.Fatalf("message: %q", got)
	}
	if s := w.State.Get(); len(s.Data) != 1 || s.Data[0].ProductID != "p2" {
		t.Fatalf("wishlist not refetched: %+v", s)
	}
	w.ClearRemoveMessage()
	if w.RemoveMessage.Get() != "" {
		t.Fatal("not cleared")
	}
}

func TestProfileFlow(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	guest := state.NewProfile(repo, domain.Identity{})

	msg, err := guest.RegisterUser(ctx, domain.User{FirstName: "Bob", Email: "bob@shop.test", Password: "pw"})
	if err != nil || msg != services.MsgRegistered {
		t.Fatalf("register: %q %v", msg, err)
	}
	sess, err := guest.LoginUser(ctx, "bob@shop.test", "pw")
	if err != nil || sess.Token != "tok" {
		t.Fatalf("login: %+v %v", sess, err)
	}
	if _, err := guest.LoginUser(ctx, "bob@shop.test", "nope"); err == nil {
		t.Fatal("bad password should fail")
	}
	if s := guest.Login.Get(); s.Error != "INVALID_PASSWORD" {
		t.Fatalf("login state: %+v", s)
	}

	p := state.NewProfile(repo, sess.Identity)
	p.LoadUser(ctx)
	if s := p.User.Get(); s.User == nil || s.User.FirstName != "Bob" {
		t.Fatalf("user: %+v", s)
	}

	p.UpdateUserData(ctx, domain.User{FirstName: "Robert", Email: "bob@shop.test"})
	s := p.User.Get()
	if s.Updated != services.MsgUserUpdated || s.User == nil || s.User.FirstName != "Bob" {
		t.Fatalf("update should only patch the message: %+v", s)
	}
	p.ClearUpdateMessage()
	if s := p.User.Get(); s.Updated != "" || s.User == nil {
		t.Fatalf("clear: %+v", s)
	}

	url, err := p.UploadImage(ctx, "image/png", []byte{1, 2, 3})
	if err != nil || url == "" {
		t.Fatalf("upload: %q %v", url, err)
	}
	if s := p.Upload.Get(); s.Data != url {
		t.Fatalf("upload state: %+v", s)
	}
	p.ResetImageState()
	if s := p.Upload.Get(); s.Data != "" || s.Loading || s.Error != "" {
		t.Fatalf("reset: %+v", s)
	}

	if err := p.Logout(ctx, "tok"); err != nil {
		t.Fatal(err)
	}
	if s := p.User.Get(); s.User != nil || s.Updated != services.MsgLoggedOut {
		t.Fatalf("logout: %+v", s)
	}
}

func TestRegistryPerIdentity(t *testing.T) {
	reg := state.NewRegistry(newRepo(t))
	a := reg.For(bob)
	if reg.For(bob) != a {
		t.Fatal("same identity should share holders")
	}
	if reg.For(domain.Identity{UID: "other"}) == a {
		t.Fatal("identities must not share holders")
	}
	if reg.For(domain.Identity{}) == reg.For(domain.Identity{}) {
		t.Fatal("anonymous holders should not be shared")
	}
	reg.Forget(bob.UID)
	if reg.For(bob) == a {
		t.Fatal("forget should drop holders")
	}
	if reg.Home() != reg.Home() {
		t.Fatal("home is shared")
	}
}

func TestCellWatchLatestWins(t *testing.T) {
	c := state.NewCell(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := c.Watch(ctx)
	if v := <-ch; v != 0 {
		t.Fatalf("want current value first, got %d", v)
	}
	for i := 1; i <= 5; i++ {
		c.Set(i)
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-ch:
			if v == 5 {
				cancel()
				return
			}
		case <-deadline:
			t.Fatal("never saw the latest value")
		}
	}
}

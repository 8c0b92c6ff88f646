package checkout_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"myshop/internal/checkout"
	"myshop/internal/domain"
	"myshop/internal/payment"
	"myshop/internal/repos"
	"myshop/internal/services"
	"myshop/internal/state"
)

const secret = "test_secret"

type fakeGateway struct {
	created   []int64
	refunds   []string
	refundErr error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, _ map[string]string) (payment.Order, error) {
	g.created = append(g.created, amount)
	return payment.Order{ID: "order_" + receipt, Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (g *fakeGateway) Refund(_ context.Context, paymentID string, amount int64) (payment.Refund, error) {
	if g.refundErr != nil {
		return payment.Refund{}, g.refundErr
	}
	g.refunds = append(g.refunds, paymentID)
	return payment.Refund{ID: "rfnd_1", PaymentID: paymentID, Amount: amount}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, sig string) error {
	if payment.Sign(secret, orderID, paymentID) != sig {
		return payment.ErrBadSignature
	}
	return nil
}

type noAuth struct{}

func (noAuth) Register(context.Context, string, string) (domain.Identity, error) {
	return domain.Identity{}, errors.New("unused")
}
func (noAuth) SignIn(context.Context, string, string) (domain.Session, error) {
	return domain.Session{}, errors.New("unused")
}
func (noAuth) SignOut(context.Context, string) error { return nil }
func (noAuth) Identify(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrUnauthenticated
}

type noBlobs struct{}

func (noBlobs) Put(_ context.Context, _, _ string, r io.Reader) error { _, err := io.ReadAll(r); return err }
func (noBlobs) URL(_ context.Context, key string) (string, error) { return key, nil }

type brokenOrders struct{}

func (brokenOrders) Add(context.Context, string, domain.Order) (string, error) {
	return "", errors.New("deadline exceeded")
}
func (brokenOrders) List(context.Context, string) ([]domain.Order, error) { return nil, nil }

type unreachableLines struct{}

func (unreachableLines) Put(context.Context, string, domain.CartLine) error { return nil }
func (unreachableLines) Delete(context.Context, string, string) error { return nil }
func (unreachableLines) Clear(context.Context, string) error { return nil }
func (unreachableLines) List(context.Context, string) ([]domain.CartLine, error) {
	return nil, errors.New("Failed to get document because the client is offline.")
}

type memMail struct{ sent []string }

func (m *memMail) OrderConfirmation(_ context.Context, to string, o domain.Order) error {
	m.sent = append(m.sent, to+":"+o.OrderID)
	return nil
}

type fixture struct {
	db     *sqlx.DB
	repo   *services.Repo
	reg    *state.Registry
	gw     *fakeGateway
	mail   *memMail
	bridge *checkout.Bridge
}

func setup(t *testing.T, brokenStore bool) *fixture {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var orders services.OrderStore = repos.NewOrderRepo(db)
	if brokenStore {
		orders = brokenOrders{}
	}
	repo := services.NewRepo(repos.NewCatalogRepo(db), repos.NewUserRepo(db), repos.NewCartRepo(db),
		repos.NewWishlistRepo(db), orders, noAuth{}, noBlobs{})
	reg := state.NewRegistry(repo)
	f := &fixture{db: db, repo: repo, reg: reg, gw: &fakeGateway{}, mail: &memMail{}}
	f.bridge = checkout.NewBridge(f.gw, func(id domain.Identity) checkout.Cart { return reg.For(id).Cart },
		f.mail, repos.NewReconcileRepo(db), "INR", "MyShop")
	f.bridge.Key = "rzp_test_key"
	f.bridge.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

var carol = domain.Identity{UID: "u-carol", Email: "carol@shop.test"}

var ship = domain.ShippingInfo{
	FirstName: "Carol", LastName: "Doe", Phone: "9999999999",
	Address: "1 Main St", City: "Pune", PinCode: "411001", Country: "India",
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	lines := []domain.CartLine{
		{ProductID: "p1", ProductName: "Red Shirt", Quantity: "2", TotalPrice: "160"},
		{ProductID: "p2", ProductName: "Blue Jeans", Quantity: "1", TotalPrice: "200"},
	}
	for _, l := range lines {
		if err := repos.NewCartRepo(f.db).Put(ctx, carol.UID, l); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCheckoutSuccessPlacesSnapshotAndClearsCart(t *testing.T) {
	f := setup(t, false)
	f.fillCart(t)
	ctx := context.Background()

	opts, err := f.bridge.Begin(ctx, carol, ship, payment.Prefill{Name: "Carol"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Amount != 36000 || opts.Currency != "INR" || opts.Key != "rzp_test_key" || opts.Retry.MaxCount != 4 {
		t.Fatalf("options: %+v", opts)
	}
	if opts.Prefill.Email != carol.Email || opts.Prefill.Contact != ship.Phone {
		t.Fatalf("prefill: %+v", opts.Prefill)
	}
	if st := f.bridge.Status(carol); st.Phase != checkout.PaymentInFlight || st.OrderID != "1700000000000" {
		t.Fatalf("status: %+v", st)
	}
	if o, ok := f.bridge.Options(carol); !ok || o.OrderID != opts.OrderID {
		t.Fatalf("stored options: %+v %v", o, ok)
	}

	cb := checkout.Callback{PaymentID: "pay_1", OrderID: opts.OrderID, Signature: payment.Sign(secret, opts.OrderID, "pay_1")}
	conf, err := f.bridge.Succeed(ctx, carol, cb)
	if err != nil {
		t.Fatal(err)
	}
	if conf.OrderID != "1700000000000" || len(conf.Order.Products) != 2 || conf.Order.TotalPrice != 360 {
		t.Fatalf("confirmation: %+v", conf)
	}
	if st := f.bridge.Status(carol); st.Phase != checkout.PaymentSucceeded {
		t.Fatalf("phase: %+v", st)
	}
	if _, ok := f.bridge.Options(carol); ok {
		t.Fatal("options still offered after payment")
	}

	orders, err := f.repo.ListOrders(ctx, carol)
	if err != nil || len(orders) != 1 || len(orders[0].Products) != 2 {
		t.Fatalf("orders: %+v %v", orders, err)
	}
	if lines, err := f.reg.For(carol).Cart.Current(ctx); err != nil || len(lines) != 0 {
		t.Fatalf("cart still has %d lines (%v)", len(lines), err)
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0] != "carol@shop.test:1700000000000" {
		t.Fatalf("mail: %v", f.mail.sent)
	}
}

func TestCheckoutRejectsBadSignature(t *testing.T) {
	f := setup(t, false)
	f.fillCart(t)
	ctx := context.Background()

	opts, err := f.bridge.Begin(ctx, carol, ship, payment.Prefill{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.bridge.Succeed(ctx, carol, checkout.Callback{PaymentID: "pay_1", OrderID: opts.OrderID, Signature: "forged"})
	if !errors.Is(err, payment.ErrBadSignature) {
		t.Fatalf("want ErrBadSignature, got %v", err)
	}
	if st := f.bridge.Status(carol); st.Phase != checkout.PaymentFailed {
		t.Fatalf("phase: %+v", st)
	}
	if orders, _ := f.repo.ListOrders(ctx, carol); len(orders) != 0 {
		t.Fatalf("order stored for forged payment")
	}
}

func TestCheckoutFailureKeepsMessage(t *testing.T) {
	f := setup(t, false)
	f.fillCart(t)

	if _, err := f.bridge.Begin(context.Background(), carol, ship, payment.Prefill{}); err != nil {
		t.Fatal(err)
	}
	st, err := f.bridge.Fail(carol, 2, "Payment cancelled by user")
	if err != nil {
		t.Fatal(err)
	}
	if st.Phase != checkout.PaymentFailed || st.Message != "Payment cancelled by user" {
		t.Fatalf("status: %+v", st)
	}
	if _, err := f.bridge.Fail(carol, 2, "again"); !errors.Is(err, checkout.ErrNoPayment) {
		t.Fatalf("second failure: %v", err)
	}
	if lines, _ := f.reg.For(carol).Cart.Current(context.Background()); len(lines) != 2 {
		t.Fatalf("cart changed after failed payment")
	}
}

func TestCheckoutRefundsWhenOrderCannotBeStored(t *testing.T) {
	f := setup(t, true)
	f.fillCart(t)
	ctx := context.Background()

	opts, err := f.bridge.Begin(ctx, carol, ship, payment.Prefill{})
	if err != nil {
		t.Fatal(err)
	}
	cb := checkout.Callback{PaymentID: "pay_9", OrderID: opts.OrderID, Signature: payment.Sign(secret, opts.OrderID, "pay_9")}
	_, err = f.bridge.Succeed(ctx, carol, cb)
	if !errors.Is(err, checkout.ErrOrderNotStored) || !strings.Contains(err.Error(), "deadline exceeded") {
		t.Fatalf("err: %v", err)
	}
	if len(f.gw.refunds) != 1 || f.gw.refunds[0] != "pay_9" {
		t.Fatalf("refunds: %v", f.gw.refunds)
	}
	recs, err := repos.NewReconcileRepo(f.db).List(ctx)
	if err != nil || len(recs) != 1 {
		t.Fatalf("reconciliations: %+v %v", recs, err)
	}
	if recs[0].RefundStatus != domain.RefundIssued || recs[0].Amount != 36000 || recs[0].RefundID != "rfnd_1" {
		t.Fatalf("record: %+v", recs[0])
	}
	if st := f.bridge.Status(carol); st.Reconciliation != recs[0].ID {
		t.Fatalf("status: %+v", st)
	}
	if lines, _ := f.reg.For(carol).Cart.Current(ctx); len(lines) != 2 {
		t.Fatalf("cart cleared although the order was not stored")
	}
	if len(f.mail.sent) != 0 {
		t.Fatalf("mail sent: %v", f.mail.sent)
	}
}

func TestCheckoutRecordsFailedRefund(t *testing.T) {
	f := setup(t, true)
	f.fillCart(t)
	f.gw.refundErr = errors.New("refund: 400 Bad Request")
	ctx := context.Background()

	opts, _ := f.bridge.Begin(ctx, carol, ship, payment.Prefill{})
	cb := checkout.Callback{PaymentID: "pay_9", OrderID: opts.OrderID, Signature: payment.Sign(secret, opts.OrderID, "pay_9")}
	if _, err := f.bridge.Succeed(ctx, carol, cb); err == nil {
		t.Fatal("expected error")
	}
	recs, _ := repos.NewReconcileRepo(f.db).List(ctx)
	if len(recs) != 1 || recs[0].RefundStatus != domain.RefundFailed {
		t.Fatalf("records: %+v", recs)
	}
}

func TestBeginGuards(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()

	if _, err := f.bridge.Begin(ctx, domain.Identity{}, ship, payment.Prefill{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous: %v", err)
	}
	var ve *domain.ValidationError
	if _, err := f.bridge.Begin(ctx, carol, domain.ShippingInfo{FirstName: "C"}, payment.Prefill{}); !errors.As(err, &ve) {
		t.Fatalf("shipping: %v", err)
	}
	if _, err := f.bridge.Begin(ctx, carol, ship, payment.Prefill{}); !errors.Is(err, checkout.ErrEmptyCart) {
		t.Fatalf("empty cart: %v", err)
	}
	if len(f.gw.created) != 0 {
		t.Fatalf("gateway order opened: %v", f.gw.created)
	}
	if _, err := f.bridge.Succeed(ctx, carol, checkout.Callback{OrderID: "order_x", PaymentID: "p", Signature: payment.Sign(secret, "order_x", "p")}); !errors.Is(err, checkout.ErrNoPayment) {
		t.Fatalf("succeed without begin: %v", err)
	}
}

func TestBeginPassesCartLoadFailureThrough(t *testing.T) {
	f := setup(t, false)
	repo := services.NewRepo(repos.NewCatalogRepo(f.db), repos.NewUserRepo(f.db), unreachableLines{},
		repos.NewWishlistRepo(f.db), repos.NewOrderRepo(f.db), noAuth{}, noBlobs{})
	reg := state.NewRegistry(repo)
	bridge := checkout.NewBridge(f.gw, func(id domain.Identity) checkout.Cart { return reg.For(id).Cart },
		f.mail, repos.NewReconcileRepo(f.db), "INR", "MyShop")

	_, err := bridge.Begin(context.Background(), carol, ship, payment.Prefill{})
	if err == nil || errors.Is(err, checkout.ErrEmptyCart) {
		t.Fatalf("want backend failure, got %v", err)
	}
	if err.Error() != "Failed to get document because the client is offline." {
		t.Fatalf("message not passed through: %q", err.Error())
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		t.Fatalf("backend failure reported as validation: %v", err)
	}
	if st := bridge.Status(carol); st.Phase != checkout.Idle || len(f.gw.created) != 0 {
		t.Fatalf("payment opened: %+v %v", st, f.gw.created)
	}
}

// Package checkout drives a hosted-checkout payment from cart to placed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"myshop/internal/domain"
	applog "myshop/internal/log"
	"myshop/internal/payment"
)

type Phase string

const (
	Idle             Phase = "IDLE"
	PaymentInFlight  Phase = "PAYMENT_IN_FLIGHT"
	PaymentSucceeded Phase = "PAYMENT_SUCCEEDED"
	PaymentFailed    Phase = "PAYMENT_FAILED"
)

var (
	ErrNoPayment      = errors.New("no payment in progress")
	ErrEmptyCart      = domain.Invalid("cart", "Your cart is empty")
	ErrOrderNotStored = errors.New("payment captured but the order could not be saved")
)

type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (payment.Order, error)
	Refund(ctx context.Context, paymentID string, amount int64) (payment.Refund, error)
	VerifySignature(orderID, paymentID, signature string) error
}

// Cart is the cart holder of one identity.
type Cart interface {
	Current(ctx context.Context) ([]domain.CartLine, error)
	Place(ctx context.Context, o domain.Order) (string, error)
	Clear(ctx context.Context) error
}

type Mailer interface {
	OrderConfirmation(ctx context.Context, to string, o domain.Order) error
}

type Reconciler interface {
	Record(ctx context.Context, rec domain.Reconciliation) (string, error)
}

// Callback is what the checkout page posts back after a successful payment.
type Callback struct {
	PaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id" form:"razorpay_order_id"`
	Signature string `json:"razorpay_signature" form:"razorpay_signature"`
}

// Status is the checkout snapshot of one identity.
type Status struct {
	Phase          Phase  `json:"phase"`
	OrderID        string `json:"orderId,omitempty"`
	GatewayOrderID string `json:"gatewayOrderId,omitempty"`
	Amount         int64  `json:"amount,omitempty"`
	Message        string `json:"message,omitempty"`
	Reconciliation string `json:"reconciliationId,omitempty"`
}

type Confirmation struct {
	OrderID   string       `json:"orderId"`
	PaymentID string       `json:"paymentId"`
	Order     domain.Order `json:"order"`
}

type attempt struct {
	status  Status
	pending domain.Order
	email   string
	options payment.CheckoutOptions
}

// Bridge tracks one checkout per identity:
// Idle -> PaymentInFlight -> PaymentSucceeded | PaymentFailed.
type Bridge struct {
	Gateway  Gateway
	Key      string // public key id handed to the checkout page
	Carts    func(domain.Identity) Cart
	Mailer   Mailer
	Recon    Reconciler
	Currency string
	Merchant string
	Now      func() time.Time

	mu       sync.Mutex
	attempts map[string]*attempt
}

func NewBridge(gw Gateway, carts func(domain.Identity) Cart, mailer Mailer, recon Reconciler, currency, merchant string) *Bridge {
	return &Bridge{
		Gateway:  gw,
		Carts:    carts,
		Mailer:   mailer,
		Recon:    recon,
		Currency: currency,
		Merchant: merchant,
		Now:      time.Now,
		attempts: map[string]*attempt{},
	}
}

func (b *Bridge) Status(id domain.Identity) Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a, ok := b.attempts[id.UID]; ok {
		return a.status
	}
	return Status{Phase: Idle}
}

// Begin snapshots the cart into a pending order and opens a gateway order
// for its total.
func (b *Bridge) Begin(ctx context.Context, id domain.Identity, ship domain.ShippingInfo, prefill payment.Prefill) (payment.CheckoutOptions, error) {
	if id.Anonymous() {
		return payment.CheckoutOptions{}, domain.ErrUnauthenticated
	}
	if err := ship.Validate(); err != nil {
		return payment.CheckoutOptions{}, err
	}
	lines, err := b.Carts(id).Current(ctx)
	if err != nil {
		return payment.CheckoutOptions{}, err
	}
	if len(lines) == 0 {
		return payment.CheckoutOptions{}, ErrEmptyCart
	}
	order := domain.NewOrder(lines, ship, b.Now())

	gw, err := b.Gateway.CreateOrder(ctx, order.MinorUnits(), b.Currency, order.OrderID, map[string]string{"uid": id.UID})
	if err != nil {
		return payment.CheckoutOptions{}, err
	}

	if prefill.Email == "" {
		prefill.Email = id.Email
	}
	if prefill.Contact == "" {
		prefill.Contact = ship.Phone
	}
	opts := payment.CheckoutOptions{
		Key:         b.Key,
		Amount:      order.MinorUnits(),
		Currency:    b.Currency,
		Name:        b.Merchant,
		Description: "Order " + order.OrderID,
		OrderID:     gw.ID,
		Prefill:     prefill,
		Retry:       payment.Retry{Enabled: true, MaxCount: 4},
		Theme:       payment.Theme{Color: "#F68B8B"},
	}

	b.mu.Lock()
	b.attempts[id.UID] = &attempt{
		status: Status{
			Phase:          PaymentInFlight,
			OrderID:        order.OrderID,
			GatewayOrderID: gw.ID,
			Amount:         order.MinorUnits(),
		},
		pending: order,
		email:   id.Email,
		options: opts,
	}
	b.mu.Unlock()

	applog.Audit(nil, "checkout.begin", map[string]any{"uid": id.UID, "order_id": order.OrderID, "gateway_order": gw.ID, "amount": order.MinorUnits()})
	return opts, nil
}

// Options returns the checkout options of the payment in flight for id.
func (b *Bridge) Options(id domain.Identity) (payment.CheckoutOptions, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.attempts[id.UID]
	if !ok || a.status.Phase != PaymentInFlight {
		return payment.CheckoutOptions{}, false
	}
	return a.options, true
}

// take moves the in-flight attempt matching gatewayOrderID to phase.
func (b *Bridge) take(id domain.Identity, gatewayOrderID string, phase Phase, msg string) (attempt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.attempts[id.UID]
	if !ok || a.status.Phase != PaymentInFlight || (gatewayOrderID != "" && a.status.GatewayOrderID != gatewayOrderID) {
		return attempt{}, ErrNoPayment
	}
	a.status.Phase = phase
	a.status.Message = msg
	return *a, nil
}

func (b *Bridge) note(id domain.Identity, fn func(*Status)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a, ok := b.attempts[id.UID]; ok {
		fn(&a.status)
	}
}

// Succeed handles the gateway's success callback. The pending order is
// placed through the cart holder and the cart is cleared. When the order
// cannot be stored the payment is refunded and a reconciliation record is kept.
func (b *Bridge) Succeed(ctx context.Context, id domain.Identity, cb Callback) (Confirmation, error) {
	if err := b.Gateway.VerifySignature(cb.OrderID, cb.PaymentID, cb.Signature); err != nil {
		if _, terr := b.take(id, cb.OrderID, PaymentFailed, err.Error()); terr != nil {
			return Confirmation{}, terr
		}
		applog.Error(nil, "checkout.signature", err, map[string]any{"uid": id.UID, "gateway_order": cb.OrderID})
		return Confirmation{}, err
	}
	a, err := b.take(id, cb.OrderID, PaymentSucceeded, "Payment Successful")
	if err != nil {
		return Confirmation{}, err
	}

	cart := b.Carts(id)
	if _, err := cart.Place(ctx, a.pending); err != nil {
		rid := b.compensate(ctx, id, a, cb, err)
		b.note(id, func(s *Status) { s.Message = domain.Message(err); s.Reconciliation = rid })
		return Confirmation{}, fmt.Errorf("%w: %s", ErrOrderNotStored, domain.Message(err))
	}
	b.note(id, func(s *Status) { s.Message = "Order Placed!" })

	if err := cart.Clear(ctx); err != nil {
		applog.Error(nil, "checkout.clear_cart", err, map[string]any{"uid": id.UID, "order_id": a.pending.OrderID})
	}
	if a.email != "" && b.Mailer != nil {
		if err := b.Mailer.OrderConfirmation(ctx, a.email, a.pending); err != nil {
			applog.Error(nil, "checkout.mail", err, map[string]any{"uid": id.UID, "order_id": a.pending.OrderID})
		}
	}
	applog.Audit(nil, "checkout.placed", map[string]any{"uid": id.UID, "order_id": a.pending.OrderID, "payment_id": cb.PaymentID})
	return Confirmation{OrderID: a.pending.OrderID, PaymentID: cb.PaymentID, Order: a.pending}, nil
}

func (b *Bridge) compensate(ctx context.Context, id domain.Identity, a attempt, cb Callback, cause error) string {
	rec := domain.Reconciliation{
		UID:            id.UID,
		OrderID:        a.pending.OrderID,
		GatewayOrderID: cb.OrderID,
		PaymentID:      cb.PaymentID,
		Amount:         a.status.Amount,
		Reason:         domain.Message(cause),
		RefundStatus:   domain.RefundIssued,
	}
	refund, err := b.Gateway.Refund(ctx, cb.PaymentID, a.status.Amount)
	if err != nil {
		rec.RefundStatus = domain.RefundFailed
		applog.Error(nil, "checkout.refund", err, map[string]any{"uid": id.UID, "payment_id": cb.PaymentID})
	} else {
		rec.RefundID = refund.ID
	}
	if b.Recon == nil {
		return ""
	}
	rid, err := b.Recon.Record(ctx, rec)
	if err != nil {
		applog.Error(nil, "checkout.reconcile", err, map[string]any{"uid": id.UID, "payment_id": cb.PaymentID, "refund": rec.RefundStatus})
		return ""
	}
	applog.Security(nil, "checkout.reconciled", map[string]any{"uid": id.UID, "reconciliation": rid, "refund": rec.RefundStatus})
	return rid
}

// Fail handles the gateway's failure callback. The message is kept as given.
func (b *Bridge) Fail(id domain.Identity, code int, message string) (Status, error) {
	if message == "" {
		message = "Payment failed"
	}
	if _, err := b.take(id, "", PaymentFailed, message); err != nil {
		return Status{}, err
	}
	applog.Info(nil, "checkout.failed", map[string]any{"uid": id.UID, "code": code, "message": message})
	return b.Status(id), nil
}

// Reset forgets the identity's checkout, e.g. after logout.
func (b *Bridge) Reset(id domain.Identity) {
	b.mu.Lock()
	delete(b.attempts, id.UID)
	b.mu.Unlock()
}

package domain

import (
	"strconv"
	"strings"
	"time"
)

// NewOrder snapshots lines into an order stamped with now. The lines are
// copied so later cart edits do not reach the order.
func NewOrder(lines []CartLine, ship ShippingInfo, now time.Time) Order {
	ms := now.UnixMilli()
	snap := make([]CartLine, len(lines))
	copy(snap, lines)
	return Order{
		OrderID:      strconv.FormatInt(ms, 10),
		Time:         ms,
		Products:     snap,
		TotalPrice:   Subtotal(lines).IntPart(),
		ShippingInfo: ship,
	}
}

// MinorUnits is the amount the payment gateway expects (paise/cents). It is
// summed from the line totals so fractional prices are charged in full;
// TotalPrice only keeps whole major units.
func (o Order) MinorUnits() int64 {
	if len(o.Products) == 0 {
		return o.TotalPrice * 100
	}
	return Subtotal(o.Products).Shift(2).Round(0).IntPart()
}

// Clone returns a copy that shares no slice storage with o.
func (o Order) Clone() Order {
	c := o
	c.Products = append([]CartLine(nil), o.Products...)
	return c
}

// Validate reports the first blank shipping field.
func (s ShippingInfo) Validate() error {
	fields := []struct{ name, v string }{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"pinCode", s.PinCode},
		{"country", s.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.v) == "" {
			return Invalid(f.name, "Please fill all the fields")
		}
	}
	return nil
}

// Refund outcomes recorded on a Reconciliation.
const (
	RefundIssued = "REFUNDED"
	RefundFailed = "REFUND_FAILED"
)

// Reconciliation records a payment that was captured but whose order could
// not be stored.
type Reconciliation struct {
	ID             string `db:"id" json:"id"`
	UID            string `db:"uid" json:"uid"`
	OrderID        string `db:"order_id" json:"orderId"`
	GatewayOrderID string `db:"gateway_order_id" json:"gatewayOrderId"`
	PaymentID      string `db:"payment_id" json:"paymentId"`
	Amount         int64  `db:"amount" json:"amount"` // minor units
	Reason         string `db:"reason" json:"reason"`
	RefundStatus   string `db:"refund_status" json:"refundStatus"`
	RefundID       string `db:"refund_id" json:"refundId"`
	CreatedAt      string `db:"created_at" json:"createdAt"`
}

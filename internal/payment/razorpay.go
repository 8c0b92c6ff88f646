// Package payment talks to the hosted-checkout payment gateway.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://api.razorpay.com"

var ErrBadSignature = errors.New("payment signature mismatch")

// Order is the gateway-side order a checkout is opened against.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Gateway is a Razorpay REST client. KeyID is public and goes to the
// checkout page; KeySecret signs API calls and payment callbacks.
type Gateway struct {
	KeyID     string
	KeySecret string
	http      *resty.Client
}

func NewGateway(keyID, keySecret, baseURL string) *Gateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetBasicAuth(keyID, keySecret).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	return &Gateway{KeyID: keyID, KeySecret: keySecret, http: c}
}

// CreateOrder registers amount (minor units) with the gateway.
func (g *Gateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (Order, error) {
	var out Order
	var bad apiError
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"amount": amount, "currency": currency, "receipt": receipt, "notes": notes}).
		SetResult(&out).
		SetError(&bad).
		Post("/v1/orders")
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	if resp.IsError() {
		return Order{}, gatewayErr("create order", resp, bad)
	}
	return out, nil
}

// Refund returns amount (minor units) of a captured payment. Zero refunds in full.
func (g *Gateway) Refund(ctx context.Context, paymentID string, amount int64) (Refund, error) {
	body := map[string]any{}
	if amount > 0 {
		body["amount"] = amount
	}
	var out Refund
	var bad apiError
	resp, err := g.http.R().
		SetContext(ctx).
		SetPathParam("id", paymentID).
		SetBody(body).
		SetResult(&out).
		SetError(&bad).
		Post("/v1/payments/{id}/refund")
	if err != nil {
		return Refund{}, fmt.Errorf("refund: %w", err)
	}
	if resp.IsError() {
		return Refund{}, gatewayErr("refund", resp, bad)
	}
	return out, nil
}

// VerifySignature checks the checkout callback: HMAC-SHA256 of
// "<order id>|<payment id>" keyed with the secret, hex encoded.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) error {
	if !hmac.Equal([]byte(Sign(g.KeySecret, orderID, paymentID)), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return ErrBadSignature
	}
	return nil
}

func Sign(secret, orderID, paymentID string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(m.Sum(nil))
}

func gatewayErr(op string, resp *resty.Response, bad apiError) error {
	if bad.Error.Description != "" {
		return fmt.Errorf("%s: %s", op, bad.Error.Description)
	}
	return fmt.Errorf("%s: %s", op, resp.Status())
}

// CheckoutOptions is what the hosted checkout script is opened with.
type CheckoutOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Retry       Retry   `json:"retry"`
	Theme       Theme   `json:"theme"`
}

type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type Retry struct {
	Enabled  bool `json:"enabled"`
	MaxCount int  `json:"max_count"`
}

type Theme struct {
	Color string `json:"color"`
}

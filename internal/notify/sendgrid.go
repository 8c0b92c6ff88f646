// Package notify sends order confirmation mail.
package notify

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"myshop/internal/domain"
)

// SendGrid mails order confirmations through the SendGrid v3 API.
type SendGrid struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGrid(apiKey, from string) *SendGrid {
	return &SendGrid{apiKey: apiKey, from: from, fromName: "MyShop"}
}

func (s *SendGrid) OrderConfirmation(ctx context.Context, to string, o domain.Order) error {
	if s.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}
	subject, text := Confirmation(o)
	msg := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		subject,
		mail.NewEmail(strings.TrimSpace(o.ShippingInfo.FirstName+" "+o.ShippingInfo.LastName), to),
		text,
		"<pre>"+html.EscapeString(text)+"</pre>",
	)
	resp, err := sendgrid.NewSendClient(s.apiKey).SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", resp.StatusCode, resp.Body)
	}
	log.Printf("[sendgrid] order mail sent: status=%d order=%s", resp.StatusCode, o.OrderID)
	return nil
}

// Confirmation renders the subject and plain-text body for o.
func Confirmation(o domain.Order) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for shopping with us. Your order %s is confirmed.\n\n", o.ShippingInfo.FirstName, o.OrderID)
	for _, l := range o.Products {
		fmt.Fprintf(&b, "- %s", l.ProductName)
		if l.Size != "" {
			fmt.Fprintf(&b, " (%s)", l.Size)
		}
		fmt.Fprintf(&b, " x%s  Rs %s\n", l.Quantity, l.TotalPrice)
	}
	fmt.Fprintf(&b, "\nTotal: Rs %d\n\nShipping to:\n%s\n%s, %s %s\n%s\n",
		o.TotalPrice, o.ShippingInfo.Address, o.ShippingInfo.City, o.ShippingInfo.PinCode,
		o.ShippingInfo.Country, o.ShippingInfo.Phone)
	return "Your MyShop order " + o.OrderID, b.String()
}

// Log only writes the confirmation to the process log. Used when no mail
// provider is configured.
type Log struct{}

func (Log) OrderConfirmation(_ context.Context, to string, o domain.Order) error {
	subject, _ := Confirmation(o)
	log.Printf("[mail] to=%s subject=%q (no provider configured)", to, subject)
	return nil
}

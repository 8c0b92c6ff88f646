package handlers

import (
	"strings"

	"myshop/internal/checkout"
	"myshop/internal/domain"
	"myshop/internal/log"
	"myshop/internal/payment"
	"myshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	Payment *checkout.Bridge // nil when no gateway is configured
}

func (h *CheckoutHandler) disabled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payments are not available right now"})
}

// Begin opens a payment for the caller's cart and returns the options the
// checkout page is started with.
func (h *CheckoutHandler) Begin(c *fiber.Ctx) error {
	if h.Payment == nil {
		return h.disabled(c)
	}
	var ship domain.ShippingInfo
	if err := c.BodyParser(&ship); err != nil {
		return fail(c, "checkout.begin", domain.Invalid("body", "Please fill all the fields"))
	}
	if err := validate.Shipping(ship); err != nil {
		return fail(c, "checkout.begin", err)
	}
	name := strings.TrimSpace(ship.FirstName + " " + ship.LastName)
	opts, err := h.Payment.Begin(c.UserContext(), identity(c), ship, payment.Prefill{Name: name})
	if err != nil {
		return fail(c, "checkout.begin", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"options":  opts,
		"status":   h.Payment.Status(identity(c)),
		"checkout": c.BaseURL() + "/checkout",
	})
}

// Page renders the hosted checkout for the payment in flight.
func (h *CheckoutHandler) Page(c *fiber.Ctx) error {
	if h.Payment == nil {
		return c.Status(fiber.StatusServiceUnavailable).Render("notfound", fiber.Map{"Message": "Payments are not available right now"})
	}
	opts, ok := h.Payment.Options(identity(c))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "No payment in progress"})
	}
	return c.Render("checkout", fiber.Map{"Options": opts})
}

func (h *CheckoutHandler) Callback(c *fiber.Ctx) error {
	if h.Payment == nil {
		return h.disabled(c)
	}
	var cb checkout.Callback
	if err := c.BodyParser(&cb); err != nil || cb.PaymentID == "" || cb.OrderID == "" {
		return fail(c, "checkout.callback", domain.Invalid("razorpay_payment_id", "Missing payment details"))
	}
	conf, err := h.Payment.Succeed(c.UserContext(), identity(c), cb)
	if err != nil {
		return fail(c, "checkout.callback", err)
	}
	log.Audit(c, "checkout.success", map[string]any{"order_id": conf.OrderID, "payment_id": conf.PaymentID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order Placed!", "confirmation": conf})
}

type failureForm struct {
	Code        int    `json:"code" form:"code"`
	Description string `json:"description" form:"description"`
}

// Failure records the gateway's failure callback; the description is kept verbatim.
func (h *CheckoutHandler) Failure(c *fiber.Ctx) error {
	if h.Payment == nil {
		return h.disabled(c)
	}
	var f failureForm
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&f); err != nil {
			return fail(c, "checkout.failure", domain.Invalid("body", "Malformed request"))
		}
	}
	st, err := h.Payment.Fail(identity(c), f.Code, f.Description)
	if err != nil {
		return fail(c, "checkout.failure", err)
	}
	return c.JSON(st)
}

func (h *CheckoutHandler) Status(c *fiber.Ctx) error {
	if h.Payment == nil {
		return h.disabled(c)
	}
	return c.JSON(h.Payment.Status(identity(c)))
}

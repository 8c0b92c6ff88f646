package handlers

import (
	"errors"
	"strings"

	"myshop/internal/checkout"
	"myshop/internal/domain"
	applog "myshop/internal/log"
	"myshop/internal/payment"
	"myshop/internal/result"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a failed result message to an HTTP status.
func statusFor(msg string) int {
	switch {
	case msg == domain.ErrUnauthenticated.Error():
		return fiber.StatusUnauthorized
	case strings.HasSuffix(msg, domain.ErrNotFound.Error()), msg == "User not found":
		return fiber.StatusNotFound
	}
	return fiber.StatusBadGateway
}

// fail writes err as {"error": ...}. Backend messages pass through as they are.
func fail(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusBadGateway
	body := fiber.Map{"error": domain.Message(err)}

	var ve *domain.ValidationError
	var re *result.Error
	switch {
	case errors.As(err, &ve):
		status = fiber.StatusBadRequest
		body = fiber.Map{"error": ve.Msg, "field": ve.Field}
	case errors.Is(err, domain.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
		body["error"] = domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, checkout.ErrNoPayment):
		status = fiber.StatusConflict
	case errors.Is(err, payment.ErrBadSignature):
		status = fiber.StatusBadRequest
	case errors.As(err, &re):
		status = statusFor(re.Message)
	}

	if status == fiber.StatusUnauthorized || status == fiber.StatusBadRequest {
		applog.Security(c, action+".reject", map[string]any{"status": status, "reason": domain.Message(err)})
	} else {
		applog.Error(c, action, err, map[string]any{"status": status})
	}
	return c.Status(status).JSON(body)
}

// snapshot writes a holder snapshot, picking the status from its error text.
func snapshot(c *fiber.Ctx, action, errMsg string, v any) error {
	if errMsg == "" {
		return c.JSON(v)
	}
	status := statusFor(errMsg)
	applog.Error(c, action, errors.New(errMsg), map[string]any{"status": status})
	return c.Status(status).JSON(v)
}

// ErrorHandler is the app-wide fallback. Internals never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, nil)
	if code == fiber.StatusNotFound {
		return c.Status(code).JSON(fiber.Map{"error": "Page not found"})
	}
	if code < 500 {
		return c.Status(code).JSON(fiber.Map{"error": fe.Message})
	}
	return c.Status(code).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
}

package handlers

import (
	"context"

	"myshop/internal/log"
	"myshop/internal/state"
	"myshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Holders *state.Registry
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	s := h.Holders.For(identity(c)).Cart.Refresh(c.UserContext())
	return snapshot(c, "cart.view", s.Error, s)
}

// Remove deletes one line and answers with the reloaded cart.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product"})
	}
	cart := h.Holders.For(identity(c)).Cart
	msg, reloaded, err := cart.RemoveLine(c.UserContext(), id)
	if err != nil {
		return fail(c, "cart.remove", err)
	}
	cart.ClearRemoveMessage()
	return c.JSON(fiber.Map{"message": msg, "cart": reloaded})
}

// Watch streams cart snapshots while the cart reloads.
func (h *CartHandler) Watch(c *fiber.Ctx) error {
	cart := h.Holders.For(identity(c)).Cart
	return watch(c, cart.State, func(ctx context.Context) { cart.Refresh(ctx) }, c.QueryBool("follow"))
}

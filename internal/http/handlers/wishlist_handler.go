package handlers

import (
	applog "myshop/internal/log"
	"myshop/internal/state"
	"myshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type WishlistHandler struct {
	Holders *state.Registry
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	s := h.Holders.For(identity(c)).Wishlist.Refresh(c.UserContext())
	return snapshot(c, "wishlist.list", s.Error, s)
}

func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product"})
	}
	w := h.Holders.For(identity(c)).Wishlist
	msg, reloaded, err := w.Remove(c.UserContext(), id)
	if err != nil {
		return fail(c, "wishlist.remove", err)
	}
	w.ClearRemoveMessage()
	return c.JSON(fiber.Map{"message": msg, "wishlist": reloaded})
}

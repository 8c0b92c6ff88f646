package handlers

import (
	"myshop/internal/state"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Holders *state.Registry
}

// History lists the caller's placed orders, oldest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	s := h.Holders.For(identity(c)).Cart.FetchOrders(c.UserContext())
	return snapshot(c, "orders.history", s.Error, s)
}

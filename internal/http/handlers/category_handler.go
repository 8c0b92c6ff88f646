package handlers

import (
	"context"

	"myshop/internal/log"
	"myshop/internal/services"
	"myshop/internal/state"
	"myshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Home    *state.Home
	Catalog *services.Repo
	Holders *state.Registry
}

// Landing loads categories, products and banners together. Each part reports
// its own error; one failing does not hide the others.
func (h *CategoryHandler) Landing(c *fiber.Ctx) error {
	return c.JSON(h.Home.Load(c.UserContext()))
}

func (h *CategoryHandler) Categories(c *fiber.Ctx) error {
	s := h.Home.LoadCategories(c.UserContext())
	return snapshot(c, "catalog.categories", s.Error, s)
}

func (h *CategoryHandler) Banners(c *fiber.Ctx) error {
	s := h.Home.LoadBanners(c.UserContext())
	return snapshot(c, "catalog.banners", s.Error, s)
}

func (h *CategoryHandler) Products(c *fiber.Ctx) error {
	s := h.Home.LoadProducts(c.UserContext())
	return snapshot(c, "catalog.products", s.Error, s)
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	catID, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category"})
	}
	s := h.Holders.For(identity(c)).Product.LoadByCategory(c.UserContext(), catID)
	return snapshot(c, "catalog.category", s.Error, s)
}

// StreamProducts emits the raw result sequence of the product listing.
func (h *CategoryHandler) StreamProducts(c *fiber.Ctx) error {
	return sse(c, h.Catalog.ListProducts())
}

// WatchHome streams the product list snapshots while the home screen reloads.
func (h *CategoryHandler) WatchHome(c *fiber.Ctx) error {
	return watch(c, h.Home.Products, func(ctx context.Context) { h.Home.LoadProducts(ctx) }, c.QueryBool("follow"))
}

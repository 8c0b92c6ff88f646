package handlers

import (
	"myshop/internal/log"
	"myshop/internal/services"
	"myshop/internal/state"
	"myshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.Repo
	Home    *state.Home
}

func (h *SearchHandler) query(c *fiber.Ctx) (string, bool) {
	raw := c.Query("q")
	q, ok := validate.Q(raw)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": raw})
	}
	return q, ok
}

// Search filters the home product list by name, case-insensitively.
// A blank query returns the whole list.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q, ok := h.query(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Enter a valid keyword"})
	}
	if !h.Home.Loaded() {
		if s := h.Home.LoadProducts(c.UserContext()); s.Error != "" {
			return snapshot(c, "search.load", s.Error, s)
		}
	}
	found := h.Home.SearchProducts(q)
	return c.JSON(fiber.Map{"q": q, "products": found, "count": len(found)})
}

// Prefix asks the backend for products whose name starts with q.
func (h *SearchHandler) Prefix(c *fiber.Ctx) error {
	q, ok := h.query(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Enter a valid keyword"})
	}
	if c.QueryBool("stream") {
		return sse(c, h.Catalog.SearchProducts(q))
	}
	products, err := awaitCall(c, h.Catalog.SearchProducts(q))
	if err != nil {
		return fail(c, "search.prefix", err)
	}
	return c.JSON(fiber.Map{"q": q, "products": products, "count": len(products)})
}

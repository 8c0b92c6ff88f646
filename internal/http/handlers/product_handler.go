package handlers

import (
	"myshop/internal/domain"
	"myshop/internal/log"
	"myshop/internal/result"
	"myshop/internal/state"
	"myshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Holders *state.Registry
}

func awaitCall[T any](c *fiber.Ctx, s result.Stream[T]) (T, error) {
	return result.Await(c.UserContext(), s)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	d := h.Holders.For(identity(c)).Product.LoadProduct(c.UserContext(), id)
	return snapshot(c, "product.detail", d.Error, d)
}

type lineForm struct {
	ProductID string `json:"productId" form:"productId"`
	Size      string `json:"size" form:"size"`
	Color     string `json:"color" form:"color"`
	Qty       string `json:"qty" form:"qty"`
}

// line resolves the form into a cart line priced from the current product.
func (h *ProductHandler) line(c *fiber.Ctx, p *state.Product) (domain.CartLine, error) {
	var f lineForm
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&f); err != nil {
			return domain.CartLine{}, domain.Invalid("body", "Malformed request")
		}
	}
	if f.ProductID == "" {
		f.ProductID = c.Params("id")
	}
	id, ok := validate.ID(f.ProductID)
	if !ok {
		return domain.CartLine{}, domain.Invalid("productId", "Invalid product")
	}
	size, ok1 := validate.Option(f.Size)
	color, ok2 := validate.Option(f.Color)
	if !ok1 || !ok2 {
		return domain.CartLine{}, domain.Invalid("size", "Invalid option")
	}
	d := p.LoadProduct(c.UserContext(), id)
	if d.Error != "" {
		return domain.CartLine{}, &result.Error{Message: d.Error}
	}
	if d.Product == nil {
		return domain.CartLine{}, domain.NotFound("product", id)
	}
	return domain.NewCartLine(*d.Product, size, color, validate.Qty(f.Qty)), nil
}

func (h *ProductHandler) AddToCart(c *fiber.Ctx) error {
	p := h.Holders.For(identity(c)).Product
	l, err := h.line(c, p)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	msg, err := p.AddToCart(c.UserContext(), l)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	log.Audit(c, "cart.add", map[string]any{"product": l.ProductID, "qty": l.Quantity})
	p.ClearAddToCart()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg, "line": l})
}

func (h *ProductHandler) AddToWishlist(c *fiber.Ctx) error {
	p := h.Holders.For(identity(c)).Product
	l, err := h.line(c, p)
	if err != nil {
		return fail(c, "wishlist.add", err)
	}
	msg, err := p.AddToWishlist(c.UserContext(), l)
	if err != nil {
		return fail(c, "wishlist.add", err)
	}
	p.ClearAddToWishlist()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg, "line": l})
}

// Unsave is the wishlist toggle on the product screen.
func (h *ProductHandler) Unsave(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "wishlist.remove", domain.Invalid("productId", "Invalid product"))
	}
	p := h.Holders.For(identity(c)).Product
	msg, err := p.RemoveFromWishlist(c.UserContext(), id)
	if err != nil {
		return fail(c, "wishlist.remove", err)
	}
	p.ClearRemoveMessage()
	return c.JSON(fiber.Map{"message": msg})
}

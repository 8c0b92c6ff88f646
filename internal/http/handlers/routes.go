package handlers

import (
	"time"

	applog "myshop/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func limit(n int, every time.Duration, action string) fiber.Handler {
	if n <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        n,
		Expiration: every,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + action
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate."+action+".hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	})
}

// Routes mounts the storefront API, the checkout page and the admin views.
func Routes(app *fiber.App, d *Deps) {
	app.Use(Authenticate(d.Identify))
	me := RequireUser()

	api := app.Group("/api/v1")

	// Catalog
	api.Get("/home", d.CategoryHandler.Landing)
	api.Get("/categories", d.CategoryHandler.Categories)
	api.Get("/categories/:id/products", d.CategoryHandler.List)
	api.Get("/banners", d.CategoryHandler.Banners)
	api.Get("/products", d.CategoryHandler.Products)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/search", limit(d.Limits.Search, d.Limits.SearchEvery, "search"), d.SearchHandler.Search)
	api.Get("/search/prefix", limit(d.Limits.Search, d.Limits.SearchEvery, "search"), d.SearchHandler.Prefix)
	api.Get("/stream/products", d.CategoryHandler.StreamProducts)
	api.Get("/stream/home", d.CategoryHandler.WatchHome)

	// Auth
	api.Post("/auth/register", d.AuthHandler.Register)
	api.Post("/auth/login", limit(d.Limits.Login, d.Limits.LoginEvery, "login"), d.AuthHandler.Login)
	api.Post("/auth/logout", me, d.AuthHandler.Logout)

	// Cart, wishlist, orders
	api.Get("/cart", me, d.CartHandler.View)
	api.Post("/cart", me, d.ProductHandler.AddToCart)
	api.Delete("/cart/:id", me, d.CartHandler.Remove)
	api.Get("/stream/cart", me, d.CartHandler.Watch)
	api.Get("/wishlist", me, d.WishlistHandler.List)
	api.Post("/wishlist", me, d.ProductHandler.AddToWishlist)
	api.Delete("/wishlist/:id", me, d.WishlistHandler.Remove)
	api.Delete("/products/:id/wishlist", me, d.ProductHandler.Unsave)
	api.Get("/orders", me, d.OrderHandler.History)

	// Profile
	api.Get("/profile", me, d.ProfileHandler.Get)
	api.Put("/profile", me, d.ProfileHandler.Update)
	api.Post("/profile/image", me, d.ProfileHandler.UploadImage)

	// Checkout
	api.Post("/checkout", me, d.CheckoutHandler.Begin)
	api.Post("/checkout/callback", me, d.CheckoutHandler.Callback)
	api.Post("/checkout/failure", me, d.CheckoutHandler.Failure)
	api.Get("/checkout/status", me, d.CheckoutHandler.Status)
	app.Get("/checkout", d.CheckoutHandler.Page)

	admin := app.Group("/admin", RequireAdmin(d.AdminEmails))
	admin.Get("/reconciliations", d.AdminHandler.Reconciliations)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
}

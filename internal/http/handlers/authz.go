package handlers

import (
	"context"
	"strings"

	"myshop/internal/domain"
	applog "myshop/internal/log"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie carries the session token for the browser checkout page.
const TokenCookie = "token"

// Identifier resolves a session token to an identity.
type Identifier interface {
	Identify(ctx context.Context, token string) (domain.Identity, error)
}

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Cookies(TokenCookie)
}

// Authenticate attaches the caller's identity when a valid token is present.
// It never rejects; RequireUser does.
func Authenticate(auth Identifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearer(c)
		if tok == "" {
			return c.Next()
		}
		id, err := auth.Identify(c.UserContext(), tok)
		if err != nil {
			applog.Security(c, "auth.token.reject", map[string]any{"reason": err.Error()})
			return c.Next()
		}
		c.Locals(applog.IdentityKey, id)
		c.Locals("token", tok)
		return c.Next()
	}
}

func identity(c *fiber.Ctx) domain.Identity {
	id, _ := c.Locals(applog.IdentityKey).(domain.Identity)
	return id
}

func token(c *fiber.Ctx) string {
	tok, _ := c.Locals("token").(string)
	return tok
}

// RequireUser rejects anonymous callers with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity(c).Anonymous() {
			applog.Security(c, "access.denied.user", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": domain.ErrUnauthenticated.Error()})
		}
		return c.Next()
	}
}

// RequireAdmin lets through signed-in callers whose email is listed.
func RequireAdmin(emails []string) fiber.Handler {
	allowed := map[string]bool{}
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed[e] = true
		}
	}
	return func(c *fiber.Ctx) error {
		id := identity(c)
		if id.Anonymous() || !allowed[strings.ToLower(id.Email)] {
			applog.Security(c, "access.denied.admin", map[string]any{"uid": id.UID})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Next()
	}
}

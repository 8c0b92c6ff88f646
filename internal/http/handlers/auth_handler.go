package handlers

import (
	"time"

	"myshop/internal/checkout"
	"myshop/internal/domain"
	"myshop/internal/log"
	"myshop/internal/state"
	"myshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Holders *state.Registry
	Payment *checkout.Bridge
	TTL     time.Duration
}

type registerForm struct {
	FirstName       string `json:"firstName" form:"firstName"`
	LastName        string `json:"lastName" form:"lastName"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Address         string `json:"address" form:"address"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var f registerForm
	if err := c.BodyParser(&f); err != nil {
		return fail(c, "auth.register", domain.Invalid("body", validate.MsgAllRequired))
	}
	u := domain.User{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		Address:   f.Address,
		Password:  f.Password,
	}
	if err := validate.Register(u, f.ConfirmPassword); err != nil {
		return fail(c, "auth.register", err)
	}
	msg, err := h.Holders.For(domain.Identity{}).Profile.RegisterUser(c.UserContext(), u)
	if err != nil {
		log.Security(c, "auth.register.fail", map[string]any{"email": u.Email, "reason": err.Error()})
		return fail(c, "auth.register", err)
	}
	log.Audit(c, "auth.register.success", map[string]any{"email": u.Email})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

type loginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var f loginForm
	if err := c.BodyParser(&f); err != nil {
		return fail(c, "auth.login", domain.Invalid("body", validate.MsgFillAll))
	}
	if err := validate.Login(f.Email, f.Password); err != nil {
		return fail(c, "auth.login", err)
	}
	sess, err := h.Holders.For(domain.Identity{}).Profile.LoginUser(c.UserContext(), f.Email, f.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": f.Email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": domain.Message(err)})
	}
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    sess.Token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(h.TTL),
	})
	log.Audit(c, "auth.login.success", map[string]any{"email": f.Email, "uid": sess.Identity.UID})
	return c.JSON(fiber.Map{"message": "Login Successful", "session": sess})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	id := identity(c)
	if err := h.Holders.For(id).Profile.Logout(c.UserContext(), token(c)); err != nil {
		return fail(c, "auth.logout", err)
	}
	h.Holders.Forget(id.UID)
	if h.Payment != nil {
		h.Payment.Reset(id)
	}
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"uid": id.UID})
	return c.JSON(fiber.Map{"message": "User logged out successfully"})
}

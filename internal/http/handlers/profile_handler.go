package handlers

import (
	"io"

	"myshop/internal/domain"
	"myshop/internal/log"
	"myshop/internal/state"
	"myshop/internal/validate"

	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 5 << 20

type ProfileHandler struct {
	Holders *state.Registry
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	s := h.Holders.For(identity(c)).Profile.LoadUser(c.UserContext())
	return snapshot(c, "profile.get", s.Error, s)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var patch domain.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, "profile.update", domain.Invalid("body", "Malformed request"))
	}
	if patch.Email != "" {
		if _, ok := validate.Email(patch.Email); !ok {
			return fail(c, "profile.update", domain.Invalid("email", "Enter a valid email address"))
		}
	}
	p := h.Holders.For(identity(c)).Profile
	u := domain.User{
		FirstName: patch.FirstName,
		LastName:  patch.LastName,
		Email:     patch.Email,
		Phone:     patch.Phone,
		Address:   patch.Address,
	}
	s, err := p.UpdateUserData(c.UserContext(), u)
	if err != nil {
		return fail(c, "profile.update", err)
	}
	p.ClearUpdateMessage()
	log.Audit(c, "profile.update", nil)
	return c.JSON(s)
}

// UploadImage takes a multipart "image" file and answers with its URL.
func (h *ProfileHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, "profile.image", domain.Invalid("image", "Choose an image to upload"))
	}
	ct, ok := validate.ImageType(fh.Header.Get(fiber.HeaderContentType))
	if !ok {
		return fail(c, "profile.image", domain.Invalid("image", "Unsupported image type"))
	}
	if fh.Size > maxImageBytes {
		return fail(c, "profile.image", domain.Invalid("image", "Image is too large"))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, "profile.image", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return fail(c, "profile.image", err)
	}

	p := h.Holders.For(identity(c)).Profile
	url, err := p.UploadImage(c.UserContext(), ct, data)
	if err != nil {
		return fail(c, "profile.image", err)
	}
	p.ResetImageState()
	log.Audit(c, "profile.image", map[string]any{"bytes": len(data)})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Image updated", "url": url})
}

package validate

import (
	"regexp"
	"strconv"
	"strings"

	"myshop/internal/domain"
)

var (
	rePin   = regexp.MustCompile(`^[0-9]{4,10}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9][0-9 -]{5,18}$`)
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}\p{N} _'&.-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reOpt   = regexp.MustCompile(`^[\p{L}\p{N} /-]{1,20}$`)
)

// Form messages shown next to the offending field.
const (
	MsgAllRequired     = "All fields are required"
	MsgPasswordsDiffer = "Passwords do not match"
	MsgFillAll         = "Please fill all fields"
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query. An empty query is valid and means "everything".
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	} // clamp to avoid abuse
	return n
}

// ID validates a product, category or line identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Option validates a size or color choice. Blank is allowed.
func Option(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || reOpt.MatchString(s)
}

func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 40 {
		return "", false
	}
	return s, true
}

// Password is the length window accepted by both auth providers.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 128
}

// Register checks the sign-up form before any backend call.
func Register(u domain.User, confirm string) error {
	fields := []struct{ name, v string }{
		{"firstName", u.FirstName},
		{"lastName", u.LastName},
		{"email", u.Email},
		{"password", u.Password},
		{"confirmPassword", confirm},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.v) == "" {
			return domain.Invalid(f.name, MsgAllRequired)
		}
	}
	if u.Password != confirm {
		return domain.Invalid("confirmPassword", MsgPasswordsDiffer)
	}
	if _, ok := Email(u.Email); !ok {
		return domain.Invalid("email", "Enter a valid email address")
	}
	return nil
}

// Login checks the sign-in form.
func Login(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.Invalid("email", MsgFillAll)
	}
	return nil
}

// Shipping checks the checkout form: every field present, then phone and
// pin code formats.
func Shipping(s domain.ShippingInfo) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !rePhone.MatchString(strings.TrimSpace(s.Phone)) {
		return domain.Invalid("phone", "Enter a valid phone number")
	}
	if !rePin.MatchString(strings.TrimSpace(s.PinCode)) {
		return domain.Invalid("pinCode", "Enter a valid pin code")
	}
	return nil
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ImageType accepts the content types a profile picture may have.
func ImageType(ct string) (string, bool) {
	ct = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	return ct, imageTypes[ct]
}

// Package auth holds the identity providers the storefront can sign users in with.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"myshop/internal/domain"
	"myshop/internal/repos"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadCreds = errors.New("The password is invalid or the user does not have a password.")

// Accounts is the credential and session storage of the local provider.
type Accounts interface {
	CreateCredential(ctx context.Context, email, hash string) (string, error)
	CredentialByEmail(ctx context.Context, email string) (repos.Credential, error)
	Open(ctx context.Context, uid string) (string, error)
	Active(ctx context.Context, sid string) (domain.Identity, error)
	Revoke(ctx context.Context, sid string) error
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Local signs users in against bcrypt hashes and hands out HS256 tokens
// bound to a revocable session row.
type Local struct {
	Accounts Accounts
	Secret   []byte
	TTL      time.Duration
	Cost     int
	Now      func() time.Time
}

func NewLocal(accounts Accounts, secret string, ttl time.Duration) *Local {
	return &Local{Accounts: accounts, Secret: []byte(secret), TTL: ttl, Cost: bcrypt.DefaultCost, Now: time.Now}
}

func (l *Local) Register(ctx context.Context, email, password string) (domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Identity{}, domain.Invalid("email", "The email address is badly formatted.")
	}
	if len(password) < 6 {
		return domain.Identity{}, domain.Invalid("password", "Password should be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.Cost)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("hash password: %w", err)
	}
	uid, err := l.Accounts.CreateCredential(ctx, email, string(hash))
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UID: uid, Email: email}, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	c, err := l.Accounts.CredentialByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, ErrBadCreds
	}
	if err != nil {
		return domain.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return domain.Session{}, ErrBadCreds
	}
	sid, err := l.Accounts.Open(ctx, c.UID)
	if err != nil {
		return domain.Session{}, err
	}
	now := l.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UID,
			ID:        sid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.TTL)),
		},
	})
	signed, err := tok.SignedString(l.Secret)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Token: signed, Identity: domain.Identity{UID: c.UID, Email: c.Email}}, nil
}

func (l *Local) parse(token string, opts ...jwt.ParserOption) (*claims, error) {
	var cl claims
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(l.Now))
	_, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (any, error) { return l.Secret, nil }, opts...)
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthenticated, err)
	}
	return &cl, nil
}

// Identify accepts unexpired tokens whose session is still open.
func (l *Local) Identify(ctx context.Context, token string) (domain.Identity, error) {
	cl, err := l.parse(token)
	if err != nil {
		return domain.Identity{}, err
	}
	id, err := l.Accounts.Active(ctx, cl.ID)
	if err != nil {
		return domain.Identity{}, err
	}
	if id.UID != cl.Subject {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

// SignOut revokes the session behind token. Expired tokens can still sign out.
func (l *Local) SignOut(ctx context.Context, token string) error {
	cl, err := l.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	return l.Accounts.Revoke(ctx, cl.ID)
}

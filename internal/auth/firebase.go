package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/go-resty/resty/v2"

	"myshop/internal/domain"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// AdminClient is the part of the Firebase Admin auth client in use here.
type AdminClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Firebase creates and verifies accounts with the Admin SDK. Password
// sign-in has no Admin API, so it goes through the Identity Toolkit REST
// endpoint with the web API key.
type Firebase struct {
	Admin  AdminClient
	APIKey string
	http   *resty.Client
}

func NewFirebase(admin AdminClient, apiKey, baseURL string) *Firebase {
	if baseURL == "" {
		baseURL = identityToolkitURL
	}
	return &Firebase{
		Admin:  admin,
		APIKey: apiKey,
		http:   resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetHeader("Content-Type", "application/json"),
	}
}

func (f *Firebase) Register(ctx context.Context, email, password string) (domain.Identity, error) {
	rec, err := f.Admin.CreateUser(ctx, (&fbauth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UID: rec.UID, Email: rec.Email}, nil
}

type signInReply struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	var ok signInReply
	var bad toolkitError
	resp, err := f.http.R().
		SetContext(ctx).
		SetQueryParam("key", f.APIKey).
		SetBody(map[string]any{"email": email, "password": password, "returnSecureToken": true}).
		SetResult(&ok).
		SetError(&bad).
		Post("/accounts:signInWithPassword")
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign in: %w", err)
	}
	if resp.IsError() {
		if bad.Error.Message != "" {
			return domain.Session{}, errors.New(bad.Error.Message)
		}
		return domain.Session{}, fmt.Errorf("sign in: %s", resp.Status())
	}
	return domain.Session{Token: ok.IDToken, Identity: domain.Identity{UID: ok.LocalID, Email: ok.Email}}, nil
}

func (f *Firebase) Identify(ctx context.Context, token string) (domain.Identity, error) {
	t, err := f.Admin.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return domain.Identity{}, errors.Join(domain.ErrUnauthenticated, err)
	}
	email, _ := t.Claims["email"].(string)
	return domain.Identity{UID: t.UID, Email: email}, nil
}

// SignOut revokes every refresh token of the user behind token.
func (f *Firebase) SignOut(ctx context.Context, token string) error {
	id, err := f.Identify(ctx, token)
	if err != nil {
		return err
	}
	return f.Admin.RevokeRefreshTokens(ctx, id.UID)
}

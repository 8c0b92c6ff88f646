package services

import (
	"context"
	"errors"
	"strings"

	"myshop/internal/domain"
	"myshop/internal/result"
)

const (
	MsgRegistered = "User registered successfully"
	MsgLoggedOut  = "User logged out successfully"
)

// Register creates the account with the auth provider and then writes the
// profile record. The password goes to the provider only.
func (r *Repo) Register(u domain.User) result.Stream[string] {
	return result.FromCall(func(ctx context.Context) (string, error) {
		id, err := r.Auth.Register(ctx, strings.TrimSpace(u.Email), u.Password)
		if err != nil {
			return "", err
		}
		profile := u
		profile.Password = ""
		if err := r.Users.Put(ctx, id.UID, profile); err != nil {
			return "", err
		}
		return MsgRegistered, nil
	})
}

func (r *Repo) Login(email, password string) result.Stream[domain.Session] {
	return result.FromCall(func(ctx context.Context) (domain.Session, error) {
		return r.Auth.SignIn(ctx, strings.TrimSpace(email), password)
	})
}

// Logout revokes the session behind token.
func (r *Repo) Logout(token string) result.Stream[string] {
	return result.FromCall(func(ctx context.Context) (string, error) {
		if token == "" {
			return "", domain.ErrUnauthenticated
		}
		if err := r.Auth.SignOut(ctx, token); err != nil {
			return "", err
		}
		return MsgLoggedOut, nil
	})
}

// Identify resolves a bearer token without going through a stream.
func (r *Repo) Identify(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	id, err := r.Auth.Identify(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return domain.Identity{}, err
		}
		return domain.Identity{}, errors.Join(domain.ErrUnauthenticated, err)
	}
	return id, nil
}

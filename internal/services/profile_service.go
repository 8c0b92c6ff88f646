package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"myshop/internal/domain"
	"myshop/internal/result"

	"github.com/google/uuid"
)

const (
	MsgUserUpdated  = "User data updated successfully"
	MsgUserNotFound = "User not found"
)

func (r *Repo) UserData(id domain.Identity) result.Stream[domain.User] {
	return scoped(id, func(ctx context.Context, uid string) (domain.User, error) {
		u, err := r.Users.Get(ctx, uid)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, errors.New(MsgUserNotFound)
		}
		return u, err
	})
}

// UpdateUserData overwrites the editable profile fields with those of u.
func (r *Repo) UpdateUserData(id domain.Identity, u domain.User) result.Stream[string] {
	patch := u.Patch()
	return scoped(id, func(ctx context.Context, uid string) (string, error) {
		if err := r.Users.Patch(ctx, uid, patch); err != nil {
			return "", err
		}
		return MsgUserUpdated, nil
	})
}

// UploadImage stores data as the caller's profile picture and yields its URL.
// Each of the three steps fails with its own message.
func (r *Repo) UploadImage(id domain.Identity, contentType string, data []byte) result.Stream[string] {
	return scoped(id, func(ctx context.Context, uid string) (string, error) {
		key := fmt.Sprintf("user_images/%s/%s", uid, uuid.NewString())
		if err := r.Blobs.Put(ctx, key, contentType, bytes.NewReader(data)); err != nil {
			return "", fmt.Errorf("Image upload failed: %s", domain.Message(err))
		}
		url, err := r.Blobs.URL(ctx, key)
		if err != nil {
			return "", fmt.Errorf("Failed to get download URL: %s", domain.Message(err))
		}
		if err := r.Users.SetImage(ctx, uid, url); err != nil {
			return "", fmt.Errorf("Failed to update profile image: %s", domain.Message(err))
		}
		return url, nil
	})
}

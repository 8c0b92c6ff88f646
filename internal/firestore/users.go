package firestore

import (
	"context"

	"cloud.google.com/go/firestore"

	"myshop/internal/domain"
)

// Users keeps one profile document per uid under USER.
type Users struct{ Client *firestore.Client }

func NewUsers(c *firestore.Client) *Users { return &Users{Client: c} }

func (r *Users) doc(uid string) *firestore.DocumentRef { return r.Client.Collection(userCol).Doc(uid) }

func (r *Users) Put(ctx context.Context, uid string, u domain.User) error {
	if r.Client == nil {
		return errNoClient
	}
	_, err := r.doc(uid).Set(ctx, u)
	return err
}

func (r *Users) Get(ctx context.Context, uid string) (domain.User, error) {
	if r.Client == nil {
		return domain.User{}, errNoClient
	}
	snap, err := r.doc(uid).Get(ctx)
	if err != nil {
		if notFound(err) {
			return domain.User{}, domain.NotFound("user", uid)
		}
		return domain.User{}, err
	}
	var u domain.User
	if err := snap.DataTo(&u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Patch overwrites the editable fields. Update fails on a missing document.
func (r *Users) Patch(ctx context.Context, uid string, p domain.ProfilePatch) error {
	return r.update(ctx, uid, []firestore.Update{
		{Path: "firstName", Value: p.FirstName},
		{Path: "lastName", Value: p.LastName},
		{Path: "email", Value: p.Email},
		{Path: "phone", Value: p.Phone},
		{Path: "address", Value: p.Address},
	})
}

func (r *Users) SetImage(ctx context.Context, uid, url string) error {
	return r.update(ctx, uid, []firestore.Update{{Path: "image", Value: url}})
}

func (r *Users) update(ctx context.Context, uid string, ups []firestore.Update) error {
	if r.Client == nil {
		return errNoClient
	}
	_, err := r.doc(uid).Update(ctx, ups)
	if notFound(err) {
		return domain.NotFound("user", uid)
	}
	return err
}

package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"myshop/internal/domain"

	"github.com/jmoiron/sqlx"
)

// UserRepo stores profile records keyed by uid.
type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Put writes the whole profile. The password never reaches this table.
func (r *UserRepo) Put(ctx context.Context, uid string, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, `
	  INSERT INTO users(uid, first_name, last_name, email, phone, image, address, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	  ON CONFLICT(uid) DO UPDATE SET
	    first_name = excluded.first_name,
	    last_name  = excluded.last_name,
	    email      = excluded.email,
	    phone      = excluded.phone,
	    image      = excluded.image,
	    address    = excluded.address,
	    updated_at = excluded.updated_at
	`, uid, u.FirstName, u.LastName, u.Email, u.Phone, u.Image, u.Address, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *UserRepo) Get(ctx context.Context, uid string) (domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
	  SELECT first_name, last_name, email, phone, image, address
	  FROM users WHERE uid = ?
	`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.NotFound("user", uid)
	}
	return u, err
}

// Patch overwrites the editable profile fields of an existing record.
func (r *UserRepo) Patch(ctx context.Context, uid string, p domain.ProfilePatch) error {
	res, err := r.DB.ExecContext(ctx, `
	  UPDATE users SET first_name=?, last_name=?, email=?, phone=?, address=?, updated_at=?
	  WHERE uid=?
	`, p.FirstName, p.LastName, p.Email, p.Phone, p.Address, time.Now().UTC().Format(time.RFC3339), uid)
	if err != nil {
		return err
	}
	return mustAffect(res, "user", uid)
}

func (r *UserRepo) SetImage(ctx context.Context, uid, url string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET image=?, updated_at=? WHERE uid=?`,
		url, time.Now().UTC().Format(time.RFC3339), uid)
	if err != nil {
		return err
	}
	return mustAffect(res, "user", uid)
}

func mustAffect(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(kind, id)
	}
	return nil
}

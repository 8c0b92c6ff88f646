package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"myshop/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrEmailTaken = errors.New("The email address is already in use by another account.")

// Credential is a local account row.
type Credential struct {
	UID          string `db:"uid"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}

// SessionRepo backs the local auth provider: credentials plus revocable sessions.
type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) CreateCredential(ctx context.Context, email, hash string) (string, error) {
	uid := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `INSERT INTO credentials(uid, email, password_hash) VALUES(?, ?, ?)`,
		uid, strings.TrimSpace(email), hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return uid, nil
}

func (r *SessionRepo) CredentialByEmail(ctx context.Context, email string) (Credential, error) {
	var c Credential
	err := r.db.GetContext(ctx, &c, `
	  SELECT uid, email, password_hash FROM credentials WHERE LOWER(email) = LOWER(?)
	`, strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, domain.NotFound("account", email)
	}
	return c, err
}

func (r *SessionRepo) Open(ctx context.Context, uid string) (string, error) {
	sid := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `INSERT INTO sessions(id, uid) VALUES(?, ?)`, sid, uid)
	return sid, err
}

// Active returns the identity behind a session that has not been revoked.
func (r *SessionRepo) Active(ctx context.Context, sid string) (domain.Identity, error) {
	var id struct {
		UID   string `db:"uid"`
		Email string `db:"email"`
	}
	err := r.db.GetContext(ctx, &id, `
	  SELECT s.uid, c.email
	  FROM sessions s JOIN credentials c ON c.uid = s.uid
	  WHERE s.id = ? AND s.revoked_at IS NULL
	`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UID: id.UID, Email: id.Email}, nil
}

func (r *SessionRepo) Revoke(ctx context.Context, sid string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = CURRENT_TIMESTAMP WHERE id = ? AND revoked_at IS NULL`, sid)
	return err
}

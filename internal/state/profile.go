package state

import (
	"context"

	"myshop/internal/domain"
	"myshop/internal/result"
)

type ProfileSource interface {
	UserData(id domain.Identity) result.Stream[domain.User]
	UpdateUserData(id domain.Identity, u domain.User) result.Stream[string]
	Logout(token string) result.Stream[string]
	Register(u domain.User) result.Stream[string]
	Login(email, password string) result.Stream[domain.Session]
	UploadImage(id domain.Identity, contentType string, data []byte) result.Stream[string]
}

type UserDataState struct {
	Loading bool         `json:"isLoading"`
	User    *domain.User `json:"user,omitempty"`
	Updated string       `json:"updated,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Profile backs the account screens. Register and Login also run on a
// holder with no identity.
type Profile struct {
	src ProfileSource
	id  domain.Identity

	User     *Cell[UserDataState]
	Register *Cell[Load[string]]
	Login    *Cell[Load[*domain.Session]]
	Upload   *Cell[Load[string]]
}

func NewProfile(src ProfileSource, id domain.Identity) *Profile {
	return &Profile{
		src:      src,
		id:       id,
		User:     NewCell(UserDataState{}),
		Register: NewCell(Load[string]{}),
		Login:    NewCell(Load[*domain.Session]{}),
		Upload:   NewCell(Load[string]{}),
	}
}

func (p *Profile) LoadUser(ctx context.Context) UserDataState {
	_, s := observe(ctx, p.User, p.src.UserData(p.id), func(_ UserDataState, r result.Result[domain.User]) UserDataState {
		switch r.State {
		case result.StatePending:
			return UserDataState{Loading: true}
		case result.StateFailed:
			return UserDataState{Error: r.Message}
		}
		u := r.Data
		return UserDataState{User: &u}
	})
	return s
}

// UpdateUserData only touches the updated/error fields of the current snapshot.
// It returns the snapshot as this update left it.
func (p *Profile) UpdateUserData(ctx context.Context, u domain.User) (UserDataState, error) {
	r, s := observe(ctx, p.User, p.src.UpdateUserData(p.id, u), func(prev UserDataState, r result.Result[string]) UserDataState {
		switch r.State {
		case result.StateFailed:
			prev.Error = r.Message
		case result.StateSucceeded:
			prev.Updated = r.Data
		}
		return prev
	})
	_, err := outcome(ctx, r)
	return s, err
}

func (p *Profile) ClearUpdateMessage() {
	p.User.Update(func(s UserDataState) UserDataState { s.Updated = ""; return s })
}

// Logout revokes token. On success the snapshot carries only the message.
func (p *Profile) Logout(ctx context.Context, token string) error {
	r, _ := observe(ctx, p.User, p.src.Logout(token), func(_ UserDataState, r result.Result[string]) UserDataState {
		switch r.State {
		case result.StatePending:
			return UserDataState{Loading: true}
		case result.StateFailed:
			return UserDataState{Error: r.Message}
		}
		return UserDataState{Updated: r.Data}
	})
	_, err := outcome(ctx, r)
	return err
}

func (p *Profile) RegisterUser(ctx context.Context, u domain.User) (string, error) {
	r, _ := observe(ctx, p.Register, p.src.Register(u), replace[string])
	return outcome(ctx, r)
}

func (p *Profile) LoginUser(ctx context.Context, email, password string) (domain.Session, error) {
	s := p.src.Login(email, password)
	r, _ := observe(ctx, p.Login, s, func(_ Load[*domain.Session], r result.Result[domain.Session]) Load[*domain.Session] {
		switch r.State {
		case result.StatePending:
			return Load[*domain.Session]{Loading: true}
		case result.StateFailed:
			return Load[*domain.Session]{Error: r.Message}
		}
		sess := r.Data
		return Load[*domain.Session]{Data: &sess}
	})
	return outcome(ctx, r)
}

func (p *Profile) UploadImage(ctx context.Context, contentType string, data []byte) (string, error) {
	r, _ := observe(ctx, p.Upload, p.src.UploadImage(p.id, contentType, data), replace[string])
	return outcome(ctx, r)
}

func (p *Profile) ResetImageState() { p.Upload.Set(Load[string]{}) }

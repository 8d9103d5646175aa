package user

import (
	"context"
	"errors"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/user"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     *string   `json:"full_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

var (
	ErrNotFound         = errors.New("user not found")
	ErrUsernameTaken    = errors.New("derived username belongs to an account that cannot be reused")
	ErrEmptyDisplayName = errors.New("cannot derive a username from an empty name")
)

// ProvisionedEmailDomain is the mailbox domain for auto-created accounts.
const ProvisionedEmailDomain = "karyawan.local"

// DeriveUsername lowercases name and drops all whitespace.
func DeriveUsername(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type ctxKey struct{}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*User)
	return u, ok && u != nil
}

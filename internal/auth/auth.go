package auth

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/user"
	"github.com/frahmantamala/karyawan-management/internal/user"
)

// ErrDuplicateUser is returned by the repository when a unique column collides.
var ErrDuplicateUser = errors.New("username or email already exists")

// RegisterDTO is the body of POST /api/auth/register.
type RegisterDTO struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// LoginDTO is the body of POST /api/auth/login.
type LoginDTO struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type LoginResponse struct {
	User      *user.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresIn int64      `json:"expires_in"`
}

type RepositoryAPI interface {
	FindByLogin(ctx context.Context, usernameOrEmail string) (*userDatamodel.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*user.User, error)
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

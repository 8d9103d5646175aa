package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/karyawan-management/internal/auth"
	userDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindByLogin(ctx context.Context, usernameOrEmail string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", usernameOrEmail, usernameOrEmail).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *Repository) Create(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return auth.ErrDuplicateUser
	}
	return err
}

func (r *Repository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

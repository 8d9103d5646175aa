package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence surface the generic service needs.
type Store[M any] interface {
	List(ctx context.Context) ([]*M, error)
	GetByID(ctx context.Context, id int64) (*M, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, m *M) error
	Update(ctx context.Context, m *M) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// Repository is a gorm-backed Store for any row type.
type Repository[M any] struct {
	db *gorm.DB
}

func NewRepository[M any](db *gorm.DB) *Repository[M] {
	return &Repository[M]{db: db}
}

func (r *Repository[M]) DB() *gorm.DB {
	return r.db
}

func (r *Repository[M]) List(ctx context.Context) ([]*M, error) {
	var rows []*M
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// GetByID returns nil, nil when no row matches.
func (r *Repository[M]) GetByID(ctx context.Context, id int64) (*M, error) {
	var m M
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository[M]) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(M)).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository[M]) Create(ctx context.Context, m *M) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (r *Repository[M]) Update(ctx context.Context, m *M) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
}

// Delete reports whether a row was removed.
func (r *Repository[M]) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(M))
	return result.RowsAffected > 0, result.Error
}

// IsDuplicateKey matches unique violations from any supported driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// IsForeignKeyViolation matches foreign key violations from any supported driver.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

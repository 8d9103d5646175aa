package crud

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/karyawan-management/internal"
)

type Service[M any, P any] struct {
	store    Store[M]
	resource Resource[M, P]
	logger   *slog.Logger
}

func NewService[M any, P any](store Store[M], resource Resource[M, P], logger *slog.Logger) *Service[M, P] {
	return &Service[M, P]{
		store:    store,
		resource: resource,
		logger:   logger,
	}
}

func (s *Service[M, P]) Resource() Resource[M, P] {
	return s.resource
}

func (s *Service[M, P]) List(ctx context.Context) ([]*M, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, s.StoreFailure("retrieve", err)
	}
	return rows, nil
}

func (s *Service[M, P]) Get(ctx context.Context, id int64) (*M, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.StoreFailure("retrieve", err)
	}
	if m == nil {
		return nil, s.NotFound()
	}
	return m, nil
}

func (s *Service[M, P]) Create(ctx context.Context, payload *P) (*M, error) {
	return s.CreateWith(ctx, payload, nil)
}

// CreateWith is Create with a prepare step that runs on the built row after
// validation and before the insert. A prepare error aborts the create.
func (s *Service[M, P]) CreateWith(ctx context.Context, payload *P, prepare func(m *M) error) (*M, error) {
	if err := s.resource.Validate(ctx, payload, OpCreate); err != nil {
		return nil, err
	}

	m := new(M)
	if err := s.resource.ToEntity(ctx, payload, m, OpCreate); err != nil {
		return nil, err
	}
	if prepare != nil {
		if err := prepare(m); err != nil {
			return nil, err
		}
	}
	Stamp(ctx, m, OpCreate)

	if err := s.store.Create(ctx, m); err != nil {
		return nil, s.WriteFailure("create", err)
	}
	return m, nil
}

func (s *Service[M, P]) Update(ctx context.Context, id int64, payload *P) (*M, error) {
	if err := s.resource.Validate(ctx, payload, OpUpdate); err != nil {
		return nil, err
	}

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resource.ToEntity(ctx, payload, m, OpUpdate); err != nil {
		return nil, err
	}
	Stamp(ctx, m, OpUpdate)

	if err := s.store.Update(ctx, m); err != nil {
		return nil, s.WriteFailure("update", err)
	}
	return m, nil
}

func (s *Service[M, P]) Delete(ctx context.Context, id int64) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return internal.NewConflictError(fmt.Sprintf("Failed to delete %s", s.lower()), internal.ErrCodeStillReferenced).
				WithReasons(s.resource.Constraints().InUse)
		}
		return s.StoreFailure("delete", err)
	}
	if !deleted {
		return s.NotFound()
	}

	if hook, ok := s.resource.(AfterDeleter[M]); ok {
		hook.AfterDelete(ctx, m)
	}
	return nil
}

func (s *Service[M, P]) NotFound() *internal.AppError {
	name := s.resource.Name()
	return internal.NewNotFoundError(name+" not found", internal.ErrCodeResourceNotFound).
		WithReasons(name + " dengan ID tersebut tidak ditemukan")
}

// WriteFailure maps an insert or update error to the resource's conflict and
// reference messages, falling back to StoreFailure.
func (s *Service[M, P]) WriteFailure(op string, err error) error {
	c := s.resource.Constraints()
	switch {
	case IsDuplicateKey(err) && c.Unique != "":
		return internal.NewConflictError(fmt.Sprintf("Failed to %s %s", op, s.lower()), internal.ErrCodeDuplicate).
			WithReasons(c.Unique)
	case IsForeignKeyViolation(err) && c.Reference != "":
		return internal.NewValidationError("Validation failed", internal.ErrCodeInvalidReference).
			WithReasons(c.Reference)
	}
	return s.StoreFailure(op, err)
}

func (s *Service[M, P]) StoreFailure(op string, err error) error {
	s.logger.Error("store operation failed", "resource", s.resource.Name(), "op", op, "error", err)
	return internal.NewInternalError(fmt.Sprintf("Failed to %s %s", op, s.lower()), err).
		WithReasons("Database error")
}

func (s *Service[M, P]) lower() string {
	return strings.ToLower(s.resource.Name())
}

// Stamp records the request's user on m when m is Auditable.
func Stamp(ctx context.Context, m interface{}, op Op) {
	if a, ok := m.(Auditable); ok {
		a.Stamp(internal.ActorFromContext(ctx), op == OpCreate)
	}
}

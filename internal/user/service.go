package user

import (
	"context"
	"fmt"
	"log/slog"

	userDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	// InsertIfAbsent inserts u unless a unique column already matches; it
	// reports whether a row was written.
	InsertIfAbsent(ctx context.Context, u *userDatamodel.User) (bool, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

type Service struct {
	repo            RepositoryAPI
	hasher          PasswordHasher
	defaultPassword string
	logger          *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, defaultPassword string, logger *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		hasher:          hasher,
		defaultPassword: defaultPassword,
		logger:          logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return FromDataModel(u), nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return u != nil, nil
}

// ProvisionForEmployee returns the id of the account backing an employee
// called name, creating it with the default password when missing. Concurrent
// callers deriving the same username converge on the same row.
func (s *Service) ProvisionForEmployee(ctx context.Context, name string) (int64, error) {
	username := DeriveUsername(name)
	if username == "" {
		return 0, ErrEmptyDisplayName
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	hash, err := s.hasher.Hash(s.defaultPassword)
	if err != nil {
		return 0, fmt.Errorf("failed to hash default password: %w", err)
	}

	fullName := name
	row := &userDatamodel.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@%s", username, ProvisionedEmailDomain),
		PasswordHash: hash,
		FullName:     &fullName,
		IsActive:     true,
	}
	inserted, err := s.repo.InsertIfAbsent(ctx, row)
	if err != nil {
		return 0, fmt.Errorf("failed to provision user %q: %w", username, err)
	}
	if inserted {
		s.logger.Info("provisioned user for employee", "user_id", row.ID, "username", username)
		return row.ID, nil
	}

	winner, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch provisioned user %q: %w", username, err)
	}
	if winner == nil {
		return 0, ErrUsernameTaken
	}
	return winner.ID, nil
}

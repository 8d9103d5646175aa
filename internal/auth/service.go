package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/user"
	"github.com/frahmantamala/karyawan-management/internal/user"
)

const msgBadCredentials = "Username/email atau password salah"

type Service struct {
	repo      RepositoryAPI
	users     UserLookup
	tokens    *TokenService
	passwords *PasswordService
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, users UserLookup, tokens *TokenService, passwords *PasswordService, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*user.User, error) {
	if err := validateRegister(dto); err != nil {
		return nil, err
	}

	username, ok := validation.NormalizeUsername(dto.Username)
	if !ok {
		return nil, internal.NewValidationError("Security validation failed", internal.ErrCodeSecurityCheck).
			WithReasons("Username contains invalid characters or security threats")
	}
	email, ok := validation.NormalizeEmail(dto.Email)
	if !ok {
		return nil, internal.NewValidationError("Security validation failed", internal.ErrCodeSecurityCheck).
			WithReasons("Email format is invalid or contains security threats")
	}
	var fullName *string
	if dto.FullName != nil {
		sanitized, ok := validation.SanitizeText(strings.TrimSpace(*dto.FullName))
		if !ok {
			return nil, internal.NewValidationError("Security validation failed", internal.ErrCodeSecurityCheck).
				WithReasons("Full name contains security threats")
		}
		fullName = &sanitized
	}

	taken, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, internal.NewInternalError("Registration failed", err).WithReasons("Database error")
	}
	if taken {
		return nil, internal.NewConflictError("Registration failed", internal.ErrCodeDuplicate).WithReasons("Username sudah digunakan")
	}
	taken, err = s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, internal.NewInternalError("Registration failed", err).WithReasons("Database error")
	}
	if taken {
		return nil, internal.NewConflictError("Registration failed", internal.ErrCodeDuplicate).WithReasons("Email sudah digunakan")
	}

	hash, err := s.passwords.Hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("Registration failed", err).WithReasons("Failed to process password")
	}

	row := &userDatamodel.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, internal.NewConflictError("Registration failed", internal.ErrCodeDuplicate).WithReasons("Username atau email sudah digunakan")
		}
		return nil, internal.NewInternalError("Registration failed", err).WithReasons("Failed to create user")
	}

	s.logger.Info("user registered", "user_id", row.ID, "username", row.Username)
	return user.FromDataModel(row), nil
}

func validateRegister(dto RegisterDTO) *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", strings.TrimSpace(dto.Username)).
		Length(3, 50, "Username harus antara 3-50 karakter")
	v.Field("email", strings.TrimSpace(dto.Email)).
		Email("Format email tidak valid")
	v.Field("password", dto.Password).
		Length(6, 0, "Password minimal 6 karakter")
	if dto.FullName != nil {
		v.Field("full_name", strings.TrimSpace(*dto.FullName)).
			Length(2, 100, "Nama lengkap harus antara 2-100 karakter")
	}
	return v.Validate()
}

// Login checks credentials and issues a token. Unknown accounts and wrong
// passwords produce the same response.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	v := validation.NewValidator()
	v.Field("username_or_email", dto.UsernameOrEmail).Required("Username/email tidak boleh kosong")
	v.Field("password", dto.Password).Required("Password tidak boleh kosong")
	if err := v.Validate(); err != nil {
		return nil, err
	}

	identifier := strings.ToLower(strings.TrimSpace(dto.UsernameOrEmail))
	row, err := s.repo.FindByLogin(ctx, identifier)
	if err != nil {
		return nil, internal.NewInternalError("Login failed", err).WithReasons("Database error")
	}
	if row == nil {
		return nil, internal.NewUnauthorizedError("Login failed", internal.ErrCodeInvalidCredentials).WithReasons(msgBadCredentials)
	}

	matched, err := s.passwords.Verify(dto.Password, row.PasswordHash)
	if err != nil {
		return nil, internal.NewInternalError("Login failed", err).WithReasons("Password verification failed")
	}
	if !matched {
		return nil, internal.NewUnauthorizedError("Login failed", internal.ErrCodeInvalidCredentials).WithReasons(msgBadCredentials)
	}
	if !row.IsActive {
		return nil, internal.NewForbiddenError("Login failed", internal.ErrCodeUserInactive).WithReasons("Account is not active")
	}

	token, err := s.tokens.Issue(row.ID, row.Username, row.Email)
	if err != nil {
		return nil, internal.NewInternalError("Login failed", err).WithReasons("Token generation failed")
	}

	return &LoginResponse{
		User:      user.FromDataModel(row),
		Token:     token,
		ExpiresIn: s.tokens.ExpiresIn(),
	}, nil
}

// Authenticate resolves a bearer token to an active account.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	userID, err := s.tokens.ExtractUserID(token)
	if err != nil {
		s.logger.Debug("token rejected", "reason", err)
		return nil, internal.NewUnauthorizedError("Unauthorized", internal.ErrCodeInvalidToken).WithReasons("Invalid or expired token")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, internal.NewUnauthorizedError("Unauthorized", internal.ErrCodeUserNotFound).WithReasons("User not found")
		}
		return nil, internal.NewInternalError("Authentication error", err).WithReasons("Database error")
	}
	if !u.IsActiveUser() {
		return nil, internal.NewForbiddenError("Forbidden", internal.ErrCodeUserInactive).WithReasons("Account is not active")
	}
	return u, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sendloop/sendloop/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordMismatch   = errors.New("auth: password confirmation does not match")
	ErrPasswordTooShort   = errors.New("auth: password too short")
	ErrAccountDisabled    = errors.New("auth: account disabled")
)

// Service provides session and credential operations.
type Service struct {
	users      domain.UserRepository
	jwtSecret  string
	sessionTTL time.Duration
}

func NewService(users domain.UserRepository, jwtSecret string, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
	}
}

// Login validates email/password and returns a session token plus the user.
// Deactivated accounts cannot log in.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !user.IsActive {
		return "", nil, fmt.Errorf("auth.Login: %w", ErrAccountDisabled)
	}

	token, err := IssueSessionToken(s.jwtSecret, user.CompanyID, user.ID, user.Role, s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("auth.Login: %w", err)
	}

	now := time.Now()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("auth: failed to record last login")
	}
	user.LastLoginAt = &now

	return token, user, nil
}

// ChangePassword verifies the current password and replaces it. The
// confirmation and minimum-length checks run before touching the store.
func (s *Service) ChangePassword(ctx context.Context, companyID, userID uuid.UUID, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return fmt.Errorf("auth.ChangePassword: %w", ErrPasswordMismatch)
	}

	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("auth.ChangePassword: %w", ErrPasswordTooShort)
	}

	user, err := s.users.GetByID(ctx, companyID, userID)
	if err != nil {
		return fmt.Errorf("auth.ChangePassword: %w", err)
	}

	if !VerifyPassword(current, user.PasswordHash) {
		return fmt.Errorf("auth.ChangePassword: %w", ErrInvalidCredentials)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth.ChangePassword: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("auth.ChangePassword: %w", err)
	}

	return nil
}

// SessionTTL exposes the configured session lifetime for cookie expiry.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

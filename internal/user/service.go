package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ltcare/familyhub/pkg/apperror"
	"github.com/ltcare/familyhub/pkg/sanitize"
)

// Common errors
var (
	ErrUserNotFound       = apperror.New(apperror.NotFound, "user not found")
	ErrUserExists         = apperror.New(apperror.Conflict, "username or email already in use")
	ErrInvalidUsername    = apperror.New(apperror.InvalidInput, "username must be 3-50 characters")
	ErrInvalidEmail       = apperror.New(apperror.InvalidInput, "invalid email address")
	ErrWeakPassword       = apperror.New(apperror.InvalidInput, "password must be at least 6 characters")
	ErrInvalidCredentials = apperror.New(apperror.InvalidInput, "invalid username or password")
	ErrAccountDisabled    = apperror.New(apperror.Forbidden, "account is disabled")
)

const minPasswordLength = 6

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Issue(userID int64, username string) (string, time.Time, error)
}

// Service handles account business logic
type Service struct {
	repo     *Repository
	tokens   TokenIssuer
	logger   *zap.Logger
	hashCost int
}

// NewService creates a new user service with its dependencies injected
func NewService(repo *Repository, tokens TokenIssuer, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates an account and signs the user in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if n := len([]rune(username)); n < 3 || n > 50 || sanitize.Text(username) != username {
		return nil, ErrInvalidUsername
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, username, email, string(hash), sanitize.OptionalText(req.FullName))
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(user)
}

// Login verifies credentials and returns a fresh token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.issue(user)
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// IsActive reports whether the user exists and may use the API
func (s *Service) IsActive(ctx context.Context, id int64) (bool, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsActive, nil
}

func (s *Service) issue(user *User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      user.ToResponse(),
	}, nil
}

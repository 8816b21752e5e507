package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"tasktrack/internal/auth"
	"tasktrack/internal/models"
)

// AuthService registers users and resolves bearer tokens to users.
type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	logger *slog.Logger
}

// NewAuthService wires the account store and the token issuer.
func NewAuthService(users UserStore, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Register creates an account and returns an access token for it.
func (s *AuthService) Register(ctx context.Context, email, password string, fullName *string) (models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.User{}, "", models.NewValidationError("email is required")
	}
	if password == "" {
		return models.User{}, "", models.NewValidationError("password is required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return models.User{}, "", models.NewValidationError("password must be at most %d bytes", auth.MaxPasswordBytes)
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, "", &models.ConflictError{Message: "email already registered"}
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, "", err
	}
	if fullName != nil {
		trimmed := strings.TrimSpace(*fullName)
		fullName = &trimmed
	}

	user, err := s.users.CreateUser(ctx, email, fullName, hash)
	if err != nil {
		return models.User{}, "", err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return user, token, nil
}

// Login checks credentials and returns a fresh access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, "", models.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return models.User{}, "", models.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Authenticate resolves a bearer token to an existing user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, models.ErrNotAuthenticated
	}
	subject, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", slog.String("error", err.Error()))
		return models.User{}, models.ErrAuthentication
	}
	user, err := s.users.GetUser(ctx, subject)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, models.ErrAuthentication
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

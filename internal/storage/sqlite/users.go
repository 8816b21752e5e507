package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tasktrack/internal/models"
)

const userColumns = `id, email, full_name, password_hash, created_at`

// CreateUser stores a new account. A reused email yields a ConflictError.
func (s *Store) CreateUser(ctx context.Context, email string, fullName *string, passwordHash string) (models.User, error) {
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO users(id, email, full_name, password_hash, created_at) VALUES(?, ?, ?, ?, ?)`,
		u.ID, u.Email, nullString(u.FullName), u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return models.User{}, &models.ConflictError{Message: "email already registered"}
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail fetches a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u        models.User
		fullName sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &fullName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %w", models.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	if fullName.Valid {
		u.FullName = &fullName.String
	}
	return u, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

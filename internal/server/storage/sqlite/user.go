package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/electrosoft/authd/internal/models"
	"github.com/electrosoft/authd/internal/server/storage"
)

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_first_login, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		boolToInt(user.IsFirstLogin),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Проверяем на duplicate email. UNIQUE constraint в схеме гарантирует
		// единственность даже при конкурентных insert
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, is_first_login, created_at, updated_at
		FROM users
		WHERE email = ?
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, is_first_login, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, userID))
}

// UpdatePassword overwrites the password hash and optionally clears is_first_login
func (s *Storage) UpdatePassword(ctx context.Context, userID, passwordHash string, clearFirstLogin bool) error {
	var result sql.Result
	var err error

	if clearFirstLogin {
		query := `UPDATE users SET password_hash = ?, is_first_login = 0, updated_at = ? WHERE id = ?`
		result, err = s.db.ExecContext(ctx, query, passwordHash, time.Now(), userID)
	} else {
		query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
		result, err = s.db.ExecContext(ctx, query, passwordHash, time.Now(), userID)
	}

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// scanUser читает одну строку users в модель
func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var isFirstLogin int

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&isFirstLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.IsFirstLogin = isFirstLogin != 0

	return user, nil
}

// boolToInt конвертирует bool в int для SQLite
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

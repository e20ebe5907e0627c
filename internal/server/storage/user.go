package storage

import (
	"context"

	"github.com/electrosoft/authd/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage.
	// Returns ErrUserAlreadyExists if the email is already registered.
	// Uniqueness is enforced by the storage itself, so two concurrent
	// creates with the same email cannot both succeed.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email (exact match, case-sensitive)
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdatePassword overwrites the user's password hash.
	// When clearFirstLogin is true, is_first_login is also set to false
	// (update-password flow); the reset flow leaves the flag untouched.
	// Returns ErrUserNotFound if user doesn't exist.
	UpdatePassword(ctx context.Context, userID, passwordHash string, clearFirstLogin bool) error
}

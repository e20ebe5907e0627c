// Package storage определяет интерфейс локального хранилища сессии клиента
package storage

import (
	"context"
)

// AuthStorage defines interface for storing the client session.
// Tokens are stored as-is: access и refresh токены и так
// подписаны сервером, локальное хранилище их не шифрует.
type AuthStorage interface {
	// SaveSession stores session data, overwriting any previous session
	SaveSession(ctx context.Context, session *Session) error

	// GetSession retrieves the stored session.
	// Returns ErrSessionNotFound if no session exists
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error
}

// Session represents the locally persisted login state
type Session struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	IsFirstLogin bool   `json:"is_first_login"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// Unix время истечения access token, берется из exp claim
	AccessExpiresAt int64 `json:"access_expires_at"`
}

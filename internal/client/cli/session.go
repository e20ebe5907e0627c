package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/electrosoft/authd/internal/client/storage"
	"github.com/electrosoft/authd/pkg/api"
)

// errNotLoggedIn возвращается командами, требующими сессии
var errNotLoggedIn = errors.New("not logged in, run 'authctl login' first")

// accessClaims повторяет форму claims access токена сервера
type accessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// sessionFromLogin собирает локальную сессию из ответа login
func sessionFromLogin(resp *api.LoginResponse) *storage.Session {
	claims := parseClaims(resp.TokenData.AccessToken)
	return &storage.Session{
		UserID:          claims.UserID,
		Email:           resp.UserData.Email,
		FirstName:       resp.UserData.FirstName,
		LastName:        resp.UserData.LastName,
		Role:            resp.Role,
		IsFirstLogin:    resp.IsFirstLogin,
		AccessToken:     resp.TokenData.AccessToken,
		RefreshToken:    resp.TokenData.RefreshToken,
		AccessExpiresAt: expiryOf(claims),
	}
}

// parseClaims достает claims без проверки подписи.
// Клиент не знает серверного секрета, подпись проверит сервер;
// claims нужны только для user_id и чтобы не ходить
// с заведомо истекшим токеном.
func parseClaims(tokenString string) *accessClaims {
	claims := &accessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return &accessClaims{}
	}
	return claims
}

func expiryOf(claims *accessClaims) int64 {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Unix()
}

// currentSession возвращает сохраненную сессию, обновляя токены
// через refresh-login если access token истек
func (c *Cli) currentSession(ctx context.Context) (*storage.Session, error) {
	session, err := c.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, errNotLoggedIn
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	// Запас в 30 секунд против гонки с exp на сервере
	if time.Now().Unix() < session.AccessExpiresAt-30 {
		return session, nil
	}

	refreshResp, err := c.apiClient.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("session expired and refresh failed: %w (run 'authctl login')", err)
	}

	session.AccessToken = refreshResp.TokenData.AccessToken
	session.RefreshToken = refreshResp.TokenData.RefreshToken
	session.AccessExpiresAt = expiryOf(parseClaims(refreshResp.TokenData.AccessToken))

	if err := c.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save refreshed session: %w", err)
	}

	return session, nil
}

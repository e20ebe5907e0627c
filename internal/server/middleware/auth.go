package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/electrosoft/authd/internal/server/handlers"
	"github.com/electrosoft/authd/internal/server/storage"
	"github.com/electrosoft/authd/internal/server/token"
)

// AuthMiddleware создает middleware для проверки access token.
// Проверяет формат Bearer, подпись и exp токена, затем резолвит
// пользователя из storage по user_id - токен живого формата на удаленного
// пользователя не проходит. Любая из проверок отвечает одинаковым generic
// 401, не раскрывая, что именно не так (защита от token-oracle probing).
func AuthMiddleware(logger *slog.Logger, tokens *token.Service, userStorage storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("missing Authorization header")
				handlers.SendError(logger, w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("invalid Authorization header format")
				handlers.SendError(logger, w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			tokenString := parts[1]

			// Expired и invalid здесь не различаются
			claims, err := tokens.VerifyAccess(tokenString)
			if err != nil {
				logger.Warn("invalid access token", slog.Any("error", err))
				handlers.SendError(logger, w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			user, err := userStorage.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					logger.Warn("token subject no longer exists", slog.String("user_id", claims.UserID))
					handlers.SendError(logger, w, "Invalid or expired token", http.StatusUnauthorized)
					return
				}
				logger.Error("failed to resolve token subject", slog.Any("error", err))
				handlers.SendError(logger, w, "internal server error", http.StatusInternalServerError)
				return
			}

			// Кладем пользователя в контекст для handlers
			ctx := context.WithValue(r.Context(), handlers.UserKey, user)

			logger.Debug("user authenticated",
				slog.String("user_id", user.ID),
				slog.String("email", user.Email))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

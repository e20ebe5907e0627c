package handlers

import (
	"context"

	"github.com/electrosoft/authd/internal/models"
)

// contextKey - отдельный тип ключа, чтобы не пересекаться с чужими значениями в контексте
type contextKey string

// UserKey - ключ, под которым auth middleware кладет текущего пользователя
const UserKey contextKey = "current_user"

// CurrentUser достает аутентифицированного пользователя из контекста запроса.
// Возвращает false, если запрос не проходил через auth middleware.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/electrosoft/authd/internal/client/storage"
)

// runLogout удаляет локальную сессию.
// Сервер токены не хранит, поэтому logout чисто клиентская операция:
// выданные токены остаются валидными до истечения exp.
func (c *Cli) runLogout(ctx context.Context) error {
	err := c.sessions.DeleteSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("Not logged in")
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.io.Println("Logged out")
	return nil
}

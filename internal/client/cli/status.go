package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/electrosoft/authd/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	session, err := c.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("Status: not logged in")
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	c.io.Printf("Status:     logged in\n")
	c.io.Printf("User:       %s %s <%s>\n", session.FirstName, session.LastName, session.Email)
	c.io.Printf("Role:       %s\n", session.Role)

	expiresAt := time.Unix(session.AccessExpiresAt, 0)
	if time.Now().After(expiresAt) {
		c.io.Printf("Access:     expired at %s (will refresh on next command)\n", expiresAt.Format(time.RFC3339))
	} else {
		c.io.Printf("Access:     valid until %s\n", expiresAt.Format(time.RFC3339))
	}
	return nil
}

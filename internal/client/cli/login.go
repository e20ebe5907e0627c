package cli

import (
	"context"
	"fmt"

	"github.com/electrosoft/authd/pkg/api"
)

func (c *Cli) runLogin(ctx context.Context) error {
	userEmail, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	resp, err := c.apiClient.Login(ctx, api.LoginRequest{Email: userEmail, Password: password})
	if err != nil {
		return err
	}

	session := sessionFromLogin(resp)
	if err := c.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.io.Printf("Logged in as %s %s <%s>\n", session.FirstName, session.LastName, session.Email)
	if session.IsFirstLogin {
		c.io.Println("First login: consider changing your password with 'authctl passwd'")
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/electrosoft/authd/internal/validation"
)

func (c *Cli) runForgotPassword(ctx context.Context) error {
	userEmail, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail(userEmail); err != nil {
		return err
	}

	message, err := c.apiClient.ForgotPassword(ctx, userEmail)
	if err != nil {
		return err
	}

	c.io.Println(message)
	return nil
}

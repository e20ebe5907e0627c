package cli

import (
	"context"
	"fmt"

	"github.com/electrosoft/authd/internal/validation"
)

// runResetPassword завершает сброс пароля токеном из письма.
// Токен передается аргументом команды: это хвост ссылки {frontend}/change/{token}
func (c *Cli) runResetPassword(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: authctl reset-password <token>")
	}
	resetToken := args[0]

	newPassword, err := c.io.ReadPassword("New password: ")
	if err != nil {
		return fmt.Errorf("failed to read new password: %w", err)
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	confirm, err := c.io.ReadPassword("Confirm new password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if newPassword != confirm {
		return fmt.Errorf("passwords do not match")
	}

	message, err := c.apiClient.ResetPassword(ctx, resetToken, newPassword)
	if err != nil {
		return err
	}

	c.io.Println(message)
	return nil
}

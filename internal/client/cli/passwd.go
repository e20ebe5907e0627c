package cli

import (
	"context"
	"fmt"

	"github.com/electrosoft/authd/internal/validation"
	"github.com/electrosoft/authd/pkg/api"
)

func (c *Cli) runUpdatePassword(ctx context.Context) error {
	session, err := c.currentSession(ctx)
	if err != nil {
		return err
	}

	oldPassword, err := c.io.ReadPassword("Current password: ")
	if err != nil {
		return fmt.Errorf("failed to read current password: %w", err)
	}

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

	message, err := c.apiClient.UpdatePassword(ctx, session.AccessToken, api.UpdatePasswordRequest{
		OldPassword:     oldPassword,
		NewPassword:     newPassword,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}

	// Пароль сменился, is_first_login на сервере снят
	session.IsFirstLogin = false
	if err := c.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.io.Println(message)
	return nil
}

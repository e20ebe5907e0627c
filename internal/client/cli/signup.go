package cli

import (
	"context"
	"fmt"

	"github.com/electrosoft/authd/internal/validation"
	"github.com/electrosoft/authd/pkg/api"
)

func (c *Cli) runSignup(ctx context.Context) error {
	firstName, err := c.io.ReadInput("First name: ")
	if err != nil {
		return fmt.Errorf("failed to read first name: %w", err)
	}
	if err := validation.ValidateName("first name", firstName); err != nil {
		return err
	}

	lastName, err := c.io.ReadInput("Last name: ")
	if err != nil {
		return fmt.Errorf("failed to read last name: %w", err)
	}
	if err := validation.ValidateName("last name", lastName); err != nil {
		return err
	}

	userEmail, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail(userEmail); err != nil {
		return err
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	message, err := c.apiClient.Signup(ctx, api.SignupRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     userEmail,
		Password:  password,
	})
	if err != nil {
		return err
	}

	c.io.Println(message)
	return nil
}

// Package cli реализует команды консольного клиента auth сервера
package cli

import (
	"context"
	"fmt"

	"github.com/electrosoft/authd/internal/client/api"
	"github.com/electrosoft/authd/internal/client/iocli"
	"github.com/electrosoft/authd/internal/client/storage"
)

type Cli struct {
	apiClient *api.Client
	sessions  storage.AuthStorage
	io        iocli.IO
}

func New(apiClient *api.Client, sessions storage.AuthStorage, io iocli.IO) *Cli {
	return &Cli{
		apiClient: apiClient,
		sessions:  sessions,
		io:        io,
	}
}

// Run выполняет команду и возвращает ее ошибку
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return c.runSignup(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "greet":
		return c.runGreet(ctx)
	case "passwd":
		return c.runUpdatePassword(ctx)
	case "forgot-password":
		return c.runForgotPassword(ctx)
	case "reset-password":
		return c.runResetPassword(ctx, args)
	default:
		c.PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (c *Cli) PrintUsage() {
	c.io.Println("ElectroSoft Auth Client")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  authctl [OPTIONS] COMMAND")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  -version            Show version information")
	c.io.Println("  -server URL         Server URL (default: http://localhost:8080)")
	c.io.Println("  -db PATH            Path to local session database (default: authctl.db)")
	c.io.Println()
	c.io.Println("Commands:")
	c.io.Println("  signup                  Register new user")
	c.io.Println("  login                   Login to server")
	c.io.Println("  logout                  Drop local session")
	c.io.Println("  status                  Show authentication status")
	c.io.Println("  greet                   Call the authenticated test endpoint")
	c.io.Println("  passwd                  Change password of the logged in user")
	c.io.Println("  forgot-password         Request a password reset email")
	c.io.Println("  reset-password <token>  Set a new password using a reset token")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  authctl signup")
	c.io.Println("  authctl login")
	c.io.Println("  authctl -server https://auth.example.com status")
	c.io.Println("  authctl reset-password eyJhbGciOi...")
}

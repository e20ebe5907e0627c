// Package server initializes and runs the auth HTTP server.
// It wires config, storage, token service and email delivery into the
// route table and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/electrosoft/authd/internal/server/config"
	"github.com/electrosoft/authd/internal/server/email"
	"github.com/electrosoft/authd/internal/server/handlers"
	"github.com/electrosoft/authd/internal/server/middleware"
	"github.com/electrosoft/authd/internal/server/storage"
	"github.com/electrosoft/authd/internal/server/storage/sqlite"
	"github.com/electrosoft/authd/internal/server/token"
)

// App собирает зависимости сервера
type App struct {
	config  *config.Config
	logger  *slog.Logger
	storage *sqlite.Storage
	tokens  *token.Service
	sender  email.Sender
}

// NewApp создает приложение из конфигурации
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	tokens := token.NewService(token.Config{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		ResetSecret:   []byte(cfg.ResetSecret),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		ResetTTL:      cfg.ResetTTL,
	})

	sender := email.NewMailjetClient(cfg.MailjetAPIPublic, cfg.MailjetAPIPrivate, cfg.MailFromEmail, cfg.MailFromName)

	return &App{
		config:  cfg,
		logger:  logger,
		storage: store,
		tokens:  tokens,
		sender:  sender,
	}, nil
}

// Routes собирает таблицу маршрутов со всеми middleware
func Routes(logger *slog.Logger, userStorage storage.UserStorage, tokens *token.Service, sender email.Sender, frontendURL string) http.Handler {
	authHandler := handlers.NewAuthHandler(logger, userStorage, tokens, sender, frontendURL)
	healthHandler := handlers.NewHealthHandler(logger)

	authGuard := middleware.AuthMiddleware(logger, tokens, userStorage)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handlers.RootHandler(logger))
	mux.HandleFunc("GET /api/auth/health", healthHandler.Health)

	// Публичные endpoints
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh-login", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)

	// Защищенные endpoints
	mux.Handle("POST /api/auth/update-password", authGuard(http.HandlerFunc(authHandler.UpdatePassword)))
	mux.Handle("GET /api/auth/greet", authGuard(http.HandlerFunc(authHandler.Greet)))

	// Внешние middleware применяются ко всем маршрутам
	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger)(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return handler
}

// Run запускает HTTP сервер и блокируется до SIGINT/SIGTERM или ошибки
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              app.config.Address,
		Handler:           Routes(app.logger, app.storage, app.tokens, app.sender, app.config.FrontendURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.String("address", app.config.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	if err := app.storage.Close(); err != nil {
		return fmt.Errorf("storage close error: %w", err)
	}

	return nil
}

// Package config handles configuration for the server component.
// Values are resolved as defaults, then environment variables, then
// command-line flags. The three JWT secrets are required and must differ:
// the process refuses to start without them.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"time"
)

// Environment variable names. JWT_* и MJ_* имена совпадают с историческими
// именами деплоя, менять их нельзя без миграции окружений.
const (
	EnvAddress            = "ADDRESS"
	EnvDatabasePath       = "DATABASE_PATH"
	EnvJWTSecret          = "JWT_SECRET"
	EnvJWTRefreshSecret   = "JWT_REFRESH_SECRET"
	EnvResetSecret        = "RESET_PASSWORD_SECRET"
	EnvAccessExpireMin    = "ACCESS_EXPIRE_MINUTES"
	EnvRefreshExpireDays  = "REFRESH_EXPIRE_DAYS"
	EnvResetExpireMinutes = "RESET_PASSWORD_EXPIRE_MINUTES"
	EnvFrontendURL        = "FRONTEND_URL"
	EnvMailjetPublic      = "MJ_APIKEY_PUBLIC"
	EnvMailjetPrivate     = "MJ_APIKEY_PRIVATE"
	EnvMailFromEmail      = "MAIL_FROM_EMAIL"
	EnvMailFromName       = "MAIL_FROM_NAME"
)

// Config holds runtime settings for the auth server.
//
// Fields:
//   - Address: bind address for the HTTP endpoint.
//   - DatabasePath: path to the SQLite database file.
//   - AccessSecret / RefreshSecret / ResetSecret: HMAC secrets, one per token kind.
//   - AccessTTL / RefreshTTL / ResetTTL: token lifetimes.
//   - FrontendURL: base URL for reset links (<FrontendURL>/change/<token>).
//   - MailjetAPIPublic / MailjetAPIPrivate: Mailjet credentials.
//   - MailFromEmail / MailFromName: sender identity for reset emails.
type Config struct {
	Address           string
	DatabasePath      string
	AccessSecret      string
	RefreshSecret     string
	ResetSecret       string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	ResetTTL          time.Duration
	FrontendURL       string
	MailjetAPIPublic  string
	MailjetAPIPrivate string
	MailFromEmail     string
	MailFromName      string
}

// LoadDefaults populates Config with development defaults.
// Секреты умышленно не имеют дефолтов.
func (c *Config) LoadDefaults() {
	c.Address = ":8080"
	c.DatabasePath = "./app.db"
	// Наблюдаемый в проде 1-минутный access TTL был артефактом тестирования,
	// не воспроизводим его как дефолт
	c.AccessTTL = 15 * time.Minute
	c.RefreshTTL = 30 * 24 * time.Hour
	c.ResetTTL = 30 * time.Minute
	c.FrontendURL = "http://localhost:5173"
	c.MailFromName = "ElectroSoft"
}

// Load builds a Config by applying defaults, then environment variables,
// then command-line flags, and validates the result.
// args обычно os.Args[1:], getenv обычно os.Getenv (параметры ради тестов).
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if err := cfg.applyFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvAddress); v != "" {
		c.Address = v
	}
	if v := getenv(EnvDatabasePath); v != "" {
		c.DatabasePath = v
	}
	if v := getenv(EnvJWTSecret); v != "" {
		c.AccessSecret = v
	}
	if v := getenv(EnvJWTRefreshSecret); v != "" {
		c.RefreshSecret = v
	}
	if v := getenv(EnvResetSecret); v != "" {
		c.ResetSecret = v
	}
	if v := getenv(EnvAccessExpireMin); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAccessExpireMin, err)
		}
		c.AccessTTL = time.Duration(minutes) * time.Minute
	}
	if v := getenv(EnvRefreshExpireDays); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRefreshExpireDays, err)
		}
		c.RefreshTTL = time.Duration(days) * 24 * time.Hour
	}
	if v := getenv(EnvResetExpireMinutes); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvResetExpireMinutes, err)
		}
		c.ResetTTL = time.Duration(minutes) * time.Minute
	}
	if v := getenv(EnvFrontendURL); v != "" {
		c.FrontendURL = v
	}
	if v := getenv(EnvMailjetPublic); v != "" {
		c.MailjetAPIPublic = v
	}
	if v := getenv(EnvMailjetPrivate); v != "" {
		c.MailjetAPIPrivate = v
	}
	if v := getenv(EnvMailFromEmail); v != "" {
		c.MailFromEmail = v
	}
	if v := getenv(EnvMailFromName); v != "" {
		c.MailFromName = v
	}
	return nil
}

// applyFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   SQLite database path
//	-t int      access token validity, minutes
//	-r int      refresh token validity, days
//	-f string   frontend base URL for reset links
func (c *Config) applyFlags(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&c.Address, "a", c.Address, "address and port to run server")
	fs.StringVar(&c.DatabasePath, "d", c.DatabasePath, "SQLite database path")
	fs.StringVar(&c.FrontendURL, "f", c.FrontendURL, "frontend base URL for reset links")

	accessMinutes := fs.Int("t", int(c.AccessTTL.Minutes()), "access token validity (in minutes)")
	refreshDays := fs.Int("r", int(c.RefreshTTL.Hours()/24), "refresh token validity (in days)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	c.AccessTTL = time.Duration(*accessMinutes) * time.Minute
	c.RefreshTTL = time.Duration(*refreshDays) * 24 * time.Hour

	return nil
}

// Validate проверяет инварианты конфигурации
func (c *Config) Validate() error {
	if c.AccessSecret == "" {
		return fmt.Errorf("%s is required", EnvJWTSecret)
	}
	if c.RefreshSecret == "" {
		return fmt.Errorf("%s is required", EnvJWTRefreshSecret)
	}
	if c.ResetSecret == "" {
		return fmt.Errorf("%s is required", EnvResetSecret)
	}

	// Общий секрет между видами сводит на нет разделение blast radius
	if c.AccessSecret == c.RefreshSecret || c.AccessSecret == c.ResetSecret || c.RefreshSecret == c.ResetSecret {
		return fmt.Errorf("JWT secrets must be distinct per token kind")
	}

	if c.AccessTTL <= 0 {
		return fmt.Errorf("access token TTL must be positive")
	}
	if c.RefreshTTL <= 0 {
		return fmt.Errorf("refresh token TTL must be positive")
	}
	if c.ResetTTL <= 0 {
		return fmt.Errorf("reset token TTL must be positive")
	}

	return nil
}

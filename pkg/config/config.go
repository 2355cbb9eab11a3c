package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds runtime configuration for the quest bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot"`
	Games     GamesConfig     `mapstructure:"games"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// BotConfig configures the Telegram transport and the privileged identities.
type BotConfig struct {
	// TokenFile is the fixed path of the single-line secret token. Absence
	// is startup-fatal.
	TokenFile string        `mapstructure:"token_file" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// AdminIDs are the identities routed to the admin branch; everyone else
	// gets the user branch. This is the entire authorization model.
	AdminIDs []int64 `mapstructure:"admin_ids" validate:"required,min=1"`
}

// GamesConfig configures the quest store.
type GamesConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// ServerConfig configures the metrics/health HTTP listener.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig configures the slog stack.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RedisConfig configures the optional conversation stage backend. An empty
// Addr selects the in-memory backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// RateLimitConfig configures the per-user update limiter.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// IsAdmin reports whether the sender identity belongs to the admin branch.
func (c *Config) IsAdmin(id int64) bool {
	for _, adminID := range c.Bot.AdminIDs {
		if adminID == id {
			return true
		}
	}
	return false
}

// Token reads the bot token from the configured file.
func (c *Config) Token() (string, error) {
	raw, err := os.ReadFile(c.Bot.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file %s: %w", c.Bot.TokenFile, err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", c.Bot.TokenFile)
	}

	return token, nil
}

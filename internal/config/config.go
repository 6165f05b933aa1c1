package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"filerelay/internal/pkg/validator"
)

const (
	defaultSecretKey        = "change-me-session-secret"
	defaultPublicURL        = "http://localhost:5000"
	defaultPort             = "5000"
	defaultChannelID        = "@cdntelegraph"
	defaultBotUsername      = "IP_AdressBot"
	defaultMaxFileSizeMB    = "4000"
	defaultRateLimit        = "3"
	defaultRateWindow       = "60s"
	defaultSweepInterval    = "1h"
	defaultSweepHorizon     = "120s"
	defaultGatewayTimeout   = "30s"
	defaultTelegramAPIURL   = "https://api.telegram.org"
	defaultSessionTTL       = "24h"
	defaultCookieSecure     = "false"
	defaultProfileCacheSize = "256"
	defaultProfileCacheTTL  = "10m"
	defaultLoginAttempts    = "10"
	defaultShutdownTimeout  = "10s"
	defaultAppEnv           = "dev"
	defaultLogLevel         = "info"
)

var ErrMissingToken = errors.New("BOT_TOKEN is not set")

type Config struct {
	AppEnv   string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`

	BotToken       string        `validate:"required"`
	BotUsername    string        `validate:"required"`
	ChannelID      string        `validate:"required"`
	TelegramAPIURL string        `validate:"required,url"`
	GatewayTimeout time.Duration `validate:"gt=0"`
	WebhookSecret  string        `validate:"omitempty,max=256"`

	PublicURL string `validate:"required,url"`
	Port      string `validate:"required,numeric"`
	AdminIDs  []int64

	MaxFileSizeMB int64         `validate:"gt=0"`
	RateLimit     int           `validate:"gt=0"`
	RateWindow    time.Duration `validate:"gt=0"`
	SweepInterval time.Duration `validate:"gt=0"`
	SweepHorizon  time.Duration `validate:"gt=0"`

	SecretKey    string        `validate:"required"`
	SessionTTL   time.Duration `validate:"gt=0"`
	CookieSecure bool

	LoginAttemptsPerMinute int `validate:"gt=0"`

	ProfileCacheSize int           `validate:"gt=0"`
	ProfileCacheTTL  time.Duration `validate:"gt=0"`

	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// Load reads configuration from the environment. A missing bot token is the
// only condition the process cannot start without.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.AppEnv = strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", getEnv("ENV", defaultAppEnv))))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))

	cfg.BotToken = strings.TrimSpace(getEnv("BOT_TOKEN", os.Getenv("TOKEN")))
	if cfg.BotToken == "" {
		return nil, ErrMissingToken
	}
	cfg.BotUsername = strings.TrimPrefix(strings.TrimSpace(getEnv("BOT_USERNAME", defaultBotUsername)), "@")
	cfg.ChannelID = strings.TrimSpace(getEnv("CHANNEL_ID", defaultChannelID))
	cfg.TelegramAPIURL = strings.TrimRight(strings.TrimSpace(getEnv("TELEGRAM_API_URL", defaultTelegramAPIURL)), "/")
	cfg.WebhookSecret = strings.TrimSpace(os.Getenv("WEBHOOK_SECRET"))
	cfg.PublicURL = publicURL()
	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.SecretKey = strings.TrimSpace(getEnv("SECRET_KEY", defaultSecretKey))
	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)

	var err error
	if cfg.AdminIDs, err = parseIDList("ADMIN_IDS"); err != nil {
		return nil, err
	}
	if cfg.MaxFileSizeMB, err = parseInt64Env("MAX_FILE_SIZE_MB", defaultMaxFileSizeMB); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = parseIntEnv("RATE_LIMIT", defaultRateLimit); err != nil {
		return nil, err
	}
	if cfg.ProfileCacheSize, err = parseIntEnv("PROFILE_CACHE_SIZE", defaultProfileCacheSize); err != nil {
		return nil, err
	}
	if cfg.LoginAttemptsPerMinute, err = parseIntEnv("LOGIN_ATTEMPTS_PER_MINUTE", defaultLoginAttempts); err != nil {
		return nil, err
	}

	durations := []struct {
		name, fallback string
		dst            *time.Duration
	}{
		{"RATE_WINDOW", defaultRateWindow, &cfg.RateWindow},
		{"SWEEP_INTERVAL", defaultSweepInterval, &cfg.SweepInterval},
		{"SWEEP_HORIZON", defaultSweepHorizon, &cfg.SweepHorizon},
		{"GATEWAY_TIMEOUT", defaultGatewayTimeout, &cfg.GatewayTimeout},
		{"SESSION_TTL", defaultSessionTTL, &cfg.SessionTTL},
		{"PROFILE_CACHE_TTL", defaultProfileCacheTTL, &cfg.ProfileCacheTTL},
		{"SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationEnv(d.name, d.fallback); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

func (c *Config) Addr() string { return ":" + c.Port }

func (c *Config) WebhookURL() string { return c.PublicURL + "/webhook" }

func validateConfig(cfg *Config) error {
	if err := validator.Error(validator.Validate(cfg)); err != nil {
		return err
	}
	if cfg.SweepHorizon < cfg.RateWindow {
		return fmt.Errorf("SWEEP_HORIZON (%s) must be >= RATE_WINDOW (%s)", cfg.SweepHorizon, cfg.RateWindow)
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.SecretKey, defaultSecretKey) {
			return fmt.Errorf("in prod/release SECRET_KEY must be set and not default")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}
	return nil
}

// publicURL prefers PUBLIC_URL and falls back to the VERCEL_URL host.
func publicURL() string {
	raw := strings.TrimSpace(getEnv("PUBLIC_URL", os.Getenv("VERCEL_URL")))
	if raw == "" {
		return defaultPublicURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

func parseIDList(name string) ([]int64, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", name, part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

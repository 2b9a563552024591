package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DefaultWebhookURL is the automation endpoint that receives wastage reports.
const DefaultWebhookURL = "https://event-tracker-nt.zeabur.app/webhook/wastage/submit_digital"

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Webhook  WebhookConfig
	Draft    DraftConfig
	Form     FormConfig
	Reminder ReminderConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// WebhookConfig describes where finished reports are posted.
type WebhookConfig struct {
	URL string
	// Timeout of zero leaves the HTTP transport default in place.
	Timeout time.Duration
}

// DraftConfig locates the local draft store.
type DraftConfig struct {
	DBPath string
	Key    string
}

// FormConfig holds form behaviour tunables.
type FormConfig struct {
	StatusRevertDelay time.Duration
}

// ReminderConfig holds scheduler-related settings. An empty schedule disables the reminder.
type ReminderConfig struct {
	CronSchedule string
	Timezone     string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	webhookTimeout, err := getDurationWithDefault("WEBHOOK_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	revertDelay, err := getDurationWithDefault("STATUS_REVERT_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Webhook: WebhookConfig{
			URL:     getenvWithDefault("WEBHOOK_URL", DefaultWebhookURL),
			Timeout: webhookTimeout,
		},
		Draft: DraftConfig{
			DBPath: getenvWithDefault("DRAFT_DB_PATH", "data/wastage.db"),
			Key:    getenvWithDefault("DRAFT_KEY", "wastageFormDraft"),
		},
		Form: FormConfig{
			StatusRevertDelay: revertDelay,
		},
		Reminder: ReminderConfig{
			CronSchedule: lookupWithDefault("REMINDER_CRON_SCHEDULE", "0 17 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Local"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Webhook.URL == "" {
		return errors.New("WEBHOOK_URL must be provided")
	}
	parsed, err := url.Parse(c.Webhook.URL)
	if err != nil {
		return fmt.Errorf("WEBHOOK_URL is invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("WEBHOOK_URL must use http or https, got %q", parsed.Scheme)
	}
	if c.Webhook.Timeout < 0 {
		return errors.New("WEBHOOK_TIMEOUT must not be negative")
	}

	switch {
	case c.Draft.DBPath == "":
		return errors.New("DRAFT_DB_PATH must be provided")
	case c.Draft.Key == "":
		return errors.New("DRAFT_KEY must be provided")
	}

	if c.Form.StatusRevertDelay < 0 {
		return errors.New("STATUS_REVERT_DELAY must not be negative")
	}

	if c.Reminder.CronSchedule != "" {
		if c.Reminder.Timezone == "" {
			return errors.New("TIMEZONE must be provided")
		}
		if _, err := time.LoadLocation(c.Reminder.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE is invalid: %w", err)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// lookupWithDefault treats an explicitly empty variable as a deliberate value.
func lookupWithDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	return d, nil
}

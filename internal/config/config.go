package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// CORSAllowedOrigins lists the overlay/page origins allowed to call the
	// API. "*" allows any origin.
	CORSAllowedOrigins []string
	// Storage configuration
	Storage          string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	SeedDonors       bool

	// Donation flow timings
	PaymentDelay         time.Duration
	AlertDisplayDuration time.Duration
	AlertLingerDuration  time.Duration
	FormIdleTimeout      time.Duration
	SoundEnabled         bool

	// SMTP configuration
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SMTPSender    string
	SMTPRecipient string

	// Telegram relay configuration
	TelegramBotToken string
	TelegramChatID   string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:        getEnvAsBool("DEVELOPMENT", false),
		APIPort:            getEnvAsInt("API_PORT", 6532),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Storage:            getEnv("STORAGE", StorageMemory),
		PostgresUser:       getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:       getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:       getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:         getEnv("POSTGRES_DB", "donatio"),
		SeedDonors:         getEnvAsBool("SEED_DONORS", true),

		PaymentDelay:         getEnvAsDuration("PAYMENT_DELAY", 2*time.Second),
		AlertDisplayDuration: getEnvAsDuration("ALERT_DISPLAY_DURATION", 5*time.Second),
		AlertLingerDuration:  getEnvAsDuration("ALERT_LINGER_DURATION", 300*time.Millisecond),
		FormIdleTimeout:      getEnvAsDuration("FORM_IDLE_TIMEOUT", 30*time.Minute),
		SoundEnabled:         getEnvAsBool("SOUND_ENABLED", true),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPSender:    getEnv("SMTP_SENDER", ""),
		SMTPRecipient: getEnv("SMTP_RECIPIENT", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.APIPort)
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage)
	}

	if c.PaymentDelay < 0 {
		return fmt.Errorf("PAYMENT_DELAY cannot be negative")
	}
	if c.AlertDisplayDuration <= 0 {
		return fmt.Errorf("ALERT_DISPLAY_DURATION must be positive")
	}
	if c.AlertLingerDuration <= 0 {
		return fmt.Errorf("ALERT_LINGER_DURATION must be positive")
	}
	if c.FormIdleTimeout <= 0 {
		return fmt.Errorf("FORM_IDLE_TIMEOUT must be positive")
	}

	if c.EmailEnabled() && (c.SMTPSender == "" || c.SMTPRecipient == "") {
		return fmt.Errorf("SMTP_SENDER and SMTP_RECIPIENT are required when SMTP_HOST is set")
	}

	return nil
}

// EmailEnabled reports whether the e-mail relay is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

// TelegramEnabled reports whether the telegram relay is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(name string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(name)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application settings read from the environment or a
// config file in the working directory.
type Config struct {
	AppPort string
	AppURL  string

	DBDriver    string
	DatabaseDSN string

	JWTSecret            string
	JWTExpiresIn         time.Duration
	VerifyTokenExpiresIn time.Duration
	BcryptCost           int

	RabbitMQURL string

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	MailFromAddress string
	MailFromName    string
}

// New returns a viper instance with defaults applied and environment
// variables bound.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "taskroom.db")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("VERIFY_TOKEN_EXPIRES_IN", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM_ADDRESS", "noreply@taskroom.local")
	v.SetDefault("MAIL_FROM_NAME", "TaskRoom")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	return v
}

// Load reads the optional config file and the environment into a Config.
func Load() (Config, error) {
	return FromViper(New())
}

// FromViper reads v into a Config and checks the required keys.
func FromViper(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		AppPort:              v.GetString("APP_PORT"),
		AppURL:               v.GetString("APP_URL"),
		DBDriver:             v.GetString("DB_DRIVER"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTExpiresIn:         v.GetDuration("JWT_EXPIRES_IN"),
		VerifyTokenExpiresIn: v.GetDuration("VERIFY_TOKEN_EXPIRES_IN"),
		BcryptCost:           v.GetInt("BCRYPT_COST"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		SMTPHost:             v.GetString("SMTP_HOST"),
		SMTPPort:             v.GetInt("SMTP_PORT"),
		SMTPUsername:         v.GetString("SMTP_USERNAME"),
		SMTPPassword:         v.GetString("SMTP_PASSWORD"),
		MailFromAddress:      v.GetString("MAIL_FROM_ADDRESS"),
		MailFromName:         v.GetString("MAIL_FROM_NAME"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.JWTExpiresIn <= 0 || cfg.VerifyTokenExpiresIn <= 0 {
		return Config{}, errors.New("JWT_EXPIRES_IN and VERIFY_TOKEN_EXPIRES_IN must be positive durations")
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	SMTP     SMTPConfig
	App      AppConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type AppConfig struct {
	BaseURL            string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

// Configured reports whether the billing processor credentials are present.
func (s StripeConfig) Configured() bool {
	return s.SecretKey != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "funnelhub"),
			Password: getEnv("DB_PASSWORD", "funnelhub"),
			Name:     getEnv("DB_NAME", "funnelhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@funnelhub.app"),
		},
		App: AppConfig{
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:5173"),
			CheckoutSuccessURL: getEnv("CHECKOUT_SUCCESS_URL", ""),
			CheckoutCancelURL:  getEnv("CHECKOUT_CANCEL_URL", ""),
		},
	}

	if cfg.App.CheckoutSuccessURL == "" {
		cfg.App.CheckoutSuccessURL = cfg.App.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if cfg.App.CheckoutCancelURL == "" {
		cfg.App.CheckoutCancelURL = cfg.App.BaseURL + "/pricing"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Background job intervals
const (
	ReconcileInterval = 1 * time.Hour
)

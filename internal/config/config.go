// Package config loads the process configuration from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	HTTPPort string `envconfig:"PORT" default:"8080"`

	// Empty DATABASE_URL switches to the in-memory store.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	MigrateFile string `envconfig:"MIGRATE_FILE" default:"db/migrations/001_init.sql"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Analytics dashboard credentials. The hash comes from
	// auth.HashPassword; login is disabled when unset.
	AdminUser         string `envconfig:"ADMIN_USER" default:"admin"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// Voice pipeline providers.
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	RealtimeModel string `envconfig:"OPENAI_REALTIME_MODEL" default:"gpt-4o-realtime-preview-2024-12-17"`
	RealtimeVoice string `envconfig:"OPENAI_REALTIME_VOICE" default:"alloy"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL"`

	// Event broker; publishing is disabled when AMQP_URL is unset.
	AmqpURL      string `envconfig:"AMQP_URL"`
	AmqpExchange string `envconfig:"AMQP_EXCHANGE" default:"reservations"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}

func (c Config) IsProduction() bool { return c.Env == "production" }

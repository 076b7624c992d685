package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/safeguard")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Quiz.Policy() != entities.DefaultQuizConfig() {
		t.Errorf("Expected default quiz policy, got %+v", cfg.Quiz.Policy())
	}
	if cfg.Reminders.Schedule != "0 8 * * 1" {
		t.Errorf("Expected weekly reminder schedule, got %q", cfg.Reminders.Schedule)
	}
	if cfg.Telegram.AdvanceDelay != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s advance delay, got %v", cfg.Telegram.AdvanceDelay)
	}
	if cfg.HTTP.JWTSecret != "secret" || cfg.Telegram.Token != "token" {
		t.Errorf("secrets not loaded: %+v", cfg)
	}
	if _, err := cfg.Location(); err != nil {
		t.Errorf("Location: %v", err)
	}
}

func TestLoadMissingSecrets(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"no token", map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s"}},
		{"no database", map[string]string{"TELEGRAM_API_TOKEN": "t", "JWT_SECRET": "s"}},
		{"no jwt secret", map[string]string{"TELEGRAM_API_TOKEN": "t", "DATABASE_URL": "postgres://x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range []string{"TELEGRAM_API_TOKEN", "DATABASE_URL", "JWT_SECRET"} {
				t.Setenv(k, tc.env[k])
			}
			if _, err := load(viper.New()); !errors.Is(err, ErrMissingEnvironmentVariables) {
				t.Errorf("Expected ErrMissingEnvironmentVariables, got %v", err)
			}
		})
	}
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/safeguard")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("QUIZ_PASS_SCORE", "120")

	if _, err := load(viper.New()); !errors.Is(err, entities.ErrInvalidQuizConfig) {
		t.Errorf("Expected ErrInvalidQuizConfig, got %v", err)
	}
}

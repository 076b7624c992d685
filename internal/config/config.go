package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env               string        `mapstructure:"env"`                 // current application environment (local, dev, production)
	LogLevel          string        `mapstructure:"log_level"`           // debug, info, warn, error; empty keeps the environment default
	QuestionsJSONPath string        `mapstructure:"questions_json_path"` // path to the policy question bank
	Organization      string        `mapstructure:"organization"`        // name used in notices
	AdminEmails       []string      `mapstructure:"admin_emails"`        // accounts registered with these emails are admins
	Timezone          string        `mapstructure:"timezone"`            // location of the reminder schedule
	DB                DB            `mapstructure:"database"`
	Telegram          Telegram      `mapstructure:"telegram"`
	HTTP              HTTP          `mapstructure:"http"`
	Quiz              Quiz          `mapstructure:"quiz"`
	Reminders         Reminders     `mapstructure:"reminders"`
	RegistrationTTL   time.Duration `mapstructure:"registration_ttl"` // lifetime of an unfinished bot registration
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int32         `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
	Migrate         bool          `mapstructure:"migrate"`           // apply schema migrations on start
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

type Telegram struct {
	Token        string        `mapstructure:"-"`             // bot API token loaded from environment
	AdminChatIDs []int64       `mapstructure:"admin_chat_ids"` // chats receiving copies of notices
	AdvanceDelay time.Duration `mapstructure:"advance_delay"`  // pause after a correct answer
	Debug        bool          `mapstructure:"debug"`
}

type HTTP struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	JWTSecret      string        `mapstructure:"-"` // loaded from environment
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
}

type Quiz struct {
	QuestionCount int `mapstructure:"question_count"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	PassScore     int `mapstructure:"pass_score"`
}

// Policy returns the quiz policy described by the section.
func (q Quiz) Policy() entities.QuizConfig {
	return entities.QuizConfig{
		QuestionCount: q.QuestionCount,
		MaxAttempts:   q.MaxAttempts,
		PassScore:     q.PassScore,
	}
}

type Reminders struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // standard cron expression
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := ParseLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "")
	v.SetDefault("questions_json_path", "assets/data/questions.json")
	v.SetDefault("organization", "Germiston Baptist Church")
	v.SetDefault("admin_emails", []string{})
	v.SetDefault("timezone", "Africa/Johannesburg")
	v.SetDefault("registration_ttl", "15m")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("database.migrate", true)
	v.SetDefault("telegram.admin_chat_ids", []int64{})
	v.SetDefault("telegram.advance_delay", "1500ms")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("http.enabled", true)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("http.token_ttl", "12h")
	v.SetDefault("quiz.question_count", entities.DefaultQuestionCount)
	v.SetDefault("quiz.max_attempts", entities.DefaultMaxAttempts)
	v.SetDefault("quiz.pass_score", entities.DefaultPassScore)
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 8 * * 1")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.Telegram.Token = v.GetString("telegram_api_token")
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
	}

	cfg.HTTP.JWTSecret = v.GetString("jwt_secret")
	if cfg.HTTP.Enabled && cfg.HTTP.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET", ErrMissingEnvironmentVariables)
	}

	if err := cfg.Quiz.Policy().Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

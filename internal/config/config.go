package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string   `mapstructure:"env" validate:"required"`                 // current application environment (local, dev, production etc)
	TelegramAPIToken string   `mapstructure:"-" validate:"required"`                   // Telegram API token loaded from environment
	OwnerChatID      int64    `mapstructure:"owner_chat_id" validate:"required"`       // the only chat the bot talks to
	DatasetPath      string   `mapstructure:"dataset_path" validate:"required"`        // vocabulary file (.json, .csv or .xlsx)
	DatasetSheet     string   `mapstructure:"dataset_sheet"`                           // xlsx sheet, first one when empty
	Timezone         string   `mapstructure:"timezone"`                                // decides when a new day starts
	Storage          Storage  `mapstructure:"storage"`                                 // preferences storage section
	DB               DB       `mapstructure:"database"`                                // database configuration section
	Quiz             Quiz     `mapstructure:"quiz"`                                    // quiz tuning
	Progress         Progress `mapstructure:"progress"`                                // daily goal defaults
	Reminder         Reminder `mapstructure:"reminder"`                                // default reminder time
	Speech           Speech   `mapstructure:"speech"`                                  // pronunciation command
	Feedback         Feedback `mapstructure:"feedback"`                                // answer sounds
}

// Storage selects where preferences live.
type Storage struct {
	Driver     string `mapstructure:"driver" validate:"oneof=sqlite postgres memory"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                                  // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections" validate:"min=1"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" validate:"min=0"` // maximum lifetime of a single connection
}

type Quiz struct {
	MaxDistractorAttempts int           `mapstructure:"max_distractor_attempts" validate:"min=1"`
	AdvanceDelay          time.Duration `mapstructure:"advance_delay" validate:"min=0"`
}

type Progress struct {
	DefaultDailyGoal int `mapstructure:"default_daily_goal" validate:"min=5,max=100"`
}

type Reminder struct {
	Hour   int `mapstructure:"hour" validate:"min=0,max=23"`
	Minute int `mapstructure:"minute" validate:"min=0,max=59"`
}

type Speech struct {
	Command string `mapstructure:"command"`
	Voice   string `mapstructure:"voice"`
	Rate    int    `mapstructure:"rate" validate:"min=0"`
}

type Feedback struct {
	Player         string `mapstructure:"player"`
	CorrectSound   string `mapstructure:"correct_sound"`
	IncorrectSound string `mapstructure:"incorrect_sound"`
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return entities.ParseLocation(c.Timezone)
}

// Load reads configuration from ./config/config.yaml, a .env file and
// environment variables.
func Load() (*Config, error) {
	// Variables already set in the environment win over .env.
	_ = godotenv.Load()

	return LoadFrom("./config")
}

// LoadFrom reads configuration searching for config.yaml in the given directories.
func LoadFrom(paths ...string) (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("owner_chat_id", 0)
	v.SetDefault("dataset_path", "assets/data/words.json")
	v.SetDefault("dataset_sheet", "")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "data/preferences.db")
	v.SetDefault("database.max_connections", 5)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("quiz.max_distractor_attempts", 100)
	v.SetDefault("quiz.advance_delay", "1500ms")
	v.SetDefault("progress.default_daily_goal", entities.DefaultDailyGoal)
	v.SetDefault("reminder.hour", 20)
	v.SetDefault("reminder.minute", 0)
	v.SetDefault("speech.command", "espeak")
	v.SetDefault("speech.voice", "en")
	v.SetDefault("speech.rate", 150)
	v.SetDefault("feedback.player", "")
	v.SetDefault("feedback.correct_sound", "")
	v.SetDefault("feedback.incorrect_sound", "")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
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
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.Storage.Driver == DriverPostgres && cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &cfg, nil
}

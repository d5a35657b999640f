package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataSource string `envconfig:"DATA_SOURCE" default:"csv" validate:"oneof=csv postgres"`
	DataPath   string `envconfig:"DATA_PATH" default:"./data/day_cleaned.csv" validate:"required_if=DataSource csv"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432" validate:"numeric"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"dashboard"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"dashboard123"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"bikeshare"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable" validate:"oneof=disable require verify-ca verify-full"`

	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8501" validate:"required"`

	MaxConcurrency int `envconfig:"MAX_CONCURRENCY" default:"3" validate:"min=1,max=32"`
	RateLimitMs    int `envconfig:"RATE_LIMIT_MS" default:"500" validate:"min=0"`
	MaxRetries     int `envconfig:"MAX_RETRIES" default:"3" validate:"min=1"`
	RenderWaitMs   int `envconfig:"RENDER_WAIT_MS" default:"1500" validate:"min=0"`

	ExportDir string `envconfig:"EXPORT_DIR" default:"./output" validate:"required"`
	ChromeBin string `envconfig:"CHROME_BIN"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`

	// DotEnvLoaded reports whether Load found a .env file.
	DotEnvLoaded bool `ignored:"true"`
}

// Load reads the .env file, overlays environment variables and validates the
// result. A missing .env file is not an error.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// FromEnv populates a Config from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

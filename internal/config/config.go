package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Supported dataset sources.
const (
	SourceSQLite    = "sqlite"
	SourceFirestore = "firestore"
)

// DefaultConfigFile is read when CONFIG_FILE is unset. A missing file is not an error.
const DefaultConfigFile = "config/config.yml"

// Config holds the application configuration.
type Config struct {
	Port      int             `yaml:"port" validate:"min=1,max=65535"`
	Source    string          `yaml:"source" validate:"oneof=sqlite firestore"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SQLiteConfig locates the grade database produced by provisioning.
type SQLiteConfig struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table" validate:"required"`
}

// FirestoreConfig locates grade documents in Firestore.
type FirestoreConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
	Collection      string `yaml:"collection" validate:"required"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl" validate:"gt=0"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" validate:"gt=0"`
}

// RateLimitConfig bounds requests per client IP in fixed windows.
// A zero Requests disables limiting.
type RateLimitConfig struct {
	Requests      int `yaml:"requests" validate:"min=0"`
	WindowSeconds int `yaml:"window_seconds" validate:"min=1"`
}

// LoggingConfig selects the slog handler and optional rotating log file.
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=text json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=1"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"min=0"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port:   8080,
		Source: SourceSQLite,
		SQLite: SQLiteConfig{
			Path:  "university_grades.db",
			Table: "grades",
		},
		Firestore: FirestoreConfig{
			Collection: "grade_records",
		},
		Cache: CacheConfig{
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Requests:      120,
			WindowSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load builds the configuration.
// Order: defaults -> YAML file -> environment overrides -> validate
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultConfigFile
	}
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides replaces fields with any set environment variables.
func (c *Config) ApplyEnvOverrides() error {
	var err error
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" && err == nil {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = fmt.Errorf("%s must be an integer: %w", key, convErr)
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" && err == nil {
			d, convErr := time.ParseDuration(v)
			if convErr != nil {
				err = fmt.Errorf("%s must be a duration: %w", key, convErr)
				return
			}
			*dst = d
		}
	}

	setInt("PORT", &c.Port)
	setString("GRADES_SOURCE", &c.Source)
	setString("DATABASE_PATH", &c.SQLite.Path)
	setString("DATABASE_TABLE", &c.SQLite.Table)
	setString("FIREBASE_CONFIG", &c.Firestore.CredentialsFile)
	setString("FIRESTORE_PROJECT_ID", &c.Firestore.ProjectID)
	setString("FIRESTORE_COLLECTION", &c.Firestore.Collection)
	setDuration("CACHE_TTL", &c.Cache.TTL)
	setDuration("CACHE_CLEANUP_INTERVAL", &c.Cache.CleanupInterval)
	setInt("RATE_LIMIT_REQUESTS", &c.RateLimit.Requests)
	setInt("RATE_LIMIT_WINDOW_SECONDS", &c.RateLimit.WindowSeconds)
	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FORMAT", &c.Logging.Format)
	setString("LOG_FILE", &c.Logging.File)

	if v := os.Getenv("METRICS_ENABLED"); v != "" && err == nil {
		enabled, convErr := strconv.ParseBool(v)
		if convErr != nil {
			return fmt.Errorf("METRICS_ENABLED must be a boolean: %w", convErr)
		}
		c.Metrics.Enabled = enabled
	}
	return err
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterStructValidation(validateSource, Config{})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// validateSource enforces the settings the selected source needs; tags on the
// nested structs cannot see the parent's Source field.
func validateSource(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Source == SourceSQLite && cfg.SQLite.Path == "" {
		sl.ReportError(cfg.SQLite.Path, "SQLite.Path", "Path", "required_for_sqlite", "")
	}
}

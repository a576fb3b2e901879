package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TANGOCHO_DB.
const EnvPrefix = "TANGOCHO"

// Config holds all application configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means the XDG default.
	DBPath string `mapstructure:"db"`

	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogMode  string `mapstructure:"log_mode" validate:"required,oneof=dev prod"`
	// LogFile overrides the default log location. "-" logs to stderr.
	LogFile string `mapstructure:"log_file"`

	// WriteMode selects when mastery changes reach the store:
	// "batch" writes everything at commit, "immediate" after each answer.
	WriteMode     string `mapstructure:"write_mode" validate:"required,oneof=batch immediate"`
	DefaultCount  int    `mapstructure:"default_count" validate:"gte=1,lte=100"`
	DefaultFilter string `mapstructure:"default_filter" validate:"required,oneof=all unlearned favorites"`
	PageSize      int    `mapstructure:"page_size" validate:"gte=1,lte=500"`

	DBTimeout time.Duration `mapstructure:"db_timeout" validate:"gt=0"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		LogLevel:      "info",
		LogMode:       "prod",
		WriteMode:     "batch",
		DefaultCount:  10,
		DefaultFilter: "all",
		PageSize:      100,
		DBTimeout:     5 * time.Second,
	}
}

// Load reads configuration from a .env file (if present), an optional
// config file, and TANGOCHO_* environment variables. Environment
// variables take precedence over the config file.
func Load(configFile string) (*Config, error) {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	v := viper.New()
	d := Defaults()
	v.SetDefault("db", d.DBPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_mode", d.LogMode)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("write_mode", d.WriteMode)
	v.SetDefault("default_count", d.DefaultCount)
	v.SetDefault("default_filter", d.DefaultFilter)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("db_timeout", d.DBTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Immediate reports whether each answer is written as soon as it is judged.
func (c *Config) Immediate() bool {
	return c.WriteMode == "immediate"
}

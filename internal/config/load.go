package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Default values applied when neither the environment nor a config file
// provides a setting.
const (
	DefaultPort                 = 8080
	DefaultLogLevel             = "info"
	DefaultTokenLifetimeMinutes = 60
	DefaultMaxNowTasks          = 5
	DefaultSnoozeDuration       = 2 * time.Hour
	DefaultPromoteInterval      = 10 * time.Minute
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files and use
// the ORION_ prefix with underscores for nesting (e.g. ORION_SERVER_PORT).
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("auth.token_lifetime_minutes", DefaultTokenLifetimeMinutes)
	v.SetDefault("scheduler.max_now_tasks", DefaultMaxNowTasks)
	v.SetDefault("scheduler.snooze_duration", DefaultSnoozeDuration)
	v.SetDefault("scheduler.promote_interval", DefaultPromoteInterval)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly or AutomaticEnv never
	// surfaces them through Unmarshal.
	for _, key := range []string{"database.url", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// A missing config file is fine; the environment can supply everything.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// SchedulerConfig contains the task scheduling policy settings.
type SchedulerConfig struct {
	// MaxNowTasks is the per-user cap on simultaneously active tasks.
	MaxNowTasks int `mapstructure:"max_now_tasks" validate:"required,gt=0"`

	// SnoozeDuration is how long a snoozed task sleeps before its wake time.
	SnoozeDuration time.Duration `mapstructure:"snooze_duration" validate:"required"`

	// PromoteInterval is how often the reconciliation sweep promotes waiting
	// tasks into freed active slots.
	PromoteInterval time.Duration `mapstructure:"promote_interval" validate:"required"`
}

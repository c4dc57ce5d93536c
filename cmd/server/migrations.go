package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/oriontask/orion-api/migrations"
	"github.com/pressly/goose/v3"
)

// runMigrations applies any pending schema migrations at startup.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseSlogAdapter{logger: logger})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("Database migrations applied")
	return nil
}

// gooseSlogAdapter routes goose output through the structured logger.
type gooseSlogAdapter struct {
	logger *slog.Logger
}

func (a *gooseSlogAdapter) Fatalf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

func (a *gooseSlogAdapter) Printf(format string, v ...interface{}) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies pending migrations. command is one of up, down, status.
func Migrate(ctx context.Context, dsn, command string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, sqlDB, migrationsDir)
	case "down":
		return goose.DownContext(ctx, sqlDB, migrationsDir)
	case "status":
		return goose.StatusContext(ctx, sqlDB, migrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}

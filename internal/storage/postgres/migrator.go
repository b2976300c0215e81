package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrator applies the embedded goose migrations through a pgx pool.
type Migrator struct {
	db *sql.DB
}

// NewMigrator wraps pool in a *sql.DB, which is what goose works with.
func NewMigrator(pool *pgxpool.Pool) (*Migrator, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	return &Migrator{db: stdlib.OpenDBFromPool(pool)}, nil
}

// Up applies all pending migrations.
func (mg *Migrator) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, mg.db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	slog.Info("migrations applied", slog.Int64("version", version))
	return nil
}

// Close closes the *sql.DB wrapper; the pool stays open.
func (mg *Migrator) Close() error {
	return mg.db.Close()
}

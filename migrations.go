package dbdock

import (
	"context"
	"database/sql"
	"log/slog"
)

// Migrations applies schema migrations over an open connection. The migrate
// package provides a goose-backed implementation.
type Migrations interface {
	Up(ctx context.Context, db *sql.DB) error
}

// runMigrations applies the configured migration source over a connection
// with the regular user credentials. No migrations configured is a no-op.
func (c *Container) runMigrations(ctx context.Context) bool {
	if c.migrations == nil {
		return true
	}
	db, err := c.Connect(ctx, false)
	if err != nil {
		c.logger.Error("connect for migrations failed", slog.Any("error", err))
		return false
	}
	defer db.Close()
	if err := c.migrations.Up(ctx, db); err != nil {
		c.logger.Error("migrations failed", slog.Any("error", err))
		return false
	}
	return true
}

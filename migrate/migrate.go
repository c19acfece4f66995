// Package migrate adapts goose migrations to the dbdock.Migrations hook.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/dbdock/dbdock"
)

// Dir returns migrations read from a directory on disk.
func Dir(dialect goose.Dialect, folder string) dbdock.Migrations {
	return FS(dialect, os.DirFS(folder))
}

// Embed returns migrations read from an embedded filesystem.
func Embed(dialect goose.Dialect, fsys embed.FS) dbdock.Migrations {
	return FS(dialect, fsys)
}

// FS returns migrations read from an arbitrary filesystem.
func FS(dialect goose.Dialect, fsys fs.FS) dbdock.Migrations {
	return gooseMigrations{
		dialect: dialect,
		fs:      fsys,
	}
}

type gooseMigrations struct {
	dialect goose.Dialect
	fs      fs.FS
}

func (g gooseMigrations) Up(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(g.dialect, db, g.fs)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("up migrations: %w", err)
	}
	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %s: %w", r.Source.Path, r.Error)
		}
	}
	return nil
}

package dbdock

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// containerSQLDir is the fixed in-container location init files are copied
// to before execution.
const containerSQLDir = "/tmp"

// RunSQLFile locates the given SQL file, copies it into the container and
// asks the engine to execute it against the configured user and database.
// The file is looked up on the filesystem first, then in the configured
// resource filesystem with a leading slash normalized away.
func (c *Container) RunSQLFile(ctx context.Context, sqlFile string) error {
	path, err := c.resolveSQLFile(sqlFile)
	if err != nil {
		return err
	}
	containerPath := containerSQLDir + "/" + filepath.Base(path)
	if err := c.docker.CopyToContainer(ctx, path, c.cfg.ContainerName, containerPath); err != nil {
		c.logger.Error("failed to copy file to container",
			slog.String("file", path),
			slog.Any("error", err),
		)
		return err
	}
	return c.engine.ExecuteSQLFile(ctx, c.runtime(), containerPath)
}

// runInitSQLFile runs the configured init SQL file, if any. A file that
// cannot be located or copied is logged and skipped; the container remains
// usable, just unprovisioned by that script. Only an engine that does not
// support SQL file execution at all fails the start.
func (c *Container) runInitSQLFile(ctx context.Context) bool {
	sqlFile := strings.TrimSpace(c.cfg.InitSQLFile)
	if sqlFile == "" {
		return true
	}
	err := c.RunSQLFile(ctx, sqlFile)
	if errors.Is(err, ErrSQLFileNotSupported) {
		c.logger.Error("init sql file configured but not supported",
			slog.String("platform", c.cfg.Platform),
			slog.String("file", sqlFile),
		)
		return false
	}
	return true
}

func (c *Container) resolveSQLFile(sqlFile string) (string, error) {
	if _, err := os.Stat(sqlFile); err == nil {
		return sqlFile, nil
	}
	path, err := c.resourceFile(sqlFile)
	if err != nil {
		c.logger.Error("could not find SQL file, no file exists at location or resource path",
			slog.String("file", sqlFile),
			slog.Any("error", err),
		)
		return "", err
	}
	return path, nil
}

// resourceFile materializes a file from the resource filesystem into the
// temp directory so docker cp can reach it.
func (c *Container) resourceFile(sqlFile string) (string, error) {
	if c.resources == nil {
		return "", fs.ErrNotExist
	}
	name := strings.TrimPrefix(sqlFile, "/")
	src, err := c.resources.Open(name)
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(os.TempDir(), filepath.Base(name))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

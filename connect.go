package dbdock

import (
	"context"
	"database/sql"
	"log/slog"
)

// Connect opens a database/sql connection to the container's engine using
// admin or regular user credentials. The caller owns the returned handle.
func (c *Container) Connect(ctx context.Context, admin bool) (*sql.DB, error) {
	engine, ok := c.engine.(SQLEngine)
	if !ok {
		return nil, ErrNotSQLPlatform
	}
	db, err := sql.Open(engine.DriverName(), engine.ConnectionString(c.cfg, admin))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// CheckConnectivity attempts a real protocol-level connection and closes it
// immediately. A failure is never escalated; the result is a boolean signal
// consumed by the readiness loops and the final post-provisioning gate.
func (c *Container) CheckConnectivity(ctx context.Context, admin bool) bool {
	c.logger.Debug("checkConnectivity", slog.String("container", c.cfg.ContainerName), slog.Bool("admin", admin))
	if checker, ok := c.engine.(ConnectivityChecker); ok {
		return checker.CheckConnectivity(ctx, c.runtime(), admin)
	}
	db, err := c.Connect(ctx, admin)
	if err != nil {
		c.logger.Debug("connection failed", slog.Any("error", err))
		return false
	}
	_ = db.Close()
	c.logger.Debug("connectivity confirmed", slog.String("container", c.cfg.ContainerName))
	return true
}

// PingSQL is the shared connectivity probe for SQL engines that need one
// inside readiness checks: open, ping, close, report.
func PingSQL(ctx context.Context, driverName, dsn string) (bool, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return false, err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return false, err
	}
	return true, nil
}

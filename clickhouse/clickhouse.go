// Package clickhouse provides the ClickHouse engine. The container
// environment seeds the database and user at boot; provisioning repeats the
// same statements idempotently so dropcreate mode can rebuild the database.
package clickhouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/dbdock/dbdock"
)

const (
	// https://hub.docker.com/r/clickhouse/clickhouse-server
	DefaultImage   = "clickhouse/clickhouse-server"
	DefaultVersion = "24-alpine"

	readyLogMarker = "Ready for connections"
)

// NewConfig returns a clickhouse container config with engine defaults
// applied. The image can be overridden with DBDOCK_CLICKHOUSE_IMAGE.
func NewConfig(version string) *dbdock.Config {
	if version == "" {
		version = DefaultVersion
	}
	cfg := &dbdock.Config{
		Platform:         "clickhouse",
		ContainerName:    dbdock.EnvOr("DBDOCK_CLICKHOUSE_CONTAINER", "dbdock_clickhouse"),
		Image:            dbdock.EnvOr("DBDOCK_CLICKHOUSE_IMAGE", DefaultImage+":"+version),
		Host:             "localhost",
		Port:             "9123",
		InternalPort:     "9000",
		AdminUser:        "default",
		AdminPassword:    "password1",
		Username:         "tester",
		Password:         "password1",
		DBName:           "testdb",
		MaxReadyAttempts: dbdock.DefaultMaxReadyAttempts,
	}
	cfg.Interpolate()
	return cfg
}

// NewContainer builds a container driven by the clickhouse engine.
func NewContainer(cfg *dbdock.Config, opts ...dbdock.OptionsFunc) *dbdock.Container {
	return dbdock.NewContainer(cfg, Engine{}, opts...)
}

// Engine implements dbdock.Engine for ClickHouse.
type Engine struct {
	dbdock.BaseEngine
}

var _ dbdock.SQLEngine = Engine{}

func (Engine) Platform() string { return "clickhouse" }

func (Engine) DriverName() string { return "clickhouse" }

func (Engine) RunArgs(cfg *dbdock.Config) []string {
	return []string{
		"run", "-d",
		"--name", cfg.ContainerName,
		"-p", cfg.PortMapping(),
		"-e", "CLICKHOUSE_DB=" + cfg.DBName,
		"-e", "CLICKHOUSE_USER=" + cfg.AdminUser,
		"-e", "CLICKHOUSE_PASSWORD=" + cfg.AdminPassword,
		"-e", "CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT=1",
		cfg.Image,
	}
}

func (e Engine) ConnectionString(cfg *dbdock.Config, admin bool) string {
	if admin {
		return e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword, cfg.DBName)
	}
	return e.dsn(cfg, cfg.Username, cfg.Password, cfg.DBName)
}

func (Engine) dsn(cfg *dbdock.Config, user, password, dbName string) string {
	return fmt.Sprintf("clickhouse://%s:%s@%s:%s/%s",
		user, password, cfg.Host, cfg.Port, dbName)
}

func (Engine) IsDatabaseReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.LogsContain(ctx, rt.Config.ContainerName, readyLogMarker)
}

func (e Engine) IsAdminReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	cfg := rt.Config
	return dbdock.PingSQL(ctx, e.DriverName(), e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword, cfg.DBName))
}

func (e Engine) CreateDatabase(ctx context.Context, rt *dbdock.Runtime) error {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	statements := []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.DBName,
		fmt.Sprintf("CREATE USER IF NOT EXISTS %s IDENTIFIED BY '%s'", cfg.Username, cfg.Password),
		fmt.Sprintf("GRANT ALL ON %s.* TO %s", cfg.DBName, cfg.Username),
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func (e Engine) DropDatabase(ctx context.Context, rt *dbdock.Runtime) error {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	statements := []string{
		"DROP DATABASE IF EXISTS " + cfg.DBName,
		"DROP USER IF EXISTS " + cfg.Username,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func (e Engine) FastStartExists(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var count uint64
	err = db.QueryRowContext(ctx,
		`SELECT count() FROM system.databases WHERE name = ?`, cfg.DBName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query database %s: %w", cfg.DBName, err)
	}
	return count > 0, nil
}

func (e Engine) openAdmin(ctx context.Context, cfg *dbdock.Config) (*sql.DB, error) {
	db, err := sql.Open(e.DriverName(), e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword, cfg.DBName))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Package postgres provides the PostgreSQL engine: full provisioning of
// database, user and extensions, SQL file execution via psql inside the
// container, and fast start support.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dbdock/dbdock"
)

const (
	// https://hub.docker.com/_/postgres
	DefaultImage   = "postgres"
	DefaultVersion = "16-alpine"

	// adminDatabase is the maintenance database admin commands run against.
	adminDatabase = "postgres"

	readyLogMarker = "database system is ready to accept connections"
)

// NewConfig returns a postgres container config with engine defaults
// applied. The image can be overridden with DBDOCK_POSTGRES_IMAGE.
func NewConfig(version string) *dbdock.Config {
	if version == "" {
		version = DefaultVersion
	}
	cfg := &dbdock.Config{
		Platform:         "postgres",
		ContainerName:    dbdock.EnvOr("DBDOCK_POSTGRES_CONTAINER", "dbdock_postgres"),
		Image:            dbdock.EnvOr("DBDOCK_POSTGRES_IMAGE", DefaultImage+":"+version),
		Host:             "localhost",
		Port:             "6432",
		InternalPort:     "5432",
		AdminUser:        "postgres",
		AdminPassword:    "password1",
		Username:         "tester",
		Password:         "password1",
		DBName:           "testdb",
		MaxReadyAttempts: dbdock.DefaultMaxReadyAttempts,
	}
	cfg.Interpolate()
	return cfg
}

// NewContainer builds a container driven by the postgres engine.
func NewContainer(cfg *dbdock.Config, opts ...dbdock.OptionsFunc) *dbdock.Container {
	return dbdock.NewContainer(cfg, Engine{}, opts...)
}

// Engine implements dbdock.Engine for PostgreSQL.
type Engine struct {
	dbdock.BaseEngine
}

var _ dbdock.SQLEngine = Engine{}

func (Engine) Platform() string { return "postgres" }

func (Engine) DriverName() string { return "pgx" }

func (Engine) RunArgs(cfg *dbdock.Config) []string {
	return []string{
		"run", "-d",
		"--name", cfg.ContainerName,
		"-p", cfg.PortMapping(),
		"-e", "POSTGRES_USER=" + cfg.AdminUser,
		"-e", "POSTGRES_PASSWORD=" + cfg.AdminPassword,
		cfg.Image,
	}
}

func (e Engine) ConnectionString(cfg *dbdock.Config, admin bool) string {
	if admin {
		return e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword, adminDatabase)
	}
	return e.dsn(cfg, cfg.Username, cfg.Password, cfg.DBName)
}

func (Engine) dsn(cfg *dbdock.Config, user, password, dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, cfg.Host, cfg.Port, dbName)
}

func (Engine) IsDatabaseReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.LogsContain(ctx, rt.Config.ContainerName, readyLogMarker)
}

func (Engine) IsAdminReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.ExecExpect(ctx, rt.Config.ContainerName, "accepting connections",
		"pg_isready", "-h", "localhost", "-p", rt.Config.InternalPort, "-U", rt.Config.AdminUser)
}

func (e Engine) CreateDatabase(ctx context.Context, rt *dbdock.Runtime) error {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg, adminDatabase)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := e.createRoleIfMissing(ctx, db, cfg); err != nil {
		return err
	}
	if err := e.createDatabaseIfMissing(ctx, db, cfg); err != nil {
		return err
	}
	return e.createExtensions(ctx, rt)
}

func (e Engine) DropDatabase(ctx context.Context, rt *dbdock.Runtime) error {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg, adminDatabase)
	if err != nil {
		return err
	}
	defer db.Close()

	// Sessions left over from a previous run hold the database open.
	_, _ = db.ExecContext(ctx,
		`SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()`,
		cfg.DBName)

	if _, err := db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+cfg.DBName); err != nil {
		return fmt.Errorf("drop database %s: %w", cfg.DBName, err)
	}
	if _, err := db.ExecContext(ctx, "DROP ROLE IF EXISTS "+cfg.Username); err != nil {
		return fmt.Errorf("drop role %s: %w", cfg.Username, err)
	}
	return nil
}

func (e Engine) FastStartExists(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg, adminDatabase)
	if err != nil {
		return false, err
	}
	defer db.Close()
	return e.databaseExists(ctx, db, cfg.DBName)
}

// ExecuteSQLFile runs the copied file through psql inside the container as
// the configured database user.
func (Engine) ExecuteSQLFile(ctx context.Context, rt *dbdock.Runtime, containerFilePath string) error {
	cfg := rt.Config
	res, err := rt.Docker.Exec(ctx, cfg.ContainerName,
		"psql",
		"-U", cfg.Username,
		"-d", cfg.DBName,
		"-f", containerFilePath,
	)
	if err != nil {
		return fmt.Errorf("execute sql file %s: %w", containerFilePath, err)
	}
	rt.Logger.Debug("executed sql file",
		slog.String("file", containerFilePath),
		slog.Any("output", res.OutLines),
	)
	return nil
}

func (e Engine) openAdmin(ctx context.Context, cfg *dbdock.Config, dbName string) (*sql.DB, error) {
	db, err := sql.Open(e.DriverName(), e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword, dbName))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (e Engine) createRoleIfMissing(ctx context.Context, db *sql.DB, cfg *dbdock.Config) error {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)`, cfg.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("query role %s: %w", cfg.Username, err)
	}
	if exists {
		return nil
	}
	_, err = db.ExecContext(ctx,
		fmt.Sprintf("CREATE ROLE %s LOGIN PASSWORD '%s'", cfg.Username, cfg.Password))
	if err != nil {
		return fmt.Errorf("create role %s: %w", cfg.Username, err)
	}
	return nil
}

func (e Engine) createDatabaseIfMissing(ctx context.Context, db *sql.DB, cfg *dbdock.Config) error {
	exists, err := e.databaseExists(ctx, db, cfg.DBName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = db.ExecContext(ctx,
		fmt.Sprintf("CREATE DATABASE %s OWNER %s", cfg.DBName, cfg.Username))
	if err != nil {
		return fmt.Errorf("create database %s: %w", cfg.DBName, err)
	}
	return nil
}

func (e Engine) createExtensions(ctx context.Context, rt *dbdock.Runtime) error {
	cfg := rt.Config
	if len(cfg.Extensions) == 0 {
		return nil
	}
	// Extensions live in the target database, not the maintenance one.
	db, err := e.openAdmin(ctx, cfg, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, extension := range cfg.Extensions {
		_, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS "+extension)
		if err != nil {
			return fmt.Errorf("create extension %s: %w", extension, err)
		}
	}
	return nil
}

func (Engine) databaseExists(ctx context.Context, db *sql.DB, dbName string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, dbName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query database %s: %w", dbName, err)
	}
	return exists, nil
}

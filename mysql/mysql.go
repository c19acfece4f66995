// Package mysql provides the MySQL engine: database, user and grant
// provisioning through the root account. SQL file execution is not
// supported on this platform.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dbdock/dbdock"
)

const (
	// https://hub.docker.com/_/mysql
	DefaultImage   = "mysql"
	DefaultVersion = "8.4"

	readyLogMarker = "ready for connections"
)

// NewConfig returns a mysql container config with engine defaults applied.
// The image can be overridden with DBDOCK_MYSQL_IMAGE.
func NewConfig(version string) *dbdock.Config {
	if version == "" {
		version = DefaultVersion
	}
	cfg := &dbdock.Config{
		Platform:         "mysql",
		ContainerName:    dbdock.EnvOr("DBDOCK_MYSQL_CONTAINER", "dbdock_mysql"),
		Image:            dbdock.EnvOr("DBDOCK_MYSQL_IMAGE", DefaultImage+":"+version),
		Host:             "localhost",
		Port:             "4306",
		InternalPort:     "3306",
		AdminUser:        "root",
		AdminPassword:    "password1",
		Username:         "tester",
		Password:         "password1",
		DBName:           "testdb",
		MaxReadyAttempts: dbdock.DefaultMaxReadyAttempts,
	}
	cfg.Interpolate()
	return cfg
}

// NewContainer builds a container driven by the mysql engine.
func NewContainer(cfg *dbdock.Config, opts ...dbdock.OptionsFunc) *dbdock.Container {
	return dbdock.NewContainer(cfg, Engine{}, opts...)
}

// Engine implements dbdock.Engine for MySQL.
type Engine struct {
	dbdock.BaseEngine
}

var _ dbdock.SQLEngine = Engine{}

func (Engine) Platform() string { return "mysql" }

func (Engine) DriverName() string { return "mysql" }

func (Engine) RunArgs(cfg *dbdock.Config) []string {
	return []string{
		"run", "-d",
		"--name", cfg.ContainerName,
		"-p", cfg.PortMapping(),
		"-e", "MYSQL_ROOT_PASSWORD=" + cfg.AdminPassword,
		cfg.Image,
	}
}

func (e Engine) ConnectionString(cfg *dbdock.Config, admin bool) string {
	if admin {
		return e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword, "mysql")
	}
	return e.dsn(cfg, cfg.Username, cfg.Password, cfg.DBName)
}

func (Engine) dsn(cfg *dbdock.Config, user, password, dbName string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, password, cfg.Host, cfg.Port, dbName)
}

func (Engine) IsDatabaseReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.LogsContain(ctx, rt.Config.ContainerName, readyLogMarker)
}

func (Engine) IsAdminReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.ExecExpect(ctx, rt.Config.ContainerName, "mysqld is alive",
		"mysqladmin", "ping",
		"-u"+rt.Config.AdminUser,
		"-p"+rt.Config.AdminPassword,
	)
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
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", cfg.Username, cfg.Password),
		fmt.Sprintf("GRANT ALL ON %s.* TO '%s'@'%%'", cfg.DBName, cfg.Username),
		"FLUSH PRIVILEGES",
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
		fmt.Sprintf("DROP USER IF EXISTS '%s'@'%%'", cfg.Username),
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

	var exists bool
	err = db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?)`,
		cfg.DBName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query database %s: %w", cfg.DBName, err)
	}
	return exists, nil
}

func (e Engine) openAdmin(ctx context.Context, cfg *dbdock.Config) (*sql.DB, error) {
	db, err := sql.Open(e.DriverName(), e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword, "mysql"))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

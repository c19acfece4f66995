// Package sqlserver provides the SQL Server engine: database, login and
// user provisioning through the sa account.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/dbdock/dbdock"
)

const (
	// https://mcr.microsoft.com/product/mssql/server
	DefaultImage   = "mcr.microsoft.com/mssql/server"
	DefaultVersion = "2022-latest"

	adminDatabase = "master"

	readyLogMarker = "SQL Server is now ready for client connections"
)

// NewConfig returns a sqlserver container config with engine defaults
// applied. The sa password must satisfy SQL Server complexity rules. The
// image can be overridden with DBDOCK_SQLSERVER_IMAGE.
func NewConfig(version string) *dbdock.Config {
	if version == "" {
		version = DefaultVersion
	}
	cfg := &dbdock.Config{
		Platform:         "sqlserver",
		ContainerName:    dbdock.EnvOr("DBDOCK_SQLSERVER_CONTAINER", "dbdock_sqlserver"),
		Image:            dbdock.EnvOr("DBDOCK_SQLSERVER_IMAGE", DefaultImage+":"+version),
		Host:             "localhost",
		Port:             "2433",
		InternalPort:     "1433",
		AdminUser:        "sa",
		AdminPassword:    "SqlS3rv#r",
		Username:         "tester",
		Password:         "SqlS3rv#r",
		DBName:           "testdb",
		MaxReadyAttempts: dbdock.DefaultMaxReadyAttempts,
	}
	cfg.Interpolate()
	return cfg
}

// NewContainer builds a container driven by the sqlserver engine.
func NewContainer(cfg *dbdock.Config, opts ...dbdock.OptionsFunc) *dbdock.Container {
	return dbdock.NewContainer(cfg, Engine{}, opts...)
}

// Engine implements dbdock.Engine for SQL Server.
type Engine struct {
	dbdock.BaseEngine
}

var _ dbdock.SQLEngine = Engine{}

func (Engine) Platform() string { return "sqlserver" }

func (Engine) DriverName() string { return "sqlserver" }

func (Engine) RunArgs(cfg *dbdock.Config) []string {
	return []string{
		"run", "-d",
		"--name", cfg.ContainerName,
		"-p", cfg.PortMapping(),
		"-e", "ACCEPT_EULA=Y",
		"-e", "MSSQL_SA_PASSWORD=" + cfg.AdminPassword,
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
	return fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
		user, password, cfg.Host, cfg.Port, dbName)
}

func (Engine) IsDatabaseReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.LogsContain(ctx, rt.Config.ContainerName, readyLogMarker)
}

func (e Engine) IsAdminReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	cfg := rt.Config
	return dbdock.PingSQL(ctx, e.DriverName(), e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword, adminDatabase))
}

func (e Engine) CreateDatabase(ctx context.Context, rt *dbdock.Runtime) error {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg, adminDatabase)
	if err != nil {
		return err
	}
	defer db.Close()

	statements := []string{
		fmt.Sprintf("IF DB_ID('%s') IS NULL CREATE DATABASE %s", cfg.DBName, cfg.DBName),
		fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.server_principals WHERE name = '%s') CREATE LOGIN %s WITH PASSWORD = '%s'",
			cfg.Username, cfg.Username, cfg.Password),
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}

	// The database user lives inside the target database.
	target, err := e.openAdmin(ctx, cfg, cfg.DBName)
	if err != nil {
		return err
	}
	defer target.Close()

	statements = []string{
		fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.database_principals WHERE name = '%s') CREATE USER %s FOR LOGIN %s",
			cfg.Username, cfg.Username, cfg.Username),
		fmt.Sprintf("ALTER ROLE db_owner ADD MEMBER %s", cfg.Username),
	}
	for _, stmt := range statements {
		if _, err := target.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func (e Engine) DropDatabase(ctx context.Context, rt *dbdock.Runtime) error {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg, adminDatabase)
	if err != nil {
		return err
	}
	defer db.Close()

	statements := []string{
		fmt.Sprintf("IF DB_ID('%s') IS NOT NULL ALTER DATABASE %s SET SINGLE_USER WITH ROLLBACK IMMEDIATE",
			cfg.DBName, cfg.DBName),
		"DROP DATABASE IF EXISTS " + cfg.DBName,
		fmt.Sprintf("IF EXISTS (SELECT 1 FROM sys.server_principals WHERE name = '%s') DROP LOGIN %s",
			cfg.Username, cfg.Username),
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
	db, err := e.openAdmin(ctx, cfg, adminDatabase)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var count int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sys.databases WHERE name = @p1`, cfg.DBName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query database %s: %w", cfg.DBName, err)
	}
	return count > 0, nil
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

// Package oracle provides the Oracle engine. Oracle maps the configured
// user to a schema, so provisioning creates and drops users rather than
// databases. Oracle images are slow to boot from scratch; the startup wait
// is configured in minutes and scaled into the ready-attempt budget.
package oracle

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/sijms/go-ora/v2"

	"github.com/dbdock/dbdock"
)

const (
	// https://hub.docker.com/r/gvenzl/oracle-xe
	DefaultImage   = "gvenzl/oracle-xe"
	DefaultVersion = "21-slim"

	readyLogMarker = "DATABASE IS READY TO USE!"

	// DefaultStartupWaitMinutes is the wait allowed when starting oracle
	// from scratch.
	DefaultStartupWaitMinutes = 8

	// attemptsPerMinute converts the startup wait into 100ms poll attempts.
	attemptsPerMinute = 600
)

// NewConfig returns an oracle container config with engine defaults
// applied: admin user fixed to system, database XE, port 1521. The image
// can be overridden with DBDOCK_ORACLE_IMAGE.
func NewConfig(version string) *dbdock.Config {
	if version == "" {
		version = DefaultVersion
	}
	cfg := &dbdock.Config{
		Platform:           "oracle",
		ContainerName:      dbdock.EnvOr("DBDOCK_ORACLE_CONTAINER", "dbdock_oracle"),
		Image:              dbdock.EnvOr("DBDOCK_ORACLE_IMAGE", DefaultImage+":"+version),
		Host:               "localhost",
		Port:               "1521",
		InternalPort:       "1521",
		AdminUser:          "system",
		AdminPassword:      "oracle",
		Username:           "tester",
		Password:           "password1",
		DBName:             "XE",
		ApexPort:           "8181",
		InternalApexPort:   "8080",
		StartupWaitMinutes: DefaultStartupWaitMinutes,
		MaxReadyAttempts:   DefaultStartupWaitMinutes * attemptsPerMinute,
	}
	cfg.Interpolate()
	return cfg
}

// NewContainer builds a container driven by the oracle engine.
func NewContainer(cfg *dbdock.Config, opts ...dbdock.OptionsFunc) *dbdock.Container {
	if cfg.StartupWaitMinutes > 0 {
		cfg.MaxReadyAttempts = cfg.StartupWaitMinutes * attemptsPerMinute
	}
	return dbdock.NewContainer(cfg, Engine{}, opts...)
}

// Engine implements dbdock.Engine for Oracle.
type Engine struct {
	dbdock.BaseEngine
}

var _ dbdock.SQLEngine = Engine{}

func (Engine) Platform() string { return "oracle" }

func (Engine) DriverName() string { return "oracle" }

func (Engine) RunArgs(cfg *dbdock.Config) []string {
	args := []string{
		"run", "-d",
		"--name", cfg.ContainerName,
		"-p", cfg.PortMapping(),
	}
	if cfg.ApexPort != "" {
		args = append(args, "-p", cfg.ApexPort+":"+cfg.InternalApexPort)
	}
	args = append(args,
		"-e", "ORACLE_PASSWORD="+cfg.AdminPassword,
		cfg.Image,
	)
	return args
}

func (e Engine) ConnectionString(cfg *dbdock.Config, admin bool) string {
	if admin {
		return e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword)
	}
	return e.dsn(cfg, cfg.Username, cfg.Password)
}

func (Engine) dsn(cfg *dbdock.Config, user, password string) string {
	return fmt.Sprintf("oracle://%s:%s@%s:%s/%s",
		user, password, cfg.Host, cfg.Port, cfg.DBName)
}

func (Engine) IsDatabaseReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.LogsContain(ctx, rt.Config.ContainerName, readyLogMarker)
}

func (e Engine) IsAdminReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	cfg := rt.Config
	return dbdock.PingSQL(ctx, e.DriverName(), e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword))
}

func (e Engine) CreateDatabase(ctx context.Context, rt *dbdock.Runtime) error {
	cfg := rt.Config
	db, err := e.openAdmin(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	exists, err := e.userExists(ctx, db, cfg.Username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	statements := []string{
		fmt.Sprintf("CREATE USER %s IDENTIFIED BY %s", cfg.Username, cfg.Password),
		fmt.Sprintf("GRANT CONNECT, RESOURCE, CREATE VIEW TO %s", cfg.Username),
		fmt.Sprintf("ALTER USER %s QUOTA UNLIMITED ON users", cfg.Username),
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

	exists, err := e.userExists(ctx, db, cfg.Username)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP USER %s CASCADE", cfg.Username)); err != nil {
		return fmt.Errorf("drop user %s: %w", cfg.Username, err)
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
	return e.userExists(ctx, db, cfg.Username)
}

func (e Engine) openAdmin(ctx context.Context, cfg *dbdock.Config) (*sql.DB, error) {
	db, err := sql.Open(e.DriverName(), e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (Engine) userExists(ctx context.Context, db *sql.DB, username string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM all_users WHERE username = UPPER(:1)`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query user %s: %w", username, err)
	}
	return count > 0, nil
}

// Package vertica provides the Vertica engine. The community edition image
// creates its database at boot, so this engine runs container-only: no
// create or drop provisioning, no SQL files.
package vertica

import (
	"context"
	"fmt"

	_ "github.com/vertica/vertica-sql-go"

	"github.com/dbdock/dbdock"
)

const (
	// https://hub.docker.com/r/vertica/vertica-ce
	DefaultImage   = "vertica/vertica-ce"
	DefaultVersion = "24.1.0-0"

	readyLogMarker = "Vertica is now running"
)

// NewConfig returns a vertica container config with engine defaults
// applied. The image can be overridden with DBDOCK_VERTICA_IMAGE. Vertica
// boots slowly, so the ready budget is larger than the default.
func NewConfig(version string) *dbdock.Config {
	if version == "" {
		version = DefaultVersion
	}
	cfg := &dbdock.Config{
		Platform:         "vertica",
		ContainerName:    dbdock.EnvOr("DBDOCK_VERTICA_CONTAINER", "dbdock_vertica"),
		Image:            dbdock.EnvOr("DBDOCK_VERTICA_IMAGE", DefaultImage+":"+version),
		Host:             "localhost",
		Port:             "5433",
		InternalPort:     "5433",
		AdminUser:        "dbadmin",
		Username:         "dbadmin",
		DBName:           "testdb",
		MaxReadyAttempts: 1200,
	}
	cfg.Interpolate()
	return cfg
}

// NewContainer builds a container driven by the vertica engine.
func NewContainer(cfg *dbdock.Config, opts ...dbdock.OptionsFunc) *dbdock.Container {
	return dbdock.NewContainer(cfg, Engine{}, opts...)
}

// Engine implements dbdock.Engine for Vertica. Create and drop are
// inherited no-ops.
type Engine struct {
	dbdock.BaseEngine
}

var _ dbdock.SQLEngine = Engine{}

func (Engine) Platform() string { return "vertica" }

func (Engine) DriverName() string { return "vertica" }

func (Engine) RunArgs(cfg *dbdock.Config) []string {
	return []string{
		"run", "-d",
		"--name", cfg.ContainerName,
		"-p", cfg.PortMapping(),
		"-e", "VERTICA_DB_NAME=" + cfg.DBName,
		"-e", "VMART_ETL_SCRIPT=",
		"-e", "VMART_ETL_SQL=",
		cfg.Image,
	}
}

func (e Engine) ConnectionString(cfg *dbdock.Config, admin bool) string {
	if admin {
		return e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword)
	}
	return e.dsn(cfg, cfg.Username, cfg.Password)
}

func (Engine) dsn(cfg *dbdock.Config, user, password string) string {
	return fmt.Sprintf("vertica://%s:%s@%s:%s/%s",
		user, password, cfg.Host, cfg.Port, cfg.DBName)
}

func (Engine) IsDatabaseReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.LogsContain(ctx, rt.Config.ContainerName, readyLogMarker)
}

func (e Engine) IsAdminReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	cfg := rt.Config
	return dbdock.PingSQL(ctx, e.DriverName(), e.dsn(cfg, cfg.AdminUser, cfg.AdminPassword))
}

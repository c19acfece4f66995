// Package mariadb provides the MariaDB engine, a thin variant of the mysql
// engine with MariaDB image defaults and environment names.
package mariadb

import (
	"github.com/dbdock/dbdock"
	"github.com/dbdock/dbdock/mysql"
)

const (
	// https://hub.docker.com/_/mariadb
	DefaultImage   = "mariadb"
	DefaultVersion = "11"
)

// NewConfig returns a mariadb container config with engine defaults
// applied. The image can be overridden with DBDOCK_MARIADB_IMAGE.
func NewConfig(version string) *dbdock.Config {
	if version == "" {
		version = DefaultVersion
	}
	cfg := &dbdock.Config{
		Platform:         "mariadb",
		ContainerName:    dbdock.EnvOr("DBDOCK_MARIADB_CONTAINER", "dbdock_mariadb"),
		Image:            dbdock.EnvOr("DBDOCK_MARIADB_IMAGE", DefaultImage+":"+version),
		Host:             "localhost",
		Port:             "4307",
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

// NewContainer builds a container driven by the mariadb engine.
func NewContainer(cfg *dbdock.Config, opts ...dbdock.OptionsFunc) *dbdock.Container {
	return dbdock.NewContainer(cfg, Engine{}, opts...)
}

// Engine reuses the mysql engine wholesale; the wire protocol, readiness
// markers and provisioning SQL are compatible. Only the platform name and
// the container environment variables differ.
type Engine struct {
	mysql.Engine
}

func (Engine) Platform() string { return "mariadb" }

func (Engine) RunArgs(cfg *dbdock.Config) []string {
	return []string{
		"run", "-d",
		"--name", cfg.ContainerName,
		"-p", cfg.PortMapping(),
		"-e", "MARIADB_ROOT_PASSWORD=" + cfg.AdminPassword,
		cfg.Image,
	}
}

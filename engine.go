package dbdock

import (
	"context"
	"log/slog"

	"github.com/dbdock/dbdock/pkg/dockercli"
)

// Runtime gives an engine access to the container's configuration and
// docker plumbing for the duration of one operation. Engines themselves are
// stateless values; everything they need arrives through the Runtime.
type Runtime struct {
	Config *Config
	Docker *dockercli.Commands
	Logger *slog.Logger
}

// Engine is the per-platform capability set the lifecycle state machine
// drives. One implementation exists per supported database engine; the state
// machine depends only on this interface.
type Engine interface {
	// Platform returns the engine name, matching Config.Platform.
	Platform() string

	// RunArgs builds the docker arguments (after the binary) that launch a
	// new container for this engine.
	RunArgs(cfg *Config) []string

	// ConnectionString derives the URL used to reach the engine, with admin
	// or regular user credentials.
	ConnectionString(cfg *Config, admin bool) string

	// IsDatabaseReady reports whether the engine accepts commands at all.
	IsDatabaseReady(ctx context.Context, rt *Runtime) (bool, error)

	// IsAdminReady reports whether the engine accepts admin-level commands.
	IsAdminReady(ctx context.Context, rt *Runtime) (bool, error)

	// CreateDatabase ensures the database, user and extensions exist,
	// creating whatever is missing. Must be idempotent.
	CreateDatabase(ctx context.Context, rt *Runtime) error

	// DropDatabase drops the database and user ahead of a fresh create.
	DropDatabase(ctx context.Context, rt *Runtime) error

	// FastStartExists checks whether a previous run already left a valid,
	// reachable database behind. Engines without fast start support report
	// false.
	FastStartExists(ctx context.Context, rt *Runtime) (bool, error)

	// ExecuteSQLFile runs the SQL file already copied into the container at
	// containerFilePath. Engines without support return
	// ErrSQLFileNotSupported.
	ExecuteSQLFile(ctx context.Context, rt *Runtime, containerFilePath string) error
}

// SQLEngine is implemented by engines reachable through database/sql.
type SQLEngine interface {
	Engine

	// DriverName is the registered database/sql driver name.
	DriverName() string
}

// ConnectivityChecker is implemented by engines that verify connectivity
// over their own protocol instead of a database/sql ping.
type ConnectivityChecker interface {
	CheckConnectivity(ctx context.Context, rt *Runtime, admin bool) bool
}

// BaseEngine supplies the defaults shared by engines: no fast start, no SQL
// file execution, no provisioning. Full engines embed it and override what
// they support; container-only engines embed it as is.
type BaseEngine struct{}

func (BaseEngine) FastStartExists(context.Context, *Runtime) (bool, error) {
	return false, nil
}

func (BaseEngine) ExecuteSQLFile(context.Context, *Runtime, string) error {
	return ErrSQLFileNotSupported
}

func (BaseEngine) CreateDatabase(context.Context, *Runtime) error { return nil }

func (BaseEngine) DropDatabase(context.Context, *Runtime) error { return nil }

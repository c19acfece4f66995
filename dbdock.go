// Package dbdock manages ephemeral database containers for integration
// testing. It starts a containerized database engine through the docker CLI,
// waits for it to become reachable, ensures the target database and user
// exist (optionally dropping them first), and registers a shutdown action
// that disposes of the container per the configured policy.
//
// Engine packages (postgres, mysql, oracle, ...) construct containers with
// platform defaults applied:
//
//	cfg := postgres.NewConfig("16-alpine")
//	cfg.StartMode = "dropCreate"
//	cnt := postgres.NewContainer(cfg)
//	if !cnt.Start(ctx) {
//		log.Fatal("database container failed to start")
//	}
//	defer dbdock.Shutdown()
package dbdock

import (
	"io"
	"io/fs"
	"log/slog"

	"github.com/dbdock/dbdock/pkg/cmdexec"
	"github.com/dbdock/dbdock/pkg/dockercli"
)

// Container drives one database container's lifecycle. It keeps no state
// about the container itself; every query goes to the docker daemon by
// container name, so a Container can be recreated after a crash and resume
// where the previous run left off.
type Container struct {
	cfg        *Config
	engine     Engine
	docker     *dockercli.Commands
	logger     *slog.Logger
	resources  fs.FS
	migrations Migrations
	startMode  StartMode
}

// OptionsFunc configures a Container beyond its Config.
type OptionsFunc func(c *Container)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *slog.Logger) OptionsFunc {
	return func(c *Container) { c.logger = logger }
}

// WithExecutor overrides the process executor the docker CLI commands run
// through. Tests substitute a scripted executor here.
func WithExecutor(exec cmdexec.Executor) OptionsFunc {
	return func(c *Container) {
		c.docker = dockercli.New(c.cfg.DockerBinary, exec, c.logger)
	}
}

// WithResources sets the filesystem used as the fallback lookup for init
// SQL files that do not exist on disk, typically an embed.FS.
func WithResources(fsys fs.FS) OptionsFunc {
	return func(c *Container) { c.resources = fsys }
}

// WithMigrations sets a migration source applied after provisioning, before
// the final connectivity gate.
func WithMigrations(m Migrations) OptionsFunc {
	return func(c *Container) { c.migrations = m }
}

// NewContainer builds a Container for the given config and engine. Engine
// packages wrap this with their own NewContainer taking just the config.
func NewContainer(cfg *Config, engine Engine, opts ...OptionsFunc) *Container {
	if cfg.MaxReadyAttempts < 1 {
		cfg.MaxReadyAttempts = DefaultMaxReadyAttempts
	}
	c := &Container{
		cfg:    cfg,
		engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.docker == nil {
		c.docker = dockercli.New(cfg.DockerBinary, nil, c.logger)
	}
	return c
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.cfg
}

// URL returns the connection string for the configured database user.
func (c *Container) URL() string {
	return c.engine.ConnectionString(c.cfg, false)
}

// AdminURL returns the connection string for the admin user.
func (c *Container) AdminURL() string {
	return c.engine.ConnectionString(c.cfg, true)
}

func (c *Container) runtime() *Runtime {
	return &Runtime{
		Config: c.cfg,
		Docker: c.docker,
		Logger: c.logger,
	}
}

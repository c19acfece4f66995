package dbdock

import (
	"context"
	"log/slog"
)

// Start brings the container to the state described by the configured start
// mode. It reports true when the database is ready to accept the test
// workload's connections under the configured user. Failure to become ready
// within the attempt budget is a soft failure logged at warning level, not
// an error; the caller decides whether to abort the test run.
func (c *Container) Start(ctx context.Context) bool {
	switch ParseStartMode(c.cfg.StartMode) {
	case StartModeDropCreate:
		return c.StartWithDropCreate(ctx)
	case StartModeContainerOnly:
		return c.StartContainerOnly(ctx)
	default:
		return c.StartWithCreate(ctx)
	}
}

// StartWithCreate starts the container ensuring the database and user
// exist, creating them if necessary.
func (c *Container) StartWithCreate(ctx context.Context) bool {
	c.startMode = StartModeCreate
	return c.finishStart(c.startWithProvisioning(ctx))
}

// StartWithDropCreate starts the container ensuring the database and user
// are dropped and then created from scratch.
func (c *Container) StartWithDropCreate(ctx context.Context) bool {
	c.startMode = StartModeDropCreate
	return c.finishStart(c.startWithProvisioning(ctx))
}

// StartContainerOnly starts the container and waits for readiness without
// creating database, user or extensions.
func (c *Container) StartContainerOnly(ctx context.Context) bool {
	c.startMode = StartModeContainerOnly
	if !c.startIfNeeded(ctx) {
		return false
	}
	if !c.WaitForDatabaseReady(ctx) {
		c.logger.Warn("failed waitForDatabaseReady", slog.String("container", c.cfg.ContainerName))
		return false
	}
	if !c.waitForConnectivity(ctx, true) {
		c.logger.Warn("failed waiting for connectivity", slog.String("container", c.cfg.ContainerName))
		return false
	}
	return c.finishStart(true)
}

func (c *Container) startWithProvisioning(ctx context.Context) bool {
	if c.startMode == StartModeCreate && c.fastStart(ctx) {
		return true
	}
	if !c.startIfNeeded(ctx) {
		return false
	}
	if !c.WaitForDatabaseReady(ctx) {
		c.logger.Warn("failed waitForDatabaseReady", slog.String("container", c.cfg.ContainerName))
		return false
	}
	if !c.waitForConnectivity(ctx, true) {
		c.logger.Warn("failed waiting for admin connectivity", slog.String("container", c.cfg.ContainerName))
		return false
	}
	rt := c.runtime()
	if c.startMode == StartModeDropCreate {
		if err := c.engine.DropDatabase(ctx, rt); err != nil {
			c.logger.Error("drop database failed", slog.Any("error", err))
			return false
		}
	}
	if err := c.engine.CreateDatabase(ctx, rt); err != nil {
		c.logger.Error("create database failed", slog.Any("error", err))
		return false
	}
	if !c.runInitSQLFile(ctx) {
		return false
	}
	if !c.runMigrations(ctx) {
		return false
	}
	if !c.waitForConnectivity(ctx, false) {
		c.logger.Warn("failed waiting for connectivity", slog.String("container", c.cfg.ContainerName))
		return false
	}
	return true
}

// fastStart checks whether a previous run already left a valid database
// behind so full provisioning can be skipped. Only honored in create mode
// with the fast start flag set. Any failure during the check, including
// inability to connect, means "fast path not available" and falls through
// to normal startup.
func (c *Container) fastStart(ctx context.Context) bool {
	if !c.cfg.FastStartMode {
		return false
	}
	exists, err := c.engine.FastStartExists(ctx, c.runtime())
	if err != nil {
		c.logger.Debug("failed fast start check - using normal startup", slog.Any("error", err))
		return false
	}
	if exists {
		c.logger.Debug("fast start, database already exists", slog.String("container", c.cfg.ContainerName))
	}
	return exists
}

// startIfNeeded is idempotent across repeated test invocations sharing a
// container name: a running container is attached to, a stopped one is
// started, and only an absent one is launched with the engine's run command.
func (c *Container) startIfNeeded(ctx context.Context) bool {
	name := c.cfg.ContainerName
	running, err := c.docker.IsRunning(ctx, name)
	if err != nil {
		c.logger.Warn("failed to query docker daemon", slog.Any("error", err))
		return false
	}
	if running {
		c.logRunning()
		return true
	}
	registered, err := c.docker.IsRegistered(ctx, name)
	if err != nil {
		c.logger.Warn("failed to query docker daemon", slog.Any("error", err))
		return false
	}
	if registered {
		c.logStart()
		if err := c.docker.Start(ctx, name); err != nil {
			c.logger.Warn("failed to start container", slog.Any("error", err))
			return false
		}
		return true
	}
	c.logRun()
	if err := c.docker.Run(ctx, c.engine.RunArgs(c.cfg)...); err != nil {
		c.logger.Warn("failed to run container", slog.Any("error", err))
		return false
	}
	return true
}

// WaitForDatabaseReady polls until the engine accepts commands and then
// until it accepts admin commands, each phase bounded by MaxReadyAttempts
// with a fixed 100ms pause between attempts.
func (c *Container) WaitForDatabaseReady(ctx context.Context) bool {
	rt := c.runtime()
	return waitFor(ctx, c.logger, c.cfg.MaxReadyAttempts, func(ctx context.Context) (bool, error) {
		return c.engine.IsDatabaseReady(ctx, rt)
	}) && waitFor(ctx, c.logger, c.cfg.MaxReadyAttempts, func(ctx context.Context) (bool, error) {
		return c.engine.IsAdminReady(ctx, rt)
	})
}

func (c *Container) waitForConnectivity(ctx context.Context, admin bool) bool {
	return waitFor(ctx, c.logger, c.cfg.MaxReadyAttempts, func(ctx context.Context) (bool, error) {
		return c.CheckConnectivity(ctx, admin), nil
	})
}

// Stop stops the container.
func (c *Container) Stop(ctx context.Context) error {
	return c.docker.Stop(ctx, c.cfg.ContainerName)
}

// Remove stops and removes the container.
func (c *Container) Remove(ctx context.Context) error {
	return c.docker.StopRemove(ctx, c.cfg.ContainerName)
}

// finishStart logs the outcome of a successful start and registers the
// configured shutdown action. Registration must happen here, on the start
// path itself, so later setup failures in the calling test framework cannot
// skip it.
func (c *Container) finishStart(ok bool) bool {
	if !ok {
		return false
	}
	c.logger.Info("container started",
		slog.String("container", c.cfg.ContainerName),
		slog.String("summary", c.cfg.Summary()),
		slog.String("mode", c.startMode.String()),
		slog.String("shutdown", ParseShutdownMode(c.cfg.ShutdownMode).String()),
	)
	c.registerShutdownHook()
	return true
}

func (c *Container) logRunning() {
	c.logger.Info("container already running",
		slog.String("container", c.cfg.ContainerName),
		slog.String("summary", c.cfg.Summary()),
		slog.String("mode", c.startMode.String()),
	)
}

func (c *Container) logStart() {
	c.logger.Info("start container",
		slog.String("container", c.cfg.ContainerName),
		slog.String("summary", c.cfg.Summary()),
		slog.String("mode", c.startMode.String()),
	)
}

func (c *Container) logRun() {
	c.logger.Info("run container",
		slog.String("container", c.cfg.ContainerName),
		slog.String("summary", c.cfg.Summary()),
		slog.String("mode", c.startMode.String()),
	)
}

func (c *Container) registerShutdownHook() {
	mode := ParseShutdownMode(c.cfg.ShutdownMode)
	name := c.cfg.ContainerName
	docker := c.docker
	RegisterShutdown(name, func() error {
		switch mode {
		case ShutdownStop:
			return docker.Stop(context.Background(), name)
		case ShutdownRemove:
			return docker.StopRemove(context.Background(), name)
		default:
			return nil
		}
	})
}

// Package dockercli drives the docker command line through a cmdexec.Executor.
// Every query about container state goes to the daemon by container name, so
// nothing here is cached between calls; re-entry after a partial failure is
// safe because the next call re-derives state from the live system.
package dockercli

import (
	"context"
	"io"
	"log/slog"

	"github.com/dbdock/dbdock/pkg/cmdexec"
)

// DefaultBinary is the docker executable used when none is configured.
const DefaultBinary = "docker"

// Commands wraps the docker CLI verbs the container lifecycle needs.
type Commands struct {
	binary string
	exec   cmdexec.Executor
	logger *slog.Logger
}

func New(binary string, exec cmdexec.Executor, logger *slog.Logger) *Commands {
	if binary == "" {
		binary = DefaultBinary
	}
	if exec == nil {
		exec = cmdexec.New()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Commands{
		binary: binary,
		exec:   exec,
		logger: logger.With(slog.String("logger", "dockercli")),
	}
}

// IsRunning reports whether a container with the given name shows up in
// docker ps output.
func (c *Commands) IsRunning(ctx context.Context, name string) (bool, error) {
	res, err := c.exec.Run(ctx, c.binary, "ps", "--format", "{{.Names}}")
	if err != nil {
		return false, err
	}
	return cmdexec.StdoutContains(res.OutLines, name), nil
}

// IsRegistered reports whether a container with the given name exists at
// all, running or stopped.
func (c *Commands) IsRegistered(ctx context.Context, name string) (bool, error) {
	res, err := c.exec.Run(ctx, c.binary, "ps", "-a", "--format", "{{.Names}}")
	if err != nil {
		return false, err
	}
	return cmdexec.StdoutContains(res.OutLines, name), nil
}

// Run launches a new container. The args are the docker arguments after the
// binary, e.g. "run", "-d", "--name", ...; each engine builds its own.
func (c *Commands) Run(ctx context.Context, args ...string) error {
	c.logger.Debug("docker run", slog.Any("args", args))
	_, err := c.exec.Run(ctx, append([]string{c.binary}, args...)...)
	return err
}

// Start starts an existing, stopped container.
func (c *Commands) Start(ctx context.Context, name string) error {
	c.logger.Debug("docker start", slog.String("container", name))
	_, err := c.exec.Run(ctx, c.binary, "start", name)
	return err
}

// Stop stops a running container.
func (c *Commands) Stop(ctx context.Context, name string) error {
	c.logger.Info("docker container stopped", slog.String("container", name))
	_, err := c.exec.Run(ctx, c.binary, "stop", name)
	return err
}

// Remove removes a stopped container.
func (c *Commands) Remove(ctx context.Context, name string) error {
	c.logger.Info("docker container removed", slog.String("container", name))
	_, err := c.exec.Run(ctx, c.binary, "rm", name)
	return err
}

// StopRemove stops the container if needed and then removes it.
func (c *Commands) StopRemove(ctx context.Context, name string) error {
	running, err := c.IsRunning(ctx, name)
	if err != nil {
		return err
	}
	if running {
		if err := c.Stop(ctx, name); err != nil {
			return err
		}
	}
	return c.Remove(ctx, name)
}

// CopyToContainer copies a host file into the container filesystem.
func (c *Commands) CopyToContainer(ctx context.Context, src, name, dest string) error {
	c.logger.Debug("docker cp",
		slog.String("src", src),
		slog.String("dest", name+":"+dest),
	)
	_, err := c.exec.Run(ctx, c.binary, "cp", src, name+":"+dest)
	return err
}

// Exec runs a command inside the container and returns its captured output.
func (c *Commands) Exec(ctx context.Context, name string, cmd ...string) (cmdexec.Result, error) {
	args := append([]string{c.binary, "exec", name}, cmd...)
	return c.exec.Run(ctx, args...)
}

// ExecExpect runs a command inside the container and reports whether some
// stdout line contains match.
func (c *Commands) ExecExpect(ctx context.Context, name, match string, cmd ...string) (bool, error) {
	res, err := c.Exec(ctx, name, cmd...)
	if err != nil {
		return false, err
	}
	return cmdexec.StdoutContains(res.OutLines, match), nil
}

// Logs returns the container log output, stdout and stderr combined. Many
// database images write their startup banner to stderr, so readiness markers
// are searched across both streams.
func (c *Commands) Logs(ctx context.Context, name string) ([]string, error) {
	res, err := c.exec.Run(ctx, c.binary, "logs", name)
	if err != nil {
		return nil, err
	}
	return res.Lines(), nil
}

// LogsContain reports whether the container log contains the given marker.
func (c *Commands) LogsContain(ctx context.Context, name, marker string) (bool, error) {
	lines, err := c.Logs(ctx, name)
	if err != nil {
		return false, err
	}
	return cmdexec.StdoutContains(lines, marker), nil
}

// Package redis provides the Redis engine. Redis has no databases or users
// to provision, so the engine behaves like container-only mode regardless of
// the configured start mode: start the container, wait until PING answers
// PONG, done.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dbdock/dbdock"
)

const (
	// https://hub.docker.com/_/redis
	DefaultImage   = "redis"
	DefaultVersion = "7-alpine"

	readyLogMarker = "Ready to accept connections"
)

// NewConfig returns a redis container config with engine defaults applied.
// The image can be overridden with DBDOCK_REDIS_IMAGE.
func NewConfig(version string) *dbdock.Config {
	if version == "" {
		version = DefaultVersion
	}
	cfg := &dbdock.Config{
		Platform:         "redis",
		ContainerName:    dbdock.EnvOr("DBDOCK_REDIS_CONTAINER", "dbdock_redis"),
		Image:            dbdock.EnvOr("DBDOCK_REDIS_IMAGE", DefaultImage+":"+version),
		Host:             "localhost",
		Port:             "7379",
		InternalPort:     "6379",
		MaxReadyAttempts: dbdock.DefaultMaxReadyAttempts,
	}
	cfg.Interpolate()
	return cfg
}

// NewContainer builds a container driven by the redis engine.
func NewContainer(cfg *dbdock.Config, opts ...dbdock.OptionsFunc) *dbdock.Container {
	return dbdock.NewContainer(cfg, Engine{}, opts...)
}

// Engine implements dbdock.Engine for Redis. Create and drop are inherited
// no-ops, SQL files are not supported.
type Engine struct {
	dbdock.BaseEngine
}

var (
	_ dbdock.Engine              = Engine{}
	_ dbdock.ConnectivityChecker = Engine{}
)

func (Engine) Platform() string { return "redis" }

func (Engine) RunArgs(cfg *dbdock.Config) []string {
	return []string{
		"run", "-d",
		"--name", cfg.ContainerName,
		"-p", cfg.PortMapping(),
		cfg.Image,
	}
}

func (Engine) ConnectionString(cfg *dbdock.Config, admin bool) string {
	return fmt.Sprintf("redis://%s:%s", cfg.Host, cfg.Port)
}

func (Engine) IsDatabaseReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.LogsContain(ctx, rt.Config.ContainerName, readyLogMarker)
}

func (Engine) IsAdminReady(ctx context.Context, rt *dbdock.Runtime) (bool, error) {
	return rt.Docker.ExecExpect(ctx, rt.Config.ContainerName, "PONG", "redis-cli", "ping")
}

// CheckConnectivity dials from the host side, which also verifies the port
// mapping. The admin flag is irrelevant for redis.
func (Engine) CheckConnectivity(ctx context.Context, rt *dbdock.Runtime, admin bool) bool {
	client := goredis.NewClient(&goredis.Options{
		Addr: rt.Config.Host + ":" + rt.Config.Port,
	})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		rt.Logger.Debug("redis ping failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

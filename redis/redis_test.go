package redis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbdock/dbdock/redis"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := redis.NewConfig("")

	require.Equal(t, "redis", cfg.Platform)
	require.Equal(t, "redis:7-alpine", cfg.Image)
	require.Equal(t, "7379", cfg.Port)
	require.Equal(t, "6379", cfg.InternalPort)
}

func TestRunArgs(t *testing.T) {
	cfg := redis.NewConfig("")
	require.Equal(t, []string{
		"run", "-d",
		"--name", "dbdock_redis",
		"-p", "7379:6379",
		"redis:7-alpine",
	}, redis.Engine{}.RunArgs(cfg))
}

func TestConnectionString(t *testing.T) {
	cfg := redis.NewConfig("")
	require.Equal(t, "redis://localhost:7379", redis.Engine{}.ConnectionString(cfg, false))
	require.Equal(t, "redis://localhost:7379", redis.Engine{}.ConnectionString(cfg, true))
}

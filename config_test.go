package dbdock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStartMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  StartMode
	}{
		{input: "create", want: StartModeCreate},
		{input: "Create", want: StartModeCreate},
		{input: "dropCreate", want: StartModeDropCreate},
		{input: "dropcreate", want: StartModeDropCreate},
		{input: " DROPCREATE ", want: StartModeDropCreate},
		{input: "container", want: StartModeContainerOnly},
		{input: "Container", want: StartModeContainerOnly},
		{input: "", want: StartModeCreate},
		{input: "bogus", want: StartModeCreate},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			require.Equal(t, test.want, ParseStartMode(test.input))
		})
	}
}

func TestParseShutdownMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  ShutdownMode
	}{
		{input: "none", want: ShutdownNone},
		{input: "stop", want: ShutdownStop},
		{input: " Stop ", want: ShutdownStop},
		{input: "remove", want: ShutdownRemove},
		{input: "REMOVE", want: ShutdownRemove},
		{input: "", want: ShutdownNone},
		{input: "bogus", want: ShutdownNone},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			require.Equal(t, test.want, ParseShutdownMode(test.input))
		})
	}
}

func TestModeStrings(t *testing.T) {
	t.Parallel()

	require.Equal(t, "create", StartModeCreate.String())
	require.Equal(t, "dropCreate", StartModeDropCreate.String())
	require.Equal(t, "container", StartModeContainerOnly.String())

	require.Equal(t, "none", ShutdownNone.String())
	require.Equal(t, "stop", ShutdownStop.String())
	require.Equal(t, "remove", ShutdownRemove.String())
}

func TestPortMapping(t *testing.T) {
	t.Parallel()

	cfg := &Config{Port: "6432", InternalPort: "5432"}
	require.Equal(t, "6432:5432", cfg.PortMapping())
}

func TestSummary(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Platform: "postgres",
		Image:    "postgres:16-alpine",
		Port:     "6432",
		DBName:   "testdb",
		Username: "tester",
	}
	require.Equal(t, "postgres image:postgres:16-alpine port:6432 db:testdb user:tester", cfg.Summary())
}

func TestInterpolate(t *testing.T) {
	t.Setenv("DBDOCK_TEST_TAG", "16-alpine")
	t.Setenv("DBDOCK_TEST_PW", "secret")

	cfg := &Config{
		Image:         "postgres:${DBDOCK_TEST_TAG}",
		ContainerName: "dbdock_postgres",
		AdminPassword: "${DBDOCK_TEST_PW}",
		Password:      "${DBDOCK_TEST_MISSING:-fallback}",
		Username:      "tester",
		DBName:        "testdb",
	}
	cfg.Interpolate()

	require.Equal(t, "postgres:16-alpine", cfg.Image)
	require.Equal(t, "secret", cfg.AdminPassword)
	require.Equal(t, "fallback", cfg.Password)
	require.Equal(t, "tester", cfg.Username)
}

func TestEnvOr(t *testing.T) {
	t.Setenv("DBDOCK_TEST_IMAGE", "postgres:15")

	require.Equal(t, "postgres:15", EnvOr("DBDOCK_TEST_IMAGE", "postgres:16"))
	require.Equal(t, "postgres:16", EnvOr("DBDOCK_TEST_UNSET", "postgres:16"))
}

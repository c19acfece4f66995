package mariadb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbdock/dbdock/mariadb"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := mariadb.NewConfig("")

	require.Equal(t, "mariadb", cfg.Platform)
	require.Equal(t, "mariadb:11", cfg.Image)
	require.Equal(t, "4307", cfg.Port)
	require.Equal(t, "3306", cfg.InternalPort)
}

func TestRunArgs(t *testing.T) {
	cfg := mariadb.NewConfig("")
	require.Equal(t, []string{
		"run", "-d",
		"--name", "dbdock_mariadb",
		"-p", "4307:3306",
		"-e", "MARIADB_ROOT_PASSWORD=password1",
		"mariadb:11",
	}, mariadb.Engine{}.RunArgs(cfg))
}

func TestPlatform(t *testing.T) {
	require.Equal(t, "mariadb", mariadb.Engine{}.Platform())
}

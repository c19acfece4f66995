package dbdock

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestRunSQLFileFromResources(t *testing.T) {
	resources := fstest.MapFS{
		"seed/init.sql": &fstest.MapFile{Data: []byte("create table x (id int);\n")},
	}

	exec := newFakeExec()
	engine := newFakeEngine()
	engine.sqlSupported = true
	c := NewContainer(testConfig("fake_resource_sql"), engine,
		WithExecutor(exec), WithResources(resources))

	// A leading slash on the resource path is normalized away.
	require.NoError(t, c.RunSQLFile(context.Background(), "/seed/init.sql"))
	require.Equal(t, []string{"sql:/tmp/init.sql"}, engine.recorded())
}

func TestRunSQLFileNotFound(t *testing.T) {
	exec := newFakeExec()
	engine := newFakeEngine()
	engine.sqlSupported = true
	c := NewContainer(testConfig("fake_missing_sql"), engine, WithExecutor(exec))

	err := c.RunSQLFile(context.Background(), "nowhere/missing.sql")
	require.Error(t, err)
	// Nothing was copied or executed.
	require.Empty(t, exec.callKeys())
	require.Empty(t, engine.recorded())
}

func TestRunSQLFileUnsupported(t *testing.T) {
	resources := fstest.MapFS{
		"init.sql": &fstest.MapFile{Data: []byte("select 1;\n")},
	}

	exec := newFakeExec()
	engine := newFakeEngine()
	c := NewContainer(testConfig("fake_unsupported_sql"), engine,
		WithExecutor(exec), WithResources(resources))

	err := c.RunSQLFile(context.Background(), "init.sql")
	require.ErrorIs(t, err, ErrSQLFileNotSupported)
}

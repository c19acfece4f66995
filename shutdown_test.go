package dbdock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shutdown tests share the process-wide registry, so they use distinct
// container names and never run in parallel with each other.

func TestShutdownRunsInRegistrationOrder(t *testing.T) {
	t.Cleanup(func() { _ = Shutdown() })

	var ran []string
	RegisterShutdown("shutdown_order_a", func() error {
		ran = append(ran, "a")
		return nil
	})
	RegisterShutdown("shutdown_order_b", func() error {
		ran = append(ran, "b")
		return nil
	})

	require.NoError(t, Shutdown())
	require.Equal(t, []string{"a", "b"}, ran)
}

func TestRegisterShutdownLastWins(t *testing.T) {
	t.Cleanup(func() { _ = Shutdown() })

	var ran []string
	RegisterShutdown("shutdown_replace", func() error {
		ran = append(ran, "first")
		return nil
	})
	RegisterShutdown("shutdown_replace_other", func() error {
		ran = append(ran, "other")
		return nil
	})
	RegisterShutdown("shutdown_replace", func() error {
		ran = append(ran, "second")
		return nil
	})

	require.Equal(t, []string{"shutdown_replace", "shutdown_replace_other"}, RegisteredShutdowns())
	require.NoError(t, Shutdown())
	// Replacement keeps the original position in the run order.
	require.Equal(t, []string{"second", "other"}, ran)
}

func TestShutdownCollectsErrors(t *testing.T) {
	t.Cleanup(func() { _ = Shutdown() })

	var ran []string
	RegisterShutdown("shutdown_err_a", func() error {
		ran = append(ran, "a")
		return errors.New("stop failed")
	})
	RegisterShutdown("shutdown_err_b", func() error {
		ran = append(ran, "b")
		return nil
	})

	err := Shutdown()
	require.Error(t, err)
	// A failing action must not keep later containers alive.
	require.Equal(t, []string{"a", "b"}, ran)
}

func TestShutdownClearsRegistry(t *testing.T) {
	RegisterShutdown("shutdown_clear", func() error { return nil })
	require.NoError(t, Shutdown())
	require.Empty(t, RegisteredShutdowns())
	require.NoError(t, Shutdown())
}

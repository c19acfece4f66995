package dbdock

import (
	"sync"

	"go.uber.org/multierr"
)

// shutdownRegistry holds the process-wide teardown actions, keyed by
// container name with last-registration-wins semantics. Actions are not
// hooked into process exit implicitly; the test harness or CLI drives
// Shutdown at a controlled point (typically TestMain, after m.Run).
type shutdownRegistry struct {
	mu      sync.Mutex
	order   []string
	actions map[string]func() error
}

var registry = &shutdownRegistry{
	actions: make(map[string]func() error),
}

// RegisterShutdown registers the teardown action for a container name. A
// second registration for the same name replaces the first but keeps its
// position in the run order.
func RegisterShutdown(name string, action func() error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.actions[name]; !ok {
		registry.order = append(registry.order, name)
	}
	registry.actions[name] = action
}

// Shutdown runs all registered teardown actions in registration order and
// clears the registry. Errors are collected, not short-circuited; one
// container failing to stop must not keep the others alive.
func Shutdown() error {
	registry.mu.Lock()
	order := registry.order
	actions := registry.actions
	registry.order = nil
	registry.actions = make(map[string]func() error)
	registry.mu.Unlock()

	var err error
	for _, name := range order {
		err = multierr.Append(err, actions[name]())
	}
	return err
}

// RegisteredShutdowns returns the container names with a pending teardown
// action, in registration order.
func RegisteredShutdowns() []string {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	names := make([]string, len(registry.order))
	copy(names, registry.order)
	return names
}

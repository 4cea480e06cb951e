// Package pluginctx implements the Plugin Context Manager: scoped
// resources (keyboard capture, clipboard, and similar host-side
// facilities) acquired when an engine run starts and released when it
// stops, communicating back into the running program only through the
// event bus's broadcast mechanism. Grounded on spec's design note
// ("plugin contexts -> Resource interface with acquire/release") and the
// original interpreter's CorePluginContext (__enter__/__exit__ around a
// background key listener that calls executor.broadcast).
package pluginctx

import "github.com/rs/zerolog"

// Context is a named, acquirable/releasable plugin resource. Acquire is
// called once when the engine starts a run; Release is called once when
// the run stops, for each context whose Acquire succeeded. A context whose
// Acquire returned an error never becomes active and is not released.
type Context interface {
	Name() string
	Acquire(broadcast func(topic, message string)) error
	Release() error
}

// Manager owns the set of plugin contexts an engine may acquire and
// tracks which are currently active for the running program.
type Manager struct {
	registered map[string]Context
	active     map[string]Context
	logger     zerolog.Logger
}

// NewManager builds an empty Manager.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		registered: make(map[string]Context),
		active:     make(map[string]Context),
		logger:     logger.With().Str("component", "pluginctx").Logger(),
	}
}

// Register makes a plugin context available to be acquired on Start. It
// does not itself acquire any resource.
func (m *Manager) Register(c Context) {
	m.registered[c.Name()] = c
}

// AcquireAll acquires every registered context, matching the original's
// __create_plugin_contexts which opens every registered context eagerly
// at start. A context whose Acquire fails is logged and skipped rather
// than aborting the run — a missing keyboard/clipboard should not stop a
// program that never actually invokes it.
func (m *Manager) AcquireAll(broadcast func(topic, message string)) {
	for name, c := range m.registered {
		if err := c.Acquire(broadcast); err != nil {
			m.logger.Warn().Err(err).Str("plugin_context", name).Msg("failed to acquire plugin context")
			continue
		}
		m.active[name] = c
	}
}

// Get returns the active plugin context named name, if acquired.
func (m *Manager) Get(name string) (Context, bool) {
	c, ok := m.active[name]
	return c, ok
}

// ReleaseAll releases every currently active context and clears the
// active set, matching __close_plugin_contexts.
func (m *Manager) ReleaseAll() {
	for name, c := range m.active {
		if err := c.Release(); err != nil {
			m.logger.Warn().Err(err).Str("plugin_context", name).Msg("failed to release plugin context")
		}
	}
	m.active = make(map[string]Context)
}

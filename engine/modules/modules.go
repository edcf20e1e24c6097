package modules

import (
	"fmt"

	"github.com/spaghettifunk/ember/engine/core"
)

// Module is an optional engine extension with startup/shutdown hooks. Games
// and tools register modules before the engine initializes; startup runs in
// registration order, shutdown in reverse.
type Module struct {
	Name     string
	Startup  func() error
	Shutdown func() error
}

type Registry struct {
	modules []Module
	started int
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(m Module) error {
	if m.Name == "" {
		return fmt.Errorf("module needs a name")
	}
	for _, existing := range r.modules {
		if existing.Name == m.Name {
			return fmt.Errorf("module %q registered twice", m.Name)
		}
	}
	r.modules = append(r.modules, m)
	return nil
}

// StartupModules runs every registered startup hook in registration order.
// The first failure stops the pass; modules already started stay started so
// ShutdownModules can unwind them.
func (r *Registry) StartupModules() error {
	for _, m := range r.modules[r.started:] {
		if m.Startup != nil {
			if err := m.Startup(); err != nil {
				return fmt.Errorf("module %s startup: %w", m.Name, err)
			}
		}
		r.started++
		core.LogDebug("module %s started", m.Name)
	}
	return nil
}

// ShutdownModules unwinds started modules in reverse order. Shutdown errors
// are logged, never propagated, so one bad module cannot block the rest.
func (r *Registry) ShutdownModules() {
	for i := r.started - 1; i >= 0; i-- {
		m := r.modules[i]
		if m.Shutdown != nil {
			if err := m.Shutdown(); err != nil {
				core.LogError("module %s shutdown: %s", m.Name, err)
			}
		}
	}
	r.started = 0
}

package connector

import (
	"fmt"
	"sort"
	"sync"
)

// Factory is a function that creates a new, unconnected Connector.
type Factory func() Connector

// Registry maps driver names to connector factories. Registration happens
// at startup; Open may be called concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register registers a connector factory for a driver name.
func (r *Registry) Register(driver string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[driver] = factory
}

// Open creates a connector for the configured driver, sanitizes the DSN,
// and connects it.
func (r *Registry) Open(cfg Config) (Connector, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Driver]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q (available: %v)", cfg.Driver, r.Drivers())
	}

	cfg.DSN = SanitizeDSN(cfg.Driver, cfg.DSN)

	conn := factory()
	if err := conn.Connect(cfg); err != nil {
		return nil, fmt.Errorf("connect %s database: %w", cfg.Driver, err)
	}
	return conn, nil
}

// Drivers returns the registered driver names, sorted.
func (r *Registry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for d := range r.factories {
		drivers = append(drivers, d)
	}
	sort.Strings(drivers)
	return drivers
}

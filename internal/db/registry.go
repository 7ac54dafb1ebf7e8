package db

import (
	"strings"
	"sync"
)

// ClientConfig identifies one backend connection: address list plus
// credential. Two configs with the same addresses and password share a
// client.
type ClientConfig struct {
	Addrs    []string
	Password string
}

func (c ClientConfig) key() string {
	return strings.Join(c.Addrs, ",") + "\x00" + c.Password
}

// Factory creates a Store for a config. Injected so the registry stays
// backend-agnostic.
type Factory func(cfg ClientConfig) (Store, error)

// Registry caches one Store per distinct configuration. Concurrent first-use
// lookups for the same config create exactly one client: creation happens
// under the lock.
type Registry struct {
	factory Factory

	mu      sync.Mutex
	clients map[string]Store
}

// NewRegistry creates a client registry backed by the given factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		clients: make(map[string]Store),
	}
}

// Get returns the cached client for cfg, creating it on first use.
func (r *Registry) Get(cfg ClientConfig) (Store, error) {
	key := cfg.key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.clients[key]; ok {
		return s, nil
	}

	s, err := r.factory(cfg)
	if err != nil {
		return nil, err
	}
	r.clients[key] = s
	return s, nil
}

// Close shuts down every cached client and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, s := range r.clients {
		s.Close()
		delete(r.clients, key)
	}
}

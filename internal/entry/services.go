package entry

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Service identifiers registered by the Manager.
const (
	Domain                    = "integration_list_exporter"
	ServiceExportIntegrations = "export_integrations"
)

// Handler runs a registered command.
type Handler func(ctx context.Context) error

// Services is a registry of named commands, grouped by domain.
//
// Thread Safety: all methods are safe for concurrent use.
type Services struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler
}

// NewServices creates an empty registry.
func NewServices() *Services {
	return &Services{handlers: make(map[string]map[string]Handler)}
}

// Register adds or replaces the handler for domain/name.
func (s *Services) Register(domain, name string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers[domain] == nil {
		s.handlers[domain] = make(map[string]Handler)
	}
	s.handlers[domain][name] = h
}

// Remove deletes the handler for domain/name. Removing an unknown command is a no-op.
func (s *Services) Remove(domain, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers[domain], name)
	if len(s.handlers[domain]) == 0 {
		delete(s.handlers, domain)
	}
}

// Has reports whether domain/name is registered.
func (s *Services) Has(domain, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.handlers[domain][name]
	return ok
}

// Call runs the handler for domain/name.
// The handler runs without the registry lock held.
func (s *Services) Call(ctx context.Context, domain, name string) error {
	s.mu.RLock()
	h, ok := s.handlers[domain][name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrServiceNotFound, domain, name)
	}
	return h(ctx)
}

// List returns the registered commands as "domain.name", sorted.
func (s *Services) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for domain, names := range s.handlers {
		for name := range names {
			out = append(out, domain+"."+name)
		}
	}
	sort.Strings(out)
	return out
}

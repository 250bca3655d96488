package platform

import (
	"fmt"
	"log/slog"
)

type Registry struct {
	publishers map[string]Publisher
}

func NewRegistry() *Registry {
	return &Registry{publishers: make(map[string]Publisher)}
}

func (r *Registry) Register(p Publisher) error {
	name := p.Name()
	if _, exists := r.publishers[name]; exists {
		return fmt.Errorf("publisher for platform %s already registered", name)
	}

	r.publishers[name] = p
	slog.Info("publisher registered", "platform", name)
	return nil
}

func (r *Registry) Get(name string) (Publisher, error) {
	p, exists := r.publishers[name]
	if !exists {
		return nil, fmt.Errorf("publisher for platform %s not found", name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.publishers))
	for name := range r.publishers {
		names = append(names, name)
	}
	return names
}

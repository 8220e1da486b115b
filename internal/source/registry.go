package source

import (
	"fmt"

	"KeywordAnalyzer/internal/ports"
)

// Registry keeps keyword sources in registration order.
type Registry struct {
	order   []string
	sources map[string]ports.KeywordSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.KeywordSource{}}
}

// Register adds or replaces a source. A replaced source keeps its position.
func (r *Registry) Register(src ports.KeywordSource) {
	if r.sources == nil {
		r.sources = map[string]ports.KeywordSource{}
	}
	if _, ok := r.sources[src.Name()]; !ok {
		r.order = append(r.order, src.Name())
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.KeywordSource, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("keyword source %s is not registered", name)
}

// Names lists registered sources in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

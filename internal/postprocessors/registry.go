package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

// BuilderFunc constructs a processor from its section of the pipeline
// config, e.g. {"max_tokens": 400, "overlap_tokens": 100} for the chunker.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves processor names from config.toml to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry. Call RegisterDefaults to add the
// built-in processors.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the named processor. Unknown names wrap
// domain.ErrUnsupportedType.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	if builder, ok := r.builders[name]; ok {
		return builder(cfg)
	}
	return nil, fmt.Errorf("%w: unknown processor: %s", domain.ErrUnsupportedType, name)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names lists registered processors alphabetically.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}

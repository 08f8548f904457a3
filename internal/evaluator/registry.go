package evaluator

import (
	"fmt"
	"sort"
)

// Factory builds an evaluator from its parameter map
type Factory func(params Params) (Evaluator, error)

// Registry maps evaluator names to factories
// ⭐ SSOT: 평가기 등록은 여기서만
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in evaluators
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(BandName, func(p Params) (Evaluator, error) { return NewBandEvaluator(p) })
	r.Register(CloudName, func(p Params) (Evaluator, error) { return NewCloudEvaluator(p) })
	return r
}

// Register adds or replaces a factory
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the enabled evaluators in order. Unknown names are an error.
func (r *Registry) Build(enabled []string, params map[string]Params) ([]Evaluator, error) {
	out := make([]Evaluator, 0, len(enabled))
	seen := make(map[string]bool, len(enabled))

	for _, name := range enabled {
		if seen[name] {
			return nil, fmt.Errorf("evaluator %q enabled twice", name)
		}
		seen[name] = true

		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown evaluator %q (available: %v)", name, r.Names())
		}
		ev, err := f(params[name])
		if err != nil {
			return nil, fmt.Errorf("evaluator %s: %w", name, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

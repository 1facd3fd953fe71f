package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-docrules/pkg/model"
)

// Registry stores document types by name and preserves registration order.
// It is safe for concurrent use; definitions are immutable once registered.
type Registry struct {
	mu    sync.RWMutex
	types map[string]model.DocumentType
	order []string
	check model.CheckOptions
}

// Option customises a Registry.
type Option func(*Registry)

// WithDerivations declares the derivations definitions may reference. The
// built-in derivations are always available.
func WithDerivations(derivations model.Derivations) Option {
	return func(r *Registry) {
		r.check.Derivations = r.check.Derivations.Merge(derivations)
	}
}

// WithGenerators declares the generators derive-once defaults may reference.
func WithGenerators(generators model.Generators) Option {
	return func(r *Registry) {
		if r.check.Generators == nil {
			r.check.Generators = make(model.Generators, len(generators))
		}
		for name, gen := range generators {
			r.check.Generators[name] = gen
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		types: make(map[string]model.DocumentType),
		check: model.CheckOptions{Derivations: model.BuiltinDerivations()},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register validates doc and adds it. Duplicate type or field names return a
// *DuplicateNameError; other definition problems are wrapped model.Check
// errors. A failed registration leaves the registry unchanged.
func (r *Registry) Register(doc model.DocumentType) error {
	name := doc.Name
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("registry: document type name is required")
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("registry: document type name %q has surrounding whitespace", name)
	}

	seen := make(map[string]struct{}, len(doc.Fields))
	for _, field := range doc.Fields {
		if _, exists := seen[field.Name]; exists {
			return &DuplicateNameError{Type: name, Field: field.Name}
		}
		seen[field.Name] = struct{}{}
	}

	if err := model.Check(doc, r.check); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return &DuplicateNameError{Type: name}
	}
	r.types[name] = doc
	r.order = append(r.order, name)
	return nil
}

// RegisterAll registers every document type or none of them.
func (r *Registry) RegisterAll(docs ...model.DocumentType) error {
	staged := New()
	staged.check = r.check
	for _, doc := range docs {
		if err := staged.Register(doc); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range staged.order {
		if _, exists := r.types[name]; exists {
			return &DuplicateNameError{Type: name}
		}
	}
	for _, name := range staged.order {
		r.types[name] = staged.types[name]
		r.order = append(r.order, name)
	}
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(doc model.DocumentType) {
	if err := r.Register(doc); err != nil {
		panic(err)
	}
}

// Get retrieves a document type by name.
func (r *Registry) Get(name string) (model.DocumentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.types[name]
	if !ok {
		return model.DocumentType{}, &NotFoundError{Name: name}
	}
	return doc, nil
}

// List returns the registered document types in registration order.
func (r *Registry) List() []model.DocumentType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.DocumentType, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.types[name])
	}
	return out
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Has reports whether a document type is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.types[name]
	return ok
}

// CheckOptions returns the derivations and generators definitions are
// checked against.
func (r *Registry) CheckOptions() model.CheckOptions {
	return r.check
}

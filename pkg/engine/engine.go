package engine

import (
	"fmt"

	"github.com/goliatone/go-docrules/pkg/contenttypes"
	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/preview"
	"github.com/goliatone/go-docrules/pkg/registry"
	"github.com/goliatone/go-docrules/pkg/validation"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility"
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithRegistry injects a document type registry. Without one the engine
// serves the built-in content model.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithTokenSource sets the private-link key source used by the built-in
// registry. Ignored when WithRegistry is supplied.
func WithTokenSource(source contenttypes.TokenSource) Option {
	return func(e *Engine) {
		e.tokens = source
	}
}

// WithEvaluator swaps the visibility predicate evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = evaluator
	}
}

// WithExtras exposes ambient values to predicates under `extras.`.
func WithExtras(extras value.Snapshot) Option {
	return func(e *Engine) {
		e.extras = extras
	}
}

// Engine evaluates documents against registered types. It holds no per-call
// state and is safe for concurrent use.
type Engine struct {
	registry      *registry.Registry
	tokens        contenttypes.TokenSource
	evaluator     visibility.Evaluator
	extras        value.Snapshot
	initialiseErr error
}

// New constructs an Engine applying any provided options.
func New(options ...Option) *Engine {
	e := &Engine{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.registry == nil {
		reg, err := contenttypes.NewRegistry(e.tokens)
		if err != nil {
			e.initialiseErr = fmt.Errorf("engine: built-in content types: %w", err)
			reg = registry.New()
		}
		e.registry = reg
	}
	return e
}

// Registry exposes the registry the engine reads definitions from.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Result bundles everything an editor needs to redraw a document form.
type Result struct {
	Type       string             `json:"type"`
	Visibility visibility.Map     `json:"visibility"`
	Issues     []validation.Issue `json:"issues"`
	Preview    model.Preview      `json:"preview"`
	// Members holds list-member previews for visible array fields whose
	// members declare one, keyed by field name.
	Members map[string][]model.Preview `json:"members,omitempty"`
}

// Valid reports whether no issue blocks saving. Warnings do not.
func (r Result) Valid() bool {
	return !validation.HasErrors(r.Issues)
}

// Evaluate computes visibility, validation issues and preview for snapshot
// against the named document type. Only an unknown type is an error; data
// problems are reported as issues.
func (e *Engine) Evaluate(name string, snapshot value.Snapshot) (Result, error) {
	doc, err := e.documentType(name)
	if err != nil {
		return Result{}, err
	}

	opts := e.options()
	vis := visibility.Compute(doc, snapshot, opts...)
	issues := validation.Validate(doc, snapshot, opts...)
	if issues == nil {
		issues = []validation.Issue{}
	}

	return Result{
		Type:       doc.Name,
		Visibility: vis,
		Issues:     issues,
		Preview:    preview.Compute(doc, snapshot, opts...),
		Members:    memberPreviews(doc, snapshot, vis),
	}, nil
}

// Initialize returns a copy of snapshot with literal initial values and
// generated values applied to unset top-level fields. The caller persists the
// result, so generated values such as private-link keys are produced once.
// Derived values are not stored; they are recomputed on every evaluation.
func (e *Engine) Initialize(name string, snapshot value.Snapshot) (value.Snapshot, error) {
	doc, err := e.documentType(name)
	if err != nil {
		return nil, err
	}

	generators := e.registry.CheckOptions().Generators
	out := snapshot.Clone()
	for _, field := range doc.Fields {
		if current, ok := out.Get(field.Name); ok && !current.IsNull() {
			continue
		}
		switch field.Default.Kind {
		case model.DefaultLiteral:
			out[field.Name] = field.Default.Value
		case model.DefaultDeriveOnce:
			gen, ok := generators[field.Default.Using]
			if !ok {
				return nil, fmt.Errorf("engine: field %q: generator %q not configured", field.Name, field.Default.Using)
			}
			generated, err := gen()
			if err != nil {
				return nil, fmt.Errorf("engine: field %q: %w", field.Name, err)
			}
			out[field.Name] = generated
		}
	}
	return out, nil
}

func (e *Engine) documentType(name string) (model.DocumentType, error) {
	if e.initialiseErr != nil {
		return model.DocumentType{}, e.initialiseErr
	}
	return e.registry.Get(name)
}

func (e *Engine) options() []visibility.Option {
	opts := []visibility.Option{
		visibility.WithDerivations(e.registry.CheckOptions().Derivations),
	}
	if e.evaluator != nil {
		opts = append(opts, visibility.WithEvaluator(e.evaluator))
	}
	if e.extras != nil {
		opts = append(opts, visibility.WithExtras(e.extras))
	}
	return opts
}

func memberPreviews(doc model.DocumentType, snapshot value.Snapshot, vis visibility.Map) map[string][]model.Preview {
	var out map[string][]model.Preview
	for _, field := range doc.Fields {
		if field.Type != model.TypeArray || !vis.Visible(field.Name) || !hasMemberPreview(field) {
			continue
		}
		list, ok := snapshot.Get(field.Name)
		if !ok || list.Kind() != value.KindList || list.Len() == 0 {
			continue
		}
		if out == nil {
			out = make(map[string][]model.Preview)
		}
		out[field.Name] = preview.Members(field, list)
	}
	return out
}

func hasMemberPreview(field model.FieldDescriptor) bool {
	for _, member := range field.Of {
		if member.Preview != nil {
			return true
		}
	}
	return false
}

package visibility

import (
	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility/expr"
)

// Context aliases expr.Context so callers configuring evaluators do not need
// to import the expression package.
type Context = expr.Context

// Evaluator determines whether a field should be visible based on its
// compiled rule and the evaluation context.
type Evaluator interface {
	Eval(fieldPath string, rule *expr.Expr, ctx Context) (bool, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath string, rule *expr.Expr, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath string, rule *expr.Expr, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// DefaultEvaluator evaluates the rule as-is.
var DefaultEvaluator Evaluator = EvaluatorFunc(func(_ string, rule *expr.Expr, ctx Context) (bool, error) {
	return rule.Eval(ctx)
})

// Map records which fields are visible. Top-level fields are keyed by name,
// object sub-fields by dotted path ("hero.image").
type Map map[string]bool

// Visible reports whether path is visible. Unknown paths are hidden.
func (m Map) Visible(path string) bool {
	return m[path]
}

// Option customises Compute.
type Option func(*options)

type options struct {
	evaluator   Evaluator
	extras      value.Snapshot
	derivations model.Derivations
}

// WithEvaluator swaps the predicate evaluator, e.g. to log or trace rules.
func WithEvaluator(evaluator Evaluator) Option {
	return func(o *options) {
		if evaluator != nil {
			o.evaluator = evaluator
		}
	}
}

// WithExtras exposes ambient values to predicates under the `extras.` prefix.
func WithExtras(extras value.Snapshot) Option {
	return func(o *options) {
		o.extras = extras
	}
}

// WithDerivations supplies the derivations used to resolve defaults.
func WithDerivations(derivations model.Derivations) Option {
	return func(o *options) {
		o.derivations = derivations
	}
}

// EvaluatorFor returns the evaluator Compute uses for opts.
func EvaluatorFor(opts ...Option) Evaluator {
	return newOptions(opts).evaluator
}

// NewContext resolves defaults on snapshot and returns the context predicates
// are evaluated against.
func NewContext(doc model.DocumentType, snapshot value.Snapshot, opts ...Option) Context {
	cfg := newOptions(opts)
	return Context{
		Values: model.ResolveSnapshot(doc, snapshot, cfg.derivations),
		Extras: cfg.extras,
	}
}

// Compute evaluates every field's visibility predicate in declaration order
// against the snapshot with defaults applied. Fields without a predicate are
// visible. A predicate that fails to evaluate hides its field. Sub-fields of a
// hidden object are hidden.
func Compute(doc model.DocumentType, snapshot value.Snapshot, opts ...Option) Map {
	cfg := newOptions(opts)
	ctx := NewContext(doc, snapshot, opts...)

	out := make(Map, len(doc.Fields))
	computeFields(out, doc.Fields, "", true, cfg.evaluator, ctx)
	return out
}

func computeFields(out Map, fields []model.FieldDescriptor, prefix string, parentVisible bool, evaluator Evaluator, ctx Context) {
	for _, field := range fields {
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}

		visible := parentVisible
		if visible && field.VisibleWhen != nil {
			ok, err := evaluator.Eval(path, field.VisibleWhen, ctx)
			visible = err == nil && ok
		}
		out[path] = visible

		if len(field.Fields) > 0 {
			computeFields(out, field.Fields, path, visible, evaluator, ctx)
		}
	}
}

func newOptions(opts []Option) options {
	cfg := options{evaluator: DefaultEvaluator}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.derivations == nil {
		cfg.derivations = model.BuiltinDerivations()
	}
	return cfg
}

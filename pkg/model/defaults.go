package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-docrules/pkg/value"
)

// DefaultKind selects how a field's default value is produced.
type DefaultKind string

const (
	DefaultNone DefaultKind = ""
	// DefaultLiteral is a constant initial value.
	DefaultLiteral DefaultKind = "literal"
	// DefaultDerive computes the value from other fields on every resolution.
	DefaultDerive DefaultKind = "derive"
	// DefaultDeriveOnce generates the value once, when the document is
	// initialised. The caller stores the result on the document.
	DefaultDeriveOnce DefaultKind = "deriveOnce"
)

// Default declares a field's default value.
type Default struct {
	Kind  DefaultKind
	Value value.Value
	// Using names the derivation (derive) or generator (deriveOnce).
	Using string
	// From lists the document paths passed to the derivation, in order.
	From []string
}

// Literal returns a literal default.
func Literal(v value.Value) Default {
	return Default{Kind: DefaultLiteral, Value: v}
}

// Derive returns a derivation default.
func Derive(using string, from ...string) Default {
	return Default{Kind: DefaultDerive, Using: using, From: append([]string(nil), from...)}
}

// DeriveOnce returns a generated-once default.
func DeriveOnce(generator string) Default {
	return Default{Kind: DefaultDeriveOnce, Using: generator}
}

// DeriveFunc computes a value from the values at Default.From.
type DeriveFunc func(args []value.Value) value.Value

// Derivations maps derivation names to functions.
type Derivations map[string]DeriveFunc

// Generator produces a fresh value for derive-once defaults.
type Generator func() (value.Value, error)

// Generators maps generator names to implementations.
type Generators map[string]Generator

// BuiltinDerivations returns the derivations every registry understands.
func BuiltinDerivations() Derivations {
	return Derivations{
		"copy":    deriveCopy,
		"slugify": deriveSlug,
	}
}

// Merge returns a new set holding d overlaid with extra.
func (d Derivations) Merge(extra Derivations) Derivations {
	out := make(Derivations, len(d)+len(extra))
	for k, fn := range d {
		out[k] = fn
	}
	for k, fn := range extra {
		out[k] = fn
	}
	return out
}

func deriveCopy(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Null()
	}
	return args[0]
}

const slugMaxLength = 96

func deriveSlug(args []value.Value) value.Value {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if s := strings.TrimSpace(arg.Display()); s != "" {
			parts = append(parts, s)
		}
	}
	slug := Slugify(strings.Join(parts, " "))
	if slug == "" {
		return value.Null()
	}
	return value.Object(map[string]value.Value{
		"_type":   value.String("slug"),
		"current": value.String(slug),
	})
}

// Slugify lowercases s, strips diacritics and joins alphanumeric runs with
// hyphens, truncated to 96 characters.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	out := b.String()
	if r := []rune(out); len(r) > slugMaxLength {
		out = strings.TrimRight(string(r[:slugMaxLength]), "-")
	}
	return out
}

// ResolveValue returns the explicit value of desc in snapshot, falling back to
// its literal or derived default. Derive-once defaults resolve to null until
// the document is initialised. derivations may be nil, in which case the
// built-in set is used.
func ResolveValue(desc FieldDescriptor, snapshot value.Snapshot, derivations Derivations) value.Value {
	if v, ok := snapshot.Get(desc.Name); ok && !v.IsNull() {
		return v
	}

	switch desc.Default.Kind {
	case DefaultLiteral:
		return desc.Default.Value
	case DefaultDerive:
		if derivations == nil {
			derivations = BuiltinDerivations()
		}
		fn, ok := derivations[desc.Default.Using]
		if !ok {
			return value.Null()
		}
		args := make([]value.Value, 0, len(desc.Default.From))
		for _, path := range desc.Default.From {
			arg, _ := snapshot.Lookup(path)
			args = append(args, arg)
		}
		return fn(args)
	default:
		return value.Null()
	}
}

// ResolveSnapshot returns a new snapshot with defaults applied to every unset
// top-level field. Derivations see the resolved values of the fields they
// read, so chained derivations resolve regardless of declaration order. The
// input snapshot is not modified.
func ResolveSnapshot(doc DocumentType, snapshot value.Snapshot, derivations Derivations) value.Snapshot {
	out := snapshot.Clone()
	index := make(map[string]FieldDescriptor, len(doc.Fields))
	for _, field := range doc.Fields {
		index[field.Name] = field
	}

	state := make(map[string]int, len(doc.Fields))
	var resolve func(name string)
	resolve = func(name string) {
		desc, ok := index[name]
		if !ok || state[name] != 0 {
			return
		}
		state[name] = 1
		if desc.Default.Kind == DefaultDerive {
			for _, path := range desc.Default.From {
				resolve(rootSegment(path))
			}
		}
		v := ResolveValue(desc, out, derivations)
		if !v.IsNull() {
			out[name] = v
		}
		state[name] = 2
	}

	for _, field := range doc.Fields {
		resolve(field.Name)
	}
	return out
}

func rootSegment(path string) string {
	path = strings.TrimSpace(path)
	if idx := strings.IndexByte(path, '.'); idx >= 0 {
		return path[:idx]
	}
	return path
}

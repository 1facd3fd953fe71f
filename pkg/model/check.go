package model

import (
	"errors"
	"fmt"
	"strings"
)

// CheckOptions supplies the named derivations and generators a definition may
// reference. Nil maps skip the corresponding name checks.
type CheckOptions struct {
	Derivations Derivations
	Generators  Generators
}

// Check validates the static invariants of a document type: unique names,
// well-formed types and rules, predicates that only reference declared
// fields, and an acyclic derivation graph.
func Check(doc DocumentType, opts CheckOptions) error {
	if strings.TrimSpace(doc.Name) == "" {
		return errors.New("model: document type name is required")
	}

	declared := make(map[string]int, len(doc.Fields))
	for idx, field := range doc.Fields {
		if _, exists := declared[field.Name]; exists {
			return fmt.Errorf("model: document type %q declares field %q twice", doc.Name, field.Name)
		}
		declared[field.Name] = idx
	}

	for idx, field := range doc.Fields {
		path := field.Name
		if err := checkField(field, path, opts); err != nil {
			return fmt.Errorf("model: document type %q: %w", doc.Name, err)
		}
		if err := checkVisibility(field, path, idx, declared); err != nil {
			return fmt.Errorf("model: document type %q: %w", doc.Name, err)
		}
		if err := checkRuleReferences(field, path, declared); err != nil {
			return fmt.Errorf("model: document type %q: %w", doc.Name, err)
		}
		if err := checkDefault(field, path, declared, opts); err != nil {
			return fmt.Errorf("model: document type %q: %w", doc.Name, err)
		}
	}

	if err := checkDerivationCycles(doc); err != nil {
		return fmt.Errorf("model: document type %q: %w", doc.Name, err)
	}
	return nil
}

func checkField(field FieldDescriptor, path string, opts CheckOptions) error {
	if strings.TrimSpace(field.Name) == "" {
		return fmt.Errorf("field at %q has no name", path)
	}
	if !field.Type.Valid() {
		return fmt.Errorf("field %q has unsupported type %q", path, field.Type)
	}
	if field.Type == TypeArray && len(field.Of) == 0 {
		return fmt.Errorf("array field %q declares no member types", path)
	}

	for _, rule := range field.Rules {
		switch rule.Kind {
		case RuleRequired:
		case RuleMaxLength:
			if rule.Max <= 0 {
				return fmt.Errorf("field %q: maxLength must be positive, got %d", path, rule.Max)
			}
		case RuleCustom:
			if rule.Assert == nil {
				return fmt.Errorf("field %q: custom rule has no assertion", path)
			}
		default:
			return fmt.Errorf("field %q: unknown rule %q", path, rule.Kind)
		}
	}

	seen := make(map[string]struct{}, len(field.Fields))
	for _, sub := range field.Fields {
		if _, exists := seen[sub.Name]; exists {
			return fmt.Errorf("object field %q declares sub-field %q twice", path, sub.Name)
		}
		seen[sub.Name] = struct{}{}
		if err := checkField(sub, path+"."+sub.Name, opts); err != nil {
			return err
		}
	}

	members := make(map[string]struct{}, len(field.Of))
	for _, member := range field.Of {
		if _, exists := members[member.Name]; exists {
			return fmt.Errorf("array field %q declares member %q twice", path, member.Name)
		}
		members[member.Name] = struct{}{}
		if err := checkField(member, path+"[]"+member.Name, opts); err != nil {
			return err
		}
	}
	return nil
}

// checkVisibility enforces that predicates read only fields declared before
// the top-level field that owns them. Visibility therefore never depends on
// another field's computed visibility and cannot form cycles.
func checkVisibility(field FieldDescriptor, path string, position int, declared map[string]int) error {
	var walk func(f FieldDescriptor, p string) error
	walk = func(f FieldDescriptor, p string) error {
		for _, ident := range f.VisibleWhen.Identifiers() {
			root := rootSegment(ident)
			idx, ok := declared[root]
			if !ok {
				return fmt.Errorf("field %q: visibility references unknown field %q", p, root)
			}
			if idx >= position {
				return fmt.Errorf("field %q: visibility references %q which is not declared before it", p, root)
			}
		}
		for _, sub := range f.Fields {
			if err := walk(sub, p+"."+sub.Name); err != nil {
				return err
			}
		}
		for _, member := range f.Of {
			if err := walk(member, p+"[]"+member.Name); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(field, path)
}

func checkRuleReferences(field FieldDescriptor, path string, declared map[string]int) error {
	for _, rule := range field.Rules {
		for _, predicate := range []interface{ Identifiers() []string }{rule.When, rule.Assert} {
			for _, ident := range predicate.Identifiers() {
				if _, ok := declared[rootSegment(ident)]; !ok {
					return fmt.Errorf("field %q: rule references unknown field %q", path, rootSegment(ident))
				}
			}
		}
	}
	for _, sub := range field.Fields {
		if err := checkRuleReferences(sub, path+"."+sub.Name, declared); err != nil {
			return err
		}
	}
	for _, member := range field.Of {
		if err := checkRuleReferences(member, path+"[]"+member.Name, declared); err != nil {
			return err
		}
	}
	return nil
}

func checkDefault(field FieldDescriptor, path string, declared map[string]int, opts CheckOptions) error {
	switch field.Default.Kind {
	case DefaultNone, DefaultLiteral:
		return nil
	case DefaultDerive:
		if field.Default.Using == "" {
			return fmt.Errorf("field %q: derivation is unnamed", path)
		}
		if opts.Derivations != nil {
			if _, ok := opts.Derivations[field.Default.Using]; !ok {
				return fmt.Errorf("field %q: unknown derivation %q", path, field.Default.Using)
			}
		}
		if len(field.Default.From) == 0 {
			return fmt.Errorf("field %q: derivation %q reads no fields", path, field.Default.Using)
		}
		for _, src := range field.Default.From {
			if _, ok := declared[rootSegment(src)]; !ok {
				return fmt.Errorf("field %q: derivation reads unknown field %q", path, rootSegment(src))
			}
		}
		return nil
	case DefaultDeriveOnce:
		if field.Default.Using == "" {
			return fmt.Errorf("field %q: generator is unnamed", path)
		}
		if opts.Generators != nil {
			if _, ok := opts.Generators[field.Default.Using]; !ok {
				return fmt.Errorf("field %q: unknown generator %q", path, field.Default.Using)
			}
		}
		return nil
	default:
		return fmt.Errorf("field %q: unknown default kind %q", path, field.Default.Kind)
	}
}

func checkDerivationCycles(doc DocumentType) error {
	edges := make(map[string][]string, len(doc.Fields))
	for _, field := range doc.Fields {
		if field.Default.Kind != DefaultDerive {
			continue
		}
		for _, src := range field.Default.From {
			edges[field.Name] = append(edges[field.Name], rootSegment(src))
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(edges))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			cycle := append([]string(nil), stack...)
			for i, entry := range cycle {
				if entry == name {
					cycle = cycle[i:]
					break
				}
			}
			cycle = append(cycle, name)
			return fmt.Errorf("derivation cycle %s", strings.Join(cycle, " -> "))
		case done:
			return nil
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range edges[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, field := range doc.Fields {
		if err := visit(field.Name); err != nil {
			return err
		}
	}
	return nil
}

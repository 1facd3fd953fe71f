package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type node interface {
	eval(ctx Context) (bool, error)
	walk(fn func(path string))
	String() string
}

type orNode struct {
	left  node
	right node
}

func (n orNode) eval(ctx Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.eval(ctx)
}

func (n orNode) walk(fn func(string)) { n.left.walk(fn); n.right.walk(fn) }
func (n orNode) String() string       { return n.left.String() + " || " + n.right.String() }

type andNode struct {
	left  node
	right node
}

func (n andNode) eval(ctx Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.eval(ctx)
}

func (n andNode) walk(fn func(string)) { n.left.walk(fn); n.right.walk(fn) }

func (n andNode) String() string {
	return wrapOr(n.left) + " && " + wrapOr(n.right)
}

type notNode struct {
	inner node
}

func (n notNode) eval(ctx Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n notNode) walk(fn func(string)) { n.inner.walk(fn) }

func (n notNode) String() string {
	switch n.inner.(type) {
	case truthyNode, groupNode, notNode, constNode:
		return "!" + n.inner.String()
	default:
		return "!(" + n.inner.String() + ")"
	}
}

type groupNode struct {
	inner node
}

func (n groupNode) eval(ctx Context) (bool, error) { return n.inner.eval(ctx) }
func (n groupNode) walk(fn func(string))           { n.inner.walk(fn) }
func (n groupNode) String() string                 { return "(" + n.inner.String() + ")" }

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

func (l literal) String() string {
	if l.kind == litString {
		return strconv.Quote(l.raw)
	}
	return l.raw
}

type compareNode struct {
	path    string
	op      tokenKind
	literal literal
}

func (n compareNode) eval(ctx Context) (bool, error) {
	v, _ := lookup(ctx, n.path)

	var equal bool
	switch n.literal.kind {
	case litNull:
		equal = v.IsNull()
	case litBool:
		equal = coerceBool(v) == (n.literal.raw == "true")
	case litNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number literal %q", n.literal.raw)
		}
		got, ok := coerceNumber(v)
		equal = ok && got == want
	case litString:
		got, ok := v.Str()
		if !ok {
			got = v.Display()
		}
		equal = !v.IsNull() && got == n.literal.raw
	default:
		return false, fmt.Errorf("visibility/expr: unsupported literal")
	}

	switch n.op {
	case tokenEq:
		return equal, nil
	case tokenNeq:
		return !equal, nil
	default:
		return false, fmt.Errorf("visibility/expr: unsupported operator %q", n.opString())
	}
}

func (n compareNode) walk(fn func(string)) { fn(n.path) }

func (n compareNode) String() string {
	return n.path + " " + n.opString() + " " + n.literal.String()
}

func (n compareNode) opString() string {
	switch n.op {
	case tokenEq:
		return "=="
	case tokenNeq:
		return "!="
	default:
		return "?"
	}
}

type truthyNode struct {
	path string
}

func (n truthyNode) eval(ctx Context) (bool, error) {
	v, ok := lookup(ctx, n.path)
	if !ok {
		return false, nil
	}
	return v.Truthy(), nil
}

func (n truthyNode) walk(fn func(string)) { fn(n.path) }
func (n truthyNode) String() string       { return n.path }

type constNode struct {
	value bool
}

func (n constNode) eval(Context) (bool, error) { return n.value, nil }
func (n constNode) walk(func(string))          {}
func (n constNode) String() string             { return strconv.FormatBool(n.value) }

func wrapOr(n node) string {
	if _, ok := n.(orNode); ok {
		return "(" + n.String() + ")"
	}
	return n.String()
}

// Programmatic constructors. Each returns an Expr whose String() parses back
// to an equivalent tree.

// Eq holds when the value at path equals lit (string, number, bool or nil).
func Eq(path string, lit any) *Expr {
	return build(compareNode{path: path, op: tokenEq, literal: literalOf(lit)})
}

// Neq holds when the value at path differs from lit.
func Neq(path string, lit any) *Expr {
	return build(compareNode{path: path, op: tokenNeq, literal: literalOf(lit)})
}

// Truthy holds when the value at path is set and non-empty.
func Truthy(path string) *Expr {
	return build(truthyNode{path: path})
}

// Not negates e.
func Not(e *Expr) *Expr {
	return build(notNode{inner: rootOf(e)})
}

// And holds when every operand holds. No operands always holds.
func And(operands ...*Expr) *Expr {
	return fold(operands, func(l, r node) node { return andNode{left: l, right: r} }, true)
}

// Or holds when any operand holds. No operands never holds.
func Or(operands ...*Expr) *Expr {
	return fold(operands, func(l, r node) node { return orNode{left: l, right: r} }, false)
}

func fold(operands []*Expr, join func(l, r node) node, empty bool) *Expr {
	var acc node
	for _, operand := range operands {
		n := rootOf(operand)
		if acc == nil {
			acc = n
			continue
		}
		acc = join(acc, n)
	}
	if acc == nil {
		acc = constNode{value: empty}
	}
	return build(acc)
}

func rootOf(e *Expr) node {
	if e == nil || e.root == nil {
		return constNode{value: true}
	}
	if _, ok := e.root.(orNode); ok {
		return groupNode{inner: e.root}
	}
	return e.root
}

func build(n node) *Expr {
	return &Expr{src: n.String(), root: n}
}

func literalOf(lit any) literal {
	switch v := lit.(type) {
	case nil:
		return literal{kind: litNull, raw: "null"}
	case bool:
		return literal{kind: litBool, raw: strconv.FormatBool(v)}
	case string:
		return literal{kind: litString, raw: v}
	case int:
		return literal{kind: litNumber, raw: strconv.Itoa(v)}
	case int64:
		return literal{kind: litNumber, raw: strconv.FormatInt(v, 10)}
	case float64:
		return literal{kind: litNumber, raw: strconv.FormatFloat(v, 'f', -1, 64)}
	default:
		return literal{kind: litString, raw: strings.TrimSpace(fmt.Sprint(v))}
	}
}

package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the shape of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindAsset
	KindObject
	KindList
	// KindUnsupported marks input the content model has no shape for. It
	// never matches a declared field type.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindAsset:
		return "asset"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// AssetRef identifies an unresolved asset (image, file) held by the external
// content store. The core never dereferences it.
type AssetRef struct {
	ID   string `json:"_ref"`
	Type string `json:"_type,omitempty"`
}

// Value is an immutable tagged value supplied by the content store. The zero
// Value is null.
type Value struct {
	kind  Kind
	str   string
	num   float64
	flag  bool
	asset AssetRef
	obj   map[string]Value
	list  []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps a string scalar.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric scalar.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a boolean scalar.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Asset wraps an asset reference.
func Asset(ref AssetRef) Value { return Value{kind: KindAsset, asset: ref} }

// Object builds a composite value. The map is copied.
func Object(fields map[string]Value) Value {
	cloned := make(map[string]Value, len(fields))
	for k, v := range fields {
		cloned[k] = v
	}
	return Value{kind: KindObject, obj: cloned}
}

// Unsupported records a value of a Go type the model cannot represent.
// goType names the original type for diagnostics.
func Unsupported(goType string) Value { return Value{kind: KindUnsupported, str: goType} }

// List builds a list value. The slice is copied.
func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// GoType returns the original Go type of an unsupported value, or "".
func (v Value) GoType() string {
	if v.kind != KindUnsupported {
		return ""
	}
	return v.str
}

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload and whether the value is a number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// BoolValue returns the boolean payload and whether the value is a boolean.
func (v Value) BoolValue() (bool, bool) { return v.flag, v.kind == KindBool }

// AssetRef returns the asset payload and whether the value is an asset.
func (v Value) AssetRef() (AssetRef, bool) { return v.asset, v.kind == KindAsset }

// Field returns a member of an object value.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	out, ok := v.obj[name]
	return out, ok
}

// Keys returns the sorted member names of an object value.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns a copy of the list items.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.list...)
}

// Len reports the number of runes, members or items depending on kind.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len([]rune(v.str))
	case KindObject:
		return len(v.obj)
	case KindList:
		return len(v.list)
	default:
		return 0
	}
}

// TypeName returns the `_type` member of an object value, if any.
func (v Value) TypeName() string {
	if v.kind == KindAsset {
		return v.asset.Type
	}
	t, ok := v.Field("_type")
	if !ok {
		return ""
	}
	s, _ := t.Str()
	return s
}

// Empty reports whether a value counts as unset: null, blank strings, empty
// lists and objects, and assets without an id.
func (v Value) Empty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindAsset:
		return strings.TrimSpace(v.asset.ID) == ""
	case KindObject:
		for key, member := range v.obj {
			if strings.HasPrefix(key, "_") {
				continue
			}
			if !member.Empty() {
				return false
			}
		}
		return true
	case KindList:
		return len(v.list) == 0
	default:
		return false
	}
}

// Truthy follows the expression language semantics: false, zero, blank and
// empty values are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.flag
	case KindNumber:
		return v.num != 0
	default:
		return !v.Empty()
	}
}

// Display renders a scalar for human consumption. Composite values render as
// an empty string.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindAsset:
		return v.asset.ID
	default:
		return ""
	}
}

// Equal reports deep equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.flag == other.flag
	case KindUnsupported:
		return v.str == other.str
	case KindAsset:
		return v.asset == other.asset
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, member := range v.obj {
			peer, ok := other.obj[k]
			if !ok || !member.Equal(peer) {
				return false
			}
		}
		return true
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return strconv.Quote(v.str)
	case KindObject:
		parts := make([]string, 0, len(v.obj))
		for _, k := range v.Keys() {
			parts = append(parts, k+":"+v.obj[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindAsset:
		return fmt.Sprintf("asset(%s)", v.asset.ID)
	case KindUnsupported:
		return fmt.Sprintf("unsupported(%s)", v.str)
	default:
		return v.Display()
	}
}

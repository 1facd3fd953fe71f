package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Snapshot maps top-level field names to their current values for a single
// document instance. Absent keys are unset fields.
type Snapshot map[string]Value

// Get returns the value stored for a top-level field.
func (s Snapshot) Get(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s[name]
	return v, ok
}

// With returns a copy of the snapshot with name set to v.
func (s Snapshot) With(name string, v Value) Snapshot {
	out := s.Clone()
	out[name] = v
	return out
}

// Clone returns a shallow copy; values are immutable so this is sufficient.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Names returns the sorted field names present in the snapshot.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a dotted path ("slug.current", "hero.image"). Exact keys are
// preferred over traversal so flattened inputs keep working.
func (s Snapshot) Lookup(path string) (Value, bool) {
	path = strings.TrimSpace(path)
	if path == "" || len(s) == 0 {
		return Value{}, false
	}
	if v, ok := s[path]; ok {
		return v, true
	}

	parts := strings.Split(path, ".")
	current, ok := s[strings.TrimSpace(parts[0])]
	if !ok {
		return Value{}, false
	}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			return Value{}, false
		}
		next, ok := current.Field(part)
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// FromAny converts decoded JSON/YAML data, or plain Go slices, maps and
// scalars, into a Value. Objects carrying a `_ref` member become asset
// references. Go types with no counterpart (structs, channels, funcs) become
// Unsupported values so validation can report them per field. Only malformed
// json.Number input is an error.
func FromAny(raw any) (Value, error) {
	switch typed := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return typed, nil
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case float64:
		return Number(typed), nil
	case float32:
		return Number(float64(typed)), nil
	case int:
		return Number(float64(typed)), nil
	case int64:
		return Number(float64(typed)), nil
	case int32:
		return Number(float64(typed)), nil
	case uint64:
		return Number(float64(typed)), nil
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid number %q: %w", typed, err)
		}
		return Number(f), nil
	case []any:
		items := make([]Value, 0, len(typed))
		for idx, item := range typed {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("value: item %d: %w", idx, err)
			}
			items = append(items, v)
		}
		return List(items...), nil
	case map[string]any:
		return objectFromMap(typed)
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for k, v := range typed {
			converted[fmt.Sprint(k)] = v
		}
		return objectFromMap(converted)
	default:
		return fromReflect(reflect.ValueOf(raw))
	}
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromAny(rv.Elem().Interface())
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		items := make([]Value, 0, rv.Len())
		for idx := 0; idx < rv.Len(); idx++ {
			v, err := FromAny(rv.Index(idx).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("value: item %d: %w", idx, err)
			}
			items = append(items, v)
		}
		return List(items...), nil
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		converted := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			converted[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return objectFromMap(converted)
	default:
		return Unsupported(rv.Type().String()), nil
	}
}

func objectFromMap(raw map[string]any) (Value, error) {
	if ref, ok := raw["_ref"].(string); ok && len(raw) <= 2 {
		typ, _ := raw["_type"].(string)
		return Asset(AssetRef{ID: ref, Type: typ}), nil
	}
	fields := make(map[string]Value, len(raw))
	for key, member := range raw {
		v, err := FromAny(member)
		if err != nil {
			return Value{}, fmt.Errorf("value: field %q: %w", key, err)
		}
		fields[key] = v
	}
	return Object(fields), nil
}

// SnapshotFromMap converts a decoded document into a Snapshot.
func SnapshotFromMap(raw map[string]any) (Snapshot, error) {
	out := make(Snapshot, len(raw))
	for key, member := range raw {
		v, err := FromAny(member)
		if err != nil {
			return nil, fmt.Errorf("value: field %q: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}

// ToAny converts a Value back into plain Go data suitable for encoding.
func ToAny(v Value) any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindAsset:
		out := map[string]any{"_ref": v.asset.ID}
		if v.asset.Type != "" {
			out["_type"] = v.asset.Type
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, member := range v.obj {
			out[k] = ToAny(member)
		}
		return out
	case KindList:
		out := make([]any, 0, len(v.list))
		for _, item := range v.list {
			out = append(out, ToAny(item))
		}
		return out
	default:
		return nil
	}
}

// ToMap converts a snapshot back into plain Go data.
func (s Snapshot) ToMap() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = ToAny(v)
	}
	return out
}

// MarshalJSON encodes the value using its plain representation.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToAny(v))
}

// UnmarshalJSON decodes any JSON payload into a tagged Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

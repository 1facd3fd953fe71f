package model

import (
	"strings"

	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility/expr"
)

// ValueType is the declared shape of a field value.
type ValueType string

const (
	TypeString   ValueType = "string"
	TypeText     ValueType = "text"
	TypeNumber   ValueType = "number"
	TypeBoolean  ValueType = "boolean"
	TypeURL      ValueType = "url"
	TypeSlug     ValueType = "slug"
	TypeImage    ValueType = "image"
	TypeFile     ValueType = "file"
	TypeRichText ValueType = "rich-text"
	TypeObject   ValueType = "object"
	TypeArray    ValueType = "array"
)

// Valid reports whether t is one of the supported value types.
func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeText, TypeNumber, TypeBoolean, TypeURL, TypeSlug,
		TypeImage, TypeFile, TypeRichText, TypeObject, TypeArray:
		return true
	default:
		return false
	}
}

// Accepts reports whether v has the shape declared by t. Image and file
// values may be bare asset references or objects wrapping one under "asset".
func (t ValueType) Accepts(v value.Value) bool {
	switch t {
	case TypeString, TypeText, TypeURL:
		return v.Kind() == value.KindString
	case TypeNumber:
		return v.Kind() == value.KindNumber
	case TypeBoolean:
		return v.Kind() == value.KindBool
	case TypeSlug:
		if v.Kind() != value.KindObject {
			return false
		}
		current, ok := v.Field("current")
		return !ok || current.IsNull() || current.Kind() == value.KindString
	case TypeImage, TypeFile:
		switch v.Kind() {
		case value.KindAsset:
			return true
		case value.KindObject:
			asset, ok := v.Field("asset")
			return !ok || asset.IsNull() || asset.Kind() == value.KindAsset
		default:
			return false
		}
	case TypeRichText:
		if v.Kind() != value.KindList {
			return false
		}
		for _, block := range v.Items() {
			if block.Kind() != value.KindObject {
				return false
			}
		}
		return true
	case TypeObject:
		return v.Kind() == value.KindObject
	case TypeArray:
		return v.Kind() == value.KindList
	default:
		return false
	}
}

// MemberFor picks the array member describing item: by `_type` when the item
// carries one, otherwise the first member whose type fits.
func (f FieldDescriptor) MemberFor(item value.Value) (FieldDescriptor, bool) {
	if name := item.TypeName(); name != "" {
		if member, ok := f.Member(name); ok {
			return member, true
		}
		for _, member := range f.Of {
			if string(member.Type) == name {
				return member, true
			}
		}
		return FieldDescriptor{}, false
	}
	for _, member := range f.Of {
		if member.Type.Accepts(item) {
			return member, true
		}
	}
	return FieldDescriptor{}, false
}

// Presentation carries display metadata (titles, descriptions, layout hints,
// read-only flags, accepted mime types). The evaluation core never reads it.
type Presentation map[string]any

// String returns a string attribute or "".
func (p Presentation) String(key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return strings.TrimSpace(s)
}

// Title returns the human-readable title, if any.
func (p Presentation) Title() string { return p.String("title") }

// FieldDescriptor is the semantic declaration of a single field.
type FieldDescriptor struct {
	Name string
	Type ValueType

	// Of lists the member types of an array field. Each member's Name is the
	// type name matched against an item's `_type`.
	Of []FieldDescriptor

	// Fields lists the sub-fields of an object field.
	Fields []FieldDescriptor

	// Options enumerates the allowed values of a discriminator field.
	Options []string

	Default     Default
	VisibleWhen *expr.Expr
	Rules       []Rule

	// Preview summarises list members (credits, gallery items).
	Preview *PreviewRule

	Presentation Presentation
}

// IsDiscriminator reports whether other fields can key off this field's
// value: a string field with an enumerated option list.
func (f FieldDescriptor) IsDiscriminator() bool {
	return f.Type == TypeString && len(f.Options) > 0
}

// Member returns the array member descriptor named name.
func (f FieldDescriptor) Member(name string) (FieldDescriptor, bool) {
	for _, member := range f.Of {
		if member.Name == name {
			return member, true
		}
	}
	return FieldDescriptor{}, false
}

// DocumentType is an immutable document definition: ordered fields plus the
// preview rule.
type DocumentType struct {
	Name         string
	Title        string
	Fields       []FieldDescriptor
	Preview      PreviewRule
	Presentation Presentation
}

// Field returns the top-level field named name.
func (d DocumentType) Field(name string) (FieldDescriptor, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDescriptor{}, false
}

// FieldNames returns the top-level field names in declaration order.
func (d DocumentType) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Preview is the derived summary of a document or list member.
type Preview struct {
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle,omitempty"`
	Media    value.Value `json:"media,omitempty"`
}

// Selection holds the values picked by a PreviewRule, keyed by alias.
type Selection map[string]value.Value

// String returns the display form of a scalar alias, or "" when unset.
func (s Selection) String(alias string) string {
	v, ok := s[alias]
	if !ok {
		return ""
	}
	return v.Display()
}

// Or returns the display form of alias, or fallback when unset or blank.
func (s Selection) Or(alias, fallback string) string {
	if out := s.String(alias); strings.TrimSpace(out) != "" {
		return out
	}
	return fallback
}

// PrepareFunc turns a selection into a preview.
type PrepareFunc func(Selection) Preview

// PreviewRule selects values by path and prepares a Preview from them.
// Preparer names the prepare function for definitions loaded from files.
type PreviewRule struct {
	Select   map[string]string
	Prepare  PrepareFunc
	Preparer string
}

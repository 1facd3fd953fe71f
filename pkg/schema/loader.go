package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility/expr"
)

// Preparers maps preparer names referenced by `prepare:` to functions.
type Preparers map[string]model.PrepareFunc

// Option customises a Loader.
type Option func(*Loader)

// WithPreparers binds named prepare functions for document and member
// previews.
func WithPreparers(preparers Preparers) Option {
	return func(l *Loader) {
		for name, fn := range preparers {
			l.preparers[name] = fn
		}
	}
}

// Loader turns definition documents into model.DocumentType values. Named
// derivations and generators are resolved later by the registry; preparers
// are bound here because they are functions rather than names.
type Loader struct {
	preparers Preparers
}

// NewLoader constructs a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{preparers: make(Preparers)}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Parse decodes a single document into a document type.
func (l *Loader) Parse(doc Document) (model.DocumentType, error) {
	var raw typeFile
	if err := decode(doc, &raw); err != nil {
		return model.DocumentType{}, err
	}
	out, err := l.buildType(raw)
	if err != nil {
		return model.DocumentType{}, fmt.Errorf("schema: %s: %w", doc.Location(), err)
	}
	return out, nil
}

// LoadFile reads and parses the definition at path.
func (l *Loader) LoadFile(path string) (model.DocumentType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.DocumentType{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFile(path), data)
	if err != nil {
		return model.DocumentType{}, err
	}
	return l.Parse(doc)
}

// LoadFS walks fsys in lexical order and parses every YAML, JSON and TOML
// file. Other files are ignored. When fsys is nil the result is empty.
func (l *Loader) LoadFS(fsys fs.FS) ([]model.DocumentType, error) {
	if fsys == nil {
		return nil, nil
	}

	var out []model.DocumentType
	seen := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || FormatOf(path) == FormatUnknown {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		doc, err := NewDocument(SourceFromFS(path), data)
		if err != nil {
			return err
		}
		parsed, err := l.Parse(doc)
		if err != nil {
			return err
		}
		if prev, exists := seen[parsed.Name]; exists {
			return fmt.Errorf("schema: document type %q defined in both %s and %s", parsed.Name, prev, path)
		}
		seen[parsed.Name] = path
		out = append(out, parsed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decode(doc Document, target *typeFile) error {
	data := doc.Raw()
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("schema: file %s is empty", doc.Location())
	}

	var err error
	switch doc.Format() {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(target)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(target)
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(target)
	default:
		return fmt.Errorf("schema: file %s has an unsupported format", doc.Location())
	}
	if err != nil {
		return fmt.Errorf("schema: parse %s: %w", doc.Location(), err)
	}
	return nil
}

func (l *Loader) buildType(raw typeFile) (model.DocumentType, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return model.DocumentType{}, fmt.Errorf("document type name is required")
	}

	out := model.DocumentType{
		Name:         name,
		Title:        strings.TrimSpace(raw.Title),
		Presentation: model.Presentation(raw.Presentation),
	}
	for _, rawField := range raw.Fields {
		field, err := l.buildField(rawField, rawField.Name)
		if err != nil {
			return model.DocumentType{}, err
		}
		out.Fields = append(out.Fields, field)
	}
	if raw.Preview != nil {
		rule, err := l.buildPreview(*raw.Preview)
		if err != nil {
			return model.DocumentType{}, fmt.Errorf("preview: %w", err)
		}
		out.Preview = rule
	}
	return out, nil
}

func (l *Loader) buildField(raw fieldFile, path string) (model.FieldDescriptor, error) {
	name := strings.TrimSpace(raw.Name)
	kind := model.ValueType(strings.TrimSpace(raw.Type))
	if name == "" {
		// Array members may omit their name and are then named after their type.
		name = string(kind)
	}
	if name == "" {
		return model.FieldDescriptor{}, fmt.Errorf("field %q: name or type is required", path)
	}
	if !kind.Valid() {
		return model.FieldDescriptor{}, fmt.Errorf("field %q: unsupported type %q", path, raw.Type)
	}

	out := model.FieldDescriptor{
		Name:         name,
		Type:         kind,
		Options:      append([]string(nil), raw.Options...),
		Presentation: model.Presentation(raw.Presentation),
	}

	def, err := buildDefault(raw, path)
	if err != nil {
		return model.FieldDescriptor{}, err
	}
	out.Default = def

	if strings.TrimSpace(raw.VisibleWhen) != "" {
		rule, err := expr.Parse(raw.VisibleWhen)
		if err != nil {
			return model.FieldDescriptor{}, fmt.Errorf("field %q visibleWhen: %w", path, err)
		}
		out.VisibleWhen = rule
	}

	for idx, rawRule := range raw.Rules {
		rule, err := buildRule(rawRule)
		if err != nil {
			return model.FieldDescriptor{}, fmt.Errorf("field %q rule %d: %w", path, idx, err)
		}
		out.Rules = append(out.Rules, rule)
	}

	for _, sub := range raw.Fields {
		built, err := l.buildField(sub, path+"."+sub.Name)
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		out.Fields = append(out.Fields, built)
	}
	for _, member := range raw.Of {
		built, err := l.buildField(member, path+"[]")
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		out.Of = append(out.Of, built)
	}

	if raw.Preview != nil {
		rule, err := l.buildPreview(*raw.Preview)
		if err != nil {
			return model.FieldDescriptor{}, fmt.Errorf("field %q preview: %w", path, err)
		}
		out.Preview = &rule
	}
	return out, nil
}

func buildDefault(raw fieldFile, path string) (model.Default, error) {
	set := 0
	if raw.InitialValue != nil {
		set++
	}
	if raw.Derive != nil {
		set++
	}
	if strings.TrimSpace(raw.Generate) != "" {
		set++
	}
	if set > 1 {
		return model.Default{}, fmt.Errorf("field %q: initialValue, derive and generate are mutually exclusive", path)
	}

	switch {
	case raw.InitialValue != nil:
		v, err := value.FromAny(raw.InitialValue)
		if err != nil {
			return model.Default{}, fmt.Errorf("field %q initialValue: %w", path, err)
		}
		return model.Literal(v), nil
	case raw.Derive != nil:
		return model.Derive(strings.TrimSpace(raw.Derive.Using), raw.Derive.From...), nil
	case strings.TrimSpace(raw.Generate) != "":
		return model.DeriveOnce(strings.TrimSpace(raw.Generate)), nil
	default:
		return model.Default{}, nil
	}
}

func buildRule(raw ruleFile) (model.Rule, error) {
	set := 0
	if raw.Required {
		set++
	}
	if raw.MaxLength != nil {
		set++
	}
	if raw.Custom != nil {
		set++
	}
	if set != 1 {
		return model.Rule{}, fmt.Errorf("exactly one of required, maxLength or custom must be set")
	}

	switch {
	case raw.Required:
		rule := model.Required()
		rule.Message = raw.Message
		return rule, nil
	case raw.MaxLength != nil:
		return model.MaxLength(*raw.MaxLength, raw.Message), nil
	default:
		var when *expr.Expr
		if strings.TrimSpace(raw.Custom.When) != "" {
			parsed, err := expr.Parse(raw.Custom.When)
			if err != nil {
				return model.Rule{}, fmt.Errorf("custom when: %w", err)
			}
			when = parsed
		}
		assert, err := expr.Parse(raw.Custom.Assert)
		if err != nil {
			return model.Rule{}, fmt.Errorf("custom assert: %w", err)
		}
		message := raw.Custom.Message
		if message == "" {
			message = raw.Message
		}
		return model.Custom(when, assert, message), nil
	}
}

func (l *Loader) buildPreview(raw previewFile) (model.PreviewRule, error) {
	rule := model.PreviewRule{
		Select:   make(map[string]string, len(raw.Select)),
		Preparer: strings.TrimSpace(raw.Prepare),
	}
	for alias, path := range raw.Select {
		rule.Select[alias] = strings.TrimSpace(path)
	}
	if rule.Preparer != "" {
		fn, ok := l.preparers[rule.Preparer]
		if !ok {
			return model.PreviewRule{}, fmt.Errorf("unknown preparer %q", rule.Preparer)
		}
		rule.Prepare = fn
	}
	return rule, nil
}

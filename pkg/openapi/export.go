package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
)

const (
	assetSchemaName = "AssetReference"
	defaultVersion  = "1.0.0"
	defaultTitle    = "Document types"
)

// Extension keys written on exported schemas.
const (
	ExtVisibleWhen      = "x-visible-when"
	ExtCustomRules      = "x-custom-rules"
	ExtDerive           = "x-derive"
	ExtGenerate         = "x-generate"
	ExtMaxLengthWarning = "x-max-length-warning"
	ExtOptions          = "x-options"
)

// Option customises Export.
type Option func(*exporter)

// WithTitle sets the info title of the generated document.
func WithTitle(title string) Option {
	return func(e *exporter) {
		if strings.TrimSpace(title) != "" {
			e.title = title
		}
	}
}

// WithVersion sets the info version of the generated document.
func WithVersion(version string) Option {
	return func(e *exporter) {
		if strings.TrimSpace(version) != "" {
			e.version = version
		}
	}
}

// WithStrictEnums turns discriminator option lists into schema enums. By
// default they are exported under x-options only, because stored documents
// are not required to hold one of the options.
func WithStrictEnums() Option {
	return func(e *exporter) {
		e.strictEnums = true
	}
}

type exporter struct {
	asset       *openapi3.Schema
	title       string
	version     string
	strictEnums bool
}

// Export builds an OpenAPI document whose components hold one schema per
// document type, named after the type. The document is validated with
// kin-openapi before it is returned.
func Export(ctx context.Context, docs []model.DocumentType, opts ...Option) (*openapi3.T, error) {
	e := exporter{asset: assetSchema(), title: defaultTitle, version: defaultVersion}
	for _, opt := range opts {
		if opt != nil {
			opt(&e)
		}
	}

	schemas := openapi3.Schemas{
		assetSchemaName: openapi3.NewSchemaRef("", e.asset),
	}
	for _, doc := range docs {
		if _, exists := schemas[doc.Name]; exists {
			return nil, fmt.Errorf("openapi: duplicate schema name %q", doc.Name)
		}
		schemas[doc.Name] = openapi3.NewSchemaRef("", e.documentSchema(doc))
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   e.title,
			Version: e.version,
		},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: schemas},
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate export: %w", err)
	}
	return spec, nil
}

// Marshal encodes spec as indented JSON or, when format is "yaml", YAML.
func Marshal(spec *openapi3.T, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		out, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("openapi: marshal json: %w", err)
		}
		return append(out, '\n'), nil
	case "yaml", "yml":
		out, err := yaml.Marshal(spec)
		if err != nil {
			return nil, fmt.Errorf("openapi: marshal yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("openapi: unsupported format %q", format)
	}
}

func (e exporter) documentSchema(doc model.DocumentType) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = doc.Title
	schema.Required = e.properties(schema, doc.Fields)
	return schema
}

// properties adds one property per field and returns the names of fields
// that are unconditionally required.
func (e exporter) properties(schema *openapi3.Schema, fields []model.FieldDescriptor) []string {
	var required []string
	for _, field := range fields {
		schema.WithPropertyRef(field.Name, e.fieldSchema(field))
		if isRequired(field) {
			required = append(required, field.Name)
		}
	}
	return required
}

func (e exporter) fieldSchema(field model.FieldDescriptor) *openapi3.SchemaRef {
	var schema *openapi3.Schema
	switch field.Type {
	case model.TypeString, model.TypeText:
		schema = openapi3.NewStringSchema()
	case model.TypeURL:
		schema = openapi3.NewStringSchema().WithFormat("uri")
	case model.TypeNumber:
		schema = openapi3.NewFloat64Schema()
	case model.TypeBoolean:
		schema = openapi3.NewBoolSchema()
	case model.TypeSlug:
		schema = openapi3.NewObjectSchema().
			WithProperty("_type", openapi3.NewStringSchema().WithEnum("slug")).
			WithProperty("current", openapi3.NewStringSchema())
	case model.TypeImage, model.TypeFile:
		schema = openapi3.NewObjectSchema().
			WithPropertyRef("asset", openapi3.NewSchemaRef("#/components/schemas/"+assetSchemaName, e.asset))
		schema.Required = append(schema.Required, e.properties(schema, field.Fields)...)
	case model.TypeRichText:
		block := openapi3.NewObjectSchema().
			WithProperty("_type", openapi3.NewStringSchema()).
			WithProperty("_key", openapi3.NewStringSchema())
		schema = openapi3.NewArraySchema().WithItems(block)
	case model.TypeObject:
		schema = openapi3.NewObjectSchema()
		schema.Required = e.properties(schema, field.Fields)
	case model.TypeArray:
		schema = openapi3.NewArraySchema()
		schema.Items = e.itemsSchema(field.Of)
	default:
		schema = openapi3.NewSchema()
	}

	e.annotate(schema, field)
	return openapi3.NewSchemaRef("", schema)
}

func (e exporter) itemsSchema(members []model.FieldDescriptor) *openapi3.SchemaRef {
	refs := make([]*openapi3.Schema, 0, len(members))
	for _, member := range members {
		ref := e.fieldSchema(member)
		item := ref.Value
		if item.Type != nil && item.Type.Is(openapi3.TypeObject) {
			item.WithProperty("_type", openapi3.NewStringSchema().WithEnum(member.Name))
			item.WithProperty("_key", openapi3.NewStringSchema())
		}
		refs = append(refs, item)
	}
	if len(refs) == 1 {
		return openapi3.NewSchemaRef("", refs[0])
	}
	return openapi3.NewSchemaRef("", openapi3.NewOneOfSchema(refs...))
}

func (e exporter) annotate(schema *openapi3.Schema, field model.FieldDescriptor) {
	schema.Title = field.Presentation.Title()
	schema.Description = field.Presentation.String("description")
	if readOnly, _ := field.Presentation["readOnly"].(bool); readOnly {
		schema.ReadOnly = true
	}

	if len(field.Options) > 0 {
		options := make([]any, 0, len(field.Options))
		for _, option := range field.Options {
			options = append(options, option)
		}
		if e.strictEnums {
			schema.WithEnum(options...)
		} else {
			setExtension(schema, ExtOptions, options)
		}
	}

	switch field.Default.Kind {
	case model.DefaultLiteral:
		schema.Default = value.ToAny(field.Default.Value)
	case model.DefaultDerive:
		setExtension(schema, ExtDerive, map[string]any{
			"using": field.Default.Using,
			"from":  append([]string(nil), field.Default.From...),
		})
	case model.DefaultDeriveOnce:
		setExtension(schema, ExtGenerate, field.Default.Using)
	}

	if field.VisibleWhen != nil {
		setExtension(schema, ExtVisibleWhen, field.VisibleWhen.String())
	}

	var custom []map[string]any
	for _, rule := range field.Rules {
		switch rule.Kind {
		case model.RuleMaxLength:
			setExtension(schema, ExtMaxLengthWarning, map[string]any{
				"max":     rule.Max,
				"message": rule.DefaultMessage(),
			})
		case model.RuleCustom:
			entry := map[string]any{
				"assert":  rule.Assert.String(),
				"message": rule.DefaultMessage(),
			}
			if rule.When != nil {
				entry["when"] = rule.When.String()
			}
			custom = append(custom, entry)
		}
	}
	if len(custom) > 0 {
		setExtension(schema, ExtCustomRules, custom)
	}
}

func assetSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("_ref", openapi3.NewStringSchema()).
		WithProperty("_type", openapi3.NewStringSchema())
	schema.Required = []string{"_ref"}
	return schema
}

func isRequired(field model.FieldDescriptor) bool {
	if field.VisibleWhen != nil {
		return false
	}
	for _, rule := range field.Rules {
		if rule.Kind == model.RuleRequired {
			return true
		}
	}
	return false
}

func setExtension(schema *openapi3.Schema, key string, val any) {
	if schema.Extensions == nil {
		schema.Extensions = make(map[string]any)
	}
	schema.Extensions[key] = val
}

// SchemaNames returns the component schema names of spec in sorted order.
func SchemaNames(spec *openapi3.T) []string {
	if spec == nil || spec.Components == nil {
		return nil
	}
	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

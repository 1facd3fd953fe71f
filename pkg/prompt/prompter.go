package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility"
)

// Option configures a Prompter.
type Option func(*Prompter)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(p *Prompter) {
		if driver != nil {
			p.driver = driver
		}
	}
}

// WithVisibilityOptions passes options through to visibility.Compute.
func WithVisibilityOptions(opts ...visibility.Option) Option {
	return func(p *Prompter) {
		p.visibility = append(p.visibility, opts...)
	}
}

// Prompter asks for field values through a Driver.
type Prompter struct {
	driver     Driver
	visibility []visibility.Option
}

// New constructs a Prompter. Without WithDriver it talks to the terminal
// through survey.
func New(options ...Option) *Prompter {
	p := &Prompter{}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	if p.driver == nil {
		p.driver = SurveyDriver()
	}
	return p
}

// ChooseType asks which document type to work with.
func (p *Prompter) ChooseType(ctx context.Context, names []string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("prompt: no document types registered")
	}
	if len(names) == 1 {
		return names[0], nil
	}
	idx, err := p.driver.Select(ctx, SelectConfig{
		Message: "Document type",
		Options: names,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(names) {
		return "", fmt.Errorf("prompt: invalid selection %d", idx)
	}
	return names[idx], nil
}

// Fill asks for every visible scalar field of doc, starting from snapshot,
// and returns the completed snapshot. Fields with derived or generated
// defaults are left to the engine. Assets, rich text, objects and lists are
// announced and skipped.
func (p *Prompter) Fill(ctx context.Context, doc model.DocumentType, snapshot value.Snapshot) (value.Snapshot, error) {
	out := snapshot.Clone()

	for _, field := range doc.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vis := visibility.Compute(doc, out, p.visibility...)
		if !vis.Visible(field.Name) {
			continue
		}
		switch field.Default.Kind {
		case model.DefaultDerive, model.DefaultDeriveOnce:
			continue
		}

		current, _ := model.ResolveSnapshot(doc, out, nil).Get(field.Name)
		answer, asked, err := p.promptField(ctx, field, current)
		if err != nil {
			return nil, fmt.Errorf("prompt: field %q: %w", field.Name, err)
		}
		if !asked {
			continue
		}
		if answer.IsNull() {
			delete(out, field.Name)
			continue
		}
		out[field.Name] = answer
	}
	return out, nil
}

func (p *Prompter) promptField(ctx context.Context, field model.FieldDescriptor, current value.Value) (value.Value, bool, error) {
	label := displayLabel(field)
	help := field.Presentation.String("description")
	required := hasRequired(field)

	switch field.Type {
	case model.TypeString, model.TypeURL:
		if field.IsDiscriminator() {
			return p.promptOption(ctx, field, label, help, current)
		}
		def, _ := current.Str()
		raw, err := p.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   def,
			Help:      help,
			Validator: stringValidator(required),
		})
		if err != nil {
			return value.Null(), false, err
		}
		return stringValue(raw), true, nil

	case model.TypeText:
		def, _ := current.Str()
		raw, err := p.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: def, Help: help})
		if err != nil {
			return value.Null(), false, err
		}
		return stringValue(raw), true, nil

	case model.TypeSlug:
		def := ""
		if slug, ok := current.Field("current"); ok {
			def, _ = slug.Str()
		}
		raw, err := p.driver.Input(ctx, InputConfig{
			Message: label,
			Default: def,
			Help:    help,
		})
		if err != nil {
			return value.Null(), false, err
		}
		slug := model.Slugify(raw)
		if slug == "" {
			return value.Null(), true, nil
		}
		return value.Object(map[string]value.Value{
			"_type":   value.String("slug"),
			"current": value.String(slug),
		}), true, nil

	case model.TypeNumber:
		def := ""
		if n, ok := current.Num(); ok {
			def = strconv.FormatFloat(n, 'f', -1, 64)
		}
		raw, err := p.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   def,
			Help:      help,
			Validator: numberValidator(required),
		})
		if err != nil {
			return value.Null(), false, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return value.Null(), true, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Null(), false, fmt.Errorf("invalid number %q", raw)
		}
		return value.Number(n), true, nil

	case model.TypeBoolean:
		def, _ := current.BoolValue()
		answer, err := p.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def, Help: help})
		if err != nil {
			return value.Null(), false, err
		}
		return value.Bool(answer), true, nil

	default:
		if err := p.driver.Info(ctx, fmt.Sprintf("Skipping %s (%s values are edited elsewhere)", label, field.Type)); err != nil {
			return value.Null(), false, err
		}
		return value.Null(), false, nil
	}
}

func (p *Prompter) promptOption(ctx context.Context, field model.FieldDescriptor, label, help string, current value.Value) (value.Value, bool, error) {
	options := field.Options
	labels := make([]string, len(options))
	for i, option := range options {
		labels[i] = optionLabel(field, option)
	}

	def := 0
	if s, ok := current.Str(); ok {
		if idx := indexOf(options, s); idx >= 0 {
			def = idx
		}
	}
	idx, err := p.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      labels,
		DefaultIndex: def,
		Help:         help,
	})
	if err != nil {
		return value.Null(), false, err
	}
	if idx < 0 || idx >= len(options) {
		return value.Null(), false, fmt.Errorf("invalid selection %d", idx)
	}
	return value.String(options[idx]), true, nil
}

func displayLabel(field model.FieldDescriptor) string {
	if title := field.Presentation.Title(); title != "" {
		return title
	}
	return field.Name
}

func optionLabel(field model.FieldDescriptor, option string) string {
	labels, _ := field.Presentation["labels"].(map[string]any)
	if label, ok := labels[option].(string); ok && strings.TrimSpace(label) != "" {
		return label
	}
	return option
}

func hasRequired(field model.FieldDescriptor) bool {
	for _, rule := range field.Rules {
		if rule.Kind == model.RuleRequired {
			return true
		}
	}
	return false
}

func stringValue(raw string) value.Value {
	if strings.TrimSpace(raw) == "" {
		return value.Null()
	}
	return value.String(raw)
}

func stringValidator(required bool) func(string) error {
	if !required {
		return nil
	}
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("value is required")
		}
		return nil
	}
}

func numberValidator(required bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if required {
				return fmt.Errorf("value is required")
			}
			return nil
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("enter a number")
		}
		return nil
	}
}

package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility"
)

// Severity aliases model.Severity.
type Severity = model.Severity

const (
	SeverityError   = model.SeverityError
	SeverityWarning = model.SeverityWarning
)

// Code classifies why an issue was raised.
type Code string

const (
	CodeRequired     Code = "required"
	CodeMaxLength    Code = "maxLength"
	CodeCustom       Code = "custom"
	CodeTypeMismatch Code = "typeMismatch"
	CodeInvalidURL   Code = "invalidUrl"
)

// Issue is a single validation finding. Field is the dotted path of the
// offending value ("hero", "slug", "detailGallery[1].file").
type Issue struct {
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
}

// HasErrors reports whether any issue blocks saving.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ForField returns the issues raised for path.
func ForField(issues []Issue, path string) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Field == path {
			out = append(out, issue)
		}
	}
	return out
}

// Validate runs the validation rules of every visible field in declaration
// order and returns the failures. Hidden fields never contribute issues. A
// value whose shape does not match its declared type yields one
// typeMismatch issue and that field's rules are skipped; the remaining
// fields are still validated. Validate never panics on malformed input.
func Validate(doc model.DocumentType, snapshot value.Snapshot, opts ...visibility.Option) []Issue {
	ctx := visibility.NewContext(doc, snapshot, opts...)
	vis := visibility.Compute(doc, snapshot, opts...)

	v := validator{ctx: ctx, visible: vis, evaluator: visibility.EvaluatorFor(opts...)}
	for _, field := range doc.Fields {
		if !vis.Visible(field.Name) {
			continue
		}
		current, _ := ctx.Values.Get(field.Name)
		v.field(field, field.Name, current, true)
	}
	return v.issues
}

type validator struct {
	ctx       visibility.Context
	visible   visibility.Map
	evaluator visibility.Evaluator
	issues    []Issue
}

func (v *validator) add(path string, severity Severity, code Code, message string) {
	v.issues = append(v.issues, Issue{
		Field:    path,
		Severity: severity,
		Code:     code,
		Message:  message,
	})
}

// field validates one value. mapped reports whether sub-field visibility is
// recorded in the visibility map (object sub-fields) or must be evaluated
// inline (list members).
func (v *validator) field(desc model.FieldDescriptor, path string, current value.Value, mapped bool) {
	if !current.IsNull() {
		if !desc.Type.Accepts(current) {
			v.add(path, SeverityError, CodeTypeMismatch,
				fmt.Sprintf("Expected a %s value, got %s", desc.Type, kindName(current)))
			return
		}
		if desc.Type == model.TypeURL {
			if s, _ := current.Str(); strings.TrimSpace(s) != "" && !validURL(s) {
				v.add(path, SeverityError, CodeInvalidURL, "Not a valid URL")
			}
		}
	}

	for _, rule := range desc.Rules {
		v.rule(rule, path, current)
	}

	if len(desc.Fields) > 0 && current.Kind() == value.KindObject {
		for _, sub := range desc.Fields {
			subPath := path + "." + sub.Name
			if !v.subVisible(sub, subPath, mapped) {
				continue
			}
			subValue, _ := current.Field(sub.Name)
			v.field(sub, subPath, subValue, mapped)
		}
	}

	if desc.Type == model.TypeArray && current.Kind() == value.KindList {
		for idx, item := range current.Items() {
			itemPath := fmt.Sprintf("%s[%d]", path, idx)
			member, ok := desc.MemberFor(item)
			if !ok {
				v.add(itemPath, SeverityError, CodeTypeMismatch,
					fmt.Sprintf("Item type %q is not allowed in %s", itemTypeName(item), path))
				continue
			}
			if !v.inlineVisible(member, itemPath) {
				continue
			}
			v.field(member, itemPath, item, false)
		}
	}
}

func (v *validator) subVisible(sub model.FieldDescriptor, path string, mapped bool) bool {
	if mapped {
		return v.visible.Visible(path)
	}
	return v.inlineVisible(sub, path)
}

// inlineVisible evaluates visibility for list members and their sub-fields,
// which the visibility map does not record.
func (v *validator) inlineVisible(desc model.FieldDescriptor, path string) bool {
	if desc.VisibleWhen == nil {
		return true
	}
	ok, err := v.evaluator.Eval(path, desc.VisibleWhen, v.ctx)
	return err == nil && ok
}

func (v *validator) rule(rule model.Rule, path string, current value.Value) {
	switch rule.Kind {
	case model.RuleRequired:
		if current.Empty() {
			v.add(path, rule.Severity(), CodeRequired, rule.DefaultMessage())
		}
	case model.RuleMaxLength:
		if s, ok := current.Str(); ok && len([]rune(s)) > rule.Max {
			v.add(path, rule.Severity(), CodeMaxLength, rule.DefaultMessage())
		}
	case model.RuleCustom:
		applies, err := rule.When.Eval(v.ctx)
		if err != nil {
			v.add(path, rule.Severity(), CodeCustom, err.Error())
			return
		}
		if !applies {
			return
		}
		ok, err := rule.Assert.Eval(v.ctx)
		if err != nil {
			v.add(path, rule.Severity(), CodeCustom, err.Error())
			return
		}
		if !ok {
			v.add(path, rule.Severity(), CodeCustom, rule.DefaultMessage())
		}
	}
}

func kindName(v value.Value) string {
	if goType := v.GoType(); goType != "" {
		return goType
	}
	return v.Kind().String()
}

func itemTypeName(item value.Value) string {
	if name := item.TypeName(); name != "" {
		return name
	}
	return item.Kind().String()
}

func validURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return parsed.Host != ""
	case "mailto", "tel":
		return parsed.Opaque != "" || parsed.Path != ""
	default:
		return false
	}
}

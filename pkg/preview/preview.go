package preview

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility"
)

// Placeholder stands in for missing scalar display values.
const Placeholder = "—"

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Compute selects values from the resolved snapshot and prepares the
// document preview. It never fails: missing values surface as empty
// selections and the prepare function substitutes its placeholders.
func Compute(doc model.DocumentType, snapshot value.Snapshot, opts ...visibility.Option) model.Preview {
	ctx := visibility.NewContext(doc, snapshot, opts...)
	rule := doc.Preview
	if len(rule.Select) == 0 {
		rule.Select = defaultSelect(doc.Fields)
	}
	return prepare(rule, ctx.Values)
}

// Member prepares the preview of one item of an array field. It reports false
// when the item matches none of the field's members or the matching member
// declares no preview.
func Member(field model.FieldDescriptor, item value.Value) (model.Preview, bool) {
	member, ok := field.MemberFor(item)
	if !ok || member.Preview == nil {
		return model.Preview{}, false
	}
	values := make(value.Snapshot, len(item.Keys()))
	for _, key := range item.Keys() {
		values[key], _ = item.Field(key)
	}
	return prepare(*member.Preview, values), true
}

// Members prepares previews for every item in list, in order. Items without
// a member preview get a zero Preview.
func Members(field model.FieldDescriptor, list value.Value) []model.Preview {
	items := list.Items()
	out := make([]model.Preview, 0, len(items))
	for _, item := range items {
		p, _ := Member(field, item)
		out = append(out, p)
	}
	return out
}

// Select picks the values named by paths out of values, keyed by alias.
// Unresolvable paths are recorded as null.
func Select(paths map[string]string, values value.Snapshot) model.Selection {
	sel := make(model.Selection, len(paths))
	for alias, path := range paths {
		v, _ := values.Lookup(path)
		sel[alias] = v
	}
	return sel
}

// PassThrough is the prepare function used when a rule declares none.
func PassThrough(sel model.Selection) model.Preview {
	return model.Preview{
		Title:    sel.String("title"),
		Subtitle: sel.String("subtitle"),
		Media:    sel["media"],
	}
}

// SanitizeText strips markup from s and decodes entities so the result is
// plain display text. Compute never applies it; titles are returned as
// selected and callers rendering into markup-aware surfaces opt in.
func SanitizeText(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textSanitizer().Sanitize(trimmed)))
}

func prepare(rule model.PreviewRule, values value.Snapshot) model.Preview {
	fn := rule.Prepare
	if fn == nil {
		fn = PassThrough
	}
	return fn(Select(rule.Select, values))
}

// defaultSelect titles a document by its first string field and illustrates
// it with its first image.
func defaultSelect(fields []model.FieldDescriptor) map[string]string {
	sel := make(map[string]string, 2)
	for _, field := range fields {
		switch field.Type {
		case model.TypeString:
			if _, ok := sel["title"]; !ok {
				sel["title"] = field.Name
			}
		case model.TypeImage:
			if _, ok := sel["media"]; !ok {
				sel["media"] = field.Name
			}
		}
	}
	return sel
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

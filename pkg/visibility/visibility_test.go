package visibility

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility/expr"
)

func projectFixture() model.DocumentType {
	internal := expr.Eq("linkMode", "internal")
	return model.DocumentType{
		Name: "project",
		Fields: []model.FieldDescriptor{
			{Name: "name", Type: model.TypeString},
			{
				Name:    "linkMode",
				Type:    model.TypeString,
				Options: []string{"internal", "external", "none"},
				Default: model.Literal(value.String("external")),
			},
			{Name: "url", Type: model.TypeURL, VisibleWhen: expr.Eq("linkMode", "external")},
			{Name: "slug", Type: model.TypeSlug, VisibleWhen: internal},
			{
				Name:        "hero",
				Type:        model.TypeObject,
				VisibleWhen: internal,
				Fields: []model.FieldDescriptor{
					{Name: "image", Type: model.TypeImage},
					{Name: "videoUrl", Type: model.TypeURL, VisibleWhen: expr.Truthy("name")},
				},
			},
			{
				Name:    "visibility",
				Type:    model.TypeString,
				Options: []string{"public", "unlisted"},
				Default: model.Literal(value.String("public")),
			},
			{Name: "secretKey", Type: model.TypeString, VisibleWhen: expr.Eq("visibility", "unlisted")},
		},
	}
}

func TestComputeUsesDefaults(t *testing.T) {
	t.Parallel()

	got := Compute(projectFixture(), value.Snapshot{"name": value.String("A")})
	want := Map{
		"name":          true,
		"linkMode":      true,
		"url":           true,
		"slug":          false,
		"hero":          false,
		"hero.image":    false,
		"hero.videoUrl": false,
		"visibility":    true,
		"secretKey":     false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeInternalLinkMode(t *testing.T) {
	t.Parallel()

	snapshot := value.Snapshot{
		"linkMode":   value.String("internal"),
		"visibility": value.String("unlisted"),
		"hero": value.Object(map[string]value.Value{
			"image": value.Asset(value.AssetRef{ID: "image-1"}),
		}),
	}
	got := Compute(projectFixture(), snapshot)

	for path, want := range map[string]bool{
		"url":           false,
		"slug":          true,
		"hero":          true,
		"hero.image":    true,
		"hero.videoUrl": false,
		"secretKey":     true,
	} {
		if got.Visible(path) != want {
			t.Fatalf("%s: visible = %v, want %v", path, got.Visible(path), want)
		}
	}
}

func TestComputeUnknownDiscriminatorHidesDependents(t *testing.T) {
	t.Parallel()

	got := Compute(projectFixture(), value.Snapshot{"linkMode": value.String("carrier-pigeon")})
	if got.Visible("url") || got.Visible("slug") {
		t.Fatalf("expected both url and slug hidden, got %v", got)
	}
	if got.Visible("unknown") {
		t.Fatalf("unknown paths must be hidden")
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()

	snapshot := value.Snapshot{"linkMode": value.String("internal")}
	first := Compute(projectFixture(), snapshot)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, Compute(projectFixture(), snapshot)); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestComputeWithEvaluator(t *testing.T) {
	t.Parallel()

	var seen []string
	tracing := EvaluatorFunc(func(path string, rule *expr.Expr, ctx Context) (bool, error) {
		seen = append(seen, path)
		if path == "url" {
			return false, errors.New("boom")
		}
		return DefaultEvaluator.Eval(path, rule, ctx)
	})

	got := Compute(projectFixture(), nil, WithEvaluator(tracing))
	if got.Visible("url") {
		t.Fatalf("evaluation errors must hide the field")
	}
	want := []string{"url", "slug", "hero", "secretKey"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("evaluated paths mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeWithExtras(t *testing.T) {
	t.Parallel()

	doc := model.DocumentType{
		Name: "photo",
		Fields: []model.FieldDescriptor{
			{Name: "name", Type: model.TypeString},
			{Name: "order", Type: model.TypeNumber, VisibleWhen: expr.Truthy("extras.advanced")},
		},
	}

	if Compute(doc, nil).Visible("order") {
		t.Fatalf("order should be hidden without extras")
	}
	extras := value.Snapshot{"advanced": value.Bool(true)}
	if !Compute(doc, nil, WithExtras(extras)).Visible("order") {
		t.Fatalf("order should be visible with extras")
	}
}

func TestNewContextResolvesDerivations(t *testing.T) {
	t.Parallel()

	doc := model.DocumentType{
		Name: "post",
		Fields: []model.FieldDescriptor{
			{Name: "title", Type: model.TypeString},
			{Name: "slug", Type: model.TypeSlug, Default: model.Derive("slugify", "title")},
			{Name: "permalink", Type: model.TypeString, VisibleWhen: expr.Truthy("slug.current")},
		},
	}
	ctx := NewContext(doc, value.Snapshot{"title": value.String("Hello There")})
	current, ok := ctx.Values.Lookup("slug.current")
	if !ok || !current.Equal(value.String("hello-there")) {
		t.Fatalf("expected derived slug, got %s", current)
	}
	if !Compute(doc, value.Snapshot{"title": value.String("Hello There")}).Visible("permalink") {
		t.Fatalf("permalink should see the derived slug")
	}
}

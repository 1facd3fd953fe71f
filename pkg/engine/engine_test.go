package engine_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docrules/pkg/contenttypes"
	"github.com/goliatone/go-docrules/pkg/engine"
	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/registry"
	"github.com/goliatone/go-docrules/pkg/validation"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility"
	"github.com/goliatone/go-docrules/pkg/visibility/expr"
)

func description() value.Value {
	return value.List(value.Object(map[string]value.Value{
		"_type": value.String("block"),
		"children": value.List(value.Object(map[string]value.Value{
			"_type": value.String("span"),
			"text":  value.String("Hello"),
		})),
	}))
}

func projectSnapshot(overrides value.Snapshot) value.Snapshot {
	base := value.Snapshot{
		"name":        value.String("Foo"),
		"description": description(),
		"order":       value.Number(1),
	}
	for k, v := range overrides {
		base[k] = v
	}
	return base
}

func TestEvaluateExternalProject(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.WithTokenSource(contenttypes.StaticTokens("k")))
	result, err := eng.Evaluate(contenttypes.Project, projectSnapshot(value.Snapshot{
		"linkMode":    value.String("external"),
		"url":         value.String("http://x.test"),
		"projectType": value.String("web"),
	}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !result.Visibility.Visible("url") || result.Visibility.Visible("slug") {
		t.Fatalf("unexpected visibility %v", result.Visibility)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", result.Issues)
	}
	if !result.Valid() {
		t.Fatalf("expected valid result")
	}
	if result.Preview.Subtitle != "web • external → http://x.test • public" {
		t.Fatalf("unexpected subtitle %q", result.Preview.Subtitle)
	}
	if result.Preview.Title != "Foo" {
		t.Fatalf("unexpected title %q", result.Preview.Title)
	}
}

func TestEvaluateInternalProjectMissingSlugAndHero(t *testing.T) {
	t.Parallel()

	eng := engine.New()
	result, err := eng.Evaluate(contenttypes.Project, projectSnapshot(value.Snapshot{
		"linkMode":    value.String("internal"),
		"slug":        value.Object(map[string]value.Value{"current": value.String("")}),
		"hero":        value.Object(nil),
		"projectType": value.String("production"),
	}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	want := []validation.Issue{
		{Field: "slug", Severity: validation.SeverityError, Code: validation.CodeCustom, Message: "Slug is required when Link Mode is Internal"},
		{Field: "hero", Severity: validation.SeverityError, Code: validation.CodeCustom, Message: "Add an image or a video for the hero."},
	}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if result.Valid() {
		t.Fatalf("expected invalid result")
	}
	if result.Preview.Subtitle != "production • internal → /Work/— • public" {
		t.Fatalf("unexpected subtitle %q", result.Preview.Subtitle)
	}
}

func TestEvaluateSecretKeyVisibility(t *testing.T) {
	t.Parallel()

	eng := engine.New()

	unlisted, err := eng.Evaluate(contenttypes.Project, projectSnapshot(value.Snapshot{
		"visibility": value.String("unlisted"),
	}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !unlisted.Visibility.Visible("secretKey") {
		t.Fatalf("secretKey should be visible for unlisted projects")
	}

	public, err := eng.Evaluate(contenttypes.Project, projectSnapshot(nil))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if public.Visibility.Visible("secretKey") {
		t.Fatalf("secretKey should be hidden when visibility defaults to public")
	}
}

func TestEvaluateShortDescriptionWarning(t *testing.T) {
	t.Parallel()

	result, err := engine.New().Evaluate(contenttypes.Project, projectSnapshot(value.Snapshot{
		"linkMode":         value.String("internal"),
		"slug":             value.Object(map[string]value.Value{"current": value.String("foo")}),
		"hero":             value.Object(map[string]value.Value{"videoUrl": value.String("https://vimeo.test/1")}),
		"projectType":      value.String("web"),
		"shortDescription": value.String(strings.Repeat("x", 301)),
	}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected exactly one issue, got %+v", result.Issues)
	}
	if issue := result.Issues[0]; issue.Severity != validation.SeverityWarning || issue.Field != "shortDescription" {
		t.Fatalf("unexpected issue %+v", issue)
	}
	if !result.Valid() {
		t.Fatalf("warnings must not invalidate the document")
	}
}

func TestEvaluateMemberPreviews(t *testing.T) {
	t.Parallel()

	result, err := engine.New().Evaluate(contenttypes.Project, projectSnapshot(value.Snapshot{
		"linkMode": value.String("internal"),
		"credits": value.List(value.Object(map[string]value.Value{
			"_type": value.String("credit"),
			"role":  value.String("Director"),
			"name":  value.String("Ana"),
		})),
		"detailGallery": value.List(value.Object(map[string]value.Value{
			"_type":   value.String("galleryVideo"),
			"caption": value.String("Teaser"),
		})),
	}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	want := map[string][]model.Preview{
		"credits":       {{Title: "Ana", Subtitle: "Director"}},
		"detailGallery": {{Title: "Teaser", Subtitle: "Missing file"}},
	}
	if diff := cmp.Diff(want, result.Members); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
	if len(validation.ForField(result.Issues, "detailGallery[0].file")) != 1 {
		t.Fatalf("expected missing file issue, got %+v", result.Issues)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	eng := engine.New()
	snapshot := projectSnapshot(value.Snapshot{"linkMode": value.String("internal")})
	first, err := eng.Evaluate(contenttypes.Project, snapshot)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, err := eng.Evaluate(contenttypes.Project, snapshot)
			if err != nil {
				t.Errorf("Evaluate: %v", err)
				return
			}
			if diff := cmp.Diff(first, again); diff != "" {
				t.Errorf("results differ (-first +again):\n%s", diff)
			}
		}()
	}
	wg.Wait()
}

func TestEvaluateUnknownType(t *testing.T) {
	t.Parallel()

	_, err := engine.New().Evaluate("video", nil)
	var notFound *registry.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEvaluateEmptySnapshot(t *testing.T) {
	t.Parallel()

	result, err := engine.New().Evaluate(contenttypes.Photo, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.Issues == nil {
		t.Fatalf("issues should be an empty slice, not nil")
	}
	if diff := cmp.Diff([]string{"name"}, fields(result.Issues)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func fields(issues []validation.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Field)
	}
	return out
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.WithTokenSource(contenttypes.StaticTokens("abc123")))
	got, err := eng.Initialize(contenttypes.Project, value.Snapshot{"name": value.String("Foo")})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	want := value.Snapshot{
		"name":       value.String("Foo"),
		"linkMode":   value.String("external"),
		"visibility": value.String("public"),
		"secretKey":  value.String("abc123"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	// Stored values survive re-initialisation.
	again, err := engine.New().Initialize(contenttypes.Project, got)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("second Initialize changed the snapshot (-want +got):\n%s", diff)
	}
}

func TestInitializeGeneratorErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("no entropy")
	eng := engine.New(engine.WithTokenSource(contenttypes.TokenSourceFunc(func() (string, error) {
		return "", boom
	})))
	if _, err := eng.Initialize(contenttypes.Project, nil); !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}

	reg := registry.New()
	reg.MustRegister(model.DocumentType{
		Name:   "note",
		Fields: []model.FieldDescriptor{{Name: "key", Type: model.TypeString, Default: model.DeriveOnce("uuid")}},
	})
	_, err := engine.New(engine.WithRegistry(reg)).Initialize("note", nil)
	if err == nil || !strings.Contains(err.Error(), `generator "uuid" not configured`) {
		t.Fatalf("expected missing generator error, got %v", err)
	}
}

func TestEngineOptions(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.MustRegister(model.DocumentType{
		Name: "note",
		Fields: []model.FieldDescriptor{
			{Name: "body", Type: model.TypeText},
			{Name: "internalNotes", Type: model.TypeText, VisibleWhen: expr.Truthy("extras.staff")},
		},
	})

	var calls int
	counting := visibility.EvaluatorFunc(func(path string, rule *expr.Expr, ctx visibility.Context) (bool, error) {
		calls++
		return rule.Eval(ctx)
	})

	eng := engine.New(
		engine.WithRegistry(reg),
		engine.WithEvaluator(counting),
		engine.WithExtras(value.Snapshot{"staff": value.Bool(true)}),
	)
	result, err := eng.Evaluate("note", nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.Visibility.Visible("internalNotes") {
		t.Fatalf("extras should reveal internalNotes")
	}
	if calls == 0 {
		t.Fatalf("custom evaluator was not used")
	}
	if eng.Registry() != reg {
		t.Fatalf("Registry() should return the injected registry")
	}
}

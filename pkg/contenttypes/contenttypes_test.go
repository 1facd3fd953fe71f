package contenttypes

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
)

func TestLoadEmbeddedTypes(t *testing.T) {
	t.Parallel()

	docs, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var names []string
	for _, doc := range docs {
		names = append(names, doc.Name)
	}
	if diff := cmp.Diff([]string{Photo, Project}, names); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(StaticTokens("k"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	project, err := reg.Get(Project)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	want := []string{
		"name", "image", "mainVideoFile", "mainVideoUrl", "description", "linkMode",
		"url", "slug", "order", "projectType", "gallery", "shortDescription",
		"client", "agency", "year", "credits", "hero", "detailGallery",
		"visibility", "secretKey",
	}
	if diff := cmp.Diff(want, project.FieldNames()); diff != "" {
		t.Fatalf("project fields mismatch (-want +got):\n%s", diff)
	}

	linkMode, _ := project.Field("linkMode")
	if !linkMode.IsDiscriminator() || !linkMode.Default.Value.Equal(value.String("external")) {
		t.Fatalf("linkMode should default to external, got %+v", linkMode.Default)
	}
	secret, _ := project.Field("secretKey")
	if secret.Default.Kind != model.DefaultDeriveOnce || secret.Default.Using != TokenGenerator {
		t.Fatalf("secretKey should be generated, got %+v", secret.Default)
	}
	slug, _ := project.Field("slug")
	if slug.Default.Kind != model.DefaultNone {
		t.Fatalf("slug must not carry a default, got %+v", slug.Default)
	}

	gen := reg.CheckOptions().Generators[TokenGenerator]
	got, err := gen()
	if err != nil || !got.Equal(value.String("k")) {
		t.Fatalf("token generator returned %s, %v", got, err)
	}
}

func TestRandomTokens(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[0-9a-z]{22}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		token, err := RandomTokens().Token()
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if !pattern.MatchString(token) {
			t.Fatalf("unexpected token %q", token)
		}
		seen[token] = struct{}{}
	}
	if len(seen) < 20 {
		t.Fatalf("expected distinct tokens, got %d of 20", len(seen))
	}
}

func TestGeneratorsPropagateErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("entropy exhausted")
	gen := Generators(TokenSourceFunc(func() (string, error) { return "", boom }))[TokenGenerator]
	if _, err := gen(); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
	if Generators(nil)[TokenGenerator] == nil {
		t.Fatalf("nil source should fall back to random tokens")
	}
}

func TestPreparers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fn   model.PrepareFunc
		sel  model.Selection
		want model.Preview
	}{
		{
			name: "credit",
			fn:   PrepareCredit,
			sel:  model.Selection{"role": value.String("Editor")},
			want: model.Preview{Title: "—", Subtitle: "Editor"},
		},
		{
			name: "gallery video without asset",
			fn:   PrepareGalleryVideo,
			sel:  model.Selection{"asset": value.Null()},
			want: model.Preview{Title: "Video", Subtitle: "Missing file"},
		},
		{
			name: "gallery video url",
			fn:   PrepareGalleryVideoURL,
			sel:  model.Selection{"caption": value.String("Behind the scenes")},
			want: model.Preview{Title: "Behind the scenes", Subtitle: "No URL"},
		},
		{
			name: "project with unknown link mode",
			fn:   PrepareProject,
			sel:  model.Selection{"title": value.String("X"), "mode": value.String("carrier")},
			want: model.Preview{Title: "X", Subtitle: "— • carrier → No link • public"},
		},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, tc.fn(tc.sel)); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

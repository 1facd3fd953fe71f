package preview_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docrules/pkg/contenttypes"
	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/preview"
	"github.com/goliatone/go-docrules/pkg/value"
)

func loadType(t *testing.T, name string) model.DocumentType {
	t.Helper()
	docs, err := contenttypes.Load()
	if err != nil {
		t.Fatalf("load content types: %v", err)
	}
	for _, doc := range docs {
		if doc.Name == name {
			return doc
		}
	}
	t.Fatalf("document type %q not found", name)
	return model.DocumentType{}
}

func TestComputeProjectPreview(t *testing.T) {
	t.Parallel()

	project := loadType(t, contenttypes.Project)
	image := value.Asset(value.AssetRef{ID: "image-1"})

	cases := []struct {
		name     string
		snapshot value.Snapshot
		want     model.Preview
	}{
		{
			name: "external link",
			snapshot: value.Snapshot{
				"name":        value.String("A"),
				"projectType": value.String("web"),
				"linkMode":    value.String("external"),
				"url":         value.String("http://x.test"),
				"image":       image,
			},
			want: model.Preview{Title: "A", Subtitle: "web • external → http://x.test • public", Media: image},
		},
		{
			name: "internal without slug",
			snapshot: value.Snapshot{
				"name":        value.String("B"),
				"projectType": value.String("production"),
				"linkMode":    value.String("internal"),
			},
			want: model.Preview{Title: "B", Subtitle: "production • internal → /Work/— • public"},
		},
		{
			name: "internal with slug and unlisted",
			snapshot: value.Snapshot{
				"name":        value.String("C"),
				"projectType": value.String("photo"),
				"linkMode":    value.String("internal"),
				"slug":        value.Object(map[string]value.Value{"_type": value.String("slug"), "current": value.String("c-project")}),
				"visibility":  value.String("unlisted"),
			},
			want: model.Preview{Title: "C", Subtitle: "photo • internal → /Work/c-project • unlisted"},
		},
		{
			name:     "no link",
			snapshot: value.Snapshot{"linkMode": value.String("none")},
			want:     model.Preview{Subtitle: "— • none → No link • public"},
		},
		{
			name:     "defaults apply",
			snapshot: value.Snapshot{"name": value.String("D")},
			want:     model.Preview{Title: "D", Subtitle: "— • external → — • public"},
		},
		{
			name:     "angle brackets kept",
			snapshot: value.Snapshot{"name": value.String("a<b"), "linkMode": value.String("none")},
			want:     model.Preview{Title: "a<b", Subtitle: "— • none → No link • public"},
		},
		{
			name:     "tag-like text kept",
			snapshot: value.Snapshot{"name": value.String("Foo <Bar>"), "linkMode": value.String("none")},
			want:     model.Preview{Title: "Foo <Bar>", Subtitle: "— • none → No link • public"},
		},
		{
			name:     "markup kept verbatim",
			snapshot: value.Snapshot{"name": value.String("x <script>y</script>"), "linkMode": value.String("none")},
			want:     model.Preview{Title: "x <script>y</script>", Subtitle: "— • none → No link • public"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := preview.Compute(project, tc.snapshot)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("preview mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeDefaultSelection(t *testing.T) {
	t.Parallel()

	doc := model.DocumentType{
		Name: "photo",
		Fields: []model.FieldDescriptor{
			{Name: "order", Type: model.TypeNumber},
			{Name: "name", Type: model.TypeString},
			{Name: "image", Type: model.TypeImage},
			{Name: "alt", Type: model.TypeString},
		},
	}
	image := value.Asset(value.AssetRef{ID: "image-7"})

	got := preview.Compute(doc, value.Snapshot{
		"name":  value.String("Sunset"),
		"alt":   value.String("Orange sky"),
		"image": image,
	})
	want := model.Preview{Title: "Sunset", Media: image}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}
}

func TestMemberPreviews(t *testing.T) {
	t.Parallel()

	project := loadType(t, contenttypes.Project)
	credits, _ := project.Field("credits")
	gallery, _ := project.Field("detailGallery")

	credit, ok := preview.Member(credits, value.Object(map[string]value.Value{
		"_type": value.String("credit"),
		"role":  value.String("Director"),
		"name":  value.String("Ana"),
	}))
	if !ok {
		t.Fatalf("expected credit preview")
	}
	if diff := cmp.Diff(model.Preview{Title: "Ana", Subtitle: "Director"}, credit); diff != "" {
		t.Fatalf("credit mismatch (-want +got):\n%s", diff)
	}

	items := value.List(
		value.Object(map[string]value.Value{
			"_type": value.String("galleryImage"),
			"asset": value.Asset(value.AssetRef{ID: "image-1"}),
		}),
		value.Object(map[string]value.Value{
			"_type": value.String("galleryVideo"),
			"file":  value.Object(map[string]value.Value{"asset": value.Asset(value.AssetRef{ID: "file-1"})}),
		}),
		value.Object(map[string]value.Value{
			"_type":   value.String("galleryVideo"),
			"caption": value.String("Teaser"),
		}),
		value.Object(map[string]value.Value{
			"_type": value.String("galleryVideoUrl"),
			"url":   value.String("https://vimeo.test/1"),
		}),
	)

	want := []model.Preview{
		{},
		{Title: "Video", Subtitle: "Uploaded"},
		{Title: "Teaser", Subtitle: "Missing file"},
		{Title: "Linked Video", Subtitle: "https://vimeo.test/1"},
	}
	if diff := cmp.Diff(want, preview.Members(gallery, items)); diff != "" {
		t.Fatalf("gallery previews mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	sel := preview.Select(map[string]string{
		"slug":    "slug.current",
		"missing": "hero.image",
	}, value.Snapshot{
		"slug": value.Object(map[string]value.Value{"current": value.String("x")}),
	})
	want := model.Selection{"slug": value.String("x"), "missing": value.Null()}
	if diff := cmp.Diff(want, sel); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Plain  ":                    "Plain",
		"<em>Rock</em> &amp; Roll":     "Rock & Roll",
		`<img src=x onerror=alert(1)>`: "",
		"Tom &lt;3 Jerry":              "Tom <3 Jerry",
	}
	for input, want := range cases {
		if got := preview.SanitizeText(input); got != want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", input, got, want)
		}
	}
}

package registry

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/value"
	"github.com/goliatone/go-docrules/pkg/visibility/expr"
)

func simpleType(name string, fields ...string) model.DocumentType {
	doc := model.DocumentType{Name: name}
	for _, field := range fields {
		doc.Fields = append(doc.Fields, model.FieldDescriptor{Name: field, Type: model.TypeString})
	}
	return doc
}

func TestRegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := New()
	if err := reg.Register(simpleType("project", "name", "url")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	reg.MustRegister(simpleType("photo", "name"))

	doc, err := reg.Get("project")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "url"}, doc.FieldNames()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"project", "photo"}, reg.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	listed := reg.List()
	if len(listed) != 2 || listed[0].Name != "project" || listed[1].Name != "photo" {
		t.Fatalf("unexpected List result %+v", listed)
	}
	if diff := cmp.Diff([]string{"name", "url"}, listed[0].FieldNames()); diff != "" {
		t.Fatalf("listed fields mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has("photo") || reg.Has("video") {
		t.Fatalf("Has reported wrong membership")
	}
}

func TestRegisterRejectsPaddedNames(t *testing.T) {
	t.Parallel()

	reg := New()
	for _, name := range []string{" project", "project ", "\tphoto"} {
		err := reg.Register(simpleType(name, "name"))
		if err == nil || !strings.Contains(err.Error(), "surrounding whitespace") {
			t.Fatalf("Register(%q): expected whitespace error, got %v", name, err)
		}
	}
	if len(reg.Names()) != 0 {
		t.Fatalf("rejected types must not be registered, got %v", reg.Names())
	}
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	_, err := New().Get("video")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Name != "video" {
		t.Fatalf("unexpected name %q", notFound.Name)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.MustRegister(simpleType("project", "name"))

	err := reg.Register(simpleType("project", "title"))
	var dup *DuplicateNameError
	if !errors.As(err, &dup) || dup.Type != "project" || dup.Field != "" {
		t.Fatalf("expected duplicate type error, got %v", err)
	}

	err = reg.Register(simpleType("photo", "name", "name"))
	if !errors.As(err, &dup) || dup.Field != "name" {
		t.Fatalf("expected duplicate field error, got %v", err)
	}
	if reg.Has("photo") {
		t.Fatalf("failed registration must not add the type")
	}
}

func TestRegisterWrapsCheckErrors(t *testing.T) {
	t.Parallel()

	doc := model.DocumentType{
		Name: "project",
		Fields: []model.FieldDescriptor{
			{Name: "url", Type: model.TypeURL, VisibleWhen: expr.Eq("linkMode", "external")},
		},
	}
	err := New().Register(doc)
	if err == nil || !strings.HasPrefix(err.Error(), "registry: model:") {
		t.Fatalf("expected wrapped check error, got %v", err)
	}

	if err := New().Register(model.DocumentType{Name: "  "}); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestRegisterAllIsAtomic(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.MustRegister(simpleType("photo", "name"))

	err := reg.RegisterAll(simpleType("project", "name"), simpleType("photo", "name"))
	var dup *DuplicateNameError
	if !errors.As(err, &dup) || dup.Type != "photo" {
		t.Fatalf("expected duplicate photo, got %v", err)
	}
	if reg.Has("project") {
		t.Fatalf("partial registration leaked project")
	}

	err = reg.RegisterAll(simpleType("video", "name"), simpleType("video", "title"))
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate within batch, got %v", err)
	}
	if reg.Has("video") {
		t.Fatalf("partial registration leaked video")
	}

	if err := reg.RegisterAll(simpleType("project", "name"), simpleType("video", "name")); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if diff := cmp.Diff([]string{"photo", "project", "video"}, reg.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsExtendCheck(t *testing.T) {
	t.Parallel()

	doc := model.DocumentType{
		Name: "project",
		Fields: []model.FieldDescriptor{
			{Name: "name", Type: model.TypeString},
			{Name: "shout", Type: model.TypeString, Default: model.Derive("upper", "name")},
			{Name: "secretKey", Type: model.TypeString, Default: model.DeriveOnce("token")},
		},
	}

	upper := model.Derivations{"upper": func(args []value.Value) value.Value {
		return value.String(strings.ToUpper(args[0].Display()))
	}}
	tokens := model.Generators{"token": func() (value.Value, error) { return value.String("k"), nil }}

	if err := New(WithGenerators(tokens)).Register(doc); err == nil {
		t.Fatalf("expected unknown derivation error")
	}
	if err := New(WithDerivations(upper), WithGenerators(model.Generators{})).Register(doc); err == nil {
		t.Fatalf("expected unknown generator error")
	}

	reg := New(WithDerivations(upper), WithGenerators(tokens))
	if err := reg.Register(doc); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := reg.CheckOptions().Derivations["slugify"]; !ok {
		t.Fatalf("built-in derivations must remain available")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			if err := reg.Register(simpleType(name, "name")); err != nil {
				t.Errorf("Register(%s): %v", name, err)
			}
			_ = reg.List()
			_, _ = reg.Get(name)
		}(i)
	}
	wg.Wait()
	if got := len(reg.List()); got != 8 {
		t.Fatalf("expected 8 types, got %d", got)
	}
}

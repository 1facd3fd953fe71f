package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docrules/pkg/contenttypes"
	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/schema"
	"github.com/goliatone/go-docrules/pkg/value"
)

// LoadSnapshot reads a JSON or YAML document fixture. Testing helpers fail
// the test on error to keep contract tests concise.
func LoadSnapshot(t *testing.T, path string) value.Snapshot {
	t.Helper()

	snapshot, err := LoadSnapshotFromPath(path)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	return snapshot
}

// LoadSnapshotFromPath returns a Snapshot without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadSnapshotFromPath(path string) (value.Snapshot, error) {
	if path == "" {
		return nil, errors.New("testsupport: snapshot path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read snapshot: %w", err)
	}
	raw := map[string]any{}
	switch schema.FormatOf(path) {
	case schema.FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode snapshot: %w", err)
	}
	snapshot, err := value.SnapshotFromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("testsupport: convert snapshot: %w", err)
	}
	return snapshot, nil
}

// MustLoadDefinition parses a definition fixture with the built-in preparers
// bound.
func MustLoadDefinition(t *testing.T, path string) model.DocumentType {
	t.Helper()

	doc, err := schema.NewLoader(schema.WithPreparers(contenttypes.Preparers())).LoadFile(path)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	return doc
}

// WriteGolden writes value as indented JSON to a golden file when
// UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareJSONGolden encodes got as JSON and diffs it against the golden file
// at path, ignoring formatting and key order. The golden is rewritten first
// when UPDATE_GOLDENS is set.
func CompareJSONGolden(t *testing.T, path string, got any) string {
	t.Helper()

	WriteGolden(t, path, got)

	var want any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden: %v", err)
	}
	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var plain any
	if err := json.NewDecoder(bytes.NewReader(payload)).Decode(&plain); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return cmp.Diff(want, plain)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

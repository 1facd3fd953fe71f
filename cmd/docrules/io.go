package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docrules/pkg/engine"
	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/preview"
	"github.com/goliatone/go-docrules/pkg/value"
)

// typeKey is the document member naming its type, as stored by the content
// backend.
const typeKey = "_type"

// readSnapshot decodes a JSON or YAML document. "-" reads JSON from stdin.
func readSnapshot(path string, stdin io.Reader) (value.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeSnapshot(data, path)
}

func decodeSnapshot(data []byte, path string) (value.Snapshot, error) {
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	snapshot, err := value.SnapshotFromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return snapshot, nil
}

// documentType picks the type named by flag, falling back to the document's
// own _type member.
func documentType(flag string, snapshot value.Snapshot) string {
	if strings.TrimSpace(flag) != "" {
		return strings.TrimSpace(flag)
	}
	if v, ok := snapshot.Get(typeKey); ok {
		s, _ := v.Str()
		return strings.TrimSpace(s)
	}
	return ""
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, v any, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// writeSnapshot encodes snapshot in the format implied by path's extension.
func writeSnapshot(w io.Writer, snapshot value.Snapshot, path string) error {
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	return encode(w, snapshot.ToMap(), format)
}

func writeResult(w io.Writer, result engine.Result, format string) error {
	switch format {
	case "json":
		return encode(w, result, "json")
	case "yaml":
		// Route through JSON so values use their plain representation.
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		var plain any
		if err := json.Unmarshal(data, &plain); err != nil {
			return err
		}
		return encode(w, plain, "yaml")
	default:
		return writeText(w, result)
	}
}

// plainPreviews strips markup from the document and member preview text.
func plainPreviews(result engine.Result) engine.Result {
	result.Preview = plainPreview(result.Preview)
	if len(result.Members) == 0 {
		return result
	}
	members := make(map[string][]model.Preview, len(result.Members))
	for field, previews := range result.Members {
		out := make([]model.Preview, len(previews))
		for idx, p := range previews {
			out[idx] = plainPreview(p)
		}
		members[field] = out
	}
	result.Members = members
	return result
}

func plainPreview(p model.Preview) model.Preview {
	p.Title = preview.SanitizeText(p.Title)
	p.Subtitle = preview.SanitizeText(p.Subtitle)
	return p
}

func writeText(w io.Writer, result engine.Result) error {
	status := "valid"
	if !result.Valid() {
		status = "invalid"
	}
	fmt.Fprintf(w, "%s: %s\n", result.Type, status)
	fmt.Fprintf(w, "  title:    %s\n", result.Preview.Title)
	if result.Preview.Subtitle != "" {
		fmt.Fprintf(w, "  subtitle: %s\n", result.Preview.Subtitle)
	}

	var visible, hidden []string
	for path, ok := range result.Visibility {
		if strings.Contains(path, ".") {
			continue
		}
		if ok {
			visible = append(visible, path)
		} else {
			hidden = append(hidden, path)
		}
	}
	sort.Strings(visible)
	sort.Strings(hidden)
	fmt.Fprintf(w, "  visible:  %s\n", strings.Join(visible, ", "))
	if len(hidden) > 0 {
		fmt.Fprintf(w, "  hidden:   %s\n", strings.Join(hidden, ", "))
	}

	if len(result.Issues) == 0 {
		return nil
	}
	fmt.Fprintln(w, "  issues:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, issue := range result.Issues {
		fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\n", issue.Severity, issue.Field, issue.Code, issue.Message)
	}
	return tw.Flush()
}

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-docrules/pkg/engine"
)

func TestWatcherEvaluatesOnStart(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "project.json", externalProject)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	w := &watcher{
		path:     path,
		engine:   engine.New(),
		output:   "text",
		debounce: 10 * time.Millisecond,
		out:      &out,
	}
	if err := w.run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "project: valid\n") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestWatcherReportsErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := []struct {
		name     string
		body     string
		typeName string
		want     string
	}{
		{name: "broken", body: "{", want: "error: "},
		{name: "untyped", body: `{"name": "Foo"}`, want: "error: document has no _type; pass --type\n"},
		{name: "unknown", body: `{"name": "Foo"}`, typeName: "article", want: "error: "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			w := &watcher{
				path:     writeFile(t, dir, tc.name+".json", tc.body),
				typeName: tc.typeName,
				engine:   engine.New(),
				output:   "text",
				out:      &out,
			}
			w.evaluate()
			if !strings.HasPrefix(out.String(), tc.want) {
				t.Fatalf("expected prefix %q, got %q", tc.want, out.String())
			}
		})
	}
}

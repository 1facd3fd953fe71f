package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-docrules/pkg/engine"
)

func newWatchCmd() *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "watch <document>",
		Short: "Re-evaluate a document whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cfg, err := buildEngine()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &watcher{
				path:     args[0],
				typeName: typeName,
				engine:   eng,
				output:   cfg.Output,
				plain:    cfg.StripMarkup,
				debounce: cfg.Debounce,
				out:      cmd.OutOrStdout(),
			}
			return w.run(ctx)
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "document type (default: the document's _type)")
	return cmd
}

type watcher struct {
	path     string
	typeName string
	engine   *engine.Engine
	output   string
	plain    bool
	debounce time.Duration
	out      io.Writer
}

// run evaluates the document once, then again after every settled write. The
// parent directory is watched so files replaced by rename are still seen.
func (w *watcher) run(ctx context.Context) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return err
	}

	w.evaluate()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(w.debounce)
			}
		case <-pending:
			pending = nil
			w.evaluate()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}

// evaluate prints the result or the error. Errors never end the watch.
func (w *watcher) evaluate() {
	snapshot, err := readSnapshot(w.path, nil)
	if err != nil {
		fmt.Fprintf(w.out, "error: %v\n", err)
		return
	}
	name := documentType(w.typeName, snapshot)
	if name == "" {
		fmt.Fprintf(w.out, "error: document has no %s; pass --type\n", typeKey)
		return
	}
	result, err := w.engine.Evaluate(name, snapshot)
	if err != nil {
		fmt.Fprintf(w.out, "error: %v\n", err)
		return
	}
	if w.plain {
		result = plainPreviews(result)
	}
	if err := writeResult(w.out, result, w.output); err != nil {
		fmt.Fprintf(w.out, "error: %v\n", err)
	}
}

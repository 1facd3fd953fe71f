package docrules

import (
	"github.com/goliatone/go-docrules/pkg/engine"
	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/validation"
	"github.com/goliatone/go-docrules/pkg/value"
)

// Result aliases engine.Result so callers can use the root package alone.
type Result = engine.Result

// Issue aliases validation.Issue.
type Issue = validation.Issue

// Preview aliases model.Preview.
type Preview = model.Preview

// Snapshot aliases value.Snapshot.
type Snapshot = value.Snapshot

// NewEngine exposes the engine constructor from the top-level module.
func NewEngine(options ...engine.Option) *engine.Engine {
	return engine.New(options...)
}

// Evaluate decodes a plain document (as produced by encoding/json or yaml)
// and evaluates it against the named document type. It is the simplest entry
// point for callers that do not hold an Engine.
func Evaluate(documentType string, document map[string]any, options ...engine.Option) (Result, error) {
	snapshot, err := value.SnapshotFromMap(document)
	if err != nil {
		return Result{}, err
	}
	return engine.New(options...).Evaluate(documentType, snapshot)
}

package docrules

import (
	"io/fs"

	"github.com/goliatone/go-docrules/pkg/contenttypes"
	"github.com/goliatone/go-docrules/pkg/schema"
)

// NewLoader constructs a definition loader that understands the built-in
// preview preparers in addition to any supplied through options.
func NewLoader(options ...schema.Option) *schema.Loader {
	opts := append([]schema.Option{schema.WithPreparers(contenttypes.Preparers())}, options...)
	return schema.NewLoader(opts...)
}

// EmbeddedDefinitions exposes the built-in "project" and "photo" definitions
// so callers can copy or extend them.
func EmbeddedDefinitions() fs.FS {
	return contenttypes.EmbeddedFS()
}

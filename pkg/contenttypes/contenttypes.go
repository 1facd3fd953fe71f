package contenttypes

import (
	"fmt"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/registry"
	"github.com/goliatone/go-docrules/pkg/schema"
)

const (
	// Project is the name of the project document type.
	Project = "project"
	// Photo is the name of the photo document type.
	Photo = "photo"
)

// Load parses the embedded definitions.
func Load() ([]model.DocumentType, error) {
	docs, err := schema.NewLoader(schema.WithPreparers(Preparers())).LoadFS(EmbeddedFS())
	if err != nil {
		return nil, fmt.Errorf("contenttypes: %w", err)
	}
	return docs, nil
}

// Register loads the embedded definitions into reg. The registry must know
// the "token" generator, see Generators.
func Register(reg *registry.Registry) error {
	docs, err := Load()
	if err != nil {
		return err
	}
	return reg.RegisterAll(docs...)
}

// NewRegistry returns a registry holding the built-in content model, with
// private-link keys drawn from source.
func NewRegistry(source TokenSource) (*registry.Registry, error) {
	reg := registry.New(registry.WithGenerators(Generators(source)))
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Package model defines the declarative description of a document type: the
// ordered field descriptors, their value types, defaults, visibility
// predicates and validation rules, plus the preview rule that summarises a
// document. Semantic attributes are kept apart from the Presentation bag
// (titles, layout hints, accepted mime types) which the evaluation packages
// ignore.
//
// Definitions are immutable once registered. Check enforces their static
// invariants (unique names, predicates that only read earlier fields, an
// acyclic derivation graph) so the visibility, validation and preview
// packages can evaluate them as pure functions of a value.Snapshot.
package model

// Package contenttypes bundles the built-in content model: the "project"
// document, whose link routing and private-link fields depend on the linkMode
// and visibility discriminators, and the simpler "photo" document. Definitions
// are embedded YAML loaded through package schema; the preview preparers and
// the private-link token generator they reference live here.
package contenttypes

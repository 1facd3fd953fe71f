// Package preview derives the human-readable summary shown for a document or
// a list member. A PreviewRule selects values by path into aliases and a
// prepare function formats them. Rules without a prepare function pass the
// `title`, `subtitle` and `media` aliases through unchanged.
package preview

// Package prompt fills in a document interactively. Fields are asked in
// declaration order and visibility is recomputed after every answer, so
// choosing a link mode decides which companion fields are asked next.
package prompt

// Package engine combines visibility, validation and preview into the single
// call an editor makes after every field edit, and initialises new documents
// with their literal and generated defaults.
package engine

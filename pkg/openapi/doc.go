// Package openapi exports registered document types as OpenAPI 3 component
// schemas so the external content store can validate payloads it receives.
// Conditional behaviour that JSON Schema cannot express is carried in
// extensions: x-visible-when, x-custom-rules, x-derive, x-generate and
// x-max-length-warning.
package openapi

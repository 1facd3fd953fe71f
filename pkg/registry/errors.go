package registry

import "fmt"

// DuplicateNameError reports a document type, or a field within one, whose
// name is already taken.
type DuplicateNameError struct {
	// Type is the document type name.
	Type string
	// Field is set when the duplicate is a field inside Type.
	Field string
}

func (e *DuplicateNameError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("registry: document type %q declares field %q more than once", e.Type, e.Field)
	}
	return fmt.Sprintf("registry: document type %q already registered", e.Type)
}

// NotFoundError reports a lookup for an unregistered document type.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("registry: document type %q not found", e.Name)
}

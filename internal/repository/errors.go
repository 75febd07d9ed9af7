package repository

import (
	"fmt"
)

// NotFoundError represents an error when a resource is not found. Ownership
// mismatches surface as the same error so order IDs cannot be enumerated.
type NotFoundError struct {
	Resource string
	Key      string
	Value    string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %s not found", e.Resource, e.Key, e.Value)
}

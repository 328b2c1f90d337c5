// Package utils holds small generic helpers for optional API payload fields.
package utils

// Value dereferences v, returning the zero value when v is nil. API payloads
// model omitted objects as nil pointers.
func Value[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// Ptr returns a pointer to v, for building payloads with optional fields.
func Ptr[T any](v T) *T {
	return &v
}

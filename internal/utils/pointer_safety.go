package utils

// Value dereferences v, returning the zero value for a nil pointer. Linkage
// ids and other optional fields lean on this to stay nil-safe.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

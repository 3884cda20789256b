package utils

// Ptr returns a pointer to v. Handy for optional fields that take a
// *string or similar, where the value at hand is a literal.
func Ptr[T any](v T) *T {
	return &v
}

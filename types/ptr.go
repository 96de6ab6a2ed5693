// ptr.go provides a helper function for creating pointers to values.

package types

// Ptr returns a pointer to a copy of the given value.
func Ptr[T any](v T) *T {
	return &v
}

// Package ptr provides helpers for optional (pointer) fields.
package ptr

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Deref returns *p, or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// NonZero returns a pointer to v, or nil when v is the zero value.
// Useful for mapping empty strings to NULL columns.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

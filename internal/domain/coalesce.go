package domain

// Coalesce returns the first non-zero value, or the zero value when all are.
func Coalesce[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

// DerefOr returns *p, or fallback when p is nil. Optional numeric fields
// of the snapshot format use it to apply their defaults.
func DerefOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

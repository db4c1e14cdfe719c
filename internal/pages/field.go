package pages

// FieldState distinguishes the three states of a staged field.
type FieldState uint8

const (
	// FieldUnset leaves the base value untouched.
	FieldUnset FieldState = iota
	// FieldSet replaces the base value.
	FieldSet
	// FieldCleared removes the base value.
	FieldCleared
)

// Field is a staged value that is either unset, set to a value, or
// explicitly cleared.
type Field[T any] struct {
	state FieldState
	value T
}

// Set stages value.
func Set[T any](value T) Field[T] {
	return Field[T]{state: FieldSet, value: value}
}

// Clear stages an explicit removal.
func Clear[T any]() Field[T] {
	return Field[T]{state: FieldCleared}
}

// State reports the field state.
func (f Field[T]) State() FieldState {
	return f.state
}

// Present reports whether the field was staged at all.
func (f Field[T]) Present() bool {
	return f.state != FieldUnset
}

// IsSet reports whether the field carries a value.
func (f Field[T]) IsSet() bool {
	return f.state == FieldSet
}

// Cleared reports whether the field is an explicit removal.
func (f Field[T]) Cleared() bool {
	return f.state == FieldCleared
}

// Value returns the staged value and whether one is set.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == FieldSet
}

// Resolve applies the field over base.
func (f Field[T]) Resolve(base T) T {
	switch f.state {
	case FieldSet:
		return f.value
	case FieldCleared:
		var zero T
		return zero
	default:
		return base
	}
}

// overlay returns next when it is staged, otherwise f.
func (f Field[T]) overlay(next Field[T]) Field[T] {
	if next.Present() {
		return next
	}
	return f
}

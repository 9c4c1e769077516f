// Package optional provides an explicit present/absent wrapper
package optional

// Option holds either a value (Some) or nothing (None). The zero Option is
// None.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, ok: true}
}

// None returns an absent Option
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether a value is present
func (o Option[T]) IsSome() bool {
	return o.ok
}

// IsNone reports whether the Option is empty
func (o Option[T]) IsNone() bool {
	return !o.ok
}

// Map applies fn to a present value and returns the result wrapped again.
// None passes through untouched.
func Map[T any](o Option[T], fn func(T) T) Option[T] {
	if !o.ok {
		return o
	}
	return Some(fn(o.value))
}

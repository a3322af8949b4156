package redact

import "redactable/policy"

// Sensitive wraps a string-typed value together with the marker that
// redacts it. The wrapper is its own schema: it redacts without any
// registered plan, and its Display output is always the redacted form, so
// accidentally printing one never leaks.
type Sensitive[T ~string] struct {
	value  T
	marker policy.Marker
}

// NewSensitive wraps v under the given marker.
func NewSensitive[T ~string](v T, marker policy.Marker) Sensitive[T] {
	return Sensitive[T]{value: v, marker: marker}
}

// Secret wraps v under the default full-redaction policy.
func Secret[T ~string](v T) Sensitive[T] {
	return NewSensitive(v, policy.Default)
}

// Reveal returns the wrapped cleartext. Callers own the consequences.
func (s Sensitive[T]) Reveal() T {
	return s.value
}

// Marker returns the wrapper's policy marker.
func (s Sensitive[T]) Marker() policy.Marker {
	return s.marker
}

// RedactWith applies the wrapper's own marker, whatever strategy the
// enclosing field carries.
func (s Sensitive[T]) RedactWith(m Mapper) any {
	s.value = T(m.MapSensitive(s.marker, string(s.value)))

	return s
}

// ApplyPolicyRef renders the redacted string view. The wrapper's marker
// wins over the field-level one.
func (s Sensitive[T]) ApplyPolicyRef(m Mapper, _ policy.Marker) string {
	return m.MapSensitive(s.marker, string(s.value))
}

// String renders the redacted form, never the cleartext.
func (s Sensitive[T]) String() string {
	return PolicyMapper{}.MapSensitive(s.marker, string(s.value))
}

// NotSensitive wraps a value that must survive redaction untouched even
// when the walk would otherwise descend into it.
type NotSensitive[T any] struct {
	Value T
}

// Plain wraps v as explicitly non-sensitive.
func Plain[T any](v T) NotSensitive[T] {
	return NotSensitive[T]{Value: v}
}

// RedactWith is identity.
func (n NotSensitive[T]) RedactWith(Mapper) any {
	return n
}

package redact

import (
	"reflect"

	"redactable/policy"
)

// Mapper is the sole runtime customization point. MapScalar erases a scalar
// value given its declared type name; MapSensitive turns a policy marker and
// a leaf's string view into the redacted string. Both are total.
type Mapper interface {
	MapScalar(scalarName string, v reflect.Value) reflect.Value
	MapSensitive(marker policy.Marker, value string) string
}

// PolicyMapper is the default Mapper: scalars erase to their zero value
// (mask character for runes), markers resolve through the policy registry.
type PolicyMapper struct{}

// MapScalar returns the zero value of v's type. Declared runes become the
// mask character instead, so erased character data stays recognizable as
// masked rather than turning into NUL.
func (PolicyMapper) MapScalar(scalarName string, v reflect.Value) reflect.Value {
	out := reflect.New(v.Type()).Elem()

	if scalarName == "rune" {
		out.SetInt(int64(policy.MaskChar))
	}

	return out
}

// MapSensitive resolves the marker and applies its text policy. Unknown
// markers resolve to full redaction.
func (PolicyMapper) MapSensitive(marker policy.Marker, value string) string {
	return policy.Resolve(marker).Apply(value)
}

// Leaf is a non-string type that IS sensitive data. It exposes the string
// view policies operate on and rebuilds a same-typed value from the
// redacted string.
type Leaf interface {
	SensitiveString() string
	FromRedacted(redacted string) any
}

// RefApplier applies a policy by reference, producing only the redacted
// string view without reconstructing a value. The display formatter uses it
// for policy fields.
type RefApplier interface {
	ApplyPolicyRef(m Mapper, marker policy.Marker) string
}

// Walkable is the open extension point of the traversal: a type that knows
// how to redact itself. RedactWith must return a same-typed value and never
// fail.
type Walkable interface {
	RedactWith(m Mapper) any
}

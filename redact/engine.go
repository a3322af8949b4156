package redact

import (
	"encoding/json"
	"reflect"

	"redactable/container"
	"redactable/internal/plan"
	"redactable/policy"
)

var rawMessageType = reflect.TypeOf(json.RawMessage(nil))

// Redact walks v with the default PolicyMapper and returns the redacted
// value. The walk is total: it never fails and never mutates v.
func Redact[T any](v T) T {
	return RedactWith[T](v, PolicyMapper{})
}

// RedactWith walks v with a caller-supplied Mapper.
func RedactWith[T any](v T, m Mapper) T {
	out, ok := ValueWith(any(v), m).(T)
	if !ok {
		var zero T

		return zero
	}

	return out
}

// Value is the dynamic entry point: it redacts any value, returning a value
// of the same dynamic type wherever possible.
func Value(v any) any {
	return ValueWith(v, PolicyMapper{})
}

// ValueWith is Value with a caller-supplied Mapper.
func ValueWith(v any, m Mapper) any {
	if v == nil {
		return nil
	}

	return walkValue(reflect.ValueOf(v), m).Interface()
}

// walkValue is the recursive traversal. Containers recurse shape by shape,
// registered types follow their plan, and everything else is copied as-is.
func walkValue(v reflect.Value, m Mapper) reflect.Value {
	if !v.IsValid() {
		return v
	}

	if v.Kind() == reflect.Pointer && v.IsNil() {
		return v
	}

	t := v.Type()

	if isPassthrough(t) {
		return v
	}

	if t == rawMessageType {
		return redactedRawMessage()
	}

	if v.CanInterface() {
		if w, ok := v.Interface().(Walkable); ok {
			return valueOrZero(w.RedactWith(m), t)
		}

		if r, ok := v.Interface().(container.Remapper); ok {
			return valueOrZero(r.Remap(func(x any) any {
				return ValueWith(x, m)
			}), t)
		}
	}

	if b, ok := lookupBinding(t); ok {
		return applyBinding(v, b, m)
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}

		out := reflect.New(t.Elem())
		out.Elem().Set(walkValue(v.Elem(), m))

		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(t, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(walkValue(v.Index(i), m))
		}

		return out
	case reflect.Array:
		out := reflect.New(t).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(walkValue(v.Index(i), m))
		}

		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}

		// keys are never transformed: redacting them could collide
		// distinct keys
		out := reflect.MakeMapWithSize(t, v.Len())

		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), walkValue(iter.Value(), m))
		}

		return out
	case reflect.Struct:
		return walkStruct(v, m)
	case reflect.Interface:
		return walkDynamic(v, m)
	default:
		// scalars and strings are identity under a plain walk
		return v
	}
}

// walkStruct handles structs with no registered schema: every exported
// field walks with the default strategy.
func walkStruct(v reflect.Value, m Mapper) reflect.Value {
	t := v.Type()
	out := reflect.New(t).Elem()
	out.Set(v)

	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}

		f := out.Field(i)
		f.Set(walkValue(f, m))
	}

	return out
}

// walkDynamic handles interface-typed values. Registered union variants
// dispatch to their plan; everything else is opaque and collapses to the
// placeholder, since an unknown shape cannot be partially redacted safely.
func walkDynamic(v reflect.Value, m Mapper) reflect.Value {
	if v.IsNil() {
		return v
	}

	elem := v.Elem()

	if _, ok := lookupBinding(elem.Type()); ok {
		out := reflect.New(v.Type()).Elem()
		out.Set(walkValue(elem, m))

		return out
	}

	if v.Type().NumMethod() == 0 {
		out := reflect.New(v.Type()).Elem()
		out.Set(reflect.ValueOf(policy.RedactedPlaceholder))

		return out
	}

	return reflect.Zero(v.Type())
}

// applyBinding executes a compiled plan over a struct value.
func applyBinding(v reflect.Value, b *typeBinding, m Mapper) reflect.Value {
	// only struct types carry field bindings; a bound unit type is identity
	if v.Kind() != reflect.Struct {
		return v
	}

	out := reflect.New(v.Type()).Elem()
	out.Set(v)

	for _, fb := range b.fields {
		f := out.Field(fb.index)

		switch fb.step.Op {
		case plan.OpNone:
		case plan.OpWalk:
			f.Set(walkValue(f, m))
		case plan.OpEraseScalar:
			f.Set(m.MapScalar(fb.step.ScalarName, f))
		case plan.OpApplyPolicy:
			f.Set(applyPolicyValue(f, fb.step.Marker, m))
		}
	}

	return out
}

// applyPolicyValue pushes a policy through container shapes down to each
// leaf. Unlike the plain walk, every eventual leaf is transformed with the
// step's marker instead of its own strategy.
func applyPolicyValue(v reflect.Value, marker policy.Marker, m Mapper) reflect.Value {
	if !v.IsValid() {
		return v
	}

	if v.Kind() == reflect.Pointer && v.IsNil() {
		return v
	}

	t := v.Type()

	if t == rawMessageType {
		return redactedRawMessage()
	}

	if v.CanInterface() {
		if l, ok := v.Interface().(Leaf); ok {
			redacted := l.FromRedacted(m.MapSensitive(marker, l.SensitiveString()))

			return valueOrZero(redacted, t)
		}

		if r, ok := v.Interface().(container.Remapper); ok {
			return valueOrZero(r.Remap(func(x any) any {
				return applyPolicyAny(x, marker, m)
			}), t)
		}
	}

	switch v.Kind() {
	case reflect.String:
		out := reflect.New(t).Elem()
		out.SetString(m.MapSensitive(marker, v.String()))

		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}

		out := reflect.New(t.Elem())
		out.Elem().Set(applyPolicyValue(v.Elem(), marker, m))

		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(t, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(applyPolicyValue(v.Index(i), marker, m))
		}

		return out
	case reflect.Array:
		out := reflect.New(t).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(applyPolicyValue(v.Index(i), marker, m))
		}

		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(t, v.Len())

		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), applyPolicyValue(iter.Value(), marker, m))
		}

		return out
	case reflect.Struct:
		out := reflect.New(t).Elem()
		out.Set(v)

		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}

			f := out.Field(i)
			f.Set(applyPolicyValue(f, marker, m))
		}

		return out
	case reflect.Interface:
		// opaque leaves always fully redact, whatever the marker asked for
		if v.IsNil() {
			return v
		}

		if v.Type().NumMethod() == 0 {
			out := reflect.New(t).Elem()
			out.Set(reflect.ValueOf(policy.RedactedPlaceholder))

			return out
		}

		return reflect.Zero(t)
	default:
		return m.MapScalar(t.Name(), v)
	}
}

// ApplyPolicy pushes marker through v's container shapes to each leaf, the
// way an annotated field would be transformed inside its record.
func ApplyPolicy(v any, marker policy.Marker, m Mapper) any {
	return applyPolicyAny(v, marker, m)
}

// applyPolicyAny is applyPolicyValue over dynamic values, used when
// recursing through generic containers.
func applyPolicyAny(v any, marker policy.Marker, m Mapper) any {
	if v == nil {
		return nil
	}

	return applyPolicyValue(reflect.ValueOf(v), marker, m).Interface()
}

// valueOrZero guards against a capability implementation returning nil or a
// differently typed value. Mismatches erase rather than leak.
func valueOrZero(out any, t reflect.Type) reflect.Value {
	rv := reflect.ValueOf(out)
	if !rv.IsValid() || !rv.Type().AssignableTo(t) {
		return reflect.Zero(t)
	}

	return rv
}

func redactedRawMessage() reflect.Value {
	return reflect.ValueOf(json.RawMessage(`"` + policy.RedactedPlaceholder + `"`))
}

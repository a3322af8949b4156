// Package container provides generic container types that participate in
// redaction traversal.
//
// Go's native pointers, slices, arrays and maps are walked structurally by
// the redaction engine. The shapes Go lacks as first-class types live here:
// optionals, two-armed outcomes, sets, single-value cells, shared pointers
// and the phantom marker. Each implements Remapper, the hook the engine uses
// to rebuild a container around transformed contents without knowing its
// element type.
package container

// Remapper is the traversal contract for generic containers. Remap applies
// fn to every held value and returns a container of the same kind holding
// the results. Implementations must never mutate the receiver in place.
type Remapper interface {
	Remap(fn func(any) any) any
}

// remapped converts one transformed element back to its static type. The
// engine always hands back a same-typed value; if a custom mapper does not,
// the element degrades to its zero value rather than surviving unmasked.
func remapped[T any](v any) T {
	out, _ := v.(T)

	return out
}

// Option holds zero or one value of T.
type Option[T any] struct {
	value T
	ok    bool
}

// Some builds an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None builds an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and whether one is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// Remap transforms the present value; absence stays absent.
func (o Option[T]) Remap(fn func(any) any) any {
	if !o.ok {
		return o
	}

	return Some(remapped[T](fn(o.value)))
}

// Result is a two-armed outcome: a value of T or an error of E.
type Result[T, E any] struct {
	value T
	err   E
	isOk  bool
}

// Ok builds a successful Result.
func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{value: v, isOk: true}
}

// Err builds a failed Result.
func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{err: e}
}

// IsOk reports whether the Result holds a value.
func (r Result[T, E]) IsOk() bool {
	return r.isOk
}

// Value returns the success arm.
func (r Result[T, E]) Value() (T, bool) {
	return r.value, r.isOk
}

// Error returns the failure arm.
func (r Result[T, E]) Error() (E, bool) {
	return r.err, !r.isOk
}

// Remap transforms whichever arm is present. Error arms hold data too and
// are redacted like any other.
func (r Result[T, E]) Remap(fn func(any) any) any {
	if r.isOk {
		return Ok[T, E](remapped[T](fn(r.value)))
	}

	return Err[T](remapped[E](fn(r.err)))
}

// Set is an unordered collection of unique values.
type Set[T comparable] struct {
	items map[T]struct{}
}

// NewSet builds a Set from the given values.
func NewSet[T comparable](values ...T) Set[T] {
	s := Set[T]{items: make(map[T]struct{}, len(values))}
	for _, v := range values {
		s.items[v] = struct{}{}
	}

	return s
}

// Add inserts v into the set. The zero-value Set is empty and usable.
func (s *Set[T]) Add(v T) {
	if s.items == nil {
		s.items = make(map[T]struct{})
	}

	s.items[v] = struct{}{}
}

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	_, ok := s.items[v]

	return ok
}

// Len returns the number of elements.
func (s Set[T]) Len() int {
	return len(s.items)
}

// Items returns the elements in unspecified order.
func (s Set[T]) Items() []T {
	out := make([]T, 0, len(s.items))
	for v := range s.items {
		out = append(out, v)
	}

	return out
}

// Remap transforms every element and re-collects. Distinct elements may
// collapse to equal values, so the result can be smaller than the receiver.
func (s Set[T]) Remap(fn func(any) any) any {
	out := Set[T]{items: make(map[T]struct{}, len(s.items))}
	for v := range s.items {
		out.items[remapped[T](fn(v))] = struct{}{}
	}

	return out
}

// Cell is a single mutable slot holding one value.
type Cell[T any] struct {
	value T
}

// NewCell builds a Cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Get returns the held value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set replaces the held value.
func (c *Cell[T]) Set(v T) {
	c.value = v
}

// Remap rewraps the transformed value in a fresh cell, leaving the receiver
// untouched.
func (c *Cell[T]) Remap(fn func(any) any) any {
	return NewCell(remapped[T](fn(c.value)))
}

// Shared is a pointer whose pointee may be visible to other holders.
type Shared[T any] struct {
	p *T
}

// NewShared builds a Shared owning a copy of v.
func NewShared[T any](v T) Shared[T] {
	return Shared[T]{p: &v}
}

// Get returns the shared value.
func (s Shared[T]) Get() T {
	if s.p == nil {
		var zero T

		return zero
	}

	return *s.p
}

// Ptr returns the underlying pointer.
func (s Shared[T]) Ptr() *T {
	return s.p
}

// Remap allocates a fresh pointee for the transformed value. Other holders
// of the original keep seeing the unredacted data; nothing aliased is ever
// mutated.
func (s Shared[T]) Remap(fn func(any) any) any {
	if s.p == nil {
		return s
	}

	return NewShared(remapped[T](fn(*s.p)))
}

// Phantom is a zero-sized marker carrying a type parameter and no data.
// Redaction treats phantom fields as passthrough and the planner excludes
// their parameter from every capability requirement.
type Phantom[T any] struct{}

// Remap is identity; there is nothing to transform.
func (p Phantom[T]) Remap(func(any) any) any {
	return p
}

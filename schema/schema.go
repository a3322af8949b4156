// Package schema describes the shape of user types for redaction planning.
//
// A Schema is the structural description of one user type: its kind (record,
// positional record, field-less unit, or tagged union), its fields with their
// sensitivity annotations, and its generic parameters. Schemas are built once
// by an annotation front-end (struct tags, YAML documents, or hand
// construction) and are immutable afterwards; the planner consumes them and
// never parses source-level annotation syntax itself.
package schema

import (
	"fmt"

	"redactable/internal/common"
	"redactable/policy"
)

// Kind represents the kind of a schema.
type Kind int

const (
	// KindStruct is a named-field record.
	KindStruct Kind = iota
	// KindTuple is a positional-field record.
	KindTuple
	// KindUnit is a field-less marker type.
	KindUnit
	// KindUnion is a tagged union of variants.
	KindUnion
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindTuple:
		return "tuple"
	case KindUnit:
		return "unit"
	case KindUnion:
		return "union"
	default:
		return common.UnknownStr
	}
}

// Schema is the analyzed shape of a user type. It is immutable once built.
type Schema struct {
	// Name of the described type.
	Name string
	// Kind of the type.
	Kind Kind
	// TypeParams lists the generic parameter names, in declaration order.
	TypeParams []string
	// Fields of a struct or tuple schema, in declaration order.
	Fields []Field
	// Variants of a union schema, in declaration order.
	Variants []Variant
	// Display is the optional redacted-display template for a struct/tuple
	// schema. Union schemas put templates on their variants instead.
	Display string
	// NeverSensitive declares the type always non-sensitive: redaction is
	// identity and any sensitivity annotation inside it is a planning error.
	NeverSensitive bool
}

// Variant is one arm of a union schema.
type Variant struct {
	// Name of the variant. Runtime dispatch matches this against the
	// dynamic type name.
	Name string
	// Kind of the variant payload: KindStruct, KindTuple or KindUnit.
	Kind Kind
	// Fields of the variant, in declaration order.
	Fields []Field
	// Display is the optional redacted-display template for this variant.
	Display string
}

// Field describes a single field of a record or variant.
type Field struct {
	// Name of the field; empty for positional fields.
	Name string
	// Index is the field's position in declaration order.
	Index int
	// Type is the declared type of the field.
	Type TypeExpr
	// Annotations holds the field's sensitivity annotations. A valid field
	// carries zero or one; the planner rejects more.
	Annotations []Annotation
}

// Ref returns the field's name, or its positional reference for unnamed
// fields. Used in diagnostics.
func (f Field) Ref() string {
	if f.Name != "" {
		return f.Name
	}

	return fmt.Sprintf("#%d", f.Index)
}

// AnnotationKind distinguishes the two sensitivity annotations.
type AnnotationKind int

const (
	// AnnotationSensitive marks a field for policy application.
	AnnotationSensitive AnnotationKind = iota
	// AnnotationNotSensitive is the explicit passthrough opt-out.
	AnnotationNotSensitive
)

// String returns a human-readable annotation name.
func (k AnnotationKind) String() string {
	switch k {
	case AnnotationSensitive:
		return "sensitive"
	case AnnotationNotSensitive:
		return "not-sensitive"
	default:
		return common.UnknownStr
	}
}

// Annotation is one parsed sensitivity annotation on a field.
type Annotation struct {
	Kind AnnotationKind
	// Marker names the policy for AnnotationSensitive; unused otherwise.
	Marker policy.Marker
}

// Sensitive builds a policy annotation.
func Sensitive(m policy.Marker) Annotation {
	return Annotation{Kind: AnnotationSensitive, Marker: m}
}

// NotSensitive builds the explicit passthrough annotation.
func NotSensitive() Annotation {
	return Annotation{Kind: AnnotationNotSensitive}
}

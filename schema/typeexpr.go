package schema

import (
	"fmt"
	"strings"

	"redactable/internal/common"
)

// Shape classifies a type expression by its outermost constructor.
type Shape int

const (
	// ShapeNamed is a named type, possibly with type arguments.
	ShapeNamed Shape = iota
	// ShapePointer is *T.
	ShapePointer
	// ShapeSlice is []T.
	ShapeSlice
	// ShapeArray is [N]T.
	ShapeArray
	// ShapeMap is map[K]V.
	ShapeMap
	// ShapeTuple is an inline positional record (A, B, ...).
	ShapeTuple
	// ShapeIface is a dynamic value of unknown shape.
	ShapeIface
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case ShapeNamed:
		return "named"
	case ShapePointer:
		return "pointer"
	case ShapeSlice:
		return "slice"
	case ShapeArray:
		return "array"
	case ShapeMap:
		return "map"
	case ShapeTuple:
		return "tuple"
	case ShapeIface:
		return "interface"
	default:
		return common.UnknownStr
	}
}

// TypeExpr is a structural description of a field type. The shape set is
// closed; anything the planner does not recognize structurally is a named
// type and resolves through the plan registry at runtime.
type TypeExpr struct {
	Shape Shape
	// Name of a named type, e.g. "string" or "Option".
	Name string
	// Args holds type arguments of a named type, the element of a
	// pointer/slice/array, the key and value of a map (in that order), or
	// the components of a tuple.
	Args []TypeExpr
	// Len is the length of an array.
	Len int
}

// Named builds a named type expression, optionally with type arguments.
func Named(name string, args ...TypeExpr) TypeExpr {
	return TypeExpr{Shape: ShapeNamed, Name: name, Args: args}
}

// PointerTo builds *elem.
func PointerTo(elem TypeExpr) TypeExpr {
	return TypeExpr{Shape: ShapePointer, Args: []TypeExpr{elem}}
}

// SliceOf builds []elem.
func SliceOf(elem TypeExpr) TypeExpr {
	return TypeExpr{Shape: ShapeSlice, Args: []TypeExpr{elem}}
}

// ArrayOf builds [n]elem.
func ArrayOf(n int, elem TypeExpr) TypeExpr {
	return TypeExpr{Shape: ShapeArray, Args: []TypeExpr{elem}, Len: n}
}

// MapOf builds map[key]value.
func MapOf(key, value TypeExpr) TypeExpr {
	return TypeExpr{Shape: ShapeMap, Args: []TypeExpr{key, value}}
}

// TupleOf builds an inline positional record.
func TupleOf(components ...TypeExpr) TypeExpr {
	return TypeExpr{Shape: ShapeTuple, Args: components}
}

// Iface builds a dynamic type expression. Dynamic values are always fully
// redacted, never introspected.
func Iface() TypeExpr {
	return TypeExpr{Shape: ShapeIface}
}

// Elem returns the single type argument of a pointer, slice or array.
func (t TypeExpr) Elem() TypeExpr {
	return t.Args[0]
}

// Key returns the key type of a map.
func (t TypeExpr) Key() TypeExpr {
	return t.Args[0]
}

// Value returns the value type of a map.
func (t TypeExpr) Value() TypeExpr {
	return t.Args[1]
}

// scalarNames is the closed set of scalar type names. Scalars are erasable
// in place but carry no substructure, so only the default erase policy
// applies to them.
var scalarNames = map[string]bool{
	"bool":       true,
	"int":        true,
	"int8":       true,
	"int16":      true,
	"int32":      true,
	"int64":      true,
	"uint":       true,
	"uint8":      true,
	"uint16":     true,
	"uint32":     true,
	"uint64":     true,
	"uintptr":    true,
	"float32":    true,
	"float64":    true,
	"complex64":  true,
	"complex128": true,
	"byte":       true,
	"rune":       true,
}

// IsScalar reports whether t is a bare scalar type name.
func (t TypeExpr) IsScalar() bool {
	return t.Shape == ShapeNamed && len(t.Args) == 0 && scalarNames[t.Name]
}

// IsString reports whether t is the string type.
func (t TypeExpr) IsString() bool {
	return t.Shape == ShapeNamed && len(t.Args) == 0 && t.Name == "string"
}

// IsPhantom reports whether t is a phantom marker type. Phantoms carry no
// runtime data and are excluded from traversal and requirement collection;
// recognition looks at the last path segment of the type name only.
func (t TypeExpr) IsPhantom() bool {
	if t.Shape != ShapeNamed {
		return false
	}

	name := t.Name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	return name == "Phantom"
}

// String renders the expression in Go-like syntax.
func (t TypeExpr) String() string {
	switch t.Shape {
	case ShapeNamed:
		if len(t.Args) == 0 {
			return t.Name
		}

		return t.Name + "[" + joinArgs(t.Args) + "]"
	case ShapePointer:
		return "*" + t.Elem().String()
	case ShapeSlice:
		return "[]" + t.Elem().String()
	case ShapeArray:
		return fmt.Sprintf("[%d]%s", t.Len, t.Elem().String())
	case ShapeMap:
		return "map[" + t.Key().String() + "]" + t.Value().String()
	case ShapeTuple:
		return "(" + joinArgs(t.Args) + ")"
	case ShapeIface:
		return "any"
	default:
		return common.UnknownStr
	}
}

func joinArgs(args []TypeExpr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}

	return strings.Join(parts, ", ")
}

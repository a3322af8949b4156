// Package redact is the runtime half of schema-directed redaction.
//
// Types register their analyzed schema once, usually from an init function;
// registration plans the schema and binds each planned field to a concrete
// struct field. Redact then walks a value plan-first: registered structs
// follow their field steps, containers recurse shape by shape, and policy
// fields pass their leaves through the Mapper. Every operation is total;
// anything the walk cannot prove safe collapses to the redaction
// placeholder instead of failing.
package redact

package plan

import (
	"sort"
	"strings"

	"redactable/internal/common"
	"redactable/policy"
	"redactable/schema"
)

// Strategy is the per-field transform decision.
type Strategy int

const (
	// StrategyWalk recurses into non-scalar fields and leaves scalars alone.
	// The default for unannotated fields.
	StrategyWalk Strategy = iota
	// StrategyApplyPolicy applies a named text policy to the field.
	StrategyApplyPolicy
	// StrategyPassthrough leaves the field bit-for-bit identical.
	StrategyPassthrough
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyWalk:
		return "walk"
	case StrategyApplyPolicy:
		return "apply_policy"
	case StrategyPassthrough:
		return "passthrough"
	default:
		return common.UnknownStr
	}
}

// Op is the concrete step emitted for a field.
type Op int

const (
	// OpNone emits no step: passthrough fields, scalar walk fields,
	// phantom fields.
	OpNone Op = iota
	// OpWalk recurses through the field's own traversal capability.
	OpWalk
	// OpEraseScalar replaces a scalar with its zero or mask value.
	OpEraseScalar
	// OpApplyPolicy applies the step's text policy at each leaf of the
	// field.
	OpApplyPolicy
)

// String returns a human-readable op name.
func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpWalk:
		return "walk"
	case OpEraseScalar:
		return "erase_scalar"
	case OpApplyPolicy:
		return "apply_policy"
	default:
		return common.UnknownStr
	}
}

// Capability is a bound a generic parameter must satisfy.
type Capability uint8

const (
	// CapWalkable requires the recursive redaction contract.
	CapWalkable Capability = 1 << iota
	// CapPolicyApplicable requires by-value policy application.
	CapPolicyApplicable
	// CapPolicyApplicableRef requires by-reference policy application
	// producing a string.
	CapPolicyApplicableRef
	// CapDebug requires structured formatting.
	CapDebug
	// CapDisplay requires plain-text formatting.
	CapDisplay
	// CapRedactableDisplay requires redacted-display rendering.
	CapRedactableDisplay
)

// String returns a human-readable capability name.
func (c Capability) String() string {
	switch c {
	case CapWalkable:
		return "Walkable"
	case CapPolicyApplicable:
		return "PolicyApplicable"
	case CapPolicyApplicableRef:
		return "PolicyApplicableByRef"
	case CapDebug:
		return "Debug"
	case CapDisplay:
		return "Display"
	case CapRedactableDisplay:
		return "RedactableDisplay"
	default:
		return common.UnknownStr
	}
}

// CapabilitySet is a union of capabilities for one generic parameter.
type CapabilitySet uint8

// Add unions c into the set.
func (s *CapabilitySet) Add(c Capability) {
	*s |= CapabilitySet(c)
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

// String lists the capabilities in declaration order.
func (s CapabilitySet) String() string {
	var parts []string

	for _, c := range []Capability{
		CapWalkable, CapPolicyApplicable, CapPolicyApplicableRef,
		CapDebug, CapDisplay, CapRedactableDisplay,
	} {
		if s.Has(c) {
			parts = append(parts, c.String())
		}
	}

	if common.IsEmpty(parts) {
		return "none"
	}

	return strings.Join(parts, "+")
}

// BoundSet maps each generic parameter to its accumulated capability
// requirements. Parameters with no requirements are absent.
type BoundSet map[string]CapabilitySet

// Require adds a capability requirement for a parameter.
func (b BoundSet) Require(param string, c Capability) {
	set := b[param]
	set.Add(c)
	b[param] = set
}

// Params returns the bound parameter names in sorted order.
func (b BoundSet) Params() []string {
	params := make([]string, 0, len(b))
	for p := range b {
		params = append(params, p)
	}

	sort.Strings(params)

	return params
}

// FieldStep is the planned transform for one field.
type FieldStep struct {
	// Field is the planned field.
	Field schema.Field
	// Strategy is the annotation-derived decision.
	Strategy Strategy
	// Op is the concrete step the runtime executes.
	Op Op
	// Marker names the policy for OpApplyPolicy steps.
	Marker policy.Marker
	// ScalarName is the declared scalar type name for OpEraseScalar
	// steps. Rune scalars erase to the mask character, everything else to
	// its zero value.
	ScalarName string
}

// VariantPlan is the plan for one union variant.
type VariantPlan struct {
	// Name of the variant, matched against the dynamic type at runtime.
	Name string
	// Steps in field declaration order.
	Steps []FieldStep
	// Display is the variant's redacted-display template, if any.
	Display string
}

// TypePlan is the full redaction plan for one schema.
type TypePlan struct {
	// Schema is the planned schema.
	Schema *schema.Schema
	// Steps of a struct or tuple schema, in field declaration order.
	Steps []FieldStep
	// Variants of a union schema, in declaration order.
	Variants []VariantPlan
	// Bounds holds the per-parameter capability requirements.
	Bounds BoundSet
}

// Identity reports whether redaction of this type is a no-op.
func (p *TypePlan) Identity() bool {
	for _, s := range p.Steps {
		if s.Op != OpNone {
			return false
		}
	}

	for _, v := range p.Variants {
		for _, s := range v.Steps {
			if s.Op != OpNone {
				return false
			}
		}
	}

	return true
}

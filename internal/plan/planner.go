package plan

import (
	"fmt"

	"redactable/internal/common"
	"redactable/internal/diagnostic"
	"redactable/policy"
	"redactable/schema"
)

// Diagnostic codes emitted by the planner.
const (
	CodeConflictingAnnotations = "conflicting_annotations"
	CodeScalarPolicy           = "scalar_policy"
	CodeNeverSensitive         = "never_sensitive"
)

// Plan builds the redaction plan for a schema. Every field is scanned so all
// problems are reported at once; a plan is returned only when the collected
// diagnostics carry no errors, never as partial output.
func Plan(s *schema.Schema) (*TypePlan, diagnostic.Diagnostics) {
	p := &TypePlan{
		Schema: s,
		Bounds: make(BoundSet),
	}

	var diags diagnostic.Diagnostics

	switch s.Kind {
	case schema.KindStruct, schema.KindTuple:
		p.Steps = planFields(s, "", s.Fields, p.Bounds, &diags)
	case schema.KindUnion:
		for _, v := range s.Variants {
			p.Variants = append(p.Variants, VariantPlan{
				Name:    v.Name,
				Steps:   planFields(s, v.Name, v.Fields, p.Bounds, &diags),
				Display: v.Display,
			})
		}
	case schema.KindUnit:
		// field-less types plan to identity
	}

	if diags.HasErrors() {
		return nil, diags
	}

	return p, diags
}

// planFields plans one field list. variant is empty for struct/tuple schemas.
func planFields(
	s *schema.Schema,
	variant string,
	fields []schema.Field,
	bounds BoundSet,
	diags *diagnostic.Diagnostics,
) []FieldStep {
	params := paramSet(s.TypeParams)
	steps := make([]FieldStep, 0, len(fields))

	for _, f := range fields {
		steps = append(steps, planField(s, variant, f, params, bounds, diags))
	}

	return steps
}

func planField(
	s *schema.Schema,
	variant string,
	f schema.Field,
	params map[string]bool,
	bounds BoundSet,
	diags *diagnostic.Diagnostics,
) FieldStep {
	loc := fieldLocation(variant, f)
	step := FieldStep{Field: f, Strategy: StrategyWalk, Op: OpNone}

	if common.IsMultiple(f.Annotations) {
		diags.AddError(CodeConflictingAnnotations,
			fmt.Sprintf("field carries %d sensitivity annotations, at most one is allowed", len(f.Annotations)),
			s.Name, loc)

		return step
	}

	if s.NeverSensitive && len(f.Annotations) > 0 {
		diags.AddError(CodeNeverSensitive,
			"never-sensitive types cannot carry sensitivity annotations",
			s.Name, loc)

		return step
	}

	// phantom fields never hold live data: implicit passthrough
	if f.Type.IsPhantom() {
		step.Strategy = StrategyPassthrough

		return step
	}

	ann, ok := common.First(f.Annotations)
	if !ok {
		if !f.Type.IsScalar() {
			step.Op = OpWalk

			collectBounds(f.Type, params, bounds, CapWalkable)
			collectBounds(f.Type, params, bounds, CapDebug)
		}

		return step
	}

	switch ann.Kind {
	case schema.AnnotationNotSensitive:
		step.Strategy = StrategyPassthrough
	case schema.AnnotationSensitive:
		step.Strategy = StrategyApplyPolicy
		step.Marker = ann.Marker

		if f.Type.IsScalar() {
			if ann.Marker != policy.Default {
				diags.AddError(CodeScalarPolicy,
					"scalar fields may only use the default erase policy",
					s.Name, loc)

				return step
			}

			step.Op = OpEraseScalar
			step.ScalarName = f.Type.Name
		} else {
			step.Op = OpApplyPolicy

			collectBounds(f.Type, params, bounds, CapPolicyApplicable)
		}
	}

	return step
}

func fieldLocation(variant string, f schema.Field) string {
	if variant == "" {
		return f.Ref()
	}

	return variant + "." + f.Ref()
}

func paramSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}

	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	return set
}

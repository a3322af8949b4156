package display

import (
	"fmt"
	"strings"

	"redactable/internal/diagnostic"
	"redactable/internal/plan"
	"redactable/schema"
)

// Diagnostic codes emitted by the template compiler.
const (
	CodeTemplateParse   = "template_parse"
	CodeTemplateField   = "template_field"
	CodeTemplateMissing = "template_missing"
)

// Renderer is a compiled redacted-display template for one schema. Build it
// once with Compile; Format is then total.
type Renderer struct {
	schema   *schema.Schema
	prog     *program
	variants map[string]*program
}

// program is one bound template: tokens whose field references resolve to a
// field position and its planned step.
type program struct {
	source string
	kind   schema.Kind
	tokens []token
	fields []schema.Field
	steps  []plan.FieldStep
}

// Compile parses and binds the schema's display templates. Struct and tuple
// schemas bind their own template; union schemas bind one per variant. All
// reference and specifier problems surface here, so formatting never fails.
func Compile(s *schema.Schema) (*Renderer, diagnostic.Diagnostics) {
	p, diags := plan.Plan(s)
	if diags.HasErrors() {
		return nil, diags
	}

	r := &Renderer{schema: s}

	switch s.Kind {
	case schema.KindStruct, schema.KindTuple, schema.KindUnit:
		r.prog = compileProgram(s, s.Display, s.Kind, s.Fields, p.Steps, p.Bounds, &diags)
	case schema.KindUnion:
		r.variants = make(map[string]*program, len(s.Variants))

		for i, v := range s.Variants {
			r.variants[v.Name] = compileProgram(s, v.Display, v.Kind, v.Fields, p.Variants[i].Steps, p.Bounds, &diags)
		}
	}

	if diags.HasErrors() {
		return nil, diags
	}

	return r, diags
}

// MustCompile is Compile for statically known schemas; it panics on error.
func MustCompile(s *schema.Schema) *Renderer {
	r, diags := Compile(s)
	if err := diags.Error(); err != nil {
		panic(err)
	}

	return r
}

func compileProgram(
	s *schema.Schema,
	source string,
	kind schema.Kind,
	fields []schema.Field,
	steps []plan.FieldStep,
	bounds plan.BoundSet,
	diags *diagnostic.Diagnostics,
) *program {
	if source == "" {
		diags.AddError(CodeTemplateMissing, "schema has no display template", s.Name, "")

		return nil
	}

	tokens, err := parseTemplate(source)
	if err != nil {
		diags.AddError(CodeTemplateParse, err.Error(), s.Name, "")

		return nil
	}

	modes := make(map[int]Mode)

	for i := range tokens {
		tok := &tokens[i]
		if !tok.isField {
			continue
		}

		if tok.kind == refNamed {
			tok.index = fieldIndexByName(fields, tok.name)
			if tok.index < 0 {
				diags.AddError(CodeTemplateField,
					fmt.Sprintf("template %q references unknown field %s", source, tok.name),
					s.Name, tok.name)

				continue
			}
		} else if tok.index >= len(fields) {
			diags.AddError(CodeTemplateField,
				fmt.Sprintf("template %q references field %d of %d", source, tok.index, len(fields)),
				s.Name, fmt.Sprintf("#%d", tok.index))

			continue
		}

		// a field referenced under both modes is promoted to both
		if seen, ok := modes[tok.index]; ok && seen != tok.mode {
			modes[tok.index] = ModeBoth
		} else if !ok {
			modes[tok.index] = tok.mode
		}
	}

	if diags.HasErrors() {
		return nil
	}

	collectDisplayBounds(s, fields, steps, modes, bounds)

	return &program{source: source, kind: kind, tokens: tokens, fields: fields, steps: steps}
}

// collectDisplayBounds widens the plan's capability requirements with the
// formatting capabilities each referenced field needs.
func collectDisplayBounds(
	s *schema.Schema,
	fields []schema.Field,
	steps []plan.FieldStep,
	modes map[int]Mode,
	bounds plan.BoundSet,
) {
	for idx, mode := range modes {
		if idx >= len(steps) {
			continue
		}

		fieldType := fields[idx].Type

		switch steps[idx].Strategy {
		case plan.StrategyWalk:
			plan.CollectBounds(fieldType, s.TypeParams, bounds, plan.CapRedactableDisplay)
		case plan.StrategyApplyPolicy:
			if steps[idx].Op == plan.OpApplyPolicy {
				plan.CollectBounds(fieldType, s.TypeParams, bounds, plan.CapPolicyApplicableRef)
			}
		case plan.StrategyPassthrough:
			if mode == ModeDisplay || mode == ModeBoth {
				plan.CollectBounds(fieldType, s.TypeParams, bounds, plan.CapDisplay)
			}

			if mode == ModeDebug || mode == ModeBoth {
				plan.CollectBounds(fieldType, s.TypeParams, bounds, plan.CapDebug)
			}
		}
	}
}

func fieldIndexByName(fields []schema.Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}

	// schema snake_case also matches template camelCase references
	want := strings.ReplaceAll(name, "_", "")
	for i, f := range fields {
		if strings.EqualFold(strings.ReplaceAll(f.Name, "_", ""), want) {
			return i
		}
	}

	return -1
}

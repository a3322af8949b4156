package display

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"redactable/internal/plan"
	"redactable/policy"
	"redactable/redact"
	"redactable/schema"
)

// DisplayRedactor renders its own redacted display form. Walk fields inside
// a template use it instead of structural recursion when the field type
// provides one.
type DisplayRedactor interface {
	RedactedDisplay() string
}

// Format renders v through the compiled template with the default mapper.
func (r *Renderer) Format(v any) string {
	return r.FormatWith(v, redact.PolicyMapper{})
}

// FormatWith renders v with a caller-supplied mapper. Total: values the
// template cannot resolve render as the placeholder.
func (r *Renderer) FormatWith(v any, m redact.Mapper) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return policy.RedactedPlaceholder
		}

		rv = rv.Elem()
	}

	prog := r.prog
	if r.variants != nil {
		prog = r.variantProgram(rv.Type())
	}

	if prog == nil {
		return policy.RedactedPlaceholder
	}

	var out strings.Builder

	for _, tok := range prog.tokens {
		if !tok.isField {
			out.WriteString(tok.literal)

			continue
		}

		out.WriteString(renderField(prog.fieldValue(rv, tok.index), prog.steps[tok.index], tok.mode, m))
	}

	return out.String()
}

// variantProgram matches the dynamic type to a union variant by name.
func (r *Renderer) variantProgram(t reflect.Type) *program {
	name := t.Name()

	if p, ok := r.variants[name]; ok {
		return p
	}

	for variant, p := range r.variants {
		if strings.EqualFold(variant, name) ||
			strings.HasPrefix(name, variant) || strings.HasSuffix(name, variant) {
			return p
		}
	}

	return nil
}

// fieldValue resolves a bound field position against the concrete value.
func (p *program) fieldValue(rv reflect.Value, idx int) reflect.Value {
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}
	}

	f := p.fields[idx]

	if p.kind == schema.KindTuple || f.Name == "" {
		return exportedField(rv, f.Index)
	}

	want := strings.ReplaceAll(f.Name, "_", "")
	t := rv.Type()

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.IsExported() && strings.EqualFold(sf.Name, want) {
			return rv.Field(i)
		}
	}

	return reflect.Value{}
}

func exportedField(rv reflect.Value, pos int) reflect.Value {
	t := rv.Type()
	n := 0

	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}

		if n == pos {
			return rv.Field(i)
		}

		n++
	}

	return reflect.Value{}
}

// renderField emits one placeholder's text, chosen by the field's planned
// strategy.
func renderField(v reflect.Value, step plan.FieldStep, mode Mode, m redact.Mapper) string {
	if !v.IsValid() {
		return policy.RedactedPlaceholder
	}

	switch step.Strategy {
	case plan.StrategyPassthrough:
		return render(v.Interface(), mode)
	case plan.StrategyApplyPolicy:
		if step.Op == plan.OpEraseScalar {
			return renderErasedScalar(step.ScalarName, v, m)
		}

		return policyString(v, step.Marker, m)
	default:
		if v.CanInterface() {
			if dr, ok := v.Interface().(DisplayRedactor); ok {
				return dr.RedactedDisplay()
			}
		}

		return render(redact.ValueWith(v.Interface(), m), mode)
	}
}

// renderErasedScalar renders the masked scalar directly instead of going
// through a policy string.
func renderErasedScalar(scalarName string, v reflect.Value, m redact.Mapper) string {
	erased := m.MapScalar(scalarName, v)

	if scalarName == "rune" {
		return string(rune(erased.Int()))
	}

	return fmt.Sprint(erased.Interface())
}

// policyString applies a policy by reference, producing only the string
// view.
func policyString(v reflect.Value, marker policy.Marker, m redact.Mapper) string {
	if v.CanInterface() {
		if ra, ok := v.Interface().(redact.RefApplier); ok {
			return ra.ApplyPolicyRef(m, marker)
		}

		if l, ok := v.Interface().(redact.Leaf); ok {
			return m.MapSensitive(marker, l.SensitiveString())
		}
	}

	switch v.Kind() {
	case reflect.String:
		return m.MapSensitive(marker, v.String())
	case reflect.Interface:
		// opaque dynamic leaves always fully redact
		return policy.RedactedPlaceholder
	default:
		return fmt.Sprint(redact.ApplyPolicy(v.Interface(), marker, m))
	}
}

func render(v any, mode Mode) string {
	if mode == ModeDebug {
		return strings.TrimRight(spew.Sprintf("%#v", v), "\n")
	}

	return fmt.Sprint(v)
}

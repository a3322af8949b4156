package redact

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"redactable/internal/plan"
	"redactable/schema"
)

// fieldBinding ties one planned step to a concrete struct field index.
type fieldBinding struct {
	step  plan.FieldStep
	index int
}

// typeBinding is a plan compiled against a concrete Go type.
type typeBinding struct {
	plan    *plan.TypePlan
	fields  []fieldBinding
	display string
}

var (
	mu          sync.RWMutex
	bindings    = map[reflect.Type]*typeBinding{}
	passthrough = map[reflect.Type]bool{}
)

func init() {
	// wall-clock types carry no sensitive payload and must survive
	// redaction bit-for-bit
	RegisterPassthrough[time.Time]()
	RegisterPassthrough[time.Duration]()
}

// Register plans s and binds it to the struct type T. Fields are matched by
// name (case-insensitively, so schema snake_case meets Go CamelCase) or by
// declaration index for positional schemas. Planning diagnostics and
// unmatched fields are returned as errors.
func Register[T any](s *schema.Schema) error {
	t := reflect.TypeOf((*T)(nil)).Elem()

	return register(t, s)
}

// MustRegister is Register for init-time use; it panics on error.
func MustRegister[T any](s *schema.Schema) {
	if err := Register[T](s); err != nil {
		panic(err)
	}
}

// RegisterUnion plans a union schema and binds each variant to the dynamic
// type of the corresponding sample value. Variant order must not matter:
// samples are matched to variants by type name.
func RegisterUnion(s *schema.Schema, samples ...any) error {
	p, diags := plan.Plan(s)
	if err := diags.Error(); err != nil {
		return err
	}

	byName := make(map[string]reflect.Type, len(samples))
	for _, sample := range samples {
		t := reflect.TypeOf(sample)
		byName[t.Name()] = t
	}

	mu.Lock()
	defer mu.Unlock()

	for i := range p.Variants {
		v := &p.Variants[i]

		t, ok := byName[v.Name]
		if ok {
			delete(byName, v.Name)
		} else {
			t, ok = fallbackVariantType(byName, v.Name)
		}

		if !ok {
			return fmt.Errorf("union %s: no sample value for variant %s", s.Name, v.Name)
		}

		variantSchema := s.Variants[i]

		fields, err := bindFields(t, variantSchema.Kind, v.Steps)
		if err != nil {
			return fmt.Errorf("union %s, variant %s: %w", s.Name, v.Name, err)
		}

		bindings[t] = &typeBinding{
			plan:    &plan.TypePlan{Schema: s, Steps: v.Steps, Bounds: p.Bounds},
			fields:  fields,
			display: v.Display,
		}
	}

	return nil
}

// MustRegisterUnion is RegisterUnion for init-time use; it panics on error.
func MustRegisterUnion(s *schema.Schema, samples ...any) {
	if err := RegisterUnion(s, samples...); err != nil {
		panic(err)
	}
}

// RegisterPassthrough marks T as never sensitive: the walk copies values of
// T without descending into them.
func RegisterPassthrough[T any]() {
	t := reflect.TypeOf((*T)(nil)).Elem()

	mu.Lock()
	defer mu.Unlock()

	passthrough[t] = true
}

func register(t reflect.Type, s *schema.Schema) error {
	p, diags := plan.Plan(s)
	if err := diags.Error(); err != nil {
		return err
	}

	b := &typeBinding{plan: p, display: s.Display}

	if s.Kind == schema.KindStruct || s.Kind == schema.KindTuple {
		if t.Kind() != reflect.Struct {
			return fmt.Errorf("schema %s: %s is not a struct type", s.Name, t)
		}

		fields, err := bindFields(t, s.Kind, p.Steps)
		if err != nil {
			return fmt.Errorf("schema %s: %w", s.Name, err)
		}

		b.fields = fields
	}

	mu.Lock()
	defer mu.Unlock()

	bindings[t] = b

	return nil
}

// bindFields resolves each planned field against the Go struct. Named
// schemas match by name, positional schemas by declaration order over
// exported fields.
func bindFields(t reflect.Type, kind schema.Kind, steps []plan.FieldStep) ([]fieldBinding, error) {
	if t.Kind() != reflect.Struct {
		if len(steps) == 0 {
			return nil, nil
		}

		return nil, fmt.Errorf("%s is not a struct type", t)
	}

	exported := exportedFieldIndexes(t)
	out := make([]fieldBinding, 0, len(steps))

	for _, step := range steps {
		idx := -1

		if kind == schema.KindTuple || step.Field.Name == "" {
			if step.Field.Index < len(exported) {
				idx = exported[step.Field.Index]
			}
		} else {
			idx = fieldByName(t, step.Field.Name)
		}

		if idx < 0 {
			return nil, fmt.Errorf("field %s not found on %s", step.Field.Ref(), t)
		}

		out = append(out, fieldBinding{step: step, index: idx})
	}

	return out, nil
}

func exportedFieldIndexes(t reflect.Type) []int {
	var out []int

	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			out = append(out, i)
		}
	}

	return out
}

func fieldByName(t reflect.Type, name string) int {
	want := strings.ReplaceAll(name, "_", "")

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, want) {
			return i
		}
	}

	return -1
}

// fallbackVariantType matches a variant to a sample by suffix, so schema
// variant "Login" binds to a Go type named LoginEvent when no exact match
// exists.
func fallbackVariantType(byName map[string]reflect.Type, variant string) (reflect.Type, bool) {
	for name, t := range byName {
		if strings.HasPrefix(name, variant) || strings.HasSuffix(name, variant) {
			delete(byName, name)

			return t, true
		}
	}

	return nil, false
}

func lookupBinding(t reflect.Type) (*typeBinding, bool) {
	mu.RLock()
	defer mu.RUnlock()

	b, ok := bindings[t]

	return b, ok
}

func isPassthrough(t reflect.Type) bool {
	mu.RLock()
	defer mu.RUnlock()

	return passthrough[t]
}

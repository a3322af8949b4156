// Package schemayaml is the YAML annotation front-end.
//
// It loads schema documents written by hand or emitted by other tooling and
// converts them into the schema types the planner consumes. A document can
// also declare custom policy markers, registered before any schema that
// references them is planned.
package schemayaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"redactable/policy"
	"redactable/schema"
)

// File is one parsed schema document.
type File struct {
	// Version of the document format.
	Version string `yaml:"version,omitempty"`
	// Policies declares custom markers used by the schemas below.
	Policies []PolicyDef `yaml:"policies,omitempty"`
	// Schemas lists the type definitions.
	Schemas []TypeDef `yaml:"schemas"`
}

// TypeDef is the YAML form of one type schema.
type TypeDef struct {
	Name           string       `yaml:"name"`
	Kind           string       `yaml:"kind,omitempty"`
	Params         []string     `yaml:"params,omitempty"`
	Display        string       `yaml:"display,omitempty"`
	NeverSensitive bool         `yaml:"never_sensitive,omitempty"`
	Fields         []FieldDef   `yaml:"fields,omitempty"`
	Variants       []VariantDef `yaml:"variants,omitempty"`
}

// VariantDef is one union variant.
type VariantDef struct {
	Name    string     `yaml:"name"`
	Kind    string     `yaml:"kind,omitempty"`
	Display string     `yaml:"display,omitempty"`
	Fields  []FieldDef `yaml:"fields,omitempty"`
}

// FieldDef is one field. Sensitive names a policy marker; NotSensitive is
// the explicit opt-out. Declaring both is preserved as two annotations so
// the planner reports the conflict with its location.
type FieldDef struct {
	Name         string `yaml:"name,omitempty"`
	Type         string `yaml:"type"`
	Sensitive    string `yaml:"sensitive,omitempty"`
	NotSensitive bool   `yaml:"not_sensitive,omitempty"`
}

// PolicyDef declares a custom policy marker.
type PolicyDef struct {
	Marker      string `yaml:"marker"`
	Kind        string `yaml:"kind"`
	Prefix      int    `yaml:"prefix,omitempty"`
	Suffix      int    `yaml:"suffix,omitempty"`
	Mask        string `yaml:"mask,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
}

// LoadFile loads and parses a schema document from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	if f.Version == "" {
		f.Version = "1"
	}

	return &f, nil
}

// Build converts every type definition into a planner-ready schema and
// registers the document's custom policies.
func (f *File) Build() ([]*schema.Schema, error) {
	if err := f.RegisterPolicies(); err != nil {
		return nil, err
	}

	out := make([]*schema.Schema, 0, len(f.Schemas))

	for i := range f.Schemas {
		s, err := f.Schemas[i].Schema()
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// RegisterPolicies registers the document's custom markers.
func (f *File) RegisterPolicies() error {
	for _, def := range f.Policies {
		text, err := def.Text()
		if err != nil {
			return err
		}

		policy.Register(policy.Marker(def.Marker), text)
	}

	return nil
}

// Schema converts one type definition.
func (d *TypeDef) Schema() (*schema.Schema, error) {
	kind, err := parseKind(d.Name, d.Kind)
	if err != nil {
		return nil, err
	}

	s := &schema.Schema{
		Name:           d.Name,
		Kind:           kind,
		TypeParams:     d.Params,
		Display:        d.Display,
		NeverSensitive: d.NeverSensitive,
	}

	s.Fields, err = buildFields(d.Name, d.Fields)
	if err != nil {
		return nil, err
	}

	for _, v := range d.Variants {
		variantKind, err := parseKind(d.Name+"."+v.Name, v.Kind)
		if err != nil {
			return nil, err
		}

		fields, err := buildFields(d.Name+"."+v.Name, v.Fields)
		if err != nil {
			return nil, err
		}

		s.Variants = append(s.Variants, schema.Variant{
			Name:    v.Name,
			Kind:    variantKind,
			Display: v.Display,
			Fields:  fields,
		})
	}

	if kind == schema.KindUnion && len(s.Variants) == 0 {
		return nil, fmt.Errorf("schema %s: union without variants", d.Name)
	}

	return s, nil
}

// Text converts a policy definition into its text policy.
func (d *PolicyDef) Text() (policy.Text, error) {
	var text policy.Text

	switch d.Kind {
	case "full":
		if d.Placeholder != "" {
			text = policy.FullWith(d.Placeholder)
		} else {
			text = policy.Full()
		}
	case "keep":
		text = policy.KeepBoth(d.Prefix, d.Suffix)
	case "mask":
		text = policy.MaskBoth(d.Prefix, d.Suffix)
	case "email":
		text = policy.Email(d.Prefix)
	default:
		return policy.Text{}, fmt.Errorf("policy %s: unknown kind %q", d.Marker, d.Kind)
	}

	if d.Mask != "" {
		runes := []rune(d.Mask)
		if len(runes) != 1 {
			return policy.Text{}, fmt.Errorf("policy %s: mask must be a single character", d.Marker)
		}

		text = text.WithMaskChar(runes[0])
	}

	return text, nil
}

func buildFields(owner string, defs []FieldDef) ([]schema.Field, error) {
	fields := make([]schema.Field, 0, len(defs))

	for i, def := range defs {
		t, err := schema.ParseTypeExpr(def.Type)
		if err != nil {
			return nil, fmt.Errorf("schema %s, field %s: %w", owner, fieldRef(def, i), err)
		}

		f := schema.Field{Name: def.Name, Index: i, Type: t}

		if def.Sensitive != "" {
			f.Annotations = append(f.Annotations, schema.Sensitive(policy.Marker(def.Sensitive)))
		}

		if def.NotSensitive {
			f.Annotations = append(f.Annotations, schema.NotSensitive())
		}

		fields = append(fields, f)
	}

	return fields, nil
}

func fieldRef(def FieldDef, i int) string {
	if def.Name != "" {
		return def.Name
	}

	return fmt.Sprintf("#%d", i)
}

func parseKind(owner, kind string) (schema.Kind, error) {
	switch kind {
	case "", "struct":
		return schema.KindStruct, nil
	case "tuple":
		return schema.KindTuple, nil
	case "unit":
		return schema.KindUnit, nil
	case "union":
		return schema.KindUnion, nil
	default:
		return 0, fmt.Errorf("schema %s: unknown kind %q", owner, kind)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"redactable/display"
	"redactable/internal/plan"
	"redactable/schema"
	"redactable/schemayaml"
)

var planCmd = &cobra.Command{
	Use:   "plan <schema.yaml>...",
	Short: "Run the redaction planner over schema documents",
	Long:  "Plan loads each document, registers its custom policies and plans every schema, printing the per-field strategy table and the inferred capability bounds. Display templates are compiled too, so template problems surface here.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

// planReport is the JSON shape of one planned schema.
type planReport struct {
	Schema      string            `json:"schema"`
	Kind        string            `json:"kind"`
	Fields      []fieldReport     `json:"fields,omitempty"`
	Variants    []variantReport   `json:"variants,omitempty"`
	Bounds      map[string]string `json:"bounds,omitempty"`
	Diagnostics []string          `json:"diagnostics,omitempty"`
}

type variantReport struct {
	Name   string        `json:"name"`
	Fields []fieldReport `json:"fields,omitempty"`
}

type fieldReport struct {
	Field    string `json:"field"`
	Type     string `json:"type"`
	Strategy string `json:"strategy"`
	Op       string `json:"op"`
	Marker   string `json:"marker,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var (
		reports []planReport
		failed  bool
	)

	for _, path := range args {
		f, err := schemayaml.LoadFile(path)
		if err != nil {
			return err
		}

		schemas, err := f.Build()
		if err != nil {
			return err
		}

		for _, s := range schemas {
			report, ok := planSchema(s)
			if !ok {
				failed = true
			}

			reports = append(reports, report)
		}
	}

	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printReport(out, r)
		}
	}

	if failed {
		return fmt.Errorf("planning failed")
	}

	return nil
}

func planSchema(s *schema.Schema) (planReport, bool) {
	report := planReport{Schema: s.Name, Kind: s.Kind.String()}

	p, diags := plan.Plan(s)

	// compile templates when present so placeholder errors show up too
	if !diags.HasErrors() && hasTemplate(s) {
		_, templateDiags := display.Compile(s)
		diags.Merge(templateDiags)
	}

	for _, d := range diags.Errors {
		report.Diagnostics = append(report.Diagnostics, d.String())
	}

	for _, d := range diags.Warnings {
		report.Diagnostics = append(report.Diagnostics, d.String())
	}

	if diags.HasErrors() {
		return report, false
	}

	switch s.Kind {
	case schema.KindStruct, schema.KindTuple:
		report.Fields = fieldReports(s.Fields, p.Steps)
	case schema.KindUnion:
		for i, v := range p.Variants {
			report.Variants = append(report.Variants, variantReport{
				Name:   v.Name,
				Fields: fieldReports(s.Variants[i].Fields, v.Steps),
			})
		}
	}

	if len(p.Bounds) > 0 {
		report.Bounds = make(map[string]string, len(p.Bounds))
		for _, param := range p.Bounds.Params() {
			report.Bounds[param] = p.Bounds[param].String()
		}
	}

	return report, true
}

func hasTemplate(s *schema.Schema) bool {
	if s.Display != "" {
		return true
	}

	for _, v := range s.Variants {
		if v.Display != "" {
			return true
		}
	}

	return false
}

func fieldReports(fields []schema.Field, steps []plan.FieldStep) []fieldReport {
	out := make([]fieldReport, 0, len(steps))

	for i, step := range steps {
		out = append(out, fieldReport{
			Field:    step.Field.Ref(),
			Type:     fields[i].Type.String(),
			Strategy: step.Strategy.String(),
			Op:       step.Op.String(),
			Marker:   string(step.Marker),
		})
	}

	return out
}

func printReport(w io.Writer, r planReport) {
	fmt.Fprintf(w, "%s (%s)\n", r.Schema, r.Kind)

	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "  ! %s\n", d)
	}

	printFields(w, "  ", r.Fields)

	for _, v := range r.Variants {
		fmt.Fprintf(w, "  %s:\n", v.Name)
		printFields(w, "    ", v.Fields)
	}

	for param, caps := range r.Bounds {
		fmt.Fprintf(w, "  bound %s: %s\n", param, caps)
	}

	fmt.Fprintln(w)
}

func printFields(w io.Writer, indent string, fields []fieldReport) {
	maxField, maxType := 5, 4

	for _, f := range fields {
		if len(f.Field) > maxField {
			maxField = len(f.Field)
		}

		if len(f.Type) > maxType {
			maxType = len(f.Type)
		}
	}

	for _, f := range fields {
		line := fmt.Sprintf("%s%-*s %-*s %s", indent, maxField, f.Field, maxType, f.Type, f.Strategy)
		if f.Marker != "" {
			line += " (" + f.Marker + ")"
		}

		fmt.Fprintln(w, line)
	}
}

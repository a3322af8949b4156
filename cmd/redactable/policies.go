package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"redactable/policy"
	"redactable/schemayaml"
)

var flagSample string

var policiesCmd = &cobra.Command{
	Use:   "policies [schema.yaml]...",
	Short: "List registered policy markers",
	Long:  "Policies lists the built-in markers plus any custom markers declared in the given documents, with each policy applied to a sample value.",
	RunE:  runPolicies,
}

func init() {
	policiesCmd.Flags().StringVar(&flagSample, "sample", "4111111111111111", "sample value to show each policy applied to")

	rootCmd.AddCommand(policiesCmd)
}

type policyReport struct {
	Marker   string `json:"marker"`
	Kind     string `json:"kind"`
	Redacted string `json:"redacted"`
}

func runPolicies(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		f, err := schemayaml.LoadFile(path)
		if err != nil {
			return err
		}

		if err := f.RegisterPolicies(); err != nil {
			return err
		}
	}

	markers := policy.Markers()
	sort.Slice(markers, func(i, j int) bool { return markers[i] < markers[j] })

	reports := make([]policyReport, 0, len(markers))
	for _, m := range markers {
		text := policy.Resolve(m)
		reports = append(reports, policyReport{
			Marker:   string(m),
			Kind:     text.Kind().String(),
			Redacted: text.Apply(flagSample),
		})
	}

	out := cmd.OutOrStdout()

	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(reports)
	}

	maxMarker, maxKind := 6, 4

	for _, r := range reports {
		if len(r.Marker) > maxMarker {
			maxMarker = len(r.Marker)
		}

		if len(r.Kind) > maxKind {
			maxKind = len(r.Kind)
		}
	}

	fmt.Fprintf(out, "Policies: %d (sample %q)\n", len(reports), flagSample)

	for _, r := range reports {
		fmt.Fprintf(out, "%-*s %-*s %s\n", maxMarker, r.Marker, maxKind, r.Kind, r.Redacted)
	}

	return nil
}

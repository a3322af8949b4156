// Package main provides the CLI entrypoint for redactable.
//
// redactable is the planning companion to the redaction library:
//   - Loads YAML schema documents and their custom policy markers
//   - Runs the planner and template compiler, reporting diagnostics
//   - Shows per-field strategies, capability bounds and policy behavior
package main

func main() {
	execute()
}

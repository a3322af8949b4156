// Package plan turns an analyzed schema into a redaction plan.
//
// Planning is the static half of the system: it runs once per type, selects
// a strategy for every field, checks annotation validity, and infers which
// generic parameters need which capability bounds. The runtime walk and the
// display formatter both execute the resulting TypePlan; nothing at runtime
// re-inspects annotations.
package plan

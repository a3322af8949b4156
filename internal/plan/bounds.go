package plan

import "redactable/schema"

// CollectBounds records the capability for every generic parameter
// referenced by t. The display compiler uses it to add formatting bounds on
// top of the planner's own.
func CollectBounds(t schema.TypeExpr, params []string, bounds BoundSet, c Capability) {
	collectBounds(t, paramSet(params), bounds, c)
}

// collectBounds walks one declared field type and records the capability
// for every generic parameter it encounters. The walk is a single forward
// decomposition over the closed shape set; phantom wrappers short-circuit,
// so a parameter appearing only inside one never gains a requirement.
func collectBounds(t schema.TypeExpr, params map[string]bool, bounds BoundSet, c Capability) {
	if len(params) == 0 {
		return
	}

	if t.IsPhantom() {
		return
	}

	if t.Shape == schema.ShapeNamed && len(t.Args) == 0 && params[t.Name] {
		bounds.Require(t.Name, c)

		return
	}

	for _, arg := range t.Args {
		collectBounds(arg, params, bounds, c)
	}
}

package schemayaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redactable/internal/plan"
	"redactable/policy"
	"redactable/schema"
	"redactable/schemayaml"
)

const accountDoc = `
version: "1"
policies:
  - marker: account_id
    kind: keep
    suffix: 4
    mask: "#"
schemas:
  - name: Account
    fields:
      - name: name
        type: string
      - name: id
        type: string
        sensitive: account_id
      - name: public_id
        type: string
        not_sensitive: true
      - name: age
        type: int
        sensitive: default
    display: "account {name} ({id})"
`

func TestParseAndBuild(t *testing.T) {
	t.Parallel()

	f, err := schemayaml.Parse([]byte(accountDoc))
	require.NoError(t, err)
	assert.Equal(t, "1", f.Version)

	schemas, err := f.Build()
	require.NoError(t, err)
	require.Len(t, schemas, 1)

	s := schemas[0]
	assert.Equal(t, "Account", s.Name)
	assert.Equal(t, schema.KindStruct, s.Kind)
	require.Len(t, s.Fields, 4)
	assert.Equal(t, "account {name} ({id})", s.Display)

	require.Len(t, s.Fields[1].Annotations, 1)
	assert.Equal(t, policy.Marker("account_id"), s.Fields[1].Annotations[0].Marker)
	assert.Equal(t, schema.AnnotationNotSensitive, s.Fields[2].Annotations[0].Kind)

	// the custom marker is registered and usable
	text, ok := policy.Lookup("account_id")
	require.True(t, ok)
	assert.Equal(t, "####5678", text.Apply("ac125678"))
}

func TestBuiltSchemaPlans(t *testing.T) {
	t.Parallel()

	f, err := schemayaml.Parse([]byte(accountDoc))
	require.NoError(t, err)

	schemas, err := f.Build()
	require.NoError(t, err)

	p, diags := plan.Plan(schemas[0])
	require.False(t, diags.HasErrors())
	assert.Equal(t, plan.OpApplyPolicy, p.Steps[1].Op)
	assert.Equal(t, plan.OpEraseScalar, p.Steps[3].Op)
}

func TestParseUnion(t *testing.T) {
	t.Parallel()

	doc := `
schemas:
  - name: Event
    kind: union
    variants:
      - name: Login
        display: "login {user}"
        fields:
          - name: user
            type: string
          - name: token
            type: string
            sensitive: token
      - name: Logout
        kind: unit
        display: "logout"
`

	f, err := schemayaml.Parse([]byte(doc))
	require.NoError(t, err)

	schemas, err := f.Build()
	require.NoError(t, err)
	require.Len(t, schemas, 1)

	s := schemas[0]
	assert.Equal(t, schema.KindUnion, s.Kind)
	require.Len(t, s.Variants, 2)
	assert.Equal(t, "Login", s.Variants[0].Name)
	assert.Equal(t, schema.KindUnit, s.Variants[1].Kind)
}

func TestConflictingAnnotationsSurviveToPlanner(t *testing.T) {
	t.Parallel()

	doc := `
schemas:
  - name: Bad
    fields:
      - name: v
        type: string
        sensitive: token
        not_sensitive: true
`

	f, err := schemayaml.Parse([]byte(doc))
	require.NoError(t, err)

	schemas, err := f.Build()
	require.NoError(t, err)

	_, diags := plan.Plan(schemas[0])
	require.True(t, diags.HasErrors())
	assert.Equal(t, plan.CodeConflictingAnnotations, diags.Errors[0].Code)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
	}{
		{"bad type expr", "schemas:\n  - name: X\n    fields:\n      - name: v\n        type: 'map[string'\n"},
		{"unknown kind", "schemas:\n  - name: X\n    kind: enum\n"},
		{"union without variants", "schemas:\n  - name: X\n    kind: union\n"},
		{"unknown policy kind", "policies:\n  - marker: m\n    kind: rot13\nschemas: []\n"},
		{"multi-rune mask", "policies:\n  - marker: m\n    kind: keep\n    mask: '**'\nschemas: []\n"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f, err := schemayaml.Parse([]byte(tc.doc))
			require.NoError(t, err)

			_, err = f.Build()
			require.Error(t, err)
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := schemayaml.Parse([]byte("schemas: ["))
	require.Error(t, err)
}

package display_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redactable/display"
	"redactable/policy"
	"redactable/redact"
	"redactable/schema"
)

type credentials struct {
	User     string
	Password string
}

var credentialsSchema = &schema.Schema{
	Name: "credentials",
	Kind: schema.KindStruct,
	Fields: []schema.Field{
		{Name: "user", Index: 0, Type: schema.Named("string"),
			Annotations: []schema.Annotation{schema.NotSensitive()}},
		{Name: "password", Index: 1, Type: schema.Named("string"),
			Annotations: []schema.Annotation{schema.Sensitive(policy.Default)}},
	},
	Display: "user {user} secret {password}",
}

func TestFormatRedactsPolicyFields(t *testing.T) {
	t.Parallel()

	r := display.MustCompile(credentialsSchema)

	got := r.Format(credentials{User: "alice", Password: "hunter2"})
	assert.Equal(t, "user alice secret [REDACTED]", got)
}

func TestFormatKeepPolicyByReference(t *testing.T) {
	t.Parallel()

	type card struct {
		Holder string
		Number string
	}

	r := display.MustCompile(&schema.Schema{
		Name: "card",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "holder", Index: 0, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.NotSensitive()}},
			{Name: "number", Index: 1, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.CreditCard)}},
		},
		Display: "{holder}: {number}",
	})

	got := r.Format(card{Holder: "bob", Number: "4111111111111111"})
	assert.Equal(t, "bob: ************1111", got)
}

func TestFormatPositionalTuple(t *testing.T) {
	t.Parallel()

	type pair struct {
		A string
		B string
	}

	r := display.MustCompile(&schema.Schema{
		Name: "pair",
		Kind: schema.KindTuple,
		Fields: []schema.Field{
			{Index: 0, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.NotSensitive()}},
			{Index: 1, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Default)}},
		},
		Display: "({}, {1})",
	})

	assert.Equal(t, "(visible, [REDACTED])", r.Format(pair{A: "visible", B: "secret"}))
}

func TestFormatEscapedBraces(t *testing.T) {
	t.Parallel()

	type one struct {
		V string
	}

	r := display.MustCompile(&schema.Schema{
		Name: "one",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "v", Index: 0, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.NotSensitive()}},
		},
		Display: "{{json}} {v}",
	})

	assert.Equal(t, "{json} ok", r.Format(one{V: "ok"}))
}

func TestFormatErasedScalarRendersMask(t *testing.T) {
	t.Parallel()

	type pinPad struct {
		Digit rune
		Count int
	}

	r := display.MustCompile(&schema.Schema{
		Name: "pinPad",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "digit", Index: 0, Type: schema.Named("rune"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Default)}},
			{Name: "count", Index: 1, Type: schema.Named("int"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Default)}},
		},
		Display: "digit {digit}, count {count}",
	})

	assert.Equal(t, "digit *, count 0", r.Format(pinPad{Digit: '7', Count: 9}))
}

func TestFormatWalkFieldUsesDisplayRedactor(t *testing.T) {
	t.Parallel()

	type wrapped struct {
		Inner selfRedacting
	}

	r := display.MustCompile(&schema.Schema{
		Name: "wrapped",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "inner", Index: 0, Type: schema.Named("selfRedacting")},
		},
		Display: "inner={inner}",
	})

	assert.Equal(t, "inner=<self>", r.Format(wrapped{}))
}

type selfRedacting struct{}

func (selfRedacting) RedactedDisplay() string { return "<self>" }

func TestFormatSensitiveWrapperField(t *testing.T) {
	t.Parallel()

	type login struct {
		Token redact.Sensitive[string]
	}

	r := display.MustCompile(&schema.Schema{
		Name: "login",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "token", Index: 0, Type: schema.Named("Sensitive", schema.Named("string")),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Default)}},
		},
		Display: "token {token}",
	})

	got := r.Format(login{Token: redact.NewSensitive("sk_live_abc123", policy.Token)})
	assert.Equal(t, "token **********c123", got)
}

func TestFormatUnionDispatch(t *testing.T) {
	t.Parallel()

	r := display.MustCompile(&schema.Schema{
		Name: "event",
		Kind: schema.KindUnion,
		Variants: []schema.Variant{
			{Name: "loginMsg", Kind: schema.KindStruct, Fields: []schema.Field{
				{Name: "user", Index: 0, Type: schema.Named("string"),
					Annotations: []schema.Annotation{schema.NotSensitive()}},
				{Name: "token", Index: 1, Type: schema.Named("string"),
					Annotations: []schema.Annotation{schema.Sensitive(policy.Default)}},
			}, Display: "login {user} {token}"},
			{Name: "logoutMsg", Kind: schema.KindUnit, Display: "logout"},
		},
	})

	assert.Equal(t, "login alice [REDACTED]", r.Format(loginMsg{User: "alice", Token: "t"}))
	assert.Equal(t, "logout", r.Format(logoutMsg{}))
}

type loginMsg struct {
	User  string
	Token string
}

type logoutMsg struct{}

func TestCompileUnknownFieldError(t *testing.T) {
	t.Parallel()

	s := &schema.Schema{
		Name: "broken",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "a", Index: 0, Type: schema.Named("string")},
		},
		Display: "value {missing}",
	}

	r, diags := display.Compile(s)
	assert.Nil(t, r)
	require.True(t, diags.HasErrors())
	assert.Equal(t, display.CodeTemplateField, diags.Errors[0].Code)
	assert.Contains(t, diags.Errors[0].Message, `"value {missing}"`)
}

func TestCompileIndexOutOfRange(t *testing.T) {
	t.Parallel()

	s := &schema.Schema{
		Name: "broken",
		Kind: schema.KindTuple,
		Fields: []schema.Field{
			{Index: 0, Type: schema.Named("string")},
		},
		Display: "{3}",
	}

	r, diags := display.Compile(s)
	assert.Nil(t, r)
	require.True(t, diags.HasErrors())
	assert.Equal(t, display.CodeTemplateField, diags.Errors[0].Code)
}

func TestCompileUnsupportedSpec(t *testing.T) {
	t.Parallel()

	s := &schema.Schema{
		Name: "broken",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "n", Index: 0, Type: schema.Named("string")},
		},
		Display: "{n:x}",
	}

	r, diags := display.Compile(s)
	assert.Nil(t, r)
	require.True(t, diags.HasErrors())
	assert.Equal(t, display.CodeTemplateParse, diags.Errors[0].Code)
}

func TestFormatNilValue(t *testing.T) {
	t.Parallel()

	r := display.MustCompile(credentialsSchema)
	assert.Equal(t, policy.RedactedPlaceholder, r.Format((*credentials)(nil)))
}

func TestFormatDebugMode(t *testing.T) {
	t.Parallel()

	type report struct {
		Meta map[string]int
	}

	r := display.MustCompile(&schema.Schema{
		Name: "report",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "meta", Index: 0, Type: schema.MapOf(schema.Named("string"), schema.Named("int")),
				Annotations: []schema.Annotation{schema.NotSensitive()}},
		},
		Display: "meta {meta:?}",
	})

	got := r.Format(report{Meta: map[string]int{"n": 1}})
	assert.Contains(t, got, "meta ")
	assert.Contains(t, got, "n")
}

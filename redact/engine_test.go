package redact_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redactable/container"
	"redactable/policy"
	"redactable/redact"
	"redactable/schema"
)

type account struct {
	Name     string
	Token    string
	PublicID string
	Age      int
}

type profile struct {
	Account account
	Contact *contact
	Tags    map[string]string
}

type contact struct {
	Email string
	Phone string
}

type loginEvent struct {
	User  string
	Token string
}

type logoutEvent struct {
	User string
}

type auditEvent interface {
	isAuditEvent()
}

func (loginEvent) isAuditEvent()  {}
func (logoutEvent) isAuditEvent() {}

func init() {
	redact.MustRegister[account](&schema.Schema{
		Name: "account",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "name", Index: 0, Type: schema.Named("string")},
			{Name: "token", Index: 1, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Token)}},
			{Name: "public_id", Index: 2, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.NotSensitive()}},
			{Name: "age", Index: 3, Type: schema.Named("int"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Default)}},
		},
	})

	redact.MustRegister[contact](&schema.Schema{
		Name: "contact",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "email", Index: 0, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.EmailAddress)}},
			{Name: "phone", Index: 1, Type: schema.Named("string"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.PhoneNumber)}},
		},
	})

	redact.MustRegisterUnion(&schema.Schema{
		Name: "auditEvent",
		Kind: schema.KindUnion,
		Variants: []schema.Variant{
			{Name: "loginEvent", Kind: schema.KindStruct, Fields: []schema.Field{
				{Name: "user", Index: 0, Type: schema.Named("string")},
				{Name: "token", Index: 1, Type: schema.Named("string"),
					Annotations: []schema.Annotation{schema.Sensitive(policy.Token)}},
			}},
			{Name: "logoutEvent", Kind: schema.KindStruct, Fields: []schema.Field{
				{Name: "user", Index: 0, Type: schema.Named("string")},
			}},
		},
	}, loginEvent{}, logoutEvent{})
}

func TestRedactAppliesFieldStrategies(t *testing.T) {
	t.Parallel()

	in := account{Name: "alice", Token: "sk_live_abc123", PublicID: "pub-1", Age: 42}
	out := redact.Redact(in)

	assert.Equal(t, "alice", out.Name)
	assert.Equal(t, "**********c123", out.Token)
	assert.Equal(t, "pub-1", out.PublicID)
	assert.Zero(t, out.Age)

	// the input is never mutated
	assert.Equal(t, "sk_live_abc123", in.Token)
	assert.Equal(t, 42, in.Age)
}

func TestRedactNoSensitiveFieldsIsIdentity(t *testing.T) {
	t.Parallel()

	type point struct {
		X, Y float64
		Name string
	}

	in := point{X: 1.5, Y: -2, Name: "origin"}
	assert.Equal(t, in, redact.Redact(in))
}

func TestRedactNestedRegisteredStruct(t *testing.T) {
	t.Parallel()

	in := profile{
		Account: account{Name: "bob", Token: "tok-12345678"},
		Contact: &contact{Email: "alice@example.com", Phone: "5550123456"},
		Tags:    map[string]string{"team": "core"},
	}

	out := redact.Redact(in)

	assert.Equal(t, "********5678", out.Account.Token)
	require.NotNil(t, out.Contact)
	assert.Equal(t, "al***@example.com", out.Contact.Email)
	assert.Equal(t, "******3456", out.Contact.Phone)

	// the pointer is a fresh allocation, the original pointee untouched
	assert.NotSame(t, in.Contact, out.Contact)
	assert.Equal(t, "alice@example.com", in.Contact.Email)

	// unannotated map walks values, which are plain strings
	assert.Equal(t, in.Tags, out.Tags)
}

func TestRedactMapKeysPreserved(t *testing.T) {
	t.Parallel()

	in := map[string]account{
		"first":  {Token: "tok-12345678"},
		"second": {Token: "tok-87654321"},
	}

	out, ok := redact.Value(in).(map[string]account)
	require.True(t, ok)
	require.Len(t, out, 2)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Equal(t, "********5678", out["first"].Token)
	assert.Equal(t, "tok-12345678", in["first"].Token)
}

func TestRedactSliceOrderAndLength(t *testing.T) {
	t.Parallel()

	in := []account{{Name: "a", Token: "tok-11111111"}, {Name: "b", Token: "tok-22222222"}}

	out, ok := redact.Value(in).([]account)
	require.True(t, ok)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, "b", out[1].Name)
	assert.Equal(t, "********1111", out[0].Token)
}

func TestRedactUnionDispatch(t *testing.T) {
	t.Parallel()

	var ev auditEvent = loginEvent{User: "alice", Token: "tok-12345678"}

	out := redact.Redact(ev)
	login, ok := out.(loginEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", login.User)
	assert.Equal(t, "********5678", login.Token)

	out = redact.Redact(auditEvent(logoutEvent{User: "bob"}))
	logout, ok := out.(logoutEvent)
	require.True(t, ok)
	assert.Equal(t, "bob", logout.User)
}

func TestRedactOpaqueDynamicValue(t *testing.T) {
	t.Parallel()

	type envelope struct {
		ID      string
		Payload any
		Raw     json.RawMessage
	}

	in := envelope{
		ID:      "ev-1",
		Payload: map[string]int{"balance": 100},
		Raw:     json.RawMessage(`{"card":"4111"}`),
	}

	out := redact.Redact(in)
	assert.Equal(t, "ev-1", out.ID)
	assert.Equal(t, policy.RedactedPlaceholder, out.Payload)
	assert.Equal(t, json.RawMessage(`"`+policy.RedactedPlaceholder+`"`), out.Raw)
}

func TestRedactContainersInWalk(t *testing.T) {
	t.Parallel()

	type record struct {
		Accounts container.Option[account]
		Attempts container.Set[string]
	}

	in := record{
		Accounts: container.Some(account{Token: "tok-12345678"}),
		Attempts: container.NewSet("x", "y"),
	}

	out := redact.Redact(in)

	acc, present := out.Accounts.Get()
	require.True(t, present)
	assert.Equal(t, "********5678", acc.Token)

	// set elements are plain strings, identity under walk
	assert.LessOrEqual(t, out.Attempts.Len(), in.Attempts.Len())
}

func TestRedactPolicyThroughContainers(t *testing.T) {
	t.Parallel()

	type vault struct {
		Keys []string
	}

	redact.MustRegister[vault](&schema.Schema{
		Name: "vault",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "keys", Index: 0, Type: schema.SliceOf(schema.Named("string")),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Token)}},
		},
	})

	out := redact.Redact(vault{Keys: []string{"tok-12345678", "tok-87654321"}})
	assert.Equal(t, []string{"********5678", "********4321"}, out.Keys)
}

func TestRedactPassthroughTypes(t *testing.T) {
	t.Parallel()

	type event struct {
		At      time.Time
		Elapsed time.Duration
	}

	now := time.Now()
	in := event{At: now, Elapsed: 3 * time.Second}
	out := redact.Redact(in)

	assert.True(t, out.At.Equal(now))
	assert.Equal(t, 3*time.Second, out.Elapsed)
}

func TestRedactScalarEraseRune(t *testing.T) {
	t.Parallel()

	type grade struct {
		Mark rune
	}

	redact.MustRegister[grade](&schema.Schema{
		Name: "grade",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "mark", Index: 0, Type: schema.Named("rune"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Default)}},
		},
	})

	out := redact.Redact(grade{Mark: 'A'})
	assert.Equal(t, policy.MaskChar, out.Mark)
}

func TestRegisterRejectsInvalidSchema(t *testing.T) {
	t.Parallel()

	type bad struct {
		Pin int
	}

	err := redact.Register[bad](&schema.Schema{
		Name: "bad",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "pin", Index: 0, Type: schema.Named("int"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.Token)}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default erase policy")
}

func TestRegisterRejectsUnknownField(t *testing.T) {
	t.Parallel()

	type slim struct {
		Name string
	}

	err := redact.Register[slim](&schema.Schema{
		Name: "slim",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "missing", Index: 0, Type: schema.Named("string")},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

type pan struct {
	digits string
}

func (p pan) SensitiveString() string { return p.digits }

func (p pan) FromRedacted(redacted string) any { return pan{digits: redacted} }

func TestRedactCustomLeaf(t *testing.T) {
	t.Parallel()

	type payment struct {
		Card pan
	}

	redact.MustRegister[payment](&schema.Schema{
		Name: "payment",
		Kind: schema.KindStruct,
		Fields: []schema.Field{
			{Name: "card", Index: 0, Type: schema.Named("pan"),
				Annotations: []schema.Annotation{schema.Sensitive(policy.CreditCard)}},
		},
	})

	out := redact.Redact(payment{Card: pan{digits: "4111111111111111"}})
	assert.Equal(t, pan{digits: "************1111"}, out.Card)
}

type tagMapper struct{}

func (tagMapper) MapScalar(_ string, v reflect.Value) reflect.Value {
	return reflect.New(v.Type()).Elem()
}

func (tagMapper) MapSensitive(marker policy.Marker, _ string) string {
	return "<" + string(marker) + ">"
}

func TestRedactWithUsesSuppliedMapper(t *testing.T) {
	t.Parallel()

	in := account{Name: "alice", Token: "sk_live_abc123"}

	out := redact.RedactWith(in, tagMapper{})
	assert.Equal(t, "<token>", out.Token)
	assert.Equal(t, "alice", out.Name)

	viaValue, ok := redact.ValueWith(in, tagMapper{}).(account)
	require.True(t, ok)
	assert.Equal(t, out, viaValue)
}

func TestValueNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, redact.Value(nil))
}

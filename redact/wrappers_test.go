package redact_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redactable/policy"
	"redactable/redact"
)

type apiKey string

func TestSensitiveRedactsWithOwnMarker(t *testing.T) {
	t.Parallel()

	type request struct {
		Key redact.Sensitive[apiKey]
	}

	in := request{Key: redact.NewSensitive[apiKey]("sk_live_abc123", policy.Token)}
	out := redact.Redact(in)

	assert.Equal(t, apiKey("**********c123"), out.Key.Reveal())
	assert.Equal(t, apiKey("sk_live_abc123"), in.Key.Reveal())
}

func TestSensitiveStringNeverLeaks(t *testing.T) {
	t.Parallel()

	secret := redact.Secret("hunter2")
	assert.Equal(t, policy.RedactedPlaceholder, secret.String())
	assert.Equal(t, policy.RedactedPlaceholder, fmt.Sprintf("%v", secret))
	assert.Equal(t, "hunter2", secret.Reveal())
}

func TestSensitiveApplyPolicyRef(t *testing.T) {
	t.Parallel()

	key := redact.NewSensitive[apiKey]("sk_live_abc123", policy.Token)

	// the wrapper's marker wins over the field-level one
	got := key.ApplyPolicyRef(redact.PolicyMapper{}, policy.Default)
	assert.Equal(t, "**********c123", got)
}

func TestNotSensitiveSurvivesWalk(t *testing.T) {
	t.Parallel()

	type payload struct {
		Raw redact.NotSensitive[any]
	}

	in := payload{Raw: redact.Plain[any](map[string]int{"n": 1})}
	out := redact.Redact(in)

	require.IsType(t, map[string]int{}, out.Raw.Value)
	assert.Equal(t, in.Raw.Value, out.Raw.Value)
}

func TestSensitiveMarker(t *testing.T) {
	t.Parallel()

	key := redact.NewSensitive("x", policy.Pii)
	assert.Equal(t, policy.Pii, key.Marker())
}

// Package output carries redacted values to logging and serialization
// sinks.
//
// Every sink adapter consumes the same Output union: plain text from the
// display formatter, or a structured value from the traversal engine. The
// slog helpers defer redaction to the moment a handler resolves the value,
// so building log attributes stays cheap on disabled levels.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"redactable/internal/common"
	"redactable/redact"
)

// Kind distinguishes the two payload forms.
type Kind int

const (
	// KindText is a preformatted redacted string.
	KindText Kind = iota
	// KindStructured is a redacted value for structured sinks.
	KindStructured
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStructured:
		return "structured"
	default:
		return common.UnknownStr
	}
}

// Output is the payload handed to sinks. Its contents are already redacted;
// sinks never see cleartext.
type Output struct {
	kind  Kind
	text  string
	value any
}

// Text builds a plain-text payload from an already-redacted string.
func Text(s string) Output {
	return Output{kind: KindText, text: s}
}

// Structured redacts v and wraps it as a structured payload.
func Structured(v any) Output {
	return Output{kind: KindStructured, value: redact.Value(v)}
}

// Kind returns the payload form.
func (o Output) Kind() Kind {
	return o.kind
}

// String renders the payload as text. Structured payloads render through
// their default formatting.
func (o Output) String() string {
	if o.kind == KindText {
		return o.text
	}

	return spew.Sprintf("%v", o.value)
}

// Value returns the structured payload, or the text for text payloads.
func (o Output) Value() any {
	if o.kind == KindText {
		return o.text
	}

	return o.value
}

// MarshalJSON serializes the redacted payload.
func (o Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value())
}

// LogValue makes Output usable directly as a slog attribute value.
func (o Output) LogValue() slog.Value {
	if o.kind == KindText {
		return slog.StringValue(o.text)
	}

	return slog.AnyValue(o.value)
}

// Safe declares a value explicitly non-sensitive and carries its default
// formatting as text. The caller asserts the value holds no secrets; no
// redaction happens.
func Safe(v any) Output {
	return Output{kind: KindText, text: fmt.Sprint(v)}
}

// SafeDebug is Safe with spew's exhaustive formatting.
func SafeDebug(v any) Output {
	return Output{kind: KindText, text: spew.Sprintf("%#v", v)}
}

// SafeJSON declares a value explicitly non-sensitive and carries it as a
// structured payload without redaction. Serialization failures degrade to a
// text payload describing the error.
func SafeJSON(v any) Output {
	raw, err := json.Marshal(v)
	if err != nil {
		return Text(fmt.Sprintf("failed to serialize not-sensitive value: %v", err))
	}

	return Output{kind: KindStructured, value: json.RawMessage(raw)}
}

// lazy redacts its value only when a handler resolves it.
type lazy struct {
	v any
}

func (l lazy) LogValue() slog.Value {
	return slog.AnyValue(redact.Value(l.v))
}

// Redacted wraps v so slog redacts it at resolve time.
func Redacted(v any) slog.LogValuer {
	return lazy{v: v}
}

// Attr builds a slog attribute whose value redacts lazily.
func Attr(key string, v any) slog.Attr {
	return slog.Any(key, Redacted(v))
}

// RedactedJSON redacts v and serializes the result.
func RedactedJSON(v any) ([]byte, error) {
	return json.Marshal(redact.Value(v))
}

// DebugString dumps the redacted value in spew's exhaustive format. Meant
// for troubleshooting redaction plans, not for production log lines.
func DebugString(v any) string {
	return strings.TrimRight(spew.Sdump(redact.Value(v)), "\n")
}

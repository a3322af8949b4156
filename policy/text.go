// Package policy provides pure string redaction policies and the marker
// registry that binds policy names to them.
//
// A Text policy is a total transformation over Unicode code points: it never
// fails, never inspects structure, and never decides sensitivity. Deciding
// which values a policy applies to is the planner's job; see the redact
// package for traversal.
package policy

import (
	"strings"

	"redactable/internal/common"
)

// RedactedPlaceholder is the default placeholder used for full redaction.
const RedactedPlaceholder = "[REDACTED]"

// MaskChar is the default character used to mask redacted code points.
const MaskChar = '*'

// TextKind identifies the transformation a Text policy performs.
type TextKind int

const (
	// KindFull replaces the entire value with a fixed placeholder.
	KindFull TextKind = iota
	// KindKeep keeps configured segments visible while masking the rest.
	KindKeep
	// KindMask masks configured segments while leaving the rest untouched.
	KindMask
	// KindEmail masks the local part of an address, preserving the domain.
	KindEmail
)

// String returns a human-readable kind name.
func (k TextKind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindKeep:
		return "keep"
	case KindMask:
		return "mask"
	case KindEmail:
		return "email"
	default:
		return common.UnknownStr
	}
}

// Text is a redaction policy for string-like values.
//
// All policies operate on Unicode code points, never raw bytes: a multi-byte
// character counts as a single unit and combining marks occupy their own
// unit. Apply is pure and total. Keep, Mask and Email are idempotent when
// re-applied to their own output; Full trivially so.
type Text struct {
	kind        TextKind
	placeholder string
	prefix      int
	suffix      int
	mask        rune
}

// Full replaces the entire value with [RedactedPlaceholder].
func Full() Text {
	return FullWith(RedactedPlaceholder)
}

// FullWith replaces the entire value with a custom placeholder.
func FullWith(placeholder string) Text {
	return Text{kind: KindFull, placeholder: placeholder, mask: MaskChar}
}

// KeepFirst keeps only the first prefix code points visible.
func KeepFirst(prefix int) Text {
	return KeepBoth(prefix, 0)
}

// KeepLast keeps only the last suffix code points visible.
func KeepLast(suffix int) Text {
	return KeepBoth(0, suffix)
}

// KeepBoth keeps the first prefix and last suffix code points visible,
// masking the middle. If prefix+suffix covers the whole value, the value is
// returned unchanged.
func KeepBoth(prefix, suffix int) Text {
	return Text{kind: KindKeep, placeholder: RedactedPlaceholder, prefix: clampNonNegative(prefix), suffix: clampNonNegative(suffix), mask: MaskChar}
}

// MaskFirst masks only the first prefix code points.
func MaskFirst(prefix int) Text {
	return MaskBoth(prefix, 0)
}

// MaskLast masks only the last suffix code points.
func MaskLast(suffix int) Text {
	return MaskBoth(0, suffix)
}

// MaskBoth masks the first prefix and last suffix code points, leaving the
// middle untouched. If prefix+suffix covers the whole value, everything is
// masked.
func MaskBoth(prefix, suffix int) Text {
	return Text{kind: KindMask, placeholder: RedactedPlaceholder, prefix: clampNonNegative(prefix), suffix: clampNonNegative(suffix), mask: MaskChar}
}

// Email keeps the first prefix code points of the local part visible, masks
// the remainder of the local part, and preserves the domain (including the
// '@') unchanged. A value without '@' behaves like KeepFirst over the whole
// input.
func Email(prefix int) Text {
	return Text{kind: KindEmail, placeholder: RedactedPlaceholder, prefix: clampNonNegative(prefix), mask: MaskChar}
}

// WithMaskChar returns a copy that masks with the given character. It has no
// effect on Full policies, which replace the whole value with a placeholder.
func (t Text) WithMaskChar(mask rune) Text {
	t.mask = mask
	return t
}

// Kind returns the policy kind.
func (t Text) Kind() TextKind {
	return t.kind
}

// Apply transforms value according to the policy. It is total: every input,
// including the empty string, produces a defined output. Empty input always
// yields the placeholder so that an empty secret never leaks its emptiness.
func (t Text) Apply(value string) string {
	if t.kind == KindFull {
		return t.placeholder
	}

	chars := []rune(value)
	if len(chars) == 0 {
		return t.placeholder
	}

	switch t.kind {
	case KindKeep:
		return t.applyKeep(chars)
	case KindMask:
		return t.applyMask(chars)
	case KindEmail:
		return t.applyEmail(value, chars)
	default:
		// Unreachable for values built via the constructors; redact fully
		// rather than leak.
		return RedactedPlaceholder
	}
}

func (t Text) applyKeep(chars []rune) string {
	total := len(chars)
	if spansCover(t.prefix, t.suffix, total) {
		return string(chars)
	}

	for i := t.prefix; i < total-t.suffix; i++ {
		chars[i] = t.mask
	}

	return string(chars)
}

func (t Text) applyMask(chars []rune) string {
	total := len(chars)
	if spansCover(t.prefix, t.suffix, total) {
		for i := range chars {
			chars[i] = t.mask
		}

		return string(chars)
	}

	for i := 0; i < t.prefix; i++ {
		chars[i] = t.mask
	}

	for i := total - t.suffix; i < total; i++ {
		chars[i] = t.mask
	}

	return string(chars)
}

func (t Text) applyEmail(value string, chars []rune) string {
	at := strings.IndexRune(value, '@')
	if at < 0 {
		// No domain to preserve: behave like keep-first over the whole input.
		total := len(chars)
		if t.prefix >= total {
			return string(chars)
		}

		for i := t.prefix; i < total; i++ {
			chars[i] = t.mask
		}

		return string(chars)
	}

	local := []rune(value[:at])
	domain := value[at:] // includes the '@'

	if t.prefix >= len(local) {
		return value
	}

	var b strings.Builder
	b.Grow(len(value))
	b.WriteString(string(local[:t.prefix]))

	for i := t.prefix; i < len(local); i++ {
		b.WriteRune(t.mask)
	}

	b.WriteString(domain)

	return b.String()
}

// spansCover reports whether prefix+suffix covers a value of the given
// length. The addition saturates so absurdly large spans never overflow.
func spansCover(prefix, suffix, total int) bool {
	if prefix >= total {
		return true
	}

	return suffix >= total-prefix
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}

	return n
}

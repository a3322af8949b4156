// Package display formats values through redacted-display templates.
//
// A template is literal text plus {placeholder} references to schema
// fields. Compilation binds each placeholder to a field and fixes the
// redaction step it will execute; formatting is then plain substitution
// over already-redacted renderings and can never fail.
package display

import (
	"fmt"
	"strconv"
	"strings"

	"redactable/internal/common"
)

// Mode selects how a bound placeholder renders its field.
type Mode int

const (
	// ModeDisplay renders the plain-text form.
	ModeDisplay Mode = iota
	// ModeDebug renders the structured form.
	ModeDebug
	// ModeBoth marks a field referenced under both modes. Tokens never
	// carry it; it only widens the field's formatting bounds.
	ModeBoth
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeDisplay:
		return "display"
	case ModeDebug:
		return "debug"
	case ModeBoth:
		return "both"
	default:
		return common.UnknownStr
	}
}

// refKind distinguishes the three placeholder reference forms.
type refKind int

const (
	refImplicit refKind = iota
	refIndex
	refNamed
)

// token is one parsed template element: a literal run or a placeholder.
type token struct {
	literal string
	isField bool
	kind    refKind
	name    string
	index   int
	mode    Mode
}

// parseTemplate splits a template into literal and placeholder tokens.
// Implicit positional placeholders are numbered here, so later stages only
// see named or indexed references.
func parseTemplate(source string) ([]token, error) {
	var (
		tokens   []token
		literal  strings.Builder
		implicit int
	)

	flush := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, token{literal: literal.String()})
			literal.Reset()
		}
	}

	runes := []rune(source)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '{':
			if i+1 < len(runes) && runes[i+1] == '{' {
				literal.WriteRune('{')
				i++

				continue
			}

			end := indexRuneFrom(runes, i+1, '}')
			if end < 0 {
				return nil, fmt.Errorf("template %q: unclosed placeholder", source)
			}

			tok, err := parsePlaceholder(source, string(runes[i+1:end]), &implicit)
			if err != nil {
				return nil, err
			}

			flush()

			tokens = append(tokens, tok)
			i = end
		case '}':
			if i+1 < len(runes) && runes[i+1] == '}' {
				literal.WriteRune('}')
				i++

				continue
			}

			return nil, fmt.Errorf("template %q: unmatched '}'", source)
		default:
			literal.WriteRune(runes[i])
		}
	}

	flush()

	return tokens, nil
}

// parsePlaceholder parses the inside of one {...} reference.
func parsePlaceholder(source, content string, implicit *int) (token, error) {
	ref := content
	spec := ""

	if i := strings.IndexByte(content, ':'); i >= 0 {
		ref = content[:i]
		spec = content[i+1:]
	}

	mode, err := parseSpec(source, spec)
	if err != nil {
		return token{}, err
	}

	tok := token{isField: true, mode: mode}

	switch {
	case ref == "":
		tok.kind = refImplicit
		tok.index = *implicit
		*implicit++
	case isInteger(ref):
		tok.kind = refIndex
		tok.index, _ = strconv.Atoi(ref)
	default:
		tok.kind = refNamed
		tok.name = ref
	}

	return tok, nil
}

// parseSpec validates a `:spec` suffix and selects the mode. Only width,
// fill, alignment and precision survive from the usual format grammar;
// dynamic and numeric-base specifiers have no redacted meaning and are
// rejected at compile time.
func parseSpec(source, spec string) (Mode, error) {
	if strings.ContainsAny(spec, "$*") {
		return 0, fmt.Errorf("template %q: dynamic width/precision specifier %q is not supported", source, spec)
	}

	mode := ModeDisplay

	if strings.HasSuffix(spec, "?") {
		mode = ModeDebug
		spec = strings.TrimSuffix(spec, "?")
	}

	if spec != "" {
		switch spec[len(spec)-1] {
		case 'x', 'X', 'o', 'b', 'p', 'e', 'E':
			return 0, fmt.Errorf("template %q: format specifier %q is not supported", source, spec)
		}
	}

	return mode, nil
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func indexRuneFrom(runes []rune, from int, want rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == want {
			return i
		}
	}

	return -1
}

package policy

import "sync"

// Marker identifies a redaction policy by name. A marker is resolved to its
// Text policy through the process-wide registry; markers carry no state of
// their own.
type Marker string

// Built-in markers and the policies they resolve to.
const (
	// Default is the erase-to-default marker: full redaction for strings,
	// zero/false/mask-char for scalars. It is the only marker legal on
	// scalar fields.
	Default Marker = "default"
	// Token keeps the last 4 characters of API keys and auth tokens.
	Token Marker = "token"
	// Pii keeps the last 2 characters, protecting short names.
	Pii Marker = "pii"
	// EmailAddress keeps the first 2 characters of the local part and the
	// full domain.
	EmailAddress Marker = "email"
	// CreditCard keeps the last 4 digits of a PAN.
	CreditCard Marker = "credit-card"
	// PhoneNumber keeps the last 4 digits.
	PhoneNumber Marker = "phone-number"
	// IPAddress keeps the last 4 characters.
	IPAddress Marker = "ip-address"
	// BlockchainAddress keeps the last 6 characters of a chain address.
	BlockchainAddress Marker = "blockchain-address"
)

var (
	registryMu sync.RWMutex
	registry   = map[Marker]Text{
		Default:           Full(),
		Token:             KeepLast(4),
		Pii:               KeepLast(2),
		EmailAddress:      Email(2),
		CreditCard:        KeepLast(4),
		PhoneNumber:       KeepLast(4),
		IPAddress:         KeepLast(4),
		BlockchainAddress: KeepLast(6),
	}
)

// Register binds a marker to a Text policy, replacing any existing binding.
// Custom policy authors call this once during process start-up; the registry
// is otherwise read-only.
func Register(m Marker, t Text) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[m] = t
}

// Lookup returns the policy bound to a marker, and whether the marker is
// known.
func Lookup(m Marker) (Text, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[m]

	return t, ok
}

// Resolve returns the policy bound to a marker. An unknown marker resolves to
// full redaction: at runtime there is no error path, and over-redacting is
// the only safe answer for a marker nobody registered.
func Resolve(m Marker) Text {
	if t, ok := Lookup(m); ok {
		return t
	}

	return Full()
}

// Markers returns the currently registered marker names. Intended for
// tooling; the order is unspecified.
func Markers() []Marker {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Marker, 0, len(registry))
	for m := range registry {
		out = append(out, m)
	}

	return out
}

package model

import (
	"fmt"
	"strings"
)

// ProtocolVersion identifies one rung of the SSL/TLS protocol ladder.
// Values are ordered from weakest to strongest, so a smaller value is
// always a weaker protocol.
type ProtocolVersion int

const (
	// SSLv2 is the weakest protocol on the ladder.
	SSLv2 ProtocolVersion = iota
	// SSLv3 is SSL version 3.
	SSLv3
	// TLSv10 is TLS 1.0.
	TLSv10
	// TLSv11 is TLS 1.1.
	TLSv11
	// TLSv12 is TLS 1.2.
	TLSv12
	// TLSv13 is the strongest protocol on the ladder.
	TLSv13
)

// ProtocolCount is the number of protocols on the ladder.
const ProtocolCount = 6

// protocolKeys are the canonical keys derived from sslscan's protocol
// type and version attributes ("tls" + "1.2" -> "tls12").
var protocolKeys = [ProtocolCount]string{"ssl2", "ssl3", "tls10", "tls11", "tls12", "tls13"}

// protocolNames are the display names written to reports.
var protocolNames = [ProtocolCount]string{"sslv2", "sslv3", "tls 1.0", "tls 1.1", "tls 1.2", "tls 1.3"}

// Ladder returns every protocol in ascending strength order.
// The array is returned by value so callers cannot modify the ladder.
func Ladder() [ProtocolCount]ProtocolVersion {
	return [ProtocolCount]ProtocolVersion{SSLv2, SSLv3, TLSv10, TLSv11, TLSv12, TLSv13}
}

// ProtocolKey builds the canonical key for a protocol element.
// The version's dots are removed and the result is lower-cased, so
// ("SSL", "3") gives "ssl3" and ("tls", "1.3") gives "tls13".
func ProtocolKey(protocolType, version string) string {
	key := strings.TrimSpace(protocolType) + strings.ReplaceAll(strings.TrimSpace(version), ".", "")
	return strings.ToLower(key)
}

// ParseProtocolKey returns the protocol for a canonical key.
// The second return value is false for keys that are not on the ladder.
func ParseProtocolKey(key string) (ProtocolVersion, bool) {
	for i, k := range protocolKeys {
		if k == key {
			return ProtocolVersion(i), true
		}
	}
	return 0, false
}

// ParseProtocolName returns the protocol for a display name or canonical key.
func ParseProtocolName(name string) (ProtocolVersion, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range protocolNames {
		if n == lower {
			return ProtocolVersion(i), true
		}
	}
	return ParseProtocolKey(lower)
}

// Valid reports whether v is on the ladder.
func (v ProtocolVersion) Valid() bool {
	return v >= SSLv2 && v <= TLSv13
}

// Key returns the canonical key, e.g. "tls12".
func (v ProtocolVersion) Key() string {
	if !v.Valid() {
		return ""
	}
	return protocolKeys[v]
}

// String returns the display name, e.g. "tls 1.2".
func (v ProtocolVersion) String() string {
	if !v.Valid() {
		return fmt.Sprintf("protocol(%d)", int(v))
	}
	return protocolNames[v]
}

// WeakerThan reports whether v sits below other on the ladder.
func (v ProtocolVersion) WeakerThan(other ProtocolVersion) bool {
	return v < other
}

// Deprecated reports whether v is an SSL protocol or TLS below 1.2.
func (v ProtocolVersion) Deprecated() bool {
	return v.Valid() && v < TLSv12
}

// MarshalText implements encoding.TextMarshaler.
func (v ProtocolVersion) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid protocol version %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *ProtocolVersion) UnmarshalText(text []byte) error {
	p, ok := ParseProtocolName(string(text))
	if !ok {
		return fmt.Errorf("unknown protocol version %q", string(text))
	}
	*v = p
	return nil
}

// ProtocolSupport records, for one endpoint, which protocols were reported
// enabled, reported disabled, or not reported at all.
// The zero value reports nothing.
type ProtocolSupport struct {
	flags [ProtocolCount]TriState
}

// Set records the enablement flag for a protocol. Invalid versions are ignored.
func (p *ProtocolSupport) Set(v ProtocolVersion, enabled TriState) {
	if !v.Valid() {
		return
	}
	p.flags[v] = enabled
}

// Get returns the enablement flag for a protocol.
func (p ProtocolSupport) Get(v ProtocolVersion) TriState {
	if !v.Valid() {
		return TriStateUnknown
	}
	return p.flags[v]
}

// Enabled returns the explicitly enabled protocols in ladder order.
func (p ProtocolSupport) Enabled() []ProtocolVersion {
	var enabled []ProtocolVersion
	for _, v := range Ladder() {
		if p.flags[v].IsTrue() {
			enabled = append(enabled, v)
		}
	}
	return enabled
}

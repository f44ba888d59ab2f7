package model

import (
	"fmt"
	"strconv"
	"time"
)

// dateLayout is the JSON and storage representation of Date.
const dateLayout = "2006-01-02"

// Date is a certificate validity bound.
// The full timestamp is kept so validity can be computed exactly, but it is
// serialized without a time of day.
type Date struct {
	time.Time
}

// NewDate wraps t as a Date.
func NewDate(t time.Time) *Date {
	return &Date{Time: t}
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Format(dateLayout)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	t, err := time.Parse(dateLayout, string(text))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON overrides the promoted time.Time method so dates stay date-only.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts the MarshalJSON form.
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", string(data), err)
	}
	return d.UnmarshalText([]byte(s))
}

// ScanRecord is the flat, normalized result for one scanned endpoint
// (host, SNI name, port). Nullable fields are nil when the source document
// did not report them.
type ScanRecord struct {
	// Host is the scanned host as written by sslscan.
	Host string `json:"host"`

	// SNIName is the server name sent during the scan.
	SNIName string `json:"sniname"`

	// Port is the scanned TCP port.
	Port int `json:"port"`

	// MinimumTLSVersion is the weakest enabled protocol.
	// Nil when no protocol was reported enabled.
	MinimumTLSVersion *ProtocolVersion `json:"minimum_tls_version"`

	// HeartbleedVulnerable reports the heartbleed check result.
	HeartbleedVulnerable TriState `json:"heartbleed_vulnerable"`

	// MinimumCipherStrength is the weakest accepted cipher.
	// Nil when no cipher was accepted.
	MinimumCipherStrength *CipherStrength `json:"minimum_cipher_strength"`

	// SignatureAlgorithm is the leaf certificate's signature algorithm.
	SignatureAlgorithm *string `json:"signature_algorithm"`

	// PublicKeyBits is the leaf certificate's public key size.
	PublicKeyBits *int `json:"public_key_entropy"`

	// NotBefore is the start of the certificate validity window.
	NotBefore *Date `json:"certificate_inception"`

	// NotAfter is the end of the certificate validity window.
	NotAfter *Date `json:"certificate_expiration"`

	// ValidityDays is NotAfter - NotBefore in whole days.
	// It is set only when both bounds come from this record's certificate.
	ValidityDays *int `json:"validity_days"`

	// CertificateExpired reports sslscan's expiry check.
	CertificateExpired TriState `json:"certificate_expired"`

	// SelfSigned reports sslscan's self-signed check.
	SelfSigned TriState `json:"self_signed"`
}

// EndpointKey identifies an endpoint across reports.
type EndpointKey struct {
	Host    string `json:"host"`
	SNIName string `json:"sniname"`
	Port    int    `json:"port"`
}

// String renders the key as host:port, adding the SNI name when it differs.
func (k EndpointKey) String() string {
	hostPort := k.Host + ":" + strconv.Itoa(k.Port)
	if k.SNIName != "" && k.SNIName != k.Host {
		return fmt.Sprintf("%s (sni %s)", hostPort, k.SNIName)
	}
	return hostPort
}

// Key returns the endpoint identity of the record.
func (r ScanRecord) Key() EndpointKey {
	return EndpointKey{Host: r.Host, SNIName: r.SNIName, Port: r.Port}
}

// HasCertificate reports whether any certificate field was populated.
func (r ScanRecord) HasCertificate() bool {
	return r.SignatureAlgorithm != nil || r.PublicKeyBits != nil ||
		r.NotBefore != nil || r.NotAfter != nil ||
		r.CertificateExpired.IsKnown() || r.SelfSigned.IsKnown()
}

// recordColumns is the output column order of a ScanRecord.
var recordColumns = [...]string{
	"host",
	"sniname",
	"port",
	"minimum_tls_version",
	"heartbleed_vulnerable",
	"minimum_cipher_strength",
	"signature_algorithm",
	"public_key_entropy",
	"certificate_inception",
	"certificate_expiration",
	"validity_days",
	"certificate_expired",
	"self_signed",
}

// RecordColumns returns the tabular column names in output order.
// A fresh slice is returned on every call.
func RecordColumns() []string {
	cols := make([]string, len(recordColumns))
	copy(cols, recordColumns[:])
	return cols
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// ProtocolPtr returns a pointer to v.
func ProtocolPtr(v ProtocolVersion) *ProtocolVersion {
	return &v
}

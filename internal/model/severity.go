package model

// Severity represents the risk level of a policy finding.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct security impact.
	SeverityInfo Severity = iota

	// SeverityLow indicates hygiene issues such as overly long certificate lifetimes.
	SeverityLow

	// SeverityMedium indicates deprecated but still common configurations,
	// such as TLS 1.0/1.1 or self-signed certificates.
	SeverityMedium

	// SeverityHigh indicates configurations that weaken transport security,
	// such as SSLv3, sub-128-bit ciphers or expired certificates.
	SeverityHigh

	// SeverityCritical indicates directly exploitable weaknesses such as
	// SSLv2 or Heartbleed.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Severities returns all levels from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Title          string
	Impact         string
	Recommendation string
}

// Finding type identifiers.
const (
	FindingHeartbleed         = "heartbleed"
	FindingSSLv2              = "sslv2_enabled"
	FindingSSLv3              = "sslv3_enabled"
	FindingLegacyTLS          = "legacy_tls_enabled"
	FindingWeakCipher         = "weak_cipher"
	FindingNoAcceptedCipher   = "no_accepted_cipher"
	FindingNoProtocol         = "no_protocol_reported"
	FindingExpiredCertificate = "certificate_expired"
	FindingSelfSigned         = "self_signed_certificate"
	FindingLongValidity       = "long_certificate_validity"
	FindingNoCertificate      = "no_certificate"
)

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent risk assessment across writers.
var findingInfoMapping = map[string]FindingInfo{
	FindingHeartbleed: {
		Severity:       SeverityCritical,
		Title:          "Vulnerable to Heartbleed",
		Impact:         "Attackers can read process memory, including private keys and session data.",
		Recommendation: "Upgrade OpenSSL, then rotate the private key and reissue the certificate.",
	},
	FindingSSLv2: {
		Severity:       SeverityCritical,
		Title:          "SSLv2 enabled",
		Impact:         "SSLv2 is broken (DROWN) and allows traffic decryption.",
		Recommendation: "Disable SSLv2 on the endpoint.",
	},
	FindingSSLv3: {
		Severity:       SeverityHigh,
		Title:          "SSLv3 enabled",
		Impact:         "SSLv3 is vulnerable to POODLE and lacks modern cipher suites.",
		Recommendation: "Disable SSLv3 and require TLS 1.2 or later.",
	},
	FindingLegacyTLS: {
		Severity:       SeverityMedium,
		Title:          "Legacy TLS enabled",
		Impact:         "TLS 1.0 and 1.1 are deprecated (RFC 8996) and fail most compliance baselines.",
		Recommendation: "Require TLS 1.2 or later.",
	},
	FindingWeakCipher: {
		Severity:       SeverityHigh,
		Title:          "Weak cipher accepted",
		Impact:         "Ciphers below the minimum key strength can be brute-forced or are otherwise broken.",
		Recommendation: "Remove export, NULL, DES and RC4 suites from the server configuration.",
	},
	FindingNoAcceptedCipher: {
		Severity:       SeverityInfo,
		Title:          "No cipher accepted",
		Impact:         "The scan recorded no accepted cipher; the endpoint may have refused the connection.",
		Recommendation: "Re-run the scan and confirm the endpoint is reachable.",
	},
	FindingNoProtocol: {
		Severity:       SeverityInfo,
		Title:          "No protocol reported enabled",
		Impact:         "The minimum protocol could not be determined from the scan.",
		Recommendation: "Re-run the scan with protocol checks enabled.",
	},
	FindingExpiredCertificate: {
		Severity:       SeverityHigh,
		Title:          "Certificate expired",
		Impact:         "Clients reject the certificate or users learn to ignore warnings.",
		Recommendation: "Renew the certificate and automate renewal.",
	},
	FindingSelfSigned: {
		Severity:       SeverityMedium,
		Title:          "Self-signed certificate",
		Impact:         "Clients cannot authenticate the endpoint without out-of-band trust.",
		Recommendation: "Use a certificate issued by a trusted CA.",
	},
	FindingLongValidity: {
		Severity:       SeverityLow,
		Title:          "Certificate validity exceeds policy",
		Impact:         "Long-lived certificates delay key rotation and are rejected by browsers above 398 days.",
		Recommendation: "Reissue the certificate with a shorter validity period.",
	},
	FindingNoCertificate: {
		Severity:       SeverityInfo,
		Title:          "No certificate reported",
		Impact:         "Certificate checks could not be evaluated for this endpoint.",
		Recommendation: "Re-run the scan with certificate output enabled.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Title:          findingType,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}

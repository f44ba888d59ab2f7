package model

import (
	"strconv"
	"time"
)

// Default policy thresholds.
const (
	// DefaultMinCipherBits is the smallest symmetric key size not reported
	// as a weak cipher.
	DefaultMinCipherBits = 128

	// DefaultMaxValidityDays matches the CA/Browser Forum limit for
	// publicly trusted TLS certificates.
	DefaultMaxValidityDays = 398
)

// Policy holds the thresholds used to derive findings from a record.
// A zero threshold disables the corresponding check.
type Policy struct {
	// MinCipherBits flags ciphers weaker than this many bits.
	MinCipherBits int `json:"min_cipher_bits"`

	// MaxValidityDays flags certificates valid for longer than this.
	MaxValidityDays int `json:"max_validity_days"`
}

// DefaultPolicy returns the built-in thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinCipherBits:   DefaultMinCipherBits,
		MaxValidityDays: DefaultMaxValidityDays,
	}
}

// PolicyLookup returns the policy that applies to a host.
type PolicyLookup func(host string) Policy

// Summary is a severity-grouped view of a Report's policy findings.
//
// Design decision: We derive findings at presentation time rather than
// storing them on ScanRecord so that the normalized record stays exactly
// what the scanner reported and policies can change without re-importing.
type Summary struct {
	// Source is the report's source.
	Source string `json:"source"`

	// GeneratedAt is when the report was normalized.
	GeneratedAt time.Time `json:"generated_at"`

	// Endpoints is the number of records in the report.
	Endpoints int `json:"endpoints"`

	// Warnings is the number of normalization warnings.
	Warnings int `json:"warnings"`

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// Findings contains all findings in record order.
	Findings []Finding `json:"findings,omitempty"`
}

// Finding is a single policy observation about one endpoint.
type Finding struct {
	// Type is the finding type identifier from severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Endpoint is the affected endpoint.
	Endpoint EndpointKey `json:"endpoint"`

	// Value is the observed value (protocol, cipher, days...).
	Value string `json:"value,omitempty"`

	// Impact explains the security implications of this finding.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`
}

// NewSummary evaluates every record in the report against its policy.
// If lookup is nil, DefaultPolicy applies to every host.
func NewSummary(report *Report, lookup PolicyLookup) *Summary {
	if lookup == nil {
		lookup = func(string) Policy { return DefaultPolicy() }
	}

	s := &Summary{
		Source:      report.Source,
		GeneratedAt: report.GeneratedAt,
		Endpoints:   len(report.Records),
		Warnings:    len(report.Warnings),
	}

	for _, rec := range report.Records {
		s.Findings = append(s.Findings, EvaluateRecord(rec, lookup(rec.Host))...)
	}
	s.countBySeverity()

	return s
}

// EvaluateRecord derives the policy findings for a single record.
func EvaluateRecord(rec ScanRecord, policy Policy) []Finding {
	var findings []Finding
	add := func(findingType, value string) {
		findings = append(findings, newFinding(findingType, rec.Key(), value))
	}

	if rec.HeartbleedVulnerable.IsTrue() {
		add(FindingHeartbleed, "")
	}

	if rec.MinimumTLSVersion == nil {
		add(FindingNoProtocol, "")
	} else {
		switch v := *rec.MinimumTLSVersion; {
		case v == SSLv2:
			add(FindingSSLv2, v.String())
		case v == SSLv3:
			add(FindingSSLv3, v.String())
		case v.Deprecated():
			add(FindingLegacyTLS, v.String())
		}
	}

	if rec.MinimumCipherStrength == nil {
		add(FindingNoAcceptedCipher, "")
	} else if policy.MinCipherBits > 0 && rec.MinimumCipherStrength.Bits < policy.MinCipherBits {
		add(FindingWeakCipher, rec.MinimumCipherStrength.String())
	}

	if !rec.HasCertificate() {
		add(FindingNoCertificate, "")
		return findings
	}
	if rec.CertificateExpired.IsTrue() {
		value := ""
		if rec.NotAfter != nil {
			value = rec.NotAfter.Format("2006-01-02")
		}
		add(FindingExpiredCertificate, value)
	}
	if rec.SelfSigned.IsTrue() {
		add(FindingSelfSigned, "")
	}
	if policy.MaxValidityDays > 0 && rec.ValidityDays != nil && *rec.ValidityDays > policy.MaxValidityDays {
		add(FindingLongValidity, strconv.Itoa(*rec.ValidityDays)+" days")
	}

	return findings
}

// newFinding builds a Finding from the central mapping.
func newFinding(findingType string, endpoint EndpointKey, value string) Finding {
	info := GetFindingInfo(findingType)
	return Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          info.Title,
		Endpoint:       endpoint,
		Value:          value,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
	}
}

// countBySeverity tallies findings per severity level.
func (s *Summary) countBySeverity() {
	s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount, s.InfoCount = 0, 0, 0, 0, 0
	for _, f := range s.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalFindings returns the number of findings at every level.
func (s *Summary) TotalFindings() int {
	return s.CriticalCount + s.HighCount + s.MediumCount + s.LowCount + s.InfoCount
}

// HasFindings reports whether the summary has any findings.
func (s *Summary) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings of a specific severity level.
func (s *Summary) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}

package model

import "time"

// Report is the normalized form of one sslscan document.
// Records appear in the same order as the scan entries of the source.
type Report struct {
	// Source is where the document was read from (a path or "stdin").
	Source string `json:"source"`

	// Digest is the SHA3-256 hex digest of the raw document.
	Digest string `json:"digest,omitempty"`

	// ScannerVersion is the sslscan version recorded in the document, if any.
	ScannerVersion string `json:"scanner_version,omitempty"`

	// GeneratedAt is when the report was normalized.
	GeneratedAt time.Time `json:"generated_at"`

	// RunID identifies the conversion run; reports converted together share it.
	RunID string `json:"run_id,omitempty"`

	// Records holds one entry per scan entry that could be normalized.
	Records []ScanRecord `json:"records"`

	// Warnings lists recoverable problems found while normalizing.
	Warnings []Warning `json:"warnings,omitempty"`

	// DocumentErrors are error messages sslscan itself wrote into the document.
	DocumentErrors []string `json:"document_errors,omitempty"`
}

// Warning is a recoverable, per-entry normalization problem.
type Warning struct {
	// Index is the 0-based position of the scan entry in the document.
	Index int `json:"index"`

	// Host is the entry's host attribute, when it was present.
	Host string `json:"host,omitempty"`

	// Kind classifies the warning (e.g. "malformed_entry", "date_parse").
	Kind string `json:"kind"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

// NewReport creates an empty Report for the given source.
func NewReport(source string) *Report {
	return &Report{
		Source:      source,
		GeneratedAt: time.Now(),
		Records:     make([]ScanRecord, 0),
	}
}

// Endpoints returns the endpoint keys of all records in order.
func (r *Report) Endpoints() []EndpointKey {
	keys := make([]EndpointKey, len(r.Records))
	for i, rec := range r.Records {
		keys[i] = rec.Key()
	}
	return keys
}

// ProtocolDistribution counts records by minimum protocol.
// Records without a minimum protocol are counted under "none".
func (r *Report) ProtocolDistribution() map[string]int {
	dist := make(map[string]int)
	for _, rec := range r.Records {
		if rec.MinimumTLSVersion == nil {
			dist["none"]++
			continue
		}
		dist[rec.MinimumTLSVersion.String()]++
	}
	return dist
}

package compare

import (
	"strconv"
	"time"

	"github.com/nao1215/sslreport/internal/model"
)

// Direction describes how a value or the overall risk moved between reports.
type Direction string

const (
	// Improved means the current report is stronger.
	Improved Direction = "improved"
	// Worsened means the current report is weaker.
	Worsened Direction = "worsened"
	// Unchanged means no difference in risk.
	Unchanged Direction = "unchanged"
	// Changed means the value changed but strength cannot be compared,
	// e.g. a value appeared or disappeared.
	Changed Direction = "changed"
)

// Result holds the result of comparing two reports.
type Result struct {
	// Previous describes the older report.
	Previous Snapshot `json:"previous"`

	// Current describes the newer report.
	Current Snapshot `json:"current"`

	// AddedEndpoints are in the current report only, in current order.
	AddedEndpoints []model.EndpointKey `json:"added_endpoints,omitempty"`

	// RemovedEndpoints are in the previous report only, in previous order.
	RemovedEndpoints []model.EndpointKey `json:"removed_endpoints,omitempty"`

	// ProtocolChanges lists minimum protocol changes.
	ProtocolChanges []ProtocolChange `json:"protocol_changes,omitempty"`

	// CipherChanges lists minimum cipher strength changes.
	CipherChanges []CipherChange `json:"cipher_changes,omitempty"`

	// ExpiryChanges lists certificate expiry changes.
	ExpiryChanges []ExpiryChange `json:"expiry_changes,omitempty"`

	// NewFindings are findings present only in the current report.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings are findings present only in the previous report.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedFindings is the number of findings present in both reports.
	UnchangedFindings int `json:"unchanged_findings"`

	// RiskChange describes the overall change in risk level.
	RiskChange RiskChange `json:"risk_change"`
}

// Snapshot contains metadata about one side of a comparison.
type Snapshot struct {
	// ImportID is the history database ID, or zero if not stored.
	ImportID int64 `json:"import_id,omitempty"`

	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
	Endpoints   int       `json:"endpoints"`

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`
}

// TotalFindings returns the number of findings at every level.
func (s Snapshot) TotalFindings() int {
	return s.CriticalCount + s.HighCount + s.MediumCount + s.LowCount + s.InfoCount
}

// ProtocolChange is a change of an endpoint's minimum protocol.
// A nil side means no protocol was reported enabled.
type ProtocolChange struct {
	Endpoint  model.EndpointKey      `json:"endpoint"`
	Previous  *model.ProtocolVersion `json:"previous"`
	Current   *model.ProtocolVersion `json:"current"`
	Direction Direction              `json:"direction"`
}

// CipherChange is a change of an endpoint's minimum cipher strength.
// A nil side means no cipher was accepted.
type CipherChange struct {
	Endpoint  model.EndpointKey     `json:"endpoint"`
	Previous  *model.CipherStrength `json:"previous"`
	Current   *model.CipherStrength `json:"current"`
	Direction Direction             `json:"direction"`
}

// ExpiryChange is a change of an endpoint's certificate expiry date or
// expired flag.
type ExpiryChange struct {
	Endpoint        model.EndpointKey `json:"endpoint"`
	Previous        *model.Date       `json:"previous"`
	Current         *model.Date       `json:"current"`
	PreviousExpired model.TriState    `json:"previous_expired"`
	CurrentExpired  model.TriState    `json:"current_expired"`
	Direction       Direction         `json:"direction"`
}

// RiskChange describes the change in risk between reports.
type RiskChange struct {
	// Direction is improved, worsened or unchanged.
	Direction Direction `json:"direction"`

	CriticalDelta int `json:"critical_delta"`
	HighDelta     int `json:"high_delta"`
	MediumDelta   int `json:"medium_delta"`
	LowDelta      int `json:"low_delta"`
	InfoDelta     int `json:"info_delta"`
}

// Options configures Compare.
type Options struct {
	// PreviousID and CurrentID are copied into the snapshots.
	PreviousID int64
	CurrentID  int64

	// Policy is used to derive findings. Nil means model.DefaultPolicy.
	Policy model.PolicyLookup
}

// Compare diffs previous against current.
func Compare(previous, current *model.Report, opts Options) *Result {
	prevSummary := model.NewSummary(previous, opts.Policy)
	curSummary := model.NewSummary(current, opts.Policy)

	result := &Result{
		Previous: newSnapshot(opts.PreviousID, previous, prevSummary),
		Current:  newSnapshot(opts.CurrentID, current, curSummary),
	}

	prevByKey := indexRecords(previous)
	curByKey := indexRecords(current)

	seen := make(map[model.EndpointKey]bool, len(current.Records))
	for _, cur := range current.Records {
		key := cur.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		prev, ok := prevByKey[key]
		if !ok {
			result.AddedEndpoints = append(result.AddedEndpoints, key)
			continue
		}
		result.diffRecord(prev, cur)
	}

	seen = make(map[model.EndpointKey]bool, len(previous.Records))
	for _, prev := range previous.Records {
		key := prev.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := curByKey[key]; !ok {
			result.RemovedEndpoints = append(result.RemovedEndpoints, key)
		}
	}

	result.diffFindings(prevSummary, curSummary)
	result.RiskChange = calculateRiskChange(result.Previous, result.Current)

	return result
}

// HasChanges reports whether anything differs between the reports.
func (r *Result) HasChanges() bool {
	return len(r.AddedEndpoints) > 0 || len(r.RemovedEndpoints) > 0 ||
		len(r.ProtocolChanges) > 0 || len(r.CipherChanges) > 0 ||
		len(r.ExpiryChanges) > 0 || len(r.NewFindings) > 0 ||
		len(r.ResolvedFindings) > 0
}

// Regressions returns the number of protocol and cipher changes that
// weakened an endpoint.
func (r *Result) Regressions() int {
	n := 0
	for _, c := range r.ProtocolChanges {
		if c.Direction == Worsened {
			n++
		}
	}
	for _, c := range r.CipherChanges {
		if c.Direction == Worsened {
			n++
		}
	}
	return n
}

// indexRecords maps endpoint keys to the first record with that key.
func indexRecords(report *model.Report) map[model.EndpointKey]model.ScanRecord {
	m := make(map[model.EndpointKey]model.ScanRecord, len(report.Records))
	for _, rec := range report.Records {
		if _, ok := m[rec.Key()]; !ok {
			m[rec.Key()] = rec
		}
	}
	return m
}

func newSnapshot(id int64, report *model.Report, summary *model.Summary) Snapshot {
	return Snapshot{
		ImportID:      id,
		Source:        report.Source,
		GeneratedAt:   report.GeneratedAt,
		Endpoints:     len(report.Records),
		CriticalCount: summary.CriticalCount,
		HighCount:     summary.HighCount,
		MediumCount:   summary.MediumCount,
		LowCount:      summary.LowCount,
		InfoCount:     summary.InfoCount,
	}
}

// diffRecord records the changes of one endpoint present in both reports.
func (r *Result) diffRecord(prev, cur model.ScanRecord) {
	key := cur.Key()

	if d, ok := protocolDirection(prev.MinimumTLSVersion, cur.MinimumTLSVersion); ok {
		r.ProtocolChanges = append(r.ProtocolChanges, ProtocolChange{
			Endpoint:  key,
			Previous:  prev.MinimumTLSVersion,
			Current:   cur.MinimumTLSVersion,
			Direction: d,
		})
	}

	if d, ok := cipherDirection(prev.MinimumCipherStrength, cur.MinimumCipherStrength); ok {
		r.CipherChanges = append(r.CipherChanges, CipherChange{
			Endpoint:  key,
			Previous:  prev.MinimumCipherStrength,
			Current:   cur.MinimumCipherStrength,
			Direction: d,
		})
	}

	if d, ok := expiryDirection(prev, cur); ok {
		r.ExpiryChanges = append(r.ExpiryChanges, ExpiryChange{
			Endpoint:        key,
			Previous:        prev.NotAfter,
			Current:         cur.NotAfter,
			PreviousExpired: prev.CertificateExpired,
			CurrentExpired:  cur.CertificateExpired,
			Direction:       d,
		})
	}
}

// protocolDirection reports whether the minimum protocol changed and how.
// A lower rung on the ladder is a regression.
func protocolDirection(prev, cur *model.ProtocolVersion) (Direction, bool) {
	switch {
	case prev == nil && cur == nil:
		return "", false
	case prev == nil || cur == nil:
		return Changed, true
	case *cur == *prev:
		return "", false
	case cur.WeakerThan(*prev):
		return Worsened, true
	default:
		return Improved, true
	}
}

// cipherDirection reports whether the minimum cipher changed and how.
// Fewer bits is a regression; a renamed cipher of equal strength is Changed.
func cipherDirection(prev, cur *model.CipherStrength) (Direction, bool) {
	switch {
	case prev == nil && cur == nil:
		return "", false
	case prev == nil || cur == nil:
		return Changed, true
	case cur.Bits < prev.Bits:
		return Worsened, true
	case cur.Bits > prev.Bits:
		return Improved, true
	case cur.Name != prev.Name:
		return Changed, true
	default:
		return "", false
	}
}

// expiryDirection reports whether the certificate expiry changed.
// A certificate becoming expired is a regression, a renewal that pushes
// expiry later or clears the expired flag is an improvement.
func expiryDirection(prev, cur model.ScanRecord) (Direction, bool) {
	sameDate := sameDay(prev.NotAfter, cur.NotAfter)
	if sameDate && prev.CertificateExpired == cur.CertificateExpired {
		return "", false
	}

	switch {
	case cur.CertificateExpired.IsTrue() && !prev.CertificateExpired.IsTrue():
		return Worsened, true
	case prev.CertificateExpired.IsTrue() && !cur.CertificateExpired.IsTrue():
		return Improved, true
	case prev.NotAfter != nil && cur.NotAfter != nil && cur.NotAfter.After(prev.NotAfter.Time):
		return Improved, true
	case prev.NotAfter != nil && cur.NotAfter != nil && cur.NotAfter.Before(prev.NotAfter.Time):
		return Worsened, true
	default:
		return Changed, true
	}
}

// sameDay compares dates at day precision, treating two nils as equal.
func sameDay(a, b *model.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

// diffFindings fills the new, resolved and unchanged findings.
// New findings keep current order, resolved findings keep previous order.
func (r *Result) diffFindings(prev, cur *model.Summary) {
	prevKeys := make(map[string]bool, len(prev.Findings))
	for _, f := range prev.Findings {
		prevKeys[findingKey(f)] = true
	}
	curKeys := make(map[string]bool, len(cur.Findings))
	for _, f := range cur.Findings {
		curKeys[findingKey(f)] = true
	}

	for _, f := range cur.Findings {
		if !prevKeys[findingKey(f)] {
			r.NewFindings = append(r.NewFindings, f)
		}
	}
	for _, f := range prev.Findings {
		if curKeys[findingKey(f)] {
			r.UnchangedFindings++
		} else {
			r.ResolvedFindings = append(r.ResolvedFindings, f)
		}
	}
}

// findingKey generates a unique key for a finding for comparison purposes.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Value + "|" + f.Endpoint.Host + "|" + f.Endpoint.SNIName + "|" + strconv.Itoa(f.Endpoint.Port)
}

// calculateRiskChange calculates the change in risk between two reports.
// Critical and high findings carry more weight.
func calculateRiskChange(previous, current Snapshot) RiskChange {
	change := RiskChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	previousScore := riskScore(previous)
	currentScore := riskScore(current)

	switch {
	case currentScore < previousScore:
		change.Direction = Improved
	case currentScore > previousScore:
		change.Direction = Worsened
	default:
		change.Direction = Unchanged
	}
	return change
}

func riskScore(s Snapshot) int {
	return s.CriticalCount*100 + s.HighCount*50 + s.MediumCount*10 + s.LowCount*5 + s.InfoCount
}

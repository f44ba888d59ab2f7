package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/sslreport/internal/model"
	"github.com/nao1215/sslreport/internal/sslscan"
)

// CertificateDateLayout is the layout sslscan uses for not-valid-before and
// not-valid-after, e.g. "Jan 13 00:00:00 2023 GMT". Runs of spaces are
// collapsed before parsing, so "Jan  1" matches as well.
const CertificateDateLayout = "Jan 2 15:04:05 2006 MST"

// Cipher statuses that count as supported by the endpoint.
const (
	cipherPreferred = "preferred"
	cipherAccepted  = "accepted"
)

// Certificate element names, used in DateError.Field.
const (
	fieldNotBefore = "not-valid-before"
	fieldNotAfter  = "not-valid-after"
)

// WalkedEntry is one scan entry read into its flat record and the
// collections the reducers work on.
//
// Ciphers holds only preferred and accepted ciphers, in document order.
// Their Order is the 0-based position in this list; it restarts at zero for
// every entry and ignores any ordering the source may carry.
type WalkedEntry struct {
	Index     int
	Record    model.ScanRecord
	Protocols model.ProtocolSupport
	Ciphers   []model.CipherRecord

	// Warnings are recoverable problems found inside the entry.
	Warnings []*EntryError
}

// Walk reads every entry of doc in document order.
// Malformed entries are left out of the result and reported as warnings,
// followed by the in-entry warnings of the kept entries.
func Walk(doc *sslscan.Document) ([]WalkedEntry, []*EntryError) {
	entries := make([]WalkedEntry, 0, len(doc.Entries))
	var warnings []*EntryError

	for i := range doc.Entries {
		walked, err := WalkEntry(i, &doc.Entries[i])
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		warnings = append(warnings, walked.Warnings...)
		entries = append(entries, *walked)
	}
	return entries, warnings
}

// WalkEntry reads a single scan entry. It returns an *EntryError wrapping
// ErrMalformedEntry when the identity attributes are unusable.
func WalkEntry(index int, entry *sslscan.Entry) (*WalkedEntry, *EntryError) {
	host := deref(entry.Host)

	malformed := func(format string, args ...any) *EntryError {
		return &EntryError{
			Index: index,
			Host:  host,
			Err:   fmt.Errorf("%w: %s", ErrMalformedEntry, fmt.Sprintf(format, args...)),
		}
	}

	switch {
	case entry.Host == nil:
		return nil, malformed("missing host attribute")
	case entry.SNIName == nil:
		return nil, malformed("missing sniname attribute")
	case entry.Port == nil:
		return nil, malformed("missing port attribute")
	}

	port, err := strconv.Atoi(strings.TrimSpace(*entry.Port))
	if err != nil || port < 0 || port > math.MaxUint16 {
		return nil, malformed("invalid port %q", *entry.Port)
	}

	w := &WalkedEntry{
		Index: index,
		Record: model.ScanRecord{
			Host:    host,
			SNIName: *entry.SNIName,
			Port:    port,
		},
	}

	for _, p := range entry.Protocols {
		v, ok := model.ParseProtocolKey(model.ProtocolKey(p.Type, p.Version))
		if !ok {
			continue
		}
		w.Protocols.Set(v, model.ParseTriState(p.Enabled))
	}

	w.Record.HeartbleedVulnerable = heartbleed(entry.Heartbleeds)
	w.walkCiphers(entry.Ciphers)

	if leaf := entry.Leaf(); leaf != nil {
		w.walkCertificate(leaf)
	}
	return w, nil
}

// heartbleed folds the per-protocol heartbleed checks into one flag.
// Any vulnerable protocol makes the endpoint vulnerable; otherwise one
// explicit negative result is enough for "no".
func heartbleed(checks []sslscan.Heartbleed) model.TriState {
	result := model.TriStateUnknown
	for _, hb := range checks {
		switch model.ParseTriState(deref(hb.Vulnerable)) {
		case model.TriStateTrue:
			return model.TriStateTrue
		case model.TriStateFalse:
			result = model.TriStateFalse
		}
	}
	return result
}

func (w *WalkedEntry) walkCiphers(ciphers []sslscan.Cipher) {
	order := 0
	for _, c := range ciphers {
		status := strings.ToLower(strings.TrimSpace(c.Status))
		if status != cipherPreferred && status != cipherAccepted {
			continue
		}

		bits, err := strconv.Atoi(strings.TrimSpace(c.Bits))
		if err != nil {
			w.warn(fmt.Errorf("%w: %q for %s", ErrCipherBits, c.Bits, c.Cipher))
			continue
		}

		w.Ciphers = append(w.Ciphers, model.CipherRecord{
			SSLVersion: c.SSLVersion,
			Bits:       bits,
			Name:       c.Cipher,
			Strength:   c.Strength,
			Order:      order,
		})
		order++
	}
}

func (w *WalkedEntry) walkCertificate(cert *sslscan.Certificate) {
	rec := &w.Record

	if cert.SignatureAlgorithm != nil {
		rec.SignatureAlgorithm = model.StringPtr(strings.TrimSpace(*cert.SignatureAlgorithm))
	}
	if cert.PublicKey != nil && cert.PublicKey.Bits != nil {
		if bits, err := strconv.Atoi(strings.TrimSpace(*cert.PublicKey.Bits)); err == nil {
			rec.PublicKeyBits = model.IntPtr(bits)
		}
	}
	if cert.SelfSigned != nil {
		rec.SelfSigned = model.ParseTriState(*cert.SelfSigned)
	}
	if cert.Expired != nil {
		rec.CertificateExpired = model.ParseTriState(*cert.Expired)
	}

	rec.NotBefore = w.certificateDate(fieldNotBefore, cert.NotValidBefore)
	rec.NotAfter = w.certificateDate(fieldNotAfter, cert.NotValidAfter)

	// Both bounds were read from this certificate just above.
	if rec.NotBefore != nil && rec.NotAfter != nil {
		rec.ValidityDays = model.IntPtr(ValidityDays(rec.NotBefore.Time, rec.NotAfter.Time))
	}
}

// certificateDate parses an optional date element. A parse failure is
// recorded as a warning and yields nil.
func (w *WalkedEntry) certificateDate(field string, text *string) *model.Date {
	if text == nil {
		return nil
	}
	t, err := ParseCertificateDate(*text)
	if err != nil {
		w.warn(&DateError{Field: field, Value: *text, Err: err})
		return nil
	}
	return model.NewDate(t)
}

func (w *WalkedEntry) warn(err error) {
	w.Warnings = append(w.Warnings, &EntryError{
		Index: w.Index,
		Host:  w.Record.Host,
		Err:   err,
	})
}

// ParseCertificateDate parses an sslscan certificate timestamp.
func ParseCertificateDate(s string) (time.Time, error) {
	return time.Parse(CertificateDateLayout, strings.Join(strings.Fields(s), " "))
}

// ValidityDays returns the number of whole days from notBefore to notAfter,
// rounded down.
func ValidityDays(notBefore, notAfter time.Time) int {
	return int(math.Floor(notAfter.Sub(notBefore).Hours() / 24))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package normalize

import "github.com/nao1215/sslreport/internal/model"

// MinimumProtocol returns the weakest protocol that support reports as
// enabled. Protocols that are disabled or not reported are skipped.
// ok is false when nothing is enabled, which is different from "only TLS 1.3".
func MinimumProtocol(support model.ProtocolSupport) (model.ProtocolVersion, bool) {
	for _, v := range model.Ladder() {
		if support.Get(v).IsTrue() {
			return v, true
		}
	}
	return 0, false
}

package normalize

import "github.com/nao1215/sslreport/internal/model"

// MinimumCipher returns the weakest cipher of an endpoint.
//
// The first pass finds the lowest bit strength. The second pass picks, among
// the ciphers with that strength, the one with the highest presentation
// order; if orders tie, the last one in iteration order wins.
// ok is false for an empty list.
func MinimumCipher(ciphers []model.CipherRecord) (model.CipherRecord, bool) {
	if len(ciphers) == 0 {
		return model.CipherRecord{}, false
	}

	minBits := ciphers[0].Bits
	for _, c := range ciphers[1:] {
		if c.Bits < minBits {
			minBits = c.Bits
		}
	}

	var (
		weakest model.CipherRecord
		found   bool
	)
	for _, c := range ciphers {
		if c.Bits != minBits {
			continue
		}
		if !found || c.Order >= weakest.Order {
			weakest = c
			found = true
		}
	}
	return weakest, true
}

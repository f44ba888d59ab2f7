package model

import "fmt"

// CipherRecord is one accepted or preferred cipher suite reported for an
// endpoint. Order is the 0-based position of the cipher among the accepted
// ciphers of its own endpoint, in document order.
type CipherRecord struct {
	// SSLVersion is sslscan's protocol label for the cipher (e.g. "TLSv1.2").
	SSLVersion string `json:"sslversion"`

	// Bits is the symmetric key strength in bits.
	Bits int `json:"bits"`

	// Name is the OpenSSL cipher name.
	Name string `json:"cipher"`

	// Strength is sslscan's strength label (e.g. "strong", "medium", "weak").
	Strength string `json:"strength,omitempty"`

	// Order is the presentation order within the endpoint.
	Order int `json:"order"`
}

// CipherStrength is the headline weakness of an endpoint's cipher list.
type CipherStrength struct {
	// Bits is the symmetric key strength in bits.
	Bits int `json:"bits"`

	// Name is the cipher that carries the weakness.
	Name string `json:"cipher"`

	// Strength is sslscan's strength label for that cipher.
	Strength string `json:"strength,omitempty"`
}

// Summary returns the reportable summary of the cipher.
func (c CipherRecord) Summary() CipherStrength {
	return CipherStrength{Bits: c.Bits, Name: c.Name, Strength: c.Strength}
}

// String renders the strength as "<bits> bit <cipher>".
func (c CipherStrength) String() string {
	return fmt.Sprintf("%d bit %s", c.Bits, c.Name)
}

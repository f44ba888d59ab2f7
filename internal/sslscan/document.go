package sslscan

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/html/charset"
)

// ErrInvalidDocument is returned when the input is not well-formed XML.
var ErrInvalidDocument = errors.New("invalid sslscan document")

// Document is the root element of an sslscan XML report.
type Document struct {
	XMLName xml.Name

	// Title is the root's title attribute ("SSLScan Results").
	Title string `xml:"title,attr"`

	// Version is the sslscan version that wrote the report.
	Version string `xml:"version,attr"`

	// Errors holds <error> elements written at document level,
	// e.g. when a target could not be resolved.
	Errors []string `xml:"error"`

	// Entries holds every other child element in document order.
	Entries []Entry `xml:",any"`
}

// Entry is one scan of a (host, SNI name, port) triple.
// The identity attributes are pointers so a missing attribute can be told
// apart from an empty one.
type Entry struct {
	XMLName xml.Name

	Host    *string `xml:"host,attr"`
	SNIName *string `xml:"sniname,attr"`
	Port    *string `xml:"port,attr"`

	Protocols    []Protocol     `xml:"protocol"`
	Heartbleeds  []Heartbleed   `xml:"heartbleed"`
	Ciphers      []Cipher       `xml:"cipher"`
	Certificates []Certificates `xml:"certificates"`
}

// Protocol announces whether one protocol version is enabled.
type Protocol struct {
	Type    string `xml:"type,attr"`
	Version string `xml:"version,attr"`
	Enabled string `xml:"enabled,attr"`
}

// Heartbleed is the heartbleed check result for one protocol version.
type Heartbleed struct {
	SSLVersion string  `xml:"sslversion,attr"`
	Vulnerable *string `xml:"vulnerable,attr"`
}

// Cipher is one cipher suite probe result.
type Cipher struct {
	Status     string `xml:"status,attr"`
	SSLVersion string `xml:"sslversion,attr"`
	Bits       string `xml:"bits,attr"`
	Cipher     string `xml:"cipher,attr"`
	ID         string `xml:"id,attr"`
	Strength   string `xml:"strength,attr"`
	Curve      string `xml:"curve,attr"`
	ECDHEBits  string `xml:"ecdhebits,attr"`
}

// Certificates wraps the certificate list of an entry.
// Children are kept in order whatever their tag; the first one is the leaf.
type Certificates struct {
	Items []Certificate `xml:",any"`
}

// Certificate is a single certificate summary.
// Text elements are nil when the element is absent.
type Certificate struct {
	XMLName xml.Name

	Type string `xml:"type,attr"`

	SignatureAlgorithm *string    `xml:"signature-algorithm"`
	PublicKey          *PublicKey `xml:"pk"`
	Subject            *string    `xml:"subject"`
	Issuer             *string    `xml:"issuer"`
	SelfSigned         *string    `xml:"self-signed"`
	NotValidBefore     *string    `xml:"not-valid-before"`
	NotValidAfter      *string    `xml:"not-valid-after"`
	Expired            *string    `xml:"expired"`
}

// PublicKey describes the certificate's public key.
type PublicKey struct {
	Type  string  `xml:"type,attr"`
	Bits  *string `xml:"bits,attr"`
	Error string  `xml:"error,attr"`
}

// Leaf returns the first certificate of the entry, or nil when the entry has
// no certificate sub-tree or the sub-tree is empty.
func (e *Entry) Leaf() *Certificate {
	if len(e.Certificates) == 0 || len(e.Certificates[0].Items) == 0 {
		return nil
	}
	return &e.Certificates[0].Items[0]
}

// Parse decodes an sslscan XML report from r.
// Non-UTF-8 documents are transcoded according to their XML declaration.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// ParseBytes decodes an sslscan XML report held in memory.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// Digest returns the hex SHA3-256 digest of a raw report.
// It identifies a document independently of its file name.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ParseFile reads and decodes the report at path.
// It also returns the digest of the raw file content.
func ParseFile(path string) (*Document, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := ParseBytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return doc, Digest(data), nil
}

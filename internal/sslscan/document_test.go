package sslscan

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<document title="SSLScan Results" version="2.0.15-static" web="http://github.com/rbsec/sslscan">
 <ssltest host="example.com" sniname="example.com" port="443">
  <protocol type="ssl" version="2" enabled="0" />
  <protocol type="tls" version="1.2" enabled="1" />
  <heartbleed sslversion="TLSv1.2" vulnerable="0" />
  <cipher status="preferred" sslversion="TLSv1.2" bits="256" cipher="ECDHE-RSA-AES256-GCM-SHA384" id="0xC030" strength="strong" curve="25519" ecdhebits="253" />
  <cipher status="accepted" sslversion="TLSv1.2" bits="128" cipher="AES128-SHA" id="0x002F" strength="medium" />
  <certificates>
   <certificate type="short">
    <signature-algorithm>sha256WithRSAEncryption</signature-algorithm>
    <pk error="false" type="RSA" bits="2048" />
    <subject><![CDATA[example.com]]></subject>
    <issuer><![CDATA[Example CA]]></issuer>
    <self-signed>false</self-signed>
    <not-valid-before>Jan 13 00:00:00 2023 GMT</not-valid-before>
    <not-valid-after>Feb 13 23:59:59 2024 GMT</not-valid-after>
    <expired>true</expired>
   </certificate>
  </certificates>
 </ssltest>
 <error><![CDATA[Could not resolve hostname missing.example.]]></error>
 <scan host="10.0.0.1" port="8443" />
</document>
`

func TestParse(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Title != "SSLScan Results" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Version != "2.0.15-static" {
		t.Errorf("Version = %q", doc.Version)
	}
	if len(doc.Errors) != 1 || !strings.Contains(doc.Errors[0], "missing.example") {
		t.Errorf("Errors = %v", doc.Errors)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(doc.Entries))
	}

	first := doc.Entries[0]
	if first.XMLName.Local != "ssltest" {
		t.Errorf("first tag = %q", first.XMLName.Local)
	}
	if first.Host == nil || *first.Host != "example.com" {
		t.Errorf("Host = %v", first.Host)
	}
	if first.Port == nil || *first.Port != "443" {
		t.Errorf("Port = %v", first.Port)
	}
	if len(first.Protocols) != 2 || first.Protocols[1].Version != "1.2" {
		t.Errorf("Protocols = %+v", first.Protocols)
	}
	if len(first.Ciphers) != 2 || first.Ciphers[1].Cipher != "AES128-SHA" {
		t.Errorf("Ciphers = %+v", first.Ciphers)
	}
	if len(first.Heartbleeds) != 1 || first.Heartbleeds[0].Vulnerable == nil {
		t.Errorf("Heartbleeds = %+v", first.Heartbleeds)
	}

	leaf := first.Leaf()
	if leaf == nil {
		t.Fatal("Leaf() = nil")
	}
	if leaf.SignatureAlgorithm == nil || *leaf.SignatureAlgorithm != "sha256WithRSAEncryption" {
		t.Errorf("SignatureAlgorithm = %v", leaf.SignatureAlgorithm)
	}
	if leaf.PublicKey == nil || leaf.PublicKey.Bits == nil || *leaf.PublicKey.Bits != "2048" {
		t.Errorf("PublicKey = %+v", leaf.PublicKey)
	}
	if leaf.NotValidBefore == nil || *leaf.NotValidBefore != "Jan 13 00:00:00 2023 GMT" {
		t.Errorf("NotValidBefore = %v", leaf.NotValidBefore)
	}
	if leaf.Expired == nil || *leaf.Expired != "true" {
		t.Errorf("Expired = %v", leaf.Expired)
	}

	second := doc.Entries[1]
	if second.XMLName.Local != "scan" {
		t.Errorf("second tag = %q", second.XMLName.Local)
	}
	if second.SNIName != nil {
		t.Errorf("SNIName = %v, want nil", second.SNIName)
	}
	if second.Leaf() != nil {
		t.Error("Leaf() of entry without certificates should be nil")
	}
}

func TestParse_EmptyCertificates(t *testing.T) {
	t.Parallel()

	doc, err := ParseBytes([]byte(`<document><ssltest host="a" sniname="a" port="1"><certificates></certificates></ssltest></document>`))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if got := doc.Entries[0].Leaf(); got != nil {
		t.Errorf("Leaf() = %+v, want nil", got)
	}
}

func TestParse_Latin1(t *testing.T) {
	t.Parallel()

	// "caf\xe9" is "café" in ISO-8859-1.
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<document><ssltest host=\"caf\xe9.example\" sniname=\"x\" port=\"443\"/></document>"

	doc, err := ParseBytes([]byte(input))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if got := *doc.Entries[0].Host; got != "café.example" {
		t.Errorf("Host = %q, want %q", got, "café.example")
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "unclosed root", input: "<document><ssltest host=\"a\">"},
		{name: "not xml", input: "host,port\na,443\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("Parse() error = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scan.xml")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, digest, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(doc.Entries) != 2 {
		t.Errorf("len(Entries) = %d, want 2", len(doc.Entries))
	}
	if digest != Digest([]byte(sampleDocument)) {
		t.Errorf("digest = %s, want digest of file content", digest)
	}

	if _, _, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("ParseFile() on missing file should fail")
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()

	// SHA3-256 of the empty string.
	const empty = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := Digest(nil); got != empty {
		t.Errorf("Digest(nil) = %s, want %s", got, empty)
	}

	a := Digest([]byte("<document/>"))
	b := Digest([]byte("<document />"))
	if a == b {
		t.Error("different inputs should have different digests")
	}
	if len(a) != 64 {
		t.Errorf("len(Digest) = %d, want 64", len(a))
	}
}

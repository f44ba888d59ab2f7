package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<document title="SSLScan Results" version="2.0.15">
 <ssltest host="www.example.com" sniname="www.example.com" port="443">
  <protocol type="tls" version="1.0" enabled="1" />
  <protocol type="tls" version="1.2" enabled="1" />
  <heartbleed sslversion="TLSv1.2" vulnerable="0" />
  <cipher status="preferred" sslversion="TLSv1.2" bits="128" cipher="ECDHE-RSA-AES128-GCM-SHA256" strength="strong" />
  <cipher status="accepted" sslversion="TLSv1.0" bits="112" cipher="DES-CBC3-SHA" strength="medium" />
 </ssltest>
 <ssltest host="staging.example.com" sniname="staging.example.com" port="8443">
  <protocol type="tls" version="1.2" enabled="1" />
 </ssltest>
 <ssltest host="broken.example.com" />
</document>
`

// hardenedXML is sampleXML after TLS 1.0 and 3DES were disabled and the
// staging endpoint was retired.
const hardenedXML = `<?xml version="1.0" encoding="UTF-8"?>
<document title="SSLScan Results" version="2.0.15">
 <ssltest host="www.example.com" sniname="www.example.com" port="443">
  <protocol type="tls" version="1.0" enabled="0" />
  <protocol type="tls" version="1.2" enabled="1" />
  <heartbleed sslversion="TLSv1.2" vulnerable="0" />
  <cipher status="preferred" sslversion="TLSv1.2" bits="128" cipher="ECDHE-RSA-AES128-GCM-SHA256" strength="strong" />
 </ssltest>
</document>
`

// writeFile writes content to name in dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// emptyConfig writes a config file without overrides so that tests do not
// pick up a .sslreport from the working or home directory.
func emptyConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "config.yaml", "defaults: {}\n")
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

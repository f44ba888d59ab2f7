// Package main provides the entry point for the sslreport CLI.
//
// sslreport converts sslscan XML reports into flat, one-row-per-endpoint
// CSV, JSON, Markdown or text reports, keeps a local history of every
// conversion, and compares stored conversions.
//
// Usage:
//
//	sslreport convert scan.xml
//	sslscan --xml=- example.com | sslreport convert --format text -
//	sslreport history
//	sslreport compare
//
// See --help for all available options.
package main

// main is the entry point for sslreport.
func main() {
	Execute()
}

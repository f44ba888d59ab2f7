// Package model defines the data structures shared by the sslreport packages.
//
// This package contains the following main types:
//   - ScanRecord: One flat, normalized row per scanned endpoint
//   - ProtocolSupport: Per-endpoint protocol enablement keyed by the ladder
//   - CipherRecord: An accepted or preferred cipher in presentation order
//   - Report: The ordered record set produced from one sslscan document
//   - Summary: Policy findings derived from a Report, grouped by severity
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The normalizer, the report writers and the history database
// all need these types, so centralizing them prevents import cycles.
//
// Nullable fields are pointers and tri-state flags use TriState so that
// "not reported" never collapses into false, zero or an empty string.
package model

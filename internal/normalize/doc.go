// Package normalize flattens a decoded sslscan document into ScanRecords.
//
// The work is split the same way a reader would describe it:
//
//   - MinimumProtocol walks the protocol ladder (SSLv2 < SSLv3 < TLS 1.0 <
//     TLS 1.1 < TLS 1.2 < TLS 1.3) and returns the weakest enabled protocol.
//   - MinimumCipher reduces an endpoint's accepted ciphers to the weakest one.
//   - Walk reads every scan entry into a record plus its protocol support and
//     cipher list.
//   - Assembler drives the three over a whole document.
//
// Problems that only affect one entry (missing identity attributes, dates
// that do not parse, cipher bits that are not numbers) never abort the run.
// They are returned as *EntryError warnings. The only fatal condition for a
// decoded document is ErrEmptyDocument.
//
// Design decision: entries carry no state between each other, so the
// Assembler may process them in parallel. Results are written to an
// index-addressed slice and the output order always equals document order.
package normalize

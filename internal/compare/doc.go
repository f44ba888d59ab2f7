// Package compare diffs two normalized sslscan reports.
//
// Endpoints are matched by host, SNI name and port. For endpoints present
// in both reports, Compare records changes to the minimum protocol, the
// minimum cipher strength and the certificate expiry. Policy findings are
// diffed as well, so the result also lists new and resolved findings and an
// overall risk direction.
//
// Results can be rendered as text, Markdown or JSON.
package compare

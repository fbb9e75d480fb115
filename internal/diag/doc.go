// Package diag defines the diagnostics produced while folding constants and
// deciding host support for source kinds.
//
// A Diagnostic carries a Severity, a stable numeric Code, a short Message and
// the Subject it is about: the folded expression or the kind in question,
// rendered as text. Producers emit through a Reporter so that storage stays
// decoupled; BagReporter collects into a Bag, which bounds the number of
// entries and supports sorting and deduplication.
//
// Code ranges:
//
//   - 4000-4999 FLD: floating-point and integer conditions raised by folding.
//   - 5000-5999 KND: source kinds without a host representation.
//   - 6000-6999 PRF: host profile problems.
package diag

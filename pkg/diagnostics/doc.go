// Package diagnostics holds the finding type reported by every validator,
// the closed set of diagnostic kinds, and the helpers that build stable
// identifiers and corrective suggestions.
package diagnostics

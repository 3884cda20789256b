// Package sqlnorm decides whether two T-SQL module definitions mean the
// same thing despite differences in formatting, case, bracket quoting,
// CREATE vs CREATE OR ALTER, and default-schema prefixes.
//
// SQL Server scripts the same object differently depending on tooling and
// settings, so byte comparison of a catalog-extracted definition against a
// stored file produces endless false drift. The normalizer collapses both
// sides to a canonical token form and compares those instead.
//
// # Canonical form
//
// Normalize applies a fixed, purely textual pipeline:
//
//  1. Strip -- line comments and /* */ block comment runs (block comments
//     nest; a -- inside an open block comment is not a new comment).
//  2. Lowercase.
//  3. Collapse whitespace runs to single spaces and trim.
//  4. Delete statement terminators (;).
//  5. Unquote bracketed identifiers: [ident] becomes ident.
//  6. Split on GO batch separators and keep the first batch containing
//     "create"; if none does, the canonical form is the empty string.
//  7. Rewrite "create or alter" to "create".
//  8. Strip the configured default schema from module headers and from
//     remaining qualified references.
//
// There is no SQL parser here. Each rule absorbs a concrete difference
// the scripter is known to emit; anything beyond that is a real schema
// change and must surface as one.
//
// # Example usage
//
//	norm := sqlnorm.New("dbo")
//
//	a := "CREATE OR ALTER VIEW [dbo].[v] AS SELECT 1 -- comment\nGO"
//	b := "create view v as select 1\nGO"
//	if norm.Equivalent(&a, &b) {
//		// same object, no drift
//	}
//
// Normalize results are cached keyed by the raw input, so repeated
// comparisons during a fleet sync do not re-run the pipeline. A Normalizer
// is safe for concurrent use.
package sqlnorm

// Package ignore filters repository paths by glob patterns so that
// individual objects can be kept out of synchronization entirely.
//
// Patterns live one per line in a plain text file, conventionally named
// .syncignore at the repository root. Blank lines and lines starting with
// # are skipped. Globs use the usual *, ** and ? semantics and match
// whole repository-relative paths with forward slashes:
//
//	# scratch objects never tracked
//	base/PROCEDURE/dbo/tmp_*.sql
//	**/scratch/**
//	diff/*/reporting/**
//
// # Example usage
//
//	m, err := ignore.LoadFile(".syncignore")
//	if err != nil {
//		return err
//	}
//
//	if m.ShouldProcess("base/TABLE/dbo/users.sql") {
//		// path is not ignored
//	}
//
// A path is processed iff no pattern matches it. A missing ignore file
// behaves as an empty one.
package ignore

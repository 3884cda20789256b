// Package compare provides generic comparison utilities for structural equality testing.
//
// This package offers a set of helper functions that eliminate boilerplate code when
// implementing Equal() methods on structs. It handles common patterns like nil checking
// and slice comparisons.
//
// # Usage Examples
//
// Replace repetitive nil checks:
//
//	// Before (6 lines):
//	if x == nil && other == nil {
//	    return true
//	}
//	if x == nil || other == nil {
//	    return false
//	}
//
//	// After (2 lines):
//	if eq, done := compare.NilCheck(x, other); !done {
//	    return eq
//	}
//
// Compare slices with element equality:
//
//	return compare.Slices(pk.Columns, other.Columns, func(x, y string) bool {
//	    return x == y
//	})
package compare

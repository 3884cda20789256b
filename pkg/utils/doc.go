// Package utils provides common utility functions used throughout the
// schemakeeper codebase.
//
// This package contains shared utilities that are used by multiple packages
// to avoid code duplication and ensure consistent behavior across the
// application.
//
// # Identifier Utilities (identifier.go)
//
// The identifier utilities provide consistent handling of SQL Server
// identifiers, including proper bracket quoting for names that may contain
// special characters or reserved keywords.
//
//	// Simple identifier
//	name := utils.BracketIdentifier("users")
//	// Result: [users]
//
//	// Qualified identifier
//	qualified := utils.BracketIdentifier("dbo.users")
//	// Result: [dbo].[users]
//
//	// Already bracketed (not double-bracketed)
//	existing := utils.BracketIdentifier("[users]")
//	// Result: [users]
//
// # SQL Builder (sqlbuilder.go)
//
// SQLBuilder offers a small fluent interface for assembling T-SQL
// statements out of keywords, bracketed identifiers, and raw fragments:
//
//	sql := utils.NewSQLBuilder().
//		Alter("TABLE").
//		QualifiedName("dbo", "users").
//		Raw("DROP COLUMN").
//		Name("legacy_flag").
//		String()
//	// Result: ALTER TABLE [dbo].[users] DROP COLUMN [legacy_flag];
//
// # Usage Guidelines
//
// These utilities should be used whenever generating or manipulating SQL
// identifiers to ensure consistent formatting across all generated DDL.
// BracketIdentifier is idempotent: bracketing an already bracketed
// identifier does not double-bracket it.
package utils

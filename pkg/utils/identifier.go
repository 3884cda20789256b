package utils

import "strings"

// BracketIdentifier adds brackets around a SQL Server identifier, handling
// qualified identifiers by bracketing each part.
//
// Examples:
//   - "table" -> "[table]"
//   - "schema.table" -> "[schema].[table]"
//   - "[table]" -> "[table]" (already bracketed, not double-bracketed)
//   - "" -> ""
//
// This function is used throughout the codebase for consistent identifier
// formatting in generated DDL statements.
func BracketIdentifier(name string) string {
	if name == "" {
		return ""
	}

	// A single bracketed identifier may legitimately contain dots.
	if IsBracketed(name) {
		return name
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		if IsBracketed(part) {
			continue
		}
		parts[i] = "[" + part + "]"
	}
	return strings.Join(parts, ".")
}

// BracketQualifiedName formats a schema-qualified name with brackets.
// An empty schema yields just the bracketed name.
//
// Examples:
//   - ("dbo", "users") -> "[dbo].[users]"
//   - ("", "users") -> "[users]"
func BracketQualifiedName(schemaName, name string) string {
	if schemaName != "" {
		return BracketIdentifier(schemaName) + "." + BracketIdentifier(name)
	}
	return BracketIdentifier(name)
}

// IsBracketed checks if a string is a single bracket-quoted identifier.
//
// Examples:
//   - "[table]" -> true
//   - "table" -> false
//   - "[dbo].[table]" -> false (qualified name, not a single identifier)
func IsBracketed(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' && !strings.ContainsAny(s[1:len(s)-1], "[]")
}

// StripBrackets removes bracket quoting from an identifier if present.
//
// Examples:
//   - "[table]" -> "table"
//   - "table" -> "table"
//   - "[dbo].[table]" -> "dbo.table"
func StripBrackets(s string) string {
	return strings.NewReplacer("[", "", "]", "").Replace(s)
}

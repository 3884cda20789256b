package utils

import "strings"

// SQLBuilder provides a fluent interface for building T-SQL statements.
// It handles identifier bracketing and keyword assembly to reduce
// duplication across the DDL-generating packages.
//
// Example usage:
//
//	sql := utils.NewSQLBuilder().
//		Drop("INDEX").
//		IfExists().
//		Name("ix_users_email").
//		On("dbo", "users").
//		String()
//	// Output: DROP INDEX IF EXISTS [ix_users_email] ON [dbo].[users];
type SQLBuilder struct {
	parts []string
}

// NewSQLBuilder creates a new SQLBuilder instance.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{
		parts: make([]string, 0, 10),
	}
}

// Create adds a CREATE clause with the specified object type.
//
// Example:
//
//	builder.Create("TABLE")  // CREATE TABLE
func (b *SQLBuilder) Create(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "CREATE", objectType)
	return b
}

// Drop adds a DROP clause with the specified object type.
//
// Example:
//
//	builder.Drop("PROCEDURE")  // DROP PROCEDURE
func (b *SQLBuilder) Drop(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "DROP", objectType)
	return b
}

// Alter adds an ALTER clause with the specified object type.
//
// Example:
//
//	builder.Alter("TABLE")  // ALTER TABLE
func (b *SQLBuilder) Alter(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "ALTER", objectType)
	return b
}

// IfExists adds an IF EXISTS clause. In T-SQL this follows the object
// keyword of a DROP statement.
//
// Example:
//
//	builder.Drop("TABLE").IfExists()  // DROP TABLE IF EXISTS
func (b *SQLBuilder) IfExists() *SQLBuilder {
	b.parts = append(b.parts, "IF", "EXISTS")
	return b
}

// Name adds a bracketed identifier.
//
// Example:
//
//	builder.Name("users")  // [users]
func (b *SQLBuilder) Name(name string) *SQLBuilder {
	if name != "" {
		b.parts = append(b.parts, BracketIdentifier(name))
	}
	return b
}

// QualifiedName adds a schema-qualified bracketed name.
//
// Example:
//
//	builder.QualifiedName("dbo", "users")  // [dbo].[users]
func (b *SQLBuilder) QualifiedName(schemaName, name string) *SQLBuilder {
	qualified := BracketQualifiedName(schemaName, name)
	if qualified != "" {
		b.parts = append(b.parts, qualified)
	}
	return b
}

// On adds an ON clause naming a schema-qualified table, as used by index
// statements.
//
// Example:
//
//	builder.On("dbo", "users")  // ON [dbo].[users]
func (b *SQLBuilder) On(schemaName, name string) *SQLBuilder {
	b.parts = append(b.parts, "ON", BracketQualifiedName(schemaName, name))
	return b
}

// Columns adds a parenthesized, bracketed column list.
//
// Example:
//
//	builder.Columns("id", "tenant_id")  // ([id], [tenant_id])
func (b *SQLBuilder) Columns(names ...string) *SQLBuilder {
	if len(names) == 0 {
		return b
	}

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = BracketIdentifier(n)
	}
	b.parts = append(b.parts, "("+strings.Join(quoted, ", ")+")")
	return b
}

// Raw adds raw SQL text to the builder. Use sparingly for fragments that
// don't fit the fluent pattern.
//
// Example:
//
//	builder.Raw("DROP COLUMN")  // DROP COLUMN
func (b *SQLBuilder) Raw(sql string) *SQLBuilder {
	if sql != "" {
		b.parts = append(b.parts, sql)
	}
	return b
}

// String builds and returns the final SQL statement with a semicolon.
//
// Example:
//
//	sql := builder.Drop("TABLE").IfExists().QualifiedName("dbo", "users").String()
//	// Returns: "DROP TABLE IF EXISTS [dbo].[users];"
func (b *SQLBuilder) String() string {
	if len(b.parts) == 0 {
		return ""
	}
	return strings.Join(b.parts, " ") + ";"
}

// StringWithoutSemicolon builds and returns the final SQL statement without
// a semicolon. Useful for building parts of larger statements.
func (b *SQLBuilder) StringWithoutSemicolon() string {
	return strings.Join(b.parts, " ")
}

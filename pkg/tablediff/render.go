package tablediff

import (
	"fmt"
	"strings"

	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

// Render emits the canonical CREATE TABLE definition for t: the table
// batch (columns first, then primary key, unique, foreign key, and check
// constraints in that order) followed by one batch per non-constraint
// index.
func Render(t *Table) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CREATE TABLE %s (\n", utils.BracketQualifiedName(t.Schema, t.Name))

	lines := make([]string, 0, len(t.Columns)+4)
	for _, c := range t.Columns {
		lines = append(lines, "  "+RenderColumn(c))
	}
	if t.PrimaryKey != nil {
		lines = append(lines, "  "+renderPrimaryKey(t.PrimaryKey))
	}
	for _, u := range t.Uniques {
		lines = append(lines, fmt.Sprintf("  CONSTRAINT %s UNIQUE (%s)",
			utils.BracketIdentifier(u.Name), bracketList(u.Columns)))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, "  "+renderForeignKey(fk))
	}
	for _, ck := range t.Checks {
		lines = append(lines, fmt.Sprintf("  CONSTRAINT %s CHECK %s",
			utils.BracketIdentifier(ck.Name), ck.Definition))
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\nGO")

	for _, idx := range t.Indexes {
		b.WriteString("\n")
		b.WriteString(renderIndex(t.Schema, t.Name, idx))
		b.WriteString("\nGO")
	}

	return b.String()
}

// RenderColumn emits one column clause: bracketed name, type, identity,
// nullability, and default. Table and table-type extraction share it.
func RenderColumn(c Column) string {
	parts := []string{utils.BracketIdentifier(c.Name), c.TypeSQL}

	if c.Identity != nil {
		parts = append(parts, fmt.Sprintf("IDENTITY(%d,%d)", c.Identity.Seed, c.Identity.Increment))
	}

	if c.Nullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}

	if c.Default != nil {
		parts = append(parts, "DEFAULT "+stripOuterParens(*c.Default))
	}

	return strings.Join(parts, " ")
}

func renderPrimaryKey(pk *PrimaryKey) string {
	kind := "CLUSTERED"
	if !pk.Clustered {
		kind = "NONCLUSTERED"
	}
	return fmt.Sprintf("CONSTRAINT %s PRIMARY KEY %s (%s)",
		utils.BracketIdentifier(pk.Name), kind, bracketList(pk.Columns))
}

func renderForeignKey(fk ForeignKey) string {
	s := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		utils.BracketIdentifier(fk.Name),
		bracketList(fk.Columns),
		utils.BracketQualifiedName(fk.RefSchema, fk.RefTable),
		bracketList(fk.RefColumns))

	if fk.OnDelete != "" {
		s += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		s += " ON UPDATE " + fk.OnUpdate
	}
	return s
}

func renderIndex(schemaName, tableName string, idx Index) string {
	b := utils.NewSQLBuilder()
	if idx.Unique {
		b.Create("UNIQUE INDEX")
	} else {
		b.Create("INDEX")
	}
	b.Name(idx.Name).On(schemaName, tableName).Columns(idx.Columns...)

	if len(idx.Include) > 0 {
		b.Raw("INCLUDE").Columns(idx.Include...)
	}
	if idx.Filter != "" {
		b.Raw("WHERE " + idx.Filter)
	}
	return b.String()
}

func bracketList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = utils.BracketIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// stripOuterParens removes parenthesis pairs that enclose the whole
// expression. SQL Server wraps default expressions when storing them, so
// "((0))" reads back as "0" and "(getdate())" as "getdate()".
func stripOuterParens(expr string) string {
	s := strings.TrimSpace(expr)

	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		depth := 0
		whole := true
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 && i != len(s)-1 {
					whole = false
				}
			}
			if !whole {
				break
			}
		}
		if !whole {
			break
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	return s
}

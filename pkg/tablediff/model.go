package tablediff

import (
	"strings"

	"github.com/pseudomuto/schemakeeper/pkg/compare"
)

type (
	// Table is the structural model of a SQL Server table. The catalog
	// reader scans live tables into it and Render emits the canonical
	// CREATE TABLE text from it. Schema and Name carry original casing;
	// identity lowercasing happens at the object-key boundary.
	Table struct {
		Schema      string
		Name        string
		Columns     []Column
		PrimaryKey  *PrimaryKey
		Uniques     []UniqueConstraint
		ForeignKeys []ForeignKey
		Checks      []CheckConstraint
		Indexes     []Index
	}

	// Column describes one table or table-type column. TypeSQL is the
	// rendered data type (e.g. "nvarchar(100)", "decimal(10,2)"). Default
	// holds the raw default expression as stored in the catalog or parsed
	// from a file; redundant outer parentheses are stripped at render time.
	Column struct {
		Name     string
		TypeSQL  string
		Nullable bool
		Identity *Identity
		Default  *string
	}

	// Identity carries the seed and increment of an identity column.
	Identity struct {
		Seed      int64
		Increment int64
	}

	// PrimaryKey describes a primary key constraint. Name may be empty
	// when parsed from a definition that leaves the constraint unnamed.
	PrimaryKey struct {
		Name      string
		Clustered bool
		Columns   []string
	}

	// UniqueConstraint describes a unique constraint.
	UniqueConstraint struct {
		Name    string
		Columns []string
	}

	// ForeignKey describes a foreign key constraint. OnDelete and OnUpdate
	// are empty for NO ACTION.
	ForeignKey struct {
		Name       string
		Columns    []string
		RefSchema  string
		RefTable   string
		RefColumns []string
		OnDelete   string
		OnUpdate   string
	}

	// CheckConstraint pairs a constraint name with its parenthesized
	// expression text as SQL Server stores it, e.g. "([price]>=(0))".
	CheckConstraint struct {
		Name       string
		Definition string
	}

	// Index describes a non-constraint index. Filter carries the WHERE
	// expression of a filtered index, empty otherwise.
	Index struct {
		Name    string
		Unique  bool
		Columns []string
		Include []string
		Filter  string
	}
)

// TypesEqual reports whether two rendered SQL types are the same, ignoring
// case and spacing ("NVARCHAR (100)" equals "nvarchar(100)").
func TypesEqual(a, b string) bool {
	return compactType(a) == compactType(b)
}

func compactType(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// NeedsAlter reports whether converging live onto c requires an
// ALTER COLUMN: the rendered type or the nullability differs. Defaults and
// identity are not tracked here; identity transitions are handled
// separately by the planner.
func (c Column) NeedsAlter(live Column) bool {
	return !TypesEqual(c.TypeSQL, live.TypeSQL) || c.Nullable != live.Nullable
}

// SameColumns reports whether two primary keys cover the same ordered
// column list, case-insensitively. A nil key only matches another nil key;
// constraint names are not compared.
func (pk *PrimaryKey) SameColumns(other *PrimaryKey) bool {
	if eq, needsMoreChecks := compare.NilCheck(pk, other); !needsMoreChecks {
		return eq
	}
	return compare.Slices(pk.Columns, other.Columns, strings.EqualFold)
}

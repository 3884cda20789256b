package tablediff

import (
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/utils"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func fullTable() *Table {
	return &Table{
		Schema: "sales",
		Name:   "orders",
		Columns: []Column{
			{Name: "id", TypeSQL: "bigint", Identity: &Identity{Seed: 1, Increment: 1}},
			{Name: "customer_id", TypeSQL: "int"},
			{Name: "status", TypeSQL: "nvarchar(20)", Default: utils.Ptr("N'new'")},
			{Name: "total", TypeSQL: "decimal(18,2)", Default: utils.Ptr("0")},
			{Name: "note", TypeSQL: "nvarchar(MAX)", Nullable: true},
		},
		PrimaryKey: &PrimaryKey{Name: "PK_orders", Clustered: true, Columns: []string{"id"}},
		Uniques: []UniqueConstraint{
			{Name: "UQ_orders_customer_id_status", Columns: []string{"customer_id", "status"}},
		},
		ForeignKeys: []ForeignKey{{
			Name:       "FK_orders_customers",
			Columns:    []string{"customer_id"},
			RefSchema:  "sales",
			RefTable:   "customers",
			RefColumns: []string{"id"},
			OnDelete:   "CASCADE",
		}},
		Checks: []CheckConstraint{{Name: "CK_orders_7741", Definition: "([total]>=(0))"}},
		Indexes: []Index{
			{Name: "ix_orders_status", Columns: []string{"status"}, Include: []string{"total"}},
			{Name: "ix_orders_customer", Unique: true, Columns: []string{"customer_id"}, Filter: "[status]<>N'void'"},
		},
	}
}

func TestRender(t *testing.T) {
	golden.Assert(t, Render(fullTable()), "render_full.golden")
}

// A rendered definition must read back into the same columns, primary key,
// and checks, since the planner diffs what the extractor wrote.
func TestRenderRoundTrip(t *testing.T) {
	table := fullTable()

	parsed, err := ParseCreateTable(Render(table))
	require.NoError(t, err)

	require.Equal(t, table.Schema, parsed.Schema)
	require.Equal(t, table.Name, parsed.Name)
	require.Equal(t, table.Columns, parsed.Columns)
	require.Equal(t, table.PrimaryKey, parsed.PrimaryKey)
	require.Equal(t, table.Checks, parsed.Checks)

	require.Len(t, parsed.Indexes, len(table.Indexes))
	for i, idx := range table.Indexes {
		require.Equal(t, idx.Name, parsed.Indexes[i].Name)
		require.Equal(t, table.Schema, parsed.Indexes[i].OnSchema)
		require.Equal(t, table.Name, parsed.Indexes[i].OnTable)
	}
}

func TestStripOuterParens(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "((0))", expected: "0"},
		{input: "(getdate())", expected: "getdate()"},
		{input: "(N'new')", expected: "N'new'"},
		{input: "getdate()", expected: "getdate()"},
		{input: "(1)+(2)", expected: "(1)+(2)"},
		{input: "0", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, stripOuterParens(tt.input))
		})
	}
}

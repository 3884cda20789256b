package sqlref

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableRefs(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []Ref
	}{
		{
			name: "bracketed foreign key target",
			sql: `CREATE TABLE [dbo].[orders] (
				[user_id] int NOT NULL,
				CONSTRAINT [FK_orders_users] FOREIGN KEY ([user_id]) REFERENCES [dbo].[users] ([id])
			);`,
			expected: []Ref{{Schema: "dbo", Name: "users"}},
		},
		{
			name:     "unqualified target gets default schema",
			sql:      `ALTER TABLE child ADD CONSTRAINT fk FOREIGN KEY (pid) REFERENCES parent (id)`,
			expected: []Ref{{Schema: "dbo", Name: "parent"}},
		},
		{
			name: "multiple targets deduplicated in order",
			sql: `CREATE TABLE t (
				a int REFERENCES sales.customers (id),
				b int REFERENCES [dbo].[users] (id),
				c int REFERENCES sales.customers (id)
			)`,
			expected: []Ref{
				{Schema: "sales", Name: "customers"},
				{Schema: "dbo", Name: "users"},
			},
		},
		{
			name:     "no references",
			sql:      `CREATE TABLE t (id int NOT NULL)`,
			expected: nil,
		},
		{
			name:     "references inside comments ignored",
			sql:      "CREATE TABLE t (id int) -- REFERENCES dbo.ghost (id)\n/* REFERENCES dbo.phantom (id) */",
			expected: nil,
		},
		{
			name:     "references inside strings ignored",
			sql:      `CREATE TABLE t (note varchar(50) DEFAULT 'REFERENCES dbo.ghost')`,
			expected: nil,
		},
	}

	scanner := NewScanner("dbo")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, scanner.TableRefs(tt.sql))
		})
	}
}

func TestObjectRefs(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []Ref
	}{
		{
			name: "from and join targets",
			sql: `CREATE VIEW v AS
				SELECT u.id, o.total
				FROM dbo.users u
				JOIN [sales].[orders] o ON o.user_id = u.id`,
			expected: []Ref{
				{Schema: "dbo", Name: "users"},
				{Schema: "sales", Name: "orders"},
			},
		},
		{
			name:     "unqualified from",
			sql:      `CREATE VIEW v AS SELECT * FROM base_view`,
			expected: []Ref{{Schema: "dbo", Name: "base_view"}},
		},
		{
			name:     "three part name keeps trailing schema and name",
			sql:      `CREATE VIEW v AS SELECT * FROM warehouse.archive.orders`,
			expected: []Ref{{Schema: "archive", Name: "orders"}},
		},
		{
			name:     "derived table does not produce a ref",
			sql:      `CREATE VIEW v AS SELECT * FROM (SELECT 1 AS n) d`,
			expected: nil,
		},
		{
			name:     "string literal after from is not a name",
			sql:      `CREATE PROCEDURE p AS SELECT 'FROM nowhere' FROM dbo.real_table`,
			expected: []Ref{{Schema: "dbo", Name: "real_table"}},
		},
		{
			name:     "case insensitive keywords and lowercased refs",
			sql:      `create view v as select * from DBO.Users`,
			expected: []Ref{{Schema: "dbo", Name: "users"}},
		},
	}

	scanner := NewScanner("dbo")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, scanner.ObjectRefs(tt.sql))
		})
	}
}

package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/pseudomuto/schemakeeper/pkg/tablediff"
	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

// listScalarTypes extracts user-defined scalar types (CREATE TYPE ... FROM).
func listScalarTypes(ctx context.Context, client *Client) ([]schema.Object, error) {
	query := `
		SELECT
			s.name AS schema_name,
			t.name,
			bt.name AS base_type,
			t.max_length,
			t.precision,
			t.scale,
			t.is_nullable
		FROM sys.types t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.types bt ON bt.user_type_id = t.system_type_id
		WHERE t.is_user_defined = 1
		  AND t.is_table_type = 0
		ORDER BY s.name, t.name`

	rows, err := client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query scalar types")
	}
	defer rows.Close()

	var objects []schema.Object
	for rows.Next() {
		var (
			schemaName, name, baseType  string
			maxLength, precision, scale int64
			nullable                    bool
		)
		if err := rows.Scan(&schemaName, &name, &baseType, &maxLength, &precision, &scale, &nullable); err != nil {
			return nil, errors.Wrap(err, "failed to scan scalar type row")
		}

		var b strings.Builder
		fmt.Fprintf(&b, "CREATE TYPE %s\n  FROM %s",
			utils.BracketQualifiedName(schemaName, name),
			renderDataType(baseType, maxLength, precision, scale),
		)
		if !nullable {
			b.WriteString(" NOT NULL")
		}
		b.WriteString(";\nGO")

		def := b.String()
		objects = append(objects, schema.NewObject(schema.TypeScalarType, schemaName, name, &def))
	}

	return objects, errors.Wrap(rows.Err(), "error iterating scalar type rows")
}

// listTableTypes extracts user-defined table types (CREATE TYPE ... AS TABLE).
// Column metadata lives on the hidden type table, reached through
// type_table_object_id.
func listTableTypes(ctx context.Context, client *Client) ([]schema.Object, error) {
	query := `
		SELECT s.name AS schema_name, tt.name, tt.type_table_object_id
		FROM sys.table_types tt
		JOIN sys.schemas s ON s.schema_id = tt.schema_id
		WHERE tt.is_user_defined = 1
		ORDER BY s.name, tt.name`

	rows, err := client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query table types")
	}
	defer rows.Close()

	type tableType struct {
		schemaName string
		name       string
		objectID   int64
	}

	var metas []tableType
	for rows.Next() {
		var tt tableType
		if err := rows.Scan(&tt.schemaName, &tt.name, &tt.objectID); err != nil {
			return nil, errors.Wrap(err, "failed to scan table type row")
		}
		metas = append(metas, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating table type rows")
	}

	objects := make([]schema.Object, 0, len(metas))
	for _, tt := range metas {
		columns, err := readTypeColumns(ctx, client, tt.objectID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read columns of table type %s.%s", tt.schemaName, tt.name)
		}

		lines := make([]string, len(columns))
		for i, c := range columns {
			lines[i] = "  " + tablediff.RenderColumn(c)
		}

		def := fmt.Sprintf("CREATE TYPE %s AS TABLE (\n%s\n);\nGO",
			utils.BracketQualifiedName(tt.schemaName, tt.name),
			strings.Join(lines, ",\n"),
		)
		objects = append(objects, schema.NewObject(schema.TypeTableType, tt.schemaName, tt.name, &def))
	}

	return objects, nil
}

func readTypeColumns(ctx context.Context, client *Client, objectID int64) ([]tablediff.Column, error) {
	query := `
		SELECT
			c.name,
			tp.name AS type_name,
			c.max_length,
			c.precision,
			c.scale,
			c.is_nullable,
			c.is_identity,
			CONVERT(bigint, ic.seed_value),
			CONVERT(bigint, ic.increment_value)
		FROM sys.columns c
		JOIN sys.types tp ON tp.user_type_id = c.user_type_id
		LEFT JOIN sys.identity_columns ic
			ON ic.object_id = c.object_id AND ic.column_id = c.column_id
		WHERE c.object_id = @p1
		ORDER BY c.column_id`

	rows, err := client.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query type columns")
	}
	defer rows.Close()

	var columns []tablediff.Column
	for rows.Next() {
		var (
			name, typeName              string
			maxLength, precision, scale int64
			nullable, isIdentity        bool
			seed, increment             sql.NullInt64
		)
		if err := rows.Scan(&name, &typeName, &maxLength, &precision, &scale, &nullable, &isIdentity, &seed, &increment); err != nil {
			return nil, errors.Wrap(err, "failed to scan type column row")
		}

		col := tablediff.Column{
			Name:     name,
			TypeSQL:  renderDataType(typeName, maxLength, precision, scale),
			Nullable: nullable,
		}
		if isIdentity {
			col.Identity = &tablediff.Identity{Seed: seed.Int64, Increment: increment.Int64}
		}
		columns = append(columns, col)
	}

	return columns, errors.Wrap(rows.Err(), "error iterating type column rows")
}

package mssql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/pseudomuto/schemakeeper/pkg/tablediff"
)

// listTables extracts every user table as a canonical CREATE TABLE
// definition with constraints inline and non-constraint indexes as
// trailing batches.
func listTables(ctx context.Context, client *Client) ([]schema.Object, error) {
	query := `
		SELECT s.name AS schema_name, t.name, t.object_id
		FROM sys.tables t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		WHERE t.is_ms_shipped = 0
		ORDER BY s.name, t.name`

	rows, err := client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tables")
	}
	defer rows.Close()

	type tableMeta struct {
		schemaName string
		name       string
		objectID   int64
	}

	var metas []tableMeta
	for rows.Next() {
		var m tableMeta
		if err := rows.Scan(&m.schemaName, &m.name, &m.objectID); err != nil {
			return nil, errors.Wrap(err, "failed to scan table row")
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating table rows")
	}

	objects := make([]schema.Object, 0, len(metas))
	for _, m := range metas {
		table, err := readTable(ctx, client, m.schemaName, m.name, m.objectID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read table %s.%s", m.schemaName, m.name)
		}

		def := tablediff.Render(table)
		objects = append(objects, schema.NewObject(schema.TypeTable, m.schemaName, m.name, &def))
	}

	return objects, nil
}

// readTable assembles the structural model of one table from the catalog.
func readTable(ctx context.Context, client *Client, schemaName, tableName string, objectID int64) (*tablediff.Table, error) {
	table := &tablediff.Table{Schema: schemaName, Name: tableName}

	var err error
	if table.Columns, err = readColumns(ctx, client, objectID); err != nil {
		return nil, err
	}
	if table.PrimaryKey, table.Uniques, err = readKeyConstraints(ctx, client, objectID, tableName); err != nil {
		return nil, err
	}
	if table.ForeignKeys, err = readForeignKeys(ctx, client, objectID, tableName); err != nil {
		return nil, err
	}
	if table.Checks, err = readChecks(ctx, client, objectID, tableName); err != nil {
		return nil, err
	}
	if table.Indexes, err = readIndexes(ctx, client, objectID); err != nil {
		return nil, err
	}

	return table, nil
}

func readColumns(ctx context.Context, client *Client, objectID int64) ([]tablediff.Column, error) {
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
			CONVERT(bigint, ic.increment_value),
			dc.definition AS default_definition
		FROM sys.columns c
		JOIN sys.types tp ON tp.user_type_id = c.user_type_id
		LEFT JOIN sys.identity_columns ic
			ON ic.object_id = c.object_id AND ic.column_id = c.column_id
		LEFT JOIN sys.default_constraints dc
			ON dc.parent_object_id = c.object_id AND dc.parent_column_id = c.column_id
		WHERE c.object_id = @p1
		ORDER BY c.column_id`

	rows, err := client.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query columns")
	}
	defer rows.Close()

	var columns []tablediff.Column
	for rows.Next() {
		var (
			name, typeName              string
			maxLength, precision, scale int64
			nullable, isIdentity        bool
			seed, increment             sql.NullInt64
			defaultDef                  sql.NullString
		)
		if err := rows.Scan(&name, &typeName, &maxLength, &precision, &scale,
			&nullable, &isIdentity, &seed, &increment, &defaultDef); err != nil {
			return nil, errors.Wrap(err, "failed to scan column row")
		}

		col := tablediff.Column{
			Name:     name,
			TypeSQL:  renderDataType(typeName, maxLength, precision, scale),
			Nullable: nullable,
		}
		if isIdentity {
			col.Identity = &tablediff.Identity{Seed: seed.Int64, Increment: increment.Int64}
		}
		if defaultDef.Valid {
			col.Default = &defaultDef.String
		}
		columns = append(columns, col)
	}

	return columns, errors.Wrap(rows.Err(), "error iterating column rows")
}

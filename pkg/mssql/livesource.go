package mssql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/tablediff"
	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

// LiveTable returns the current structure of the named table, or a
// non-existent marker when the catalog has no such table. Names come back
// in their live casing so generated statements match the catalog.
func (c *Client) LiveTable(ctx context.Context, schemaName, tableName string) (*tablediff.LiveTable, error) {
	query := `
		SELECT t.object_id, s.name, t.name
		FROM sys.tables t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		WHERE s.name = @p1 AND t.name = @p2`

	var (
		objectID             int64
		liveSchema, liveName string
	)
	err := c.db.QueryRowContext(ctx, query, schemaName, tableName).Scan(&objectID, &liveSchema, &liveName)
	if errors.Is(err, sql.ErrNoRows) {
		return &tablediff.LiveTable{Schema: schemaName, Name: tableName}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up table %s.%s", schemaName, tableName)
	}

	live := &tablediff.LiveTable{Exists: true, Schema: liveSchema, Name: liveName}
	if live.Columns, err = readColumns(ctx, c, objectID); err != nil {
		return nil, err
	}
	if live.PrimaryKey, err = readLivePrimaryKey(ctx, c, objectID); err != nil {
		return nil, err
	}
	if live.Checks, err = readLiveChecks(ctx, c, objectID); err != nil {
		return nil, err
	}
	return live, nil
}

// ColumnDependents returns the default, check, and foreign key constraints
// that depend on a column. Foreign keys are matched from both sides since
// a key owned by another table still blocks dropping the column.
func (c *Client) ColumnDependents(ctx context.Context, schemaName, tableName, columnName string) ([]tablediff.DependentConstraint, error) {
	query := `
		SELECT s.name, t.name, dc.name
		FROM sys.default_constraints dc
		JOIN sys.tables t ON t.object_id = dc.parent_object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.columns col
			ON col.object_id = dc.parent_object_id AND col.column_id = dc.parent_column_id
		WHERE dc.parent_object_id = OBJECT_ID(@p1) AND col.name = @p2
		UNION ALL
		SELECT s.name, t.name, cc.name
		FROM sys.check_constraints cc
		JOIN sys.tables t ON t.object_id = cc.parent_object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.columns col
			ON col.object_id = cc.parent_object_id AND col.column_id = cc.parent_column_id
		WHERE cc.parent_object_id = OBJECT_ID(@p1) AND col.name = @p2
		UNION ALL
		SELECT s.name, t.name, fk.name
		FROM sys.foreign_key_columns fkc
		JOIN sys.foreign_keys fk ON fk.object_id = fkc.constraint_object_id
		JOIN sys.tables t ON t.object_id = fk.parent_object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.columns pc
			ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
		JOIN sys.columns rc
			ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
		WHERE (fkc.parent_object_id = OBJECT_ID(@p1) AND pc.name = @p2)
		   OR (fkc.referenced_object_id = OBJECT_ID(@p1) AND rc.name = @p2)
		ORDER BY 1, 2, 3`

	target := utils.BracketQualifiedName(schemaName, tableName)
	rows, err := c.db.QueryContext(ctx, query, target, columnName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query constraints depending on %s.%s", tableName, columnName)
	}
	defer rows.Close()

	var dependents []tablediff.DependentConstraint
	for rows.Next() {
		var dep tablediff.DependentConstraint
		if err := rows.Scan(&dep.Schema, &dep.Table, &dep.Name); err != nil {
			return nil, errors.Wrap(err, "failed to scan dependent constraint row")
		}
		dependents = append(dependents, dep)
	}

	return dependents, errors.Wrap(rows.Err(), "error iterating dependent constraint rows")
}

// ColumnIndexes returns the names of non-constraint indexes that key a
// column or mention it in a filter expression.
func (c *Client) ColumnIndexes(ctx context.Context, schemaName, tableName, columnName string) ([]string, error) {
	query := `
		SELECT i.name
		FROM sys.indexes i
		JOIN sys.index_columns ic
			ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns col
			ON col.object_id = ic.object_id AND col.column_id = ic.column_id
		WHERE i.object_id = OBJECT_ID(@p1)
		  AND i.is_primary_key = 0
		  AND i.is_unique_constraint = 0
		  AND i.is_hypothetical = 0
		  AND i.type IN (1, 2)
		  AND col.name = @p2
		UNION
		SELECT i.name
		FROM sys.indexes i
		WHERE i.object_id = OBJECT_ID(@p1)
		  AND i.has_filter = 1
		  AND i.filter_definition LIKE '%\[' + @p2 + '\]%' ESCAPE '\'
		ORDER BY 1`

	target := utils.BracketQualifiedName(schemaName, tableName)
	rows, err := c.db.QueryContext(ctx, query, target, columnName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query indexes depending on %s.%s", tableName, columnName)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan index name row")
		}
		names = append(names, name)
	}

	return names, errors.Wrap(rows.Err(), "error iterating index name rows")
}

// readLivePrimaryKey reads a table's primary key with its real constraint
// name. Extraction normalizes generated names; the planner must not, since
// it drops the constraint by name.
func readLivePrimaryKey(ctx context.Context, client *Client, objectID int64) (*tablediff.PrimaryKey, error) {
	query := `
		SELECT kc.name, i.type_desc, c.name AS column_name
		FROM sys.key_constraints kc
		JOIN sys.indexes i
			ON i.object_id = kc.parent_object_id AND i.index_id = kc.unique_index_id
		JOIN sys.index_columns ic
			ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c
			ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE kc.parent_object_id = @p1
		  AND kc.type = 'PK'
		  AND ic.is_included_column = 0
		ORDER BY ic.key_ordinal`

	rows, err := client.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query primary key")
	}
	defer rows.Close()

	var pk *tablediff.PrimaryKey
	for rows.Next() {
		var name, typeDesc, column string
		if err := rows.Scan(&name, &typeDesc, &column); err != nil {
			return nil, errors.Wrap(err, "failed to scan primary key row")
		}
		if pk == nil {
			pk = &tablediff.PrimaryKey{Name: name, Clustered: typeDesc == "CLUSTERED"}
		}
		pk.Columns = append(pk.Columns, column)
	}

	return pk, errors.Wrap(rows.Err(), "error iterating primary key rows")
}

func readLiveChecks(ctx context.Context, client *Client, objectID int64) ([]tablediff.CheckConstraint, error) {
	query := `
		SELECT cc.name, cc.definition
		FROM sys.check_constraints cc
		WHERE cc.parent_object_id = @p1
		ORDER BY cc.name`

	rows, err := client.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query live check constraints")
	}
	defer rows.Close()

	var checks []tablediff.CheckConstraint
	for rows.Next() {
		var ck tablediff.CheckConstraint
		if err := rows.Scan(&ck.Name, &ck.Definition); err != nil {
			return nil, errors.Wrap(err, "failed to scan live check constraint row")
		}
		checks = append(checks, ck)
	}

	return checks, errors.Wrap(rows.Err(), "error iterating live check constraint rows")
}

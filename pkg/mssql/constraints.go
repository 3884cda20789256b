package mssql

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/tablediff"
)

// readKeyConstraints returns the primary key (nil when the table has none)
// and the unique constraints of a table.
func readKeyConstraints(ctx context.Context, client *Client, objectID int64, tableName string) (*tablediff.PrimaryKey, []tablediff.UniqueConstraint, error) {
	query := `
		SELECT kc.name, kc.type, i.type_desc, c.name AS column_name
		FROM sys.key_constraints kc
		JOIN sys.indexes i
			ON i.object_id = kc.parent_object_id AND i.index_id = kc.unique_index_id
		JOIN sys.index_columns ic
			ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c
			ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE kc.parent_object_id = @p1
		  AND ic.is_included_column = 0
		ORDER BY kc.name, ic.key_ordinal`

	rows, err := client.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to query key constraints")
	}
	defer rows.Close()

	type keyConstraint struct {
		kind      string
		clustered bool
		columns   []string
	}

	var (
		order  []string
		byName = map[string]*keyConstraint{}
	)
	for rows.Next() {
		var name, kind, typeDesc, column string
		if err := rows.Scan(&name, &kind, &typeDesc, &column); err != nil {
			return nil, nil, errors.Wrap(err, "failed to scan key constraint row")
		}

		kc, ok := byName[name]
		if !ok {
			kc = &keyConstraint{
				kind:      strings.TrimSpace(kind),
				clustered: typeDesc == "CLUSTERED",
			}
			byName[name] = kc
			order = append(order, name)
		}
		kc.columns = append(kc.columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "error iterating key constraint rows")
	}

	var (
		pk      *tablediff.PrimaryKey
		uniques []tablediff.UniqueConstraint
	)
	for _, name := range order {
		kc := byName[name]
		switch kc.kind {
		case "PK":
			pk = &tablediff.PrimaryKey{
				Name:      normalizePKName(name, tableName),
				Clustered: kc.clustered,
				Columns:   kc.columns,
			}
		case "UQ":
			uniques = append(uniques, tablediff.UniqueConstraint{
				Name:    normalizeUQName(name, tableName, kc.columns),
				Columns: kc.columns,
			})
		}
	}

	return pk, uniques, nil
}

func readForeignKeys(ctx context.Context, client *Client, objectID int64, tableName string) ([]tablediff.ForeignKey, error) {
	query := `
		SELECT
			fk.name,
			pc.name AS column_name,
			rs.name AS ref_schema,
			rt.name AS ref_table,
			rc.name AS ref_column,
			fk.delete_referential_action_desc,
			fk.update_referential_action_desc
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.columns pc
			ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
		JOIN sys.columns rc
			ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
		JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
		JOIN sys.schemas rs ON rs.schema_id = rt.schema_id
		WHERE fk.parent_object_id = @p1
		ORDER BY fk.name, fkc.constraint_column_id`

	rows, err := client.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query foreign keys")
	}
	defer rows.Close()

	var (
		order  []string
		byName = map[string]*tablediff.ForeignKey{}
	)
	for rows.Next() {
		var name, column, refSchema, refTable, refColumn, onDelete, onUpdate string
		if err := rows.Scan(&name, &column, &refSchema, &refTable, &refColumn, &onDelete, &onUpdate); err != nil {
			return nil, errors.Wrap(err, "failed to scan foreign key row")
		}

		fk, ok := byName[name]
		if !ok {
			fk = &tablediff.ForeignKey{
				Name:      normalizeFKName(name, tableName, refTable),
				RefSchema: refSchema,
				RefTable:  refTable,
				OnDelete:  referentialAction(onDelete),
				OnUpdate:  referentialAction(onUpdate),
			}
			byName[name] = fk
			order = append(order, name)
		}
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating foreign key rows")
	}

	foreignKeys := make([]tablediff.ForeignKey, 0, len(order))
	for _, name := range order {
		foreignKeys = append(foreignKeys, *byName[name])
	}
	return foreignKeys, nil
}

func readChecks(ctx context.Context, client *Client, objectID int64, tableName string) ([]tablediff.CheckConstraint, error) {
	query := `
		SELECT cc.name, cc.definition
		FROM sys.check_constraints cc
		WHERE cc.parent_object_id = @p1
		ORDER BY cc.name`

	rows, err := client.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query check constraints")
	}
	defer rows.Close()

	var checks []tablediff.CheckConstraint
	for rows.Next() {
		var name, definition string
		if err := rows.Scan(&name, &definition); err != nil {
			return nil, errors.Wrap(err, "failed to scan check constraint row")
		}
		checks = append(checks, tablediff.CheckConstraint{
			Name:       normalizeCKName(name, tableName, definition),
			Definition: definition,
		})
	}

	return checks, errors.Wrap(rows.Err(), "error iterating check constraint rows")
}

// referentialAction maps a catalog action description onto its DDL
// spelling. NO ACTION is the default and renders as nothing.
func referentialAction(desc string) string {
	if desc == "NO_ACTION" {
		return ""
	}
	return strings.ReplaceAll(desc, "_", " ")
}

// Names SQL Server generates carry a double underscore and a random suffix
// (PK__users__71D1E811). Rewriting them to deterministic forms keeps
// extracted definitions reproducible across databases.

func normalizePKName(name, tableName string) string {
	if !strings.HasPrefix(name, "PK__") {
		return name
	}
	return "PK_" + tableName
}

func normalizeUQName(name, tableName string, columns []string) string {
	if !strings.HasPrefix(name, "UQ__") {
		return name
	}
	return "UQ_" + tableName + "_" + strings.Join(columns, "_")
}

func normalizeFKName(name, tableName, refTable string) string {
	if !strings.HasPrefix(name, "FK__") {
		return name
	}
	return "FK_" + tableName + "_" + refTable
}

func normalizeCKName(name, tableName, definition string) string {
	if !strings.HasPrefix(name, "CK__") {
		return name
	}
	return fmt.Sprintf("CK_%s_%d", tableName, definitionHash(definition))
}

// definitionHash folds a constraint definition into a small stable number
// so generated check names stay deterministic for the same expression.
func definitionHash(definition string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(definition))
	return h.Sum32() % 10000
}

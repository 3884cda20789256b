package mssql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/tablediff"
)

// readIndexes returns the non-constraint rowstore indexes of a table.
// Indexes keyed on a non-indexable type are dropped entirely since the
// server would reject their CREATE INDEX form.
func readIndexes(ctx context.Context, client *Client, objectID int64) ([]tablediff.Index, error) {
	query := `
		SELECT
			i.name,
			i.is_unique,
			i.filter_definition,
			ic.is_included_column,
			c.name AS column_name,
			tp.name AS type_name,
			c.max_length
		FROM sys.indexes i
		JOIN sys.index_columns ic
			ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c
			ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		JOIN sys.types tp ON tp.user_type_id = c.user_type_id
		WHERE i.object_id = @p1
		  AND i.is_primary_key = 0
		  AND i.is_unique_constraint = 0
		  AND i.is_hypothetical = 0
		  AND i.type IN (1, 2)
		ORDER BY i.name, ic.is_included_column, ic.key_ordinal, ic.index_column_id`

	rows, err := client.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query indexes")
	}
	defer rows.Close()

	type indexAccum struct {
		index   tablediff.Index
		skipped bool
	}

	var (
		order  []string
		byName = map[string]*indexAccum{}
	)
	for rows.Next() {
		var (
			name             string
			unique, included bool
			filter           sql.NullString
			column, typeName string
			maxLength        int64
		)
		if err := rows.Scan(&name, &unique, &filter, &included, &column, &typeName, &maxLength); err != nil {
			return nil, errors.Wrap(err, "failed to scan index row")
		}

		acc, ok := byName[name]
		if !ok {
			acc = &indexAccum{index: tablediff.Index{
				Name:   name,
				Unique: unique,
				Filter: filter.String,
			}}
			byName[name] = acc
			order = append(order, name)
		}

		if included {
			acc.index.Include = append(acc.index.Include, column)
			continue
		}
		if nonIndexableType(typeName, maxLength) {
			acc.skipped = true
		}
		acc.index.Columns = append(acc.index.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating index rows")
	}

	var indexes []tablediff.Index
	for _, name := range order {
		if acc := byName[name]; !acc.skipped {
			indexes = append(indexes, acc.index)
		}
	}
	return indexes, nil
}

// nonIndexableType reports whether a type cannot participate in an index
// key. MAX-length variants count, fixed-length ones do not.
func nonIndexableType(typeName string, maxLength int64) bool {
	switch strings.ToLower(typeName) {
	case "text", "ntext", "image", "xml", "geography", "geometry":
		return true
	case "varchar", "nvarchar", "varbinary":
		return maxLength == -1
	}
	return false
}

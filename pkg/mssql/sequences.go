package mssql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

// listSequences extracts sequences with all their numeric bounds spelled
// out. Range values are sql_variant in the catalog and convert to bigint
// server side.
func listSequences(ctx context.Context, client *Client) ([]schema.Object, error) {
	query := `
		SELECT
			s.name AS schema_name,
			sq.name,
			tp.name AS type_name,
			sq.precision,
			sq.scale,
			CONVERT(bigint, sq.start_value),
			CONVERT(bigint, sq.increment),
			CONVERT(bigint, sq.minimum_value),
			CONVERT(bigint, sq.maximum_value),
			sq.is_cycling,
			sq.is_cached,
			sq.cache_size
		FROM sys.sequences sq
		JOIN sys.schemas s ON s.schema_id = sq.schema_id
		JOIN sys.types tp ON tp.user_type_id = sq.user_type_id
		ORDER BY s.name, sq.name`

	rows, err := client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sequences")
	}
	defer rows.Close()

	var objects []schema.Object
	for rows.Next() {
		var (
			schemaName, name, typeName       string
			precision, scale                 int64
			start, increment, minVal, maxVal int64
			cycling, cached                  bool
			cacheSize                        sql.NullInt64
		)
		if err := rows.Scan(
			&schemaName, &name, &typeName,
			&precision, &scale,
			&start, &increment, &minVal, &maxVal,
			&cycling, &cached, &cacheSize,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan sequence row")
		}

		def := fmt.Sprintf(
			"CREATE SEQUENCE %s AS %s START WITH %d INCREMENT BY %d MINVALUE %d MAXVALUE %d %s %s;\nGO",
			utils.BracketQualifiedName(schemaName, name),
			renderDataType(typeName, 0, precision, scale),
			start, increment, minVal, maxVal,
			cycleClause(cycling),
			cacheClause(cached, cacheSize),
		)
		objects = append(objects, schema.NewObject(schema.TypeSequence, schemaName, name, &def))
	}

	return objects, errors.Wrap(rows.Err(), "error iterating sequence rows")
}

func cycleClause(cycling bool) string {
	if cycling {
		return "CYCLE"
	}
	return "NO CYCLE"
}

// cacheClause renders the sequence cache setting. A cached sequence with
// no recorded size uses the server default, spelled as a bare CACHE.
func cacheClause(cached bool, size sql.NullInt64) string {
	switch {
	case cached && size.Valid:
		return fmt.Sprintf("CACHE %d", size.Int64)
	case cached:
		return "CACHE"
	default:
		return "NO CACHE"
	}
}

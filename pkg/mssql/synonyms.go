package mssql

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

// listSynonyms extracts synonyms. The base object name is emitted exactly
// as the catalog stores it, so three-part or linked-server targets survive
// round trips.
func listSynonyms(ctx context.Context, client *Client) ([]schema.Object, error) {
	query := `
		SELECT s.name AS schema_name, sn.name, sn.base_object_name
		FROM sys.synonyms sn
		JOIN sys.schemas s ON s.schema_id = sn.schema_id
		ORDER BY s.name, sn.name`

	rows, err := client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query synonyms")
	}
	defer rows.Close()

	var objects []schema.Object
	for rows.Next() {
		var schemaName, name, baseObject string
		if err := rows.Scan(&schemaName, &name, &baseObject); err != nil {
			return nil, errors.Wrap(err, "failed to scan synonym row")
		}

		def := fmt.Sprintf(
			"CREATE SYNONYM %s FOR %s;\nGO",
			utils.BracketQualifiedName(schemaName, name),
			baseObject,
		)
		objects = append(objects, schema.NewObject(schema.TypeSynonym, schemaName, name, &def))
	}

	return objects, errors.Wrap(rows.Err(), "error iterating synonym rows")
}

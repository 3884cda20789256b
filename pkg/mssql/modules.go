package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
)

// moduleTypeCodes maps sys.objects type codes onto managed object types.
// Scalar, inline table-valued, multi-statement, and CLR functions all land
// on FUNCTION.
var moduleTypeCodes = map[string]schema.ObjectType{
	"P":  schema.TypeProcedure,
	"FN": schema.TypeFunction,
	"IF": schema.TypeFunction,
	"TF": schema.TypeFunction,
	"FS": schema.TypeFunction,
	"FT": schema.TypeFunction,
	"V":  schema.TypeView,
	"TR": schema.TypeTrigger,
}

// listModules extracts procedures, functions, views, and triggers with
// their stored text. Each definition is prefixed with SET ANSI_NULLS and
// SET QUOTED_IDENTIFIER statements matching the module's recorded settings
// and terminated with a GO line.
func listModules(ctx context.Context, client *Client) ([]schema.Object, error) {
	query := `
		SELECT
			s.name AS schema_name,
			o.name AS object_name,
			o.type,
			m.definition,
			m.uses_ansi_nulls,
			m.uses_quoted_identifier
		FROM sys.objects o
		JOIN sys.schemas s ON s.schema_id = o.schema_id
		JOIN sys.sql_modules m ON m.object_id = o.object_id
		WHERE o.is_ms_shipped = 0
		  AND o.type IN ('P', 'FN', 'IF', 'TF', 'FS', 'FT', 'V', 'TR')
		ORDER BY s.name, o.type, o.name`

	rows, err := client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sql modules")
	}
	defer rows.Close()

	var objects []schema.Object
	for rows.Next() {
		var (
			schemaName, name, typeCode string
			definition                 sql.NullString
			ansiNulls, quotedIdent     sql.NullBool
		)
		if err := rows.Scan(&schemaName, &name, &typeCode, &definition, &ansiNulls, &quotedIdent); err != nil {
			return nil, errors.Wrap(err, "failed to scan sql module row")
		}

		objType, ok := moduleTypeCodes[strings.TrimSpace(typeCode)]
		if !ok {
			continue
		}

		// Encrypted modules store no text, so there is nothing
		// reproducible to extract.
		if !definition.Valid || definition.String == "" {
			slog.Warn("skipping module without stored text",
				"schema", schemaName,
				"name", name,
			)
			continue
		}

		def := moduleDefinition(definition.String, ansiNulls.Bool, quotedIdent.Bool)
		objects = append(objects, schema.NewObject(objType, schemaName, name, &def))
	}

	return objects, errors.Wrap(rows.Err(), "error iterating sql module rows")
}

func moduleDefinition(text string, ansiNulls, quotedIdentifier bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SET ANSI_NULLS %s\nGO\n", onOff(ansiNulls))
	fmt.Fprintf(&b, "SET QUOTED_IDENTIFIER %s\nGO\n", onOff(quotedIdentifier))
	b.WriteString(strings.TrimRight(text, " \t\r\n"))
	b.WriteString("\nGO")

	return b.String()
}

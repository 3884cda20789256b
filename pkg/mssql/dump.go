package mssql

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
)

// ListObjects enumerates every managed object in the bound database with a
// complete, reproducible definition. Types and sequences come first so
// replaying the result into an empty database resolves dependencies.
func (c *Client) ListObjects(ctx context.Context) ([]schema.Object, error) {
	var objects []schema.Object

	scalarTypes, err := listScalarTypes(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract scalar types")
	}
	objects = append(objects, scalarTypes...)

	tableTypes, err := listTableTypes(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract table types")
	}
	objects = append(objects, tableTypes...)

	sequences, err := listSequences(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract sequences")
	}
	objects = append(objects, sequences...)

	synonyms, err := listSynonyms(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract synonyms")
	}
	objects = append(objects, synonyms...)

	tables, err := listTables(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract tables")
	}
	objects = append(objects, tables...)

	modules, err := listModules(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract sql modules")
	}
	objects = append(objects, modules...)

	return objects, nil
}

package mssql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/pseudomuto/schemakeeper/pkg/tablediff"
	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

// alterPlanner generates the convergence script for one table object.
type alterPlanner interface {
	GenerateAlterScript(ctx context.Context, obj schema.Object) (string, error)
}

// ApplyChanges executes a set of object changes against the database in a
// single transaction. A change with a definition creates or replaces the
// object; a nil definition drops it. Dependency ordering is the caller's
// responsibility.
func (c *Client) ApplyChanges(ctx context.Context, changes []schema.Object) error {
	script, err := buildChangeScript(ctx, tablediff.New(c), c.defaultSchema, changes)
	if err != nil {
		return err
	}
	if script == "" {
		return nil
	}
	return c.execScript(ctx, script)
}

// buildChangeScript renders the full change script: creation of any
// non-default schemas first, then one block per change. Tables converge
// through the planner; every other type drops and recreates.
func buildChangeScript(ctx context.Context, planner alterPlanner, defaultSchema string, changes []schema.Object) (string, error) {
	statements := schemaCreateStatements(defaultSchema, changes)

	for _, change := range changes {
		block, err := changeStatements(ctx, planner, change)
		if err != nil {
			return "", err
		}
		statements = append(statements, block...)
	}

	return strings.Join(statements, "\nGO\n"), nil
}

func schemaCreateStatements(defaultSchema string, changes []schema.Object) []string {
	seen := map[string]bool{}
	for _, change := range changes {
		if change.Schema == "" || strings.EqualFold(change.Schema, defaultSchema) {
			continue
		}
		seen[change.Schema] = true
	}

	names := make([]string, 0, len(seen))
	for s := range seen {
		names = append(names, s)
	}
	sort.Strings(names)

	statements := make([]string, len(names))
	for i, s := range names {
		statements[i] = fmt.Sprintf(
			"IF NOT EXISTS (SELECT 1 FROM sys.schemas WHERE name = '%s') EXEC('CREATE SCHEMA %s')",
			s, utils.BracketIdentifier(s),
		)
	}
	return statements
}

func changeStatements(ctx context.Context, planner alterPlanner, change schema.Object) ([]string, error) {
	if change.Type == schema.TypeTable {
		if change.Definition == nil {
			drop := utils.NewSQLBuilder().Drop("TABLE").IfExists().QualifiedName(change.Schema, change.Name)
			return []string{drop.String()}, nil
		}

		script, err := planner.GenerateAlterScript(ctx, change)
		if err != nil {
			return nil, err
		}
		if script == "" {
			return nil, nil
		}
		return []string{script}, nil
	}

	drop := utils.NewSQLBuilder().Drop(dropKeyword(change.Type)).IfExists().QualifiedName(change.Schema, change.Name)
	statements := []string{drop.String()}
	if change.Definition != nil {
		statements = append(statements, *change.Definition)
	}
	return statements, nil
}

// dropKeyword maps an object type onto its DROP statement keyword. Both
// type flavors drop as TYPE.
func dropKeyword(t schema.ObjectType) string {
	switch t {
	case schema.TypeTableType, schema.TypeScalarType:
		return "TYPE"
	default:
		return string(t)
	}
}

// execScript splits a script on GO lines and executes the batches inside
// one transaction. Any batch failure rolls back the whole script.
func (c *Client) execScript(ctx context.Context, script string) error {
	batches := utils.SplitBatches(script)
	if len(batches) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	for i, batch := range batches {
		if _, err := tx.ExecContext(ctx, batch); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "failed to execute batch %d of %d", i+1, len(batches))
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit schema changes")
}

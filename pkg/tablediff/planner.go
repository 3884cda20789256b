package tablediff

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

type (
	// LiveTable is the subset of a table's catalog state the planner
	// compares against a stored definition.
	LiveTable struct {
		Exists     bool
		Schema     string
		Name       string
		Columns    []Column
		PrimaryKey *PrimaryKey
		Checks     []CheckConstraint
	}

	// DependentConstraint names a constraint that depends on a column,
	// together with the table owning it. Foreign keys referencing the
	// column live on other tables, so the owner is carried explicitly.
	DependentConstraint struct {
		Schema string
		Table  string
		Name   string
	}

	// LiveSource reads live table structure from a database. The planner
	// stays free of any driver dependency through this interface.
	LiveSource interface {
		// LiveTable returns the current structure of the named table. A
		// table that does not exist is reported with Exists set to false.
		LiveTable(ctx context.Context, schemaName, tableName string) (*LiveTable, error)

		// ColumnDependents returns the check, default, and foreign key
		// constraints that depend on the named column, including foreign
		// keys owned by other tables.
		ColumnDependents(ctx context.Context, schemaName, tableName, columnName string) ([]DependentConstraint, error)

		// ColumnIndexes returns the names of indexes that key the named
		// column or reference it in a filter expression.
		ColumnIndexes(ctx context.Context, schemaName, tableName, columnName string) ([]string, error)
	}

	// Planner turns a stored CREATE TABLE definition into the ALTER
	// statements needed to evolve the live table in place, preserving
	// row data.
	Planner struct {
		source LiveSource
	}
)

// New creates a Planner that reads live table structure from source.
func New(source LiveSource) *Planner {
	return &Planner{source: source}
}

// GenerateAlterScript compares the stored definition of obj against the
// live table and returns the statements needed to converge, separated by
// GO lines. It returns the definition unchanged when the table does not
// exist, and an empty string when no tracked attribute differs.
func (p *Planner) GenerateAlterScript(ctx context.Context, obj schema.Object) (string, error) {
	if obj.Definition == nil {
		return "", errors.Errorf("no definition for %s", obj.Key)
	}

	parsed, err := ParseCreateTable(*obj.Definition)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse definition of %s", obj.Key)
	}

	live, err := p.source.LiveTable(ctx, obj.Schema, obj.Name)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read live structure of %s", obj.Key)
	}
	if live == nil || !live.Exists {
		return *obj.Definition, nil
	}

	var stmts []string
	stmts = append(stmts, planPrimaryKeyDrop(parsed, live)...)

	drops, err := p.planColumnDrops(ctx, parsed, live)
	if err != nil {
		return "", err
	}
	stmts = append(stmts, drops...)

	changes, err := p.planColumnChanges(ctx, obj, parsed, live)
	if err != nil {
		return "", err
	}
	stmts = append(stmts, changes...)

	stmts = append(stmts, planPrimaryKeyAdd(obj, parsed, live)...)
	stmts = append(stmts, planCheckAdds(parsed, live)...)

	if len(stmts) == 0 {
		return "", nil
	}

	stmts = append(stmts, planIndexRecreation(parsed)...)

	return strings.Join(stmts, "\nGO\n"), nil
}

func alterTable(live *LiveTable) *utils.SQLBuilder {
	return utils.NewSQLBuilder().Alter("TABLE").QualifiedName(live.Schema, live.Name)
}

// planPrimaryKeyDrop drops the live primary key when its column set no
// longer matches the stored definition.
func planPrimaryKeyDrop(parsed *ParsedTable, live *LiveTable) []string {
	if live.PrimaryKey == nil || live.PrimaryKey.SameColumns(parsed.PrimaryKey) {
		return nil
	}

	return []string{
		alterTable(live).Raw("DROP CONSTRAINT").Name(live.PrimaryKey.Name).String(),
	}
}

// planColumnDrops removes live columns absent from the stored definition,
// dropping any constraints that depend on them first.
func (p *Planner) planColumnDrops(ctx context.Context, parsed *ParsedTable, live *LiveTable) ([]string, error) {
	var stmts []string

	dropped := make(map[string]bool)
	for _, col := range live.Columns {
		if findColumn(parsed.Columns, col.Name) != nil {
			continue
		}

		deps, err := p.source.ColumnDependents(ctx, live.Schema, live.Name, col.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to find constraints depending on column %s", col.Name)
		}

		for _, dep := range deps {
			key := strings.ToLower(dep.Schema + "." + dep.Table + "." + dep.Name)
			if dropped[key] {
				continue
			}
			dropped[key] = true

			stmts = append(stmts, utils.NewSQLBuilder().
				Alter("TABLE").
				QualifiedName(dep.Schema, dep.Table).
				Raw("DROP CONSTRAINT").
				Name(dep.Name).
				String())
		}

		stmts = append(stmts, alterTable(live).Raw("DROP COLUMN").Name(col.Name).String())
	}

	return stmts, nil
}

// planColumnChanges adds columns missing from the live table and alters
// columns whose type or nullability changed. Identity transitions cannot
// be expressed as ALTER COLUMN, so they are logged and skipped. Indexes
// depending on an altered column are dropped first; the recreation step
// restores them from the stored definition.
func (p *Planner) planColumnChanges(ctx context.Context, obj schema.Object, parsed *ParsedTable, live *LiveTable) ([]string, error) {
	var stmts []string

	droppedIndexes := make(map[string]bool)
	for _, fc := range parsed.Columns {
		lc := findColumn(live.Columns, fc.Name)
		if lc == nil {
			stmts = append(stmts, alterTable(live).Raw("ADD "+RenderColumn(fc)).String())
			continue
		}

		if !fc.NeedsAlter(*lc) {
			continue
		}

		if fc.Identity != nil || lc.Identity != nil {
			slog.Warn("cannot alter identity column, skipping",
				"table", obj.Key.String(),
				"column", fc.Name,
			)
			continue
		}

		names, err := p.source.ColumnIndexes(ctx, live.Schema, live.Name, lc.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to find indexes depending on column %s", lc.Name)
		}

		for _, name := range names {
			key := strings.ToLower(name)
			if droppedIndexes[key] {
				continue
			}
			droppedIndexes[key] = true

			stmts = append(stmts, utils.NewSQLBuilder().
				Drop("INDEX").
				IfExists().
				Name(name).
				On(live.Schema, live.Name).
				String())
		}

		nullability := "NOT NULL"
		if fc.Nullable {
			nullability = "NULL"
		}

		stmts = append(stmts, alterTable(live).
			Raw("ALTER COLUMN").
			Name(lc.Name).
			Raw(fc.TypeSQL).
			Raw(nullability).
			String())
	}

	return stmts, nil
}

// planPrimaryKeyAdd creates the primary key from the stored definition
// when its column set differs from live. Definitions that leave the
// constraint unnamed get a deterministic name.
func planPrimaryKeyAdd(obj schema.Object, parsed *ParsedTable, live *LiveTable) []string {
	if parsed.PrimaryKey == nil || len(parsed.PrimaryKey.Columns) == 0 {
		return nil
	}
	if parsed.PrimaryKey.SameColumns(live.PrimaryKey) {
		return nil
	}

	name := parsed.PrimaryKey.Name
	if name == "" {
		name = fmt.Sprintf("PK_%s_%s", obj.Schema, obj.Name)
	}

	return []string{
		alterTable(live).
			Raw("ADD CONSTRAINT").
			Name(name).
			Raw("PRIMARY KEY").
			Columns(parsed.PrimaryKey.Columns...).
			String(),
	}
}

// planCheckAdds creates check constraints present in the stored definition
// but missing from the live catalog. Checks are matched by name only; a
// changed expression under an existing name is left alone.
func planCheckAdds(parsed *ParsedTable, live *LiveTable) []string {
	liveNames := make(map[string]bool, len(live.Checks))
	for _, ck := range live.Checks {
		liveNames[strings.ToLower(ck.Name)] = true
	}

	var stmts []string
	for _, ck := range parsed.Checks {
		if liveNames[strings.ToLower(ck.Name)] {
			continue
		}

		stmts = append(stmts, alterTable(live).
			Raw("ADD CONSTRAINT").
			Name(ck.Name).
			Raw("CHECK "+ck.Definition).
			String())
	}

	return stmts
}

// planIndexRecreation re-creates every index from the stored definition,
// dropping each first so the script can be re-run safely.
func planIndexRecreation(parsed *ParsedTable) []string {
	var stmts []string

	for _, idx := range parsed.Indexes {
		stmts = append(stmts,
			utils.NewSQLBuilder().
				Drop("INDEX").
				IfExists().
				Name(idx.Name).
				On(idx.OnSchema, idx.OnTable).
				String(),
			idx.Statement,
		)
	}

	return stmts
}

func findColumn(cols []Column, name string) *Column {
	for i := range cols {
		if strings.EqualFold(cols[i].Name, name) {
			return &cols[i]
		}
	}
	return nil
}

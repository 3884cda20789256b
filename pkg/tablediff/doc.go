// Package tablediff evolves live SQL Server tables toward their stored
// CREATE TABLE definitions without losing data.
//
// Tables are the one object class that cannot be synchronized by
// DROP-and-recreate: rows must survive. Instead of replacing the object,
// the Planner parses the stored definition, reads the live structure, and
// emits an ordered ALTER script that converges the two.
//
// # Shared table model
//
// The Table, Column, PrimaryKey, and Index types double as the catalog
// extraction model: the catalog reader scans live tables into them and
// Render emits the canonical CREATE TABLE text stored in the repository.
// Keeping the emitter (render.go) and the definition parser
// (createtable.go) in one package is deliberate. The parser only ever
// reads text this emitter produced, so the two must change in lockstep.
//
// # Plan order
//
// GenerateAlterScript returns statements separated by GO lines, in this
// order:
//
//  1. DROP CONSTRAINT for the live primary key when its column list
//     differs from the stored one.
//  2. For every live column missing from the stored definition: drops of
//     dependent check, default, and foreign key constraints, then
//     DROP COLUMN.
//  3. ADD for new columns, ALTER COLUMN for type or nullability changes
//     (indexes keyed on or filtering by the column are dropped first so
//     SQL Server accepts the alteration). Identity transitions cannot be
//     expressed as ALTER COLUMN and are skipped with a warning.
//  4. ADD CONSTRAINT for the stored primary key when it differs.
//  5. ADD CONSTRAINT for stored check constraints the live table lacks.
//  6. The stored definition's CREATE INDEX statements, each preceded by
//     DROP INDEX IF EXISTS so a re-run is idempotent.
//
// If the table does not exist, the stored definition is returned
// unchanged; if nothing differs, the result is empty.
//
// # Example usage
//
//	planner := tablediff.New(client)
//
//	script, err := planner.GenerateAlterScript(ctx, obj)
//	if err != nil {
//		return err
//	}
//	if script == "" {
//		// live table already matches
//	}
package tablediff

// Package sqlref scans T-SQL definitions for references to other schema
// objects. The sync engine uses these references to order DDL before
// applying it: a foreign key target must exist before the referencing
// table, and a view must follow the views it selects from.
//
// The scan is purely lexical. Definitions are tokenized (comments,
// strings, and bracket quoting handled by the lexer) and identifiers
// following the relevant keywords are collected:
//
//   - TableRefs returns the targets of REFERENCES clauses, i.e. foreign
//     key parents.
//   - ObjectRefs returns the objects named after FROM and JOIN keywords.
//
// There is no grammar and no statement tree; the scanner over-collects
// (a FROM inside a subquery counts). The caller only builds edges between
// objects it is actually applying, so extra references fall away.
//
// # Example usage
//
//	scanner := sqlref.NewScanner("dbo")
//
//	refs := scanner.TableRefs(`CREATE TABLE [dbo].[orders] (
//		[user_id] int NOT NULL,
//		CONSTRAINT [FK_orders_users] FOREIGN KEY ([user_id]) REFERENCES [dbo].[users] ([id])
//	);`)
//	// refs: [{dbo users}]
package sqlref

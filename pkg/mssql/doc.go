// Package mssql reads and writes SQL Server schema objects.
//
// The package has three responsibilities:
//
// # Catalog extraction
//
// ListObjects enumerates every managed object in the bound database and
// renders a complete, reproducible definition for each one. Programmable
// modules (procedures, functions, views, triggers) keep their stored text
// and gain a SET ANSI_NULLS / SET QUOTED_IDENTIFIER header matching the
// module's recorded settings. Types, sequences, synonyms, and tables are
// rebuilt from catalog metadata into canonical CREATE statements, with
// system-generated constraint names rewritten to deterministic forms so
// that dumps of equivalent schemas compare equal.
//
// # Change application
//
// ApplyChanges executes a set of object changes inside a single
// transaction. Tables go through the alter planner so existing rows
// survive; everything else is dropped and re-created from its definition.
// Schemas referenced by the changes are created up front.
//
// # Live structure
//
// Client implements the planner's LiveSource, answering questions about a
// table's current columns, keys, and the constraints and indexes that
// depend on a column.
//
// Example usage:
//
//	client, err := mssql.New(ctx, mssql.Config{
//		Host:     "localhost",
//		Port:     1433,
//		User:     "sa",
//		Password: password,
//		Database: "inventory",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	objects, err := client.ListObjects(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, obj := range objects {
//		fmt.Println(obj.Key)
//	}
package mssql

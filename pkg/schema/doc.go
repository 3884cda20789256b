// Package schema defines the object model shared by every component of
// schemakeeper: the closed set of managed SQL Server object types, the
// identity key for an object, and the codec that maps object identities
// onto repository paths.
//
// # Object identity
//
// Every managed object is identified by the triple (type, schema, name).
// Schema and name are lowercased when the key is built; the DDL text an
// object carries is never case-folded here. The triple is the primary
// key everywhere: catalog scans, repository trees, and overlay joins all
// key by it.
//
// # Repository paths
//
// Objects live in the repository as "<root>/<TYPE>/<schema>/<name>.sql",
// where root is either the shared base tree or a per-database overlay
// subtree. ObjectToPath and PathToObject convert between the two
// representations and validate paths at the boundary:
//
//	obj := schema.NewObject(schema.TypeProcedure, "dbo", "usp_orders", &ddl)
//	path := schema.ObjectToPath(obj, "base")
//	// base/PROCEDURE/dbo/usp_orders.sql
//
//	obj, err := schema.PathToObject("base/PROCEDURE/dbo/usp_orders.sql", &ddl)
//	if err != nil {
//		// ErrInvalidFileType, ErrInvalidPath, or ErrInvalidObjectType
//	}
package schema

// Package sync keeps SQL Server databases and a git schema repository in
// agreement, in both directions.
//
// The repository holds one canonical definition per object under base/ and
// per-database overrides under diff/<prefix>/<db>/. An override file
// supersedes the base for that database; a zero-byte override marks the
// object as deliberately absent there. One lightweight tag per database
// points at the commit the database was last known to match.
//
// Three operations form the surface:
//
//   - InitRepo seeds an empty repository from a database catalog and tags
//     the first commit.
//   - SyncDBToRepo folds live database drift into the database's overlay.
//   - SyncRepoToDB replays repository changes between a database's tag and
//     a commitish onto the database, then moves the tag.
//
// SyncRepoToDB fans out over its targets with a bounded worker pool and
// never fails the batch for a single database; each target reports a
// SyncResult instead.
//
// # Usage Example
//
//	engine := sync.New(sync.Config{
//		Repo:      repo,
//		Databases: router,
//	})
//
//	results, err := engine.SyncRepoToDB(ctx, sync.Request{
//		Commitish: "HEAD",
//		DBs:       []string{"app", "reporting"},
//	})
//	if err != nil {
//		return err
//	}
//
//	for _, result := range results {
//		fmt.Printf("%s: %s (%s)\n", result.DB, result.Status, result.Message)
//	}
package sync

// Package gitrepo stores schema trees in a git repository and exposes the
// handful of operations synchronization needs: emptiness and tag checks,
// tree and file reads at a commitish, path diffs between two commitishes,
// and commit/tag/push writes.
//
// The repository on disk is shared state. Mutating operations (commits, tag
// moves, pushes) are serialized internally; reads address immutable commit
// objects and are safe to run concurrently with anything else.
//
// Remotes are optional. When the configured remote does not exist, pushes
// and fetches succeed without doing anything, so a purely local repository
// works for development and tests.
//
// # Usage Example
//
//	repo, err := gitrepo.Init("/path/to/repo", gitrepo.Options{
//		AuthorName:  "Schema Bot",
//		AuthorEmail: "schema-bot@example.com",
//	})
//	if err != nil {
//		return err
//	}
//
//	commit, err := repo.CommitAndPush(ctx, changes, "Repo initialized with DB: app", "main", []string{"app"})
//	if err != nil {
//		return err
//	}
//
//	files, err := repo.ReadTree(commit, "base")
package gitrepo

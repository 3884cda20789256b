package sync

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrRepoNotEmpty is returned when InitRepo runs against a repository
	// that already has commits.
	ErrRepoNotEmpty = errors.New("repository already has commits")

	// ErrNoObjects is returned when the source database holds nothing to
	// track.
	ErrNoObjects = errors.New("no objects found in database")

	// ErrNotOnboarded is returned when a database has no tag in the
	// repository.
	ErrNotOnboarded = errors.New("database is not onboarded")

	// ErrDependencyCycle is returned when the objects to apply reference
	// each other in a loop and no valid order exists.
	ErrDependencyCycle = errors.New("dependency cycle detected")
)

// OutOfSyncError reports that a database drifted from the state recorded at
// its tag while force was not set. Changes holds the overlay mutations that
// would capture the drift.
type OutOfSyncError struct {
	DB      string
	Changes []RepoChange
}

func (e *OutOfSyncError) Error() string {
	paths := make([]string, 0, len(e.Changes))
	for _, change := range e.Changes {
		paths = append(paths, change.Path)
	}

	return fmt.Sprintf("database %s is out of sync with its tag: %s", e.DB, strings.Join(paths, ", "))
}

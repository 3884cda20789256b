package sync

import (
	"fmt"
	"sort"
	"strings"
)

type (
	// Status represents the outcome of one per-database synchronization
	// task.
	Status string

	// SyncResult is the per-database outcome of a fan-out synchronization.
	// A batch never fails as a whole for one database; it reports one of
	// these per target instead.
	SyncResult struct {
		// DB is the target database name
		DB string

		// Status indicates how the task ended
		Status Status

		// Message carries a human-readable account of what happened, or
		// would have happened for dry runs
		Message string
	}
)

const (
	// StatusSynced indicates changes were applied and the tag was moved
	StatusSynced Status = "SYNCED"

	// StatusSuccessDryRun indicates the task completed without mutating
	// the database or its tag
	StatusSuccessDryRun Status = "SUCCESS_DRY_RUN"

	// StatusSkippedNotOnboarded indicates the database has no tag yet
	StatusSkippedNotOnboarded Status = "SKIPPED_NOT_ONBOARDED"

	// StatusSkippedOutOfSync indicates uncaptured drift blocked the task
	StatusSkippedOutOfSync Status = "SKIPPED_OUT_OF_SYNC"

	// StatusFailed indicates the task errored
	StatusFailed Status = "FAILED"
)

// Summarize renders a one-line count per status bucket, e.g.
// "2 SYNCED, 1 FAILED".
func Summarize(results []SyncResult) string {
	counts := make(map[Status]int, len(results))
	for _, result := range results {
		counts[result.Status]++
	}

	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)

	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%d %s", counts[Status(status)], status))
	}

	return strings.Join(parts, ", ")
}

package utils

import "strings"

// SplitBatches splits a T-SQL script into batches on GO delimiter lines.
// A delimiter is a line containing only the word GO (any case, surrounding
// whitespace allowed), matching how SQL Server tooling treats scripts.
// Empty batches are dropped.
//
// Example:
//
//	batches := utils.SplitBatches("CREATE VIEW v AS SELECT 1;\nGO\nGRANT SELECT ON v TO app;\nGO")
//	// ["CREATE VIEW v AS SELECT 1;", "GRANT SELECT ON v TO app;"]
func SplitBatches(script string) []string {
	var (
		batches []string
		current []string
	)

	flush := func() {
		batch := strings.TrimSpace(strings.Join(current, "\n"))
		if batch != "" {
			batches = append(batches, batch)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(script, "\n") {
		if strings.EqualFold(strings.TrimSpace(line), "GO") {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return batches
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/gitrepo"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/pseudomuto/schemakeeper/pkg/sync"
	"github.com/urfave/cli/v3"
)

// status creates the status command for showing how databases relate to the
// schema repository.
//
// For every target it reports whether the database is onboarded (has a tag in
// the repository) and which override mutations a 'schemakeeper sync' would
// record right now. A clean report means the live catalog matches the
// database's effective repository state exactly.
//
// Example usage:
//
//	# Check every configured database
//	schemakeeper status
//
//	# Check one database
//	schemakeeper status --db app
func status(cfg *config.Config, matcher *ignore.Matcher) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show how databases relate to the repository",
		Description: `Display each database's standing against the schema repository.

The status command shows:
- Whether the database has been onboarded (tagged in the repository)
- Uncaptured changes a sync would record, listed per repository path
- A recommendation for the next command to run

This command is useful for:
- Checking for uncaptured drift before applying repository state
- Verifying that a sync or apply left everything consistent
- Auditing which databases a fleet-wide rollout would touch`,
		Before: requireConfig(cfg),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "db",
				Usage: "database to inspect (repeatable, defaults to the configured list)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStatus(ctx, cmd, cfg, matcher)
		},
	}
}

func runStatus(ctx context.Context, cmd *cli.Command, cfg *config.Config, matcher *ignore.Matcher) error {
	dbs, err := targetDatabases(cmd, cfg)
	if err != nil {
		return err
	}

	slog.Info("Checking schema status", "dbs", dbs)

	engine, closer, err := buildEngine(cfg, matcher, false)
	if err != nil {
		if gitrepo.IsNotExists(err) {
			showUninitializedStatus(cfg)
			return nil
		}

		return err
	}
	defer func() { _ = closer() }()

	fmt.Println("Schema Status")
	fmt.Printf("Repository: %s (branch %s)\n", cfg.Repo.Path, cfg.Repo.Branch)
	fmt.Println()

	var drifted, pending int
	for _, db := range dbs {
		target, err := engine.Status(ctx, db)
		if err != nil {
			return errors.Wrapf(err, "failed to check status of %s", db)
		}

		showTargetStatus(target)

		if !target.Onboarded {
			pending++
		} else if len(target.Drift) > 0 {
			drifted++
		}
	}

	fmt.Println()
	showRecommendations(drifted, pending)
	return nil
}

func showUninitializedStatus(cfg *config.Config) {
	fmt.Println("❗ Schema repository not initialized")
	fmt.Printf("   No repository found at %s\n", cfg.Repo.Path)
	fmt.Println("   Run 'schemakeeper bootstrap --db <name>' to create it")
}

func showTargetStatus(target *sync.TargetStatus) {
	switch {
	case !target.Onboarded:
		fmt.Printf("❗ %s: not onboarded\n", target.DB)
	case len(target.Drift) == 0:
		fmt.Printf("✅ %s: in sync\n", target.DB)
	default:
		fmt.Printf("⏳ %s: %d uncaptured change(s)\n", target.DB, len(target.Drift))
		for _, change := range target.Drift {
			fmt.Printf("     %s %s\n", change.Verb(), change.Path)
		}
	}
}

func showRecommendations(drifted, pending int) {
	switch {
	case pending > 0:
		fmt.Println("💡 Run 'schemakeeper sync --db <name>' to onboard databases without a tag")
	case drifted > 0:
		fmt.Println("💡 Run 'schemakeeper sync' to capture the changes above")
	default:
		fmt.Println("✅ All databases are in sync with the repository")
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/pseudomuto/schemakeeper/pkg/sync"
	"github.com/urfave/cli/v3"
)

// apply returns a CLI command that pushes repository schema state out to
// databases. For each target it computes the delta between the target's tag
// and the requested revision, executes it in dependency order, and advances
// the tag. Targets run concurrently and report individual outcomes rather
// than failing the batch.
//
// A database that drifted from its tag is skipped to protect uncaptured
// changes; --force overrides that. Applying a revision other than HEAD
// without --force downgrades the run to a dry run.
func apply(cfg *config.Config, matcher *ignore.Matcher) *cli.Command {
	return &cli.Command{
		Name:   "apply",
		Usage:  "Apply repository schema state to databases",
		Before: requireConfig(cfg),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "db",
				Usage: "database to update (repeatable, defaults to the configured list)",
			},
			&cli.StringFlag{
				Name:  "ref",
				Usage: "commit, tag, or branch to apply",
				Value: "HEAD",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "report the statements without executing them",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "apply even when a database drifted from its tag",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dbs, err := targetDatabases(cmd, cfg)
			if err != nil {
				return err
			}

			slog.Info("Applying repository state", "ref", cmd.String("ref"), "dbs", dbs)

			engine, closer, err := buildEngine(cfg, matcher, false)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			results, err := engine.SyncRepoToDB(ctx, sync.Request{
				Commitish: cmd.String("ref"),
				DBs:       dbs,
				DryRun:    cmd.Bool("dry-run"),
				Force:     cmd.Bool("force"),
			})
			if err != nil {
				return err
			}

			failed := 0
			for _, result := range results {
				fmt.Printf("%s %s: %s\n", statusIcon(result.Status), result.DB, result.Status)
				if result.Message != "" {
					fmt.Printf("   %s\n", strings.ReplaceAll(result.Message, "\n", "\n   "))
				}

				if result.Status == sync.StatusFailed {
					failed++
				}
			}

			fmt.Println()
			fmt.Println(sync.Summarize(results))

			if failed > 0 {
				return errors.Errorf("%d database(s) failed to sync", failed)
			}

			return nil
		},
	}
}

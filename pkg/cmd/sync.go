package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/urfave/cli/v3"
)

// syncCmd returns a CLI command that captures live database changes into the
// repository. Each target's catalog is compared against its effective
// repository state (base overlaid with its overrides) and the differences are
// committed to the target's override tree, advancing its tag. Databases
// without a tag are onboarded on their first capture.
//
// Targets are processed one at a time so each lands in its own commit.
func syncCmd(cfg *config.Config, matcher *ignore.Matcher) *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Capture database schema changes into the repository",
		Before: requireConfig(cfg),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "db",
				Usage: "database to capture (repeatable, defaults to the configured list)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "report pending changes without committing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dbs, err := targetDatabases(cmd, cfg)
			if err != nil {
				return err
			}

			slog.Info("Syncing databases to repository", "dbs", dbs, "dryRun", cmd.Bool("dry-run"))

			engine, closer, err := buildEngine(cfg, matcher, false)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			for _, db := range dbs {
				desc, err := engine.SyncDBToRepo(ctx, db, cmd.Bool("dry-run"))
				if err != nil {
					return errors.Wrapf(err, "failed to sync %s", db)
				}

				fmt.Println(desc)
			}

			return nil
		},
	}
}

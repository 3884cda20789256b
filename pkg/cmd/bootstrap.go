package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/urfave/cli/v3"
)

// bootstrap returns a CLI command that seeds an empty schema repository from
// an existing SQL Server database. This is the first capture for a fleet; it
// establishes the base tree every other database is compared against.
//
// Prerequisites:
//  1. Project must already be initialized with `schemakeeper init`
//  2. schemakeeper.yaml must exist in the current directory
//
// The bootstrap process:
//  1. Creates the repository when the configured path has none yet
//  2. Connects to the configured SQL Server and reads the database catalog
//  3. Writes one canonical SQL file per object under base/
//  4. Commits on the configured branch and pushes when a remote is set
//  5. Tags the commit with the lowercased database name
//
// The repository must have no commits yet. Additional databases are onboarded
// with 'schemakeeper sync', which records only how they differ from base.
//
// Example usage:
//
//	# Initialize the project, then capture the first database
//	schemakeeper init
//	schemakeeper bootstrap --db app
func bootstrap(cfg *config.Config, matcher *ignore.Matcher) *cli.Command {
	return &cli.Command{
		Name:   "bootstrap",
		Usage:  "Seed an empty schema repository from an existing database",
		Before: requireConfig(cfg),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "the database to capture",
				Required: true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dbName := cmd.String("db")
			slog.Info("Bootstrapping schema repository", "db", dbName, "repo", cfg.Repo.Path)

			engine, closer, err := buildEngine(cfg, matcher, true)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			desc, err := engine.InitRepo(ctx, dbName)
			if err != nil {
				return err
			}

			fmt.Println(desc)
			return nil
		},
	}
}

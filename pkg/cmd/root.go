package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates and executes the main schemakeeper CLI application with the
// registered commands and command-line arguments. This function serves as the
// main entry point for all CLI operations and handles global configuration.
//
// The function creates a CLI application with:
//   - Global --dir flag for specifying project directory
//   - Command registration and routing
//   - Context propagation for cancellation support
//
// Global Flags:
//   - --dir, -d: Project directory (defaults to current directory)
//
// Commands that operate on a project expect schemakeeper.yaml in the working
// directory; they guard for it with requireConfig and fail with a pointer to
// 'schemakeeper init' when it is missing.
//
// Example usage:
//
//	# Run in current directory
//	schemakeeper status
//
//	# Run in specific directory
//	schemakeeper --dir /path/to/project sync --db app
//
// The application exits non-zero if command execution fails.
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := &cli.Command{
		Name:  "schemakeeper",
		Usage: "Keep SQL Server schemas and a git repository in sync",
		Description: `schemakeeper is a CLI tool that captures SQL Server schema state into a
git repository and applies repository state back to your databases, using
per-database override trees to track intentional drift across a fleet.`,
		Version: p.Version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the project directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			// Change to project directory first
			if err := os.Chdir(cmd.String("dir")); err != nil {
				return ctx, err
			}

			return ctx, nil
		},
		Commands: p.Commands,
	}

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

func requireConfig(cfg *config.Config) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cfg == nil {
			return ctx, errors.New("schemakeeper.yaml not found")
		}

		return ctx, nil
	}
}

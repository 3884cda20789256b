package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/project"
	"github.com/urfave/cli/v3"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Initialize a new schemakeeper project",
		ArgsUsage: "[dir]",
		Description: `Creates the project scaffolding: schemakeeper.yaml with connection and
repository settings, a starter .syncignore, and the schema repository
directory. Existing files are left untouched, so running init in a project
that already exists is safe.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "db",
				Usage: "database name to record in the configuration (repeatable)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "."
			if cmd.Args().Len() > 0 {
				dir = cmd.Args().First()
			}

			if err := project.New(dir).Initialize(project.InitOptions{
				Databases: cmd.StringSlice("db"),
			}); err != nil {
				return err
			}

			fmt.Printf("Initialized schemakeeper project in %s\n", dir)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Printf("  1. Review schemakeeper.yaml and export %s\n", consts.DefaultPasswordEnv)
			fmt.Println("  2. Run 'schemakeeper bootstrap --db <name>' to capture an existing database")

			return nil
		},
	}
}

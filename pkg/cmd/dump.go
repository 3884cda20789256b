package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/urfave/cli/v3"
)

// dump returns a CLI command that renders the live catalog of a database in
// its canonical form, without touching the repository. The output is the
// exact text a capture would store, which makes it handy for inspecting what
// the extraction layer sees.
//
// Example usage:
//
//	# Print every object as one script
//	schemakeeper dump --db app
//
//	# Write one file per object, laid out like the repository's base tree
//	schemakeeper dump --db app --out /tmp/app-schema
func dump(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:   "dump",
		Usage:  "Print the canonical DDL of a database",
		Before: requireConfig(cfg),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "the database to dump",
				Required: true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "directory to write per-object files into instead of stdout",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			router := newRouter(cfg)
			defer func() { _ = router.Close() }()

			client, err := router.Client(ctx, cmd.String("db"))
			if err != nil {
				return err
			}

			objects, err := client.ListObjects(ctx)
			if err != nil {
				return errors.Wrapf(err, "failed to read catalog of %s", cmd.String("db"))
			}

			if out := cmd.String("out"); out != "" {
				return writeObjectTree(out, objects)
			}

			for _, obj := range objects {
				fmt.Printf("-- %s\n%s\n\n", obj.Key, strings.TrimRight(*obj.Definition, "\n"))
			}

			return nil
		},
	}
}

// writeObjectTree writes one file per object under dir using the
// TYPE/schema/name.sql layout the repository's base tree uses.
func writeObjectTree(dir string, objects []schema.Object) error {
	for _, obj := range objects {
		path := schema.ObjectToPath(obj, dir)
		if err := os.MkdirAll(filepath.Dir(path), consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
		}

		if err := os.WriteFile(path, []byte(*obj.Definition), consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}

	fmt.Printf("Wrote %d object(s) to %s\n", len(objects), dir)
	return nil
}

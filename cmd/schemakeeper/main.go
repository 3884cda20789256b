package main

import (
	"context"
	"os"
	"time"

	"github.com/pseudomuto/schemakeeper/pkg/cmd"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	fx.New(
		fx.NopLogger,
		// Commands block in the start hook until they finish, so the start
		// timeout bounds the longest allowed run.
		fx.StartTimeout(24*time.Hour),
		fx.Supply(&cmd.Version{
			Version:   version,
			Commit:    commit,
			Timestamp: date,
		}),
		fx.Provide(
			func() context.Context { return context.Background() },
			func() []string { return os.Args },
		),
		config.Module,
		cmd.Module,
	).Run()
}

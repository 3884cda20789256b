package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/config"
	"github.com/pseudomuto/schemakeeper/pkg/gitrepo"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/pseudomuto/schemakeeper/pkg/mssql"
	"github.com/pseudomuto/schemakeeper/pkg/sync"
	"github.com/urfave/cli/v3"
)

// routerAdapter bridges *mssql.Router to the engine's DatabaseRouter port.
// The extra hop exists because Client returns the concrete type.
type routerAdapter struct {
	router *mssql.Router
}

func (r routerAdapter) Database(ctx context.Context, name string) (sync.Database, error) {
	return r.router.Client(ctx, name)
}

// newRouter builds a database router from the configured connection settings,
// reading the password from the configured environment variable.
func newRouter(cfg *config.Config) *mssql.Router {
	return mssql.NewRouter(mssql.Config{
		Host:          cfg.SQLServer.Host,
		Port:          cfg.SQLServer.Port,
		User:          cfg.SQLServer.User,
		Password:      cfg.SQLServer.Password(),
		DefaultSchema: cfg.SQLServer.DefaultSchema,
	})
}

// openRepository opens the configured schema repository, creating it first
// when create is set.
func openRepository(cfg *config.Config, create bool) (*gitrepo.Repository, error) {
	opts := gitrepo.Options{
		Remote:      cfg.Repo.Remote,
		AuthorName:  cfg.Repo.AuthorName,
		AuthorEmail: cfg.Repo.AuthorEmail,
	}

	if create {
		return gitrepo.Init(cfg.Repo.Path, opts)
	}

	return gitrepo.Open(cfg.Repo.Path, opts)
}

// buildEngine assembles the sync engine from the project configuration. The
// returned closer releases the router's connections and should be deferred by
// the caller.
func buildEngine(cfg *config.Config, matcher *ignore.Matcher, create bool) (*sync.Engine, func() error, error) {
	repo, err := openRepository(cfg, create)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open schema repository at %s", cfg.Repo.Path)
	}

	router := newRouter(cfg)
	engine := sync.New(sync.Config{
		Repo:          repo,
		Databases:     routerAdapter{router: router},
		Ignore:        matcher,
		Branch:        cfg.Repo.Branch,
		DiffPrefix:    cfg.Repo.DiffPrefix,
		DefaultSchema: cfg.SQLServer.DefaultSchema,
		Workers:       cfg.Workers,
	})

	return engine, router.Close, nil
}

// targetDatabases resolves which databases a command operates on: explicit
// --db selections when given, otherwise the configured database list.
func targetDatabases(cmd *cli.Command, cfg *config.Config) ([]string, error) {
	dbs := cmd.StringSlice("db")
	if len(dbs) == 0 {
		dbs = cfg.Databases
	}

	if len(dbs) == 0 {
		return nil, errors.New("no databases selected, pass --db or set databases in schemakeeper.yaml")
	}

	return dbs, nil
}

// statusIcon maps a sync outcome to the marker used in command output.
func statusIcon(status sync.Status) string {
	switch status {
	case sync.StatusSynced, sync.StatusSuccessDryRun:
		return "✅"
	case sync.StatusFailed:
		return "❌"
	default:
		return "⏳"
	}
}

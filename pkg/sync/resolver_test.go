package sync_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/gitrepo"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/pseudomuto/schemakeeper/pkg/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	usersV3DDL = "CREATE TABLE [dbo].[users] (\n    [id] BIGINT NOT NULL\n)"
	extraDDL   = "CREATE TABLE [dbo].[extra] (\n    [id] INT NOT NULL\n)"
)

func newEngineWithIgnore(t *testing.T, repo *fakeRepo, dbs map[string]*fakeDatabase, patterns ...string) *sync.Engine {
	t.Helper()

	if len(patterns) == 0 {
		return newEngine(repo, dbs)
	}

	matcher, err := ignore.New(patterns...)
	require.NoError(t, err)

	return sync.New(sync.Config{
		Repo:      repo,
		Databases: &fakeRouter{dbs: dbs},
		Ignore:    matcher,
	})
}

func TestEngineDriftResolution(t *testing.T) {
	const (
		basePath    = "base/TABLE/dbo/users.sql"
		overlayPath = "diff/overrides/app/TABLE/dbo/users.sql"
	)

	tests := []struct {
		name     string
		objects  []schema.Object
		files    map[string]*string
		patterns []string
		expected []string
	}{
		{
			name: "repository reflects the database",
			objects: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersDDL)),
			},
			files: map[string]*string{basePath: def(usersDDL)},
		},
		{
			name: "stale override deleted when database matches base",
			objects: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersDDL)),
			},
			files: map[string]*string{
				basePath:    def(usersDDL),
				overlayPath: def(usersV2DDL),
			},
			expected: []string{"delete " + overlayPath},
		},
		{
			name:     "missing object tombstoned",
			files:    map[string]*string{basePath: def(usersDDL)},
			expected: []string{"tombstone " + overlayPath},
		},
		{
			name: "existing tombstone left alone",
			files: map[string]*string{
				basePath:    def(usersDDL),
				overlayPath: def(""),
			},
		},
		{
			name: "divergent object captured",
			objects: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersV2DDL)),
			},
			files:    map[string]*string{basePath: def(usersDDL)},
			expected: []string{"write " + overlayPath},
		},
		{
			name: "override already captures divergence",
			objects: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersV2DDL)),
			},
			files: map[string]*string{
				basePath:    def(usersDDL),
				overlayPath: def(usersV2DDL),
			},
		},
		{
			name: "equivalence ignores formatting",
			objects: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def("create table users (\n    id int not null\n)")),
			},
			files: map[string]*string{basePath: def(usersDDL)},
		},
		{
			name: "new object captured",
			objects: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersDDL)),
				schema.NewObject(schema.TypeTable, "dbo", "orders", def(ordersDDL)),
			},
			files:    map[string]*string{basePath: def(usersDDL)},
			expected: []string{"write diff/overrides/app/TABLE/dbo/orders.sql"},
		},
		{
			name: "ignored objects skipped",
			objects: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersDDL)),
				schema.NewObject(schema.TypeTrigger, "dbo", "trg_audit", def(auditDDL)),
			},
			files:    map[string]*string{basePath: def(usersDDL)},
			patterns: []string{"**/TRIGGER/**"},
		},
		{
			name: "changes ordered by key",
			objects: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersV2DDL)),
				schema.NewObject(schema.TypeTable, "dbo", "orders", def(ordersDDL)),
			},
			files: map[string]*string{basePath: def(usersDDL)},
			expected: []string{
				"write diff/overrides/app/TABLE/dbo/orders.sql",
				"write " + overlayPath,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			commitFiles(t, repo, tt.files)
			repo.tags["app"] = 0

			db := &fakeDatabase{objects: tt.objects}
			engine := newEngineWithIgnore(t, repo, map[string]*fakeDatabase{"app": db}, tt.patterns...)

			status, err := engine.Status(context.Background(), "app")
			require.NoError(t, err)

			var got []string
			for _, change := range status.Drift {
				got = append(got, fmt.Sprintf("%s %s", change.Verb(), change.Path))
			}

			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEngineSyncRepoToDBTranslatesChanges(t *testing.T) {
	const (
		basePath    = "base/TABLE/dbo/users.sql"
		overlayPath = "diff/overrides/app/TABLE/dbo/users.sql"
	)

	tests := []struct {
		name     string
		initial  map[string]*string
		update   map[string]*string
		patterns []string
		expected []schema.Object
	}{
		{
			name:    "added base object applied",
			initial: map[string]*string{},
			update:  map[string]*string{basePath: def(usersDDL)},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersDDL)),
			},
		},
		{
			name:    "modified base object applied",
			initial: map[string]*string{basePath: def(usersDDL)},
			update:  map[string]*string{basePath: def(usersV2DDL)},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersV2DDL)),
			},
		},
		{
			name: "base change masked by override",
			initial: map[string]*string{
				basePath:    def(usersDDL),
				overlayPath: def(usersV2DDL),
			},
			update: map[string]*string{basePath: def(usersV3DDL)},
		},
		{
			name:    "deleted base object dropped",
			initial: map[string]*string{basePath: def(usersDDL)},
			update:  map[string]*string{basePath: nil},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", nil),
			},
		},
		{
			name: "base deletion masked by override",
			initial: map[string]*string{
				basePath:    def(usersDDL),
				overlayPath: def(usersV2DDL),
			},
			update: map[string]*string{basePath: nil},
		},
		{
			name:    "added override applied",
			initial: map[string]*string{basePath: def(usersDDL)},
			update:  map[string]*string{overlayPath: def(usersV2DDL)},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersV2DDL)),
			},
		},
		{
			name:    "tombstone drops the object",
			initial: map[string]*string{basePath: def(usersDDL)},
			update:  map[string]*string{overlayPath: def("")},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", nil),
			},
		},
		{
			name: "removed override falls back to base",
			initial: map[string]*string{
				basePath:    def(usersDDL),
				overlayPath: def(usersV2DDL),
			},
			update: map[string]*string{overlayPath: nil},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersDDL)),
			},
		},
		{
			name: "removed override without base drops the object",
			initial: map[string]*string{
				"diff/overrides/app/TABLE/dbo/extra.sql": def(extraDDL),
			},
			update: map[string]*string{
				"diff/overrides/app/TABLE/dbo/extra.sql": nil,
			},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "extra", nil),
			},
		},
		{
			name:    "override change supersedes base change",
			initial: map[string]*string{basePath: def(usersDDL)},
			update: map[string]*string{
				basePath:    def(usersV3DDL),
				overlayPath: def(usersV2DDL),
			},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersV2DDL)),
			},
		},
		{
			name:    "ignored paths skipped",
			initial: map[string]*string{basePath: def(usersDDL)},
			update: map[string]*string{
				basePath:                         def(usersV2DDL),
				"base/TRIGGER/dbo/trg_audit.sql": def(auditDDL),
			},
			patterns: []string{"**/TRIGGER/**"},
			expected: []schema.Object{
				schema.NewObject(schema.TypeTable, "dbo", "users", def(usersV2DDL)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			commitFiles(t, repo, tt.initial)
			repo.tags["app"] = 0
			commitFiles(t, repo, tt.update)

			db := &fakeDatabase{}
			engine := newEngineWithIgnore(t, repo, map[string]*fakeDatabase{"app": db}, tt.patterns...)

			results, err := engine.SyncRepoToDB(context.Background(), sync.Request{DBs: []string{"app"}, Force: true})
			require.NoError(t, err)
			require.Len(t, results, 1)
			require.Equal(t, sync.StatusSynced, results[0].Status, results[0].Message)

			require.Len(t, db.applied, 1)
			if len(tt.expected) == 0 {
				assert.Empty(t, db.applied[0])
			} else {
				assert.Equal(t, tt.expected, db.applied[0])
			}
		})
	}
}

func TestEngineSyncRepoToDBTranslatesRenames(t *testing.T) {
	repo := newFakeRepo()
	commitFiles(t, repo, map[string]*string{"base/TABLE/dbo/old.sql": def(usersDDL)})
	repo.tags["app"] = 0
	commitFiles(t, repo, map[string]*string{
		"base/TABLE/dbo/old.sql": nil,
		"base/TABLE/dbo/new.sql": def(usersDDL),
	})

	repo.diffFunc = func(from, to string, pathFilters []string) ([]gitrepo.DiffEntry, error) {
		return []gitrepo.DiffEntry{{
			Type:    gitrepo.ChangeRename,
			OldPath: "base/TABLE/dbo/old.sql",
			NewPath: "base/TABLE/dbo/new.sql",
		}}, nil
	}

	db := &fakeDatabase{}
	engine := newEngine(repo, map[string]*fakeDatabase{"app": db})

	results, err := engine.SyncRepoToDB(context.Background(), sync.Request{DBs: []string{"app"}, Force: true})
	require.NoError(t, err)
	require.Equal(t, sync.StatusSynced, results[0].Status, results[0].Message)

	require.Len(t, db.applied, 1)
	assert.Equal(t, []schema.Object{
		schema.NewObject(schema.TypeTable, "dbo", "old", nil),
		schema.NewObject(schema.TypeTable, "dbo", "new", def(usersDDL)),
	}, db.applied[0])
}

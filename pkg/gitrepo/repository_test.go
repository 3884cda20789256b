package gitrepo_test

import (
	"context"
	"testing"

	"github.com/pseudomuto/schemakeeper/pkg/gitrepo"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *gitrepo.Repository {
	t.Helper()

	repo, err := gitrepo.Init(t.TempDir(), gitrepo.Options{
		AuthorName:  "Tester",
		AuthorEmail: "tester@example.com",
	})
	require.NoError(t, err)

	return repo
}

func commitFiles(t *testing.T, repo *gitrepo.Repository, message string, tags []string, files map[string]string) string {
	t.Helper()

	changes := make([]gitrepo.FileChange, 0, len(files))
	for path, content := range files {
		changes = append(changes, gitrepo.FileChange{Path: path, Content: []byte(content)})
	}

	commit, err := repo.CommitAndPush(context.Background(), changes, message, "main", tags)
	require.NoError(t, err)

	return commit
}

func TestRepositoryInitAndCommit(t *testing.T) {
	repo := newTestRepo(t)

	empty, err := repo.IsEmpty()
	require.NoError(t, err)
	require.True(t, empty)

	commit := commitFiles(t, repo, "Repo initialized with DB: app", []string{"app"}, map[string]string{
		"base/TABLE/dbo/users.sql":  "CREATE TABLE [dbo].[users] (\n  [id] int NOT NULL\n);",
		"base/VIEW/dbo/v_users.sql": "CREATE VIEW [dbo].[v_users] AS SELECT [id] FROM [dbo].[users];",
	})

	empty, err = repo.IsEmpty()
	require.NoError(t, err)
	require.False(t, empty)

	head, err := repo.IsHead(commit)
	require.NoError(t, err)
	require.True(t, head)

	head, err = repo.IsHead("app")
	require.NoError(t, err)
	require.True(t, head)

	exists, err := repo.TagExists("app")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.TagExists("other")
	require.NoError(t, err)
	require.False(t, exists)

	// the first commit lands on the requested branch, not the init default
	_, found, err := repo.ReadFile("main", "base/TABLE/dbo/users.sql")
	require.NoError(t, err)
	require.True(t, found)
}

func TestRepositoryIsHeadOnEmptyRepo(t *testing.T) {
	repo := newTestRepo(t)

	head, err := repo.IsHead("HEAD")
	require.NoError(t, err)
	require.False(t, head)
}

func TestRepositoryReadFile(t *testing.T) {
	repo := newTestRepo(t)

	commit := commitFiles(t, repo, "seed", nil, map[string]string{
		"base/TABLE/dbo/users.sql":               "CREATE TABLE [dbo].[users] (\n  [id] int NOT NULL\n);",
		"diff/overrides/app/TABLE/dbo/users.sql": "",
	})

	content, found, err := repo.ReadFile(commit, "base/TABLE/dbo/users.sql")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "CREATE TABLE [dbo].[users] (\n  [id] int NOT NULL\n);", string(content))

	// a zero-byte file is present, not missing
	content, found, err = repo.ReadFile("HEAD", "diff/overrides/app/TABLE/dbo/users.sql")
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, content)

	_, found, err = repo.ReadFile(commit, "base/TABLE/dbo/missing.sql")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRepositoryReadTree(t *testing.T) {
	repo := newTestRepo(t)

	commit := commitFiles(t, repo, "seed", nil, map[string]string{
		"base/TABLE/dbo/users.sql":               "users",
		"base/VIEW/dbo/v_users.sql":              "view",
		"diff/overrides/app/TABLE/dbo/users.sql": "override",
		"README.md":                              "docs",
	})

	tests := []struct {
		name   string
		folder string
		want   map[string][]byte
	}{
		{
			name:   "base tree keeps repository-relative paths",
			folder: "base",
			want: map[string][]byte{
				"base/TABLE/dbo/users.sql":  []byte("users"),
				"base/VIEW/dbo/v_users.sql": []byte("view"),
			},
		},
		{
			name:   "overlay tree",
			folder: "diff/overrides/app",
			want: map[string][]byte{
				"diff/overrides/app/TABLE/dbo/users.sql": []byte("override"),
			},
		},
		{
			name:   "missing folder is empty",
			folder: "diff/overrides/reporting",
			want:   map[string][]byte{},
		},
		{
			name:   "whole tree",
			folder: "",
			want: map[string][]byte{
				"base/TABLE/dbo/users.sql":               []byte("users"),
				"base/VIEW/dbo/v_users.sql":              []byte("view"),
				"diff/overrides/app/TABLE/dbo/users.sql": []byte("override"),
				"README.md":                              []byte("docs"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ReadTree(commit, tt.folder)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRepositoryDiff(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := commitFiles(t, repo, "one", nil, map[string]string{
		"base/TABLE/dbo/users.sql":  "CREATE TABLE [dbo].[users] (\n  [id] int NOT NULL\n);",
		"base/TABLE/dbo/orders.sql": "CREATE TABLE [dbo].[orders] (\n  [id] int NOT NULL,\n  [total] decimal(10,2) NOT NULL\n);",
		"README.md":                 "docs",
	})

	second, err := repo.CommitAndPush(ctx, []gitrepo.FileChange{
		{Path: "base/TABLE/dbo/users.sql", Content: []byte("CREATE TABLE [dbo].[users] (\n  [id] int NOT NULL,\n  [email] varchar(320) NOT NULL\n);")},
		{Path: "base/TABLE/dbo/orders.sql", Content: nil},
		{Path: "base/VIEW/dbo/v_users.sql", Content: []byte("CREATE VIEW [dbo].[v_users]\nAS\nSELECT [id], [email]\nFROM [dbo].[users];")},
	}, "two", "main", nil)
	require.NoError(t, err)

	entries, err := repo.Diff(first, second, nil)
	require.NoError(t, err)

	types := make(map[string]gitrepo.ChangeType, len(entries))
	for _, entry := range entries {
		types[entry.Path()] = entry.Type
	}

	require.Equal(t, map[string]gitrepo.ChangeType{
		"base/TABLE/dbo/users.sql":  gitrepo.ChangeModify,
		"base/TABLE/dbo/orders.sql": gitrepo.ChangeDelete,
		"base/VIEW/dbo/v_users.sql": gitrepo.ChangeAdd,
	}, types)

	filtered, err := repo.Diff(first, second, []string{"base/VIEW"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, gitrepo.ChangeAdd, filtered[0].Type)
	require.Equal(t, "base/VIEW/dbo/v_users.sql", filtered[0].NewPath)

	_, found, err := repo.ReadFile(second, "base/TABLE/dbo/orders.sql")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRepositoryDiffDetectsExactRename(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	definition := "CREATE VIEW [dbo].[v_users] AS SELECT [id] FROM [dbo].[users];"
	first := commitFiles(t, repo, "one", nil, map[string]string{
		"base/VIEW/dbo/v_users.sql": definition,
	})

	second, err := repo.CommitAndPush(ctx, []gitrepo.FileChange{
		{Path: "base/VIEW/dbo/v_users.sql", Content: nil},
		{Path: "diff/overrides/app/VIEW/dbo/v_users.sql", Content: []byte(definition)},
	}, "move to overlay", "main", nil)
	require.NoError(t, err)

	entries, err := repo.Diff(first, second, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	require.Equal(t, gitrepo.ChangeRename, entry.Type)
	require.Equal(t, "base/VIEW/dbo/v_users.sql", entry.OldPath)
	require.Equal(t, "diff/overrides/app/VIEW/dbo/v_users.sql", entry.NewPath)
	require.Equal(t, entry.OldBlob, entry.NewBlob)
	require.NotEmpty(t, entry.OldBlob)
}

func TestRepositoryMoveTag(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := commitFiles(t, repo, "one", []string{"app"}, map[string]string{
		"base/TABLE/dbo/users.sql": "v1",
	})

	second := commitFiles(t, repo, "two", nil, map[string]string{
		"base/TABLE/dbo/users.sql": "v2",
	})

	head, err := repo.IsHead("app")
	require.NoError(t, err)
	require.False(t, head)

	require.NoError(t, repo.MoveTagAndPush(ctx, "app", second))

	head, err = repo.IsHead("app")
	require.NoError(t, err)
	require.True(t, head)

	// moving a tag that does not exist yet creates it
	require.NoError(t, repo.MoveTagAndPush(ctx, "reporting", first))

	exists, err := repo.TagExists("reporting")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRepositoryCommitsAcrossBranches(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	commitFiles(t, repo, "seed", nil, map[string]string{
		"base/TABLE/dbo/users.sql": "users",
	})

	_, err := repo.CommitAndPush(ctx, []gitrepo.FileChange{
		{Path: "base/TABLE/dbo/orders.sql", Content: []byte("orders")},
	}, "work change", "work", nil)
	require.NoError(t, err)

	_, found, err := repo.ReadFile("work", "base/TABLE/dbo/orders.sql")
	require.NoError(t, err)
	require.True(t, found)

	_, found, err = repo.ReadFile("main", "base/TABLE/dbo/orders.sql")
	require.NoError(t, err)
	require.False(t, found)

	_, err = repo.CommitAndPush(ctx, []gitrepo.FileChange{
		{Path: "base/TABLE/dbo/items.sql", Content: []byte("items")},
	}, "back on main", "main", nil)
	require.NoError(t, err)

	_, found, err = repo.ReadFile("main", "base/TABLE/dbo/items.sql")
	require.NoError(t, err)
	require.True(t, found)

	_, found, err = repo.ReadFile("main", "base/TABLE/dbo/orders.sql")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRepositoryFetchWithoutRemote(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Fetch(context.Background()))
}

func TestOpenMissingRepository(t *testing.T) {
	_, err := gitrepo.Open(t.TempDir(), gitrepo.Options{})
	require.Error(t, err)
}

func TestInitExistingRepository(t *testing.T) {
	dir := t.TempDir()

	_, err := gitrepo.Init(dir, gitrepo.Options{})
	require.NoError(t, err)

	repo, err := gitrepo.Init(dir, gitrepo.Options{})
	require.NoError(t, err)

	empty, err := repo.IsEmpty()
	require.NoError(t, err)
	require.True(t, empty)
}

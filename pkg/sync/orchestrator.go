package sync

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/gitrepo"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
	"github.com/pseudomuto/schemakeeper/pkg/sqlnorm"
	"github.com/pseudomuto/schemakeeper/pkg/sqlref"
	"golang.org/x/sync/errgroup"
)

type (
	// RepoStore defines the repository operations the engine depends on.
	// *gitrepo.Repository satisfies it.
	RepoStore interface {
		IsEmpty() (bool, error)
		IsHead(commitish string) (bool, error)
		TagExists(name string) (bool, error)
		ReadFile(commitish, path string) ([]byte, bool, error)
		ReadTree(commitish, folder string) (map[string][]byte, error)
		Diff(from, to string, pathFilters []string) ([]gitrepo.DiffEntry, error)
		CommitAndPush(ctx context.Context, changes []gitrepo.FileChange, message, branch string, tags []string) (string, error)
		MoveTagAndPush(ctx context.Context, tag, commitish string) error
		Fetch(ctx context.Context) error
	}

	// Database is one synchronization target.
	Database interface {
		ListObjects(ctx context.Context) ([]schema.Object, error)
		ApplyChanges(ctx context.Context, changes []schema.Object) error
		Ping(ctx context.Context) error
	}

	// DatabaseRouter yields database handles by name.
	DatabaseRouter interface {
		Database(ctx context.Context, name string) (Database, error)
	}

	// Config contains the collaborators and knobs for creating an Engine.
	Config struct {
		// Repo is the git-backed schema store
		Repo RepoStore

		// Databases routes target names to connections
		Databases DatabaseRouter

		// Normalizer decides DDL equivalence. Defaults to a normalizer
		// for DefaultSchema.
		Normalizer *sqlnorm.Normalizer

		// Ignore filters repository paths out of synchronization.
		// Defaults to a matcher with no patterns.
		Ignore *ignore.Matcher

		// Branch is where commits land. Defaults to consts.DefaultBranch.
		Branch string

		// DiffPrefix is the subdirectory of diff/ holding per-database
		// overlays. Defaults to consts.DefaultDiffPrefix.
		DiffPrefix string

		// DefaultSchema is treated as implicit in unqualified object
		// references. Defaults to consts.DefaultSchemaName.
		DefaultSchema string

		// Workers bounds how many targets run concurrently. Defaults to
		// consts.DefaultWorkers.
		Workers int
	}

	// Engine synchronizes SQL Server databases with a git schema
	// repository in both directions.
	//
	// Example usage:
	//
	//	engine := sync.New(sync.Config{Repo: repo, Databases: router})
	//
	//	description, err := engine.InitRepo(ctx, "app")
	//	if err != nil {
	//		return err
	//	}
	Engine struct {
		repo       RepoStore
		databases  DatabaseRouter
		norm       *sqlnorm.Normalizer
		ignore     *ignore.Matcher
		scanner    *sqlref.Scanner
		branch     string
		diffPrefix string
		workers    int
	}

	// Request parameterizes SyncRepoToDB.
	Request struct {
		// Commitish is the repository state to apply. Defaults to HEAD.
		Commitish string

		// DBs are the target databases.
		DBs []string

		// DryRun reports intended changes without applying anything.
		DryRun bool

		// Force applies even when a target drifted from its tag. Without
		// it, a non-HEAD Commitish downgrades the run to a dry run.
		Force bool
	}

	// TargetStatus describes one database's relation to the repository.
	TargetStatus struct {
		// DB is the database name
		DB string

		// Onboarded reports whether the repository carries a tag for DB
		Onboarded bool

		// Drift lists the overlay mutations a db-to-repo sync would make
		Drift []RepoChange
	}
)

// New creates an Engine with the provided configuration, filling unset
// knobs with the package defaults.
func New(config Config) *Engine {
	if config.DefaultSchema == "" {
		config.DefaultSchema = consts.DefaultSchemaName
	}

	if config.Normalizer == nil {
		config.Normalizer = sqlnorm.New(config.DefaultSchema)
	}

	if config.Ignore == nil {
		config.Ignore = &ignore.Matcher{}
	}

	if config.Branch == "" {
		config.Branch = consts.DefaultBranch
	}

	if config.DiffPrefix == "" {
		config.DiffPrefix = consts.DefaultDiffPrefix
	}

	if config.Workers <= 0 {
		config.Workers = consts.DefaultWorkers
	}

	return &Engine{
		repo:       config.Repo,
		databases:  config.Databases,
		norm:       config.Normalizer,
		ignore:     config.Ignore,
		scanner:    sqlref.NewScanner(config.DefaultSchema),
		branch:     config.Branch,
		diffPrefix: config.DiffPrefix,
		workers:    config.Workers,
	}
}

// InitRepo seeds an empty repository with the catalog of dbName, commits on
// the configured branch, tags the commit with the lowercased database name,
// and pushes. It returns a description of what was committed.
func (e *Engine) InitRepo(ctx context.Context, dbName string) (string, error) {
	empty, err := e.repo.IsEmpty()
	if err != nil {
		return "", err
	}

	if !empty {
		return "", ErrRepoNotEmpty
	}

	db, err := e.databases.Database(ctx, dbName)
	if err != nil {
		return "", err
	}

	objects, err := db.ListObjects(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "failed to list objects in %s", dbName)
	}

	changes := make([]gitrepo.FileChange, 0, len(objects))
	for _, obj := range objects {
		if obj.Definition == nil {
			continue
		}

		path := schema.ObjectToPath(obj, consts.DirBase)
		if !e.ignore.ShouldProcess(path) {
			continue
		}

		changes = append(changes, gitrepo.FileChange{Path: path, Content: []byte(*obj.Definition)})
	}

	if len(changes) == 0 {
		return "", errors.Wrapf(ErrNoObjects, "%s", dbName)
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	tag := strings.ToLower(dbName)
	commit, err := e.repo.CommitAndPush(ctx, changes, "Repo initialized with DB: "+dbName, e.branch, []string{tag})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Initialized repository from %s: %d object(s) at commit %s", dbName, len(changes), commit), nil
}

// SyncDBToRepo folds live drift of dbName into its overlay and commits the
// result. Deltas are computed against the database's tag, or against HEAD
// when the database is not onboarded yet; in the latter case the commit
// also creates the tag. The returned description lists the overlay
// mutations; with dryRun set nothing is written.
func (e *Engine) SyncDBToRepo(ctx context.Context, dbName string, dryRun bool) (string, error) {
	if err := e.repo.Fetch(ctx); err != nil {
		return "", err
	}

	empty, err := e.repo.IsEmpty()
	if err != nil {
		return "", err
	}

	if empty {
		return "", errors.New("repository has no commits, initialize it first")
	}

	tag := strings.ToLower(dbName)
	onboarded, err := e.repo.TagExists(tag)
	if err != nil {
		return "", err
	}

	commitish := "HEAD"
	if onboarded {
		commitish = tag
	}

	db, err := e.databases.Database(ctx, dbName)
	if err != nil {
		return "", err
	}

	changes, err := e.resolveOverlayDelta(ctx, db, dbName, commitish)
	if err != nil {
		return "", err
	}

	description := describeRepoChanges(dbName, changes)
	if dryRun || len(changes) == 0 {
		return description, nil
	}

	files := make([]gitrepo.FileChange, 0, len(changes))
	for _, change := range changes {
		files = append(files, toFileChange(change))
	}

	var tags []string
	if !onboarded {
		tags = []string{tag}
	}

	commit, err := e.repo.CommitAndPush(ctx, files, "Repo synced with DB: "+dbName, e.branch, tags)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s\ncommitted as %s", description, commit), nil
}

// SyncRepoToDB replays the repository between each target's tag and
// req.Commitish onto the target, then moves the tag. Targets run
// concurrently up to the worker limit. A single target never fails the
// batch; its outcome lands in the corresponding SyncResult.
func (e *Engine) SyncRepoToDB(ctx context.Context, req Request) ([]SyncResult, error) {
	commitish := req.Commitish
	if commitish == "" {
		commitish = "HEAD"
	}

	head, err := e.repo.IsHead(commitish)
	if err != nil {
		return nil, err
	}

	// Historical states may be previewed but not applied unless forced.
	dryRun := req.DryRun
	if !head && !req.Force {
		dryRun = true
	}

	results := make([]SyncResult, len(req.DBs))

	var g errgroup.Group
	g.SetLimit(e.workers)

	for i, dbName := range req.DBs {
		g.Go(func() error {
			results[i] = e.syncTarget(ctx, dbName, commitish, dryRun, req.Force)
			return nil
		})
	}

	_ = g.Wait() // tasks report through results, never through errors
	return results, nil
}

// Status reports whether dbName is onboarded and which overlay mutations a
// db-to-repo sync would make right now.
func (e *Engine) Status(ctx context.Context, dbName string) (*TargetStatus, error) {
	status := &TargetStatus{DB: dbName}

	empty, err := e.repo.IsEmpty()
	if err != nil {
		return nil, err
	}

	if empty {
		return status, nil
	}

	tag := strings.ToLower(dbName)
	if status.Onboarded, err = e.repo.TagExists(tag); err != nil {
		return nil, err
	}

	commitish := "HEAD"
	if status.Onboarded {
		commitish = tag
	}

	db, err := e.databases.Database(ctx, dbName)
	if err != nil {
		return nil, err
	}

	if status.Drift, err = e.resolveOverlayDelta(ctx, db, dbName, commitish); err != nil {
		return nil, err
	}

	return status, nil
}

// Seed materializes the repository's schema for dbName into the database:
// the base tree at HEAD overlaid with the database's overrides, tombstones
// excluded. It never consults or moves the onboarding tag, which makes it
// suitable for populating freshly created databases such as the local dev
// server.
func (e *Engine) Seed(ctx context.Context, dbName string) (string, error) {
	empty, err := e.repo.IsEmpty()
	if err != nil {
		return "", err
	}

	if empty {
		return "", errors.New("repository has no commits, initialize it first")
	}

	db, err := e.databases.Database(ctx, dbName)
	if err != nil {
		return "", err
	}

	base, err := e.repo.ReadTree("HEAD", consts.DirBase)
	if err != nil {
		return "", err
	}

	overlay, err := e.repo.ReadTree("HEAD", e.overlayRoot(dbName))
	if err != nil {
		return "", err
	}

	defs := make(map[schema.Key]*string)
	for path, content := range base {
		if !e.ignore.ShouldProcess(path) {
			continue
		}

		obj, err := schema.PathToObject(path, nil)
		if err != nil {
			return "", err
		}

		def := string(content)
		defs[obj.Key] = &def
	}

	for path, content := range overlay {
		if !e.ignore.ShouldProcess(path) {
			continue
		}

		obj, err := schema.PathToObject(path, nil)
		if err != nil {
			return "", err
		}

		if len(content) == 0 {
			delete(defs, obj.Key) // tombstone
			continue
		}

		def := string(content)
		defs[obj.Key] = &def
	}

	if len(defs) == 0 {
		return fmt.Sprintf("%s: repository holds no objects to load", dbName), nil
	}

	objects := make([]schema.Object, 0, len(defs))
	for key, def := range defs {
		objects = append(objects, schema.Object{Key: key, Definition: def})
	}

	ordered, err := e.orderChanges(objects, nil)
	if err != nil {
		return "", err
	}

	if err := db.ApplyChanges(ctx, ordered); err != nil {
		return "", errors.Wrapf(err, "failed to load objects into %s", dbName)
	}

	return fmt.Sprintf("Loaded %d object(s) into %s", len(ordered), dbName), nil
}

func (e *Engine) syncTarget(ctx context.Context, dbName, commitish string, dryRun, force bool) SyncResult {
	result := SyncResult{DB: dbName}

	tag := strings.ToLower(dbName)
	exists, err := e.repo.TagExists(tag)
	if err != nil {
		return failed(result, err)
	}

	if !exists {
		result.Status = StatusSkippedNotOnboarded
		result.Message = fmt.Sprintf("%s: no tag %q", ErrNotOnboarded, tag)
		return result
	}

	db, err := e.databases.Database(ctx, dbName)
	if err != nil {
		return failed(result, err)
	}

	if !force {
		drift, err := e.resolveOverlayDelta(ctx, db, dbName, tag)
		if err != nil {
			return failed(result, err)
		}

		if len(drift) > 0 {
			result.Status = StatusSkippedOutOfSync
			result.Message = (&OutOfSyncError{DB: dbName, Changes: drift}).Error()
			return result
		}
	}

	changes, oldDefs, err := e.resolveApplyChanges(dbName, tag, commitish)
	if err != nil {
		return failed(result, err)
	}

	ordered, err := e.orderChanges(changes, oldDefs)
	if err != nil {
		return failed(result, err)
	}

	if dryRun {
		result.Status = StatusSuccessDryRun
		result.Message = describeApplyChanges(ordered)
		return result
	}

	if err := db.ApplyChanges(ctx, ordered); err != nil {
		return failed(result, err)
	}

	if err := e.repo.MoveTagAndPush(ctx, tag, commitish); err != nil {
		return failed(result, err)
	}

	result.Status = StatusSynced
	result.Message = describeApplyChanges(ordered)
	return result
}

func failed(result SyncResult, err error) SyncResult {
	result.Status = StatusFailed
	result.Message = err.Error()
	return result
}

func toFileChange(change RepoChange) gitrepo.FileChange {
	file := gitrepo.FileChange{Path: change.Path}
	if change.Content != nil {
		// an explicit make keeps tombstones non-nil, nil means delete
		file.Content = make([]byte, len(*change.Content))
		copy(file.Content, *change.Content)
	}

	return file
}

func describeRepoChanges(dbName string, changes []RepoChange) string {
	if len(changes) == 0 {
		return fmt.Sprintf("%s: repository already reflects the database", dbName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d overlay change(s)", dbName, len(changes))
	for _, change := range changes {
		fmt.Fprintf(&b, "\n  %s %s", change.Verb(), change.Path)
	}

	return b.String()
}

func describeApplyChanges(changes []schema.Object) string {
	if len(changes) == 0 {
		return "already in sync"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d change(s)", len(changes))
	for _, change := range changes {
		verb := "apply"
		if change.Definition == nil {
			verb = "drop"
		}

		fmt.Fprintf(&b, "\n  %s %s", verb, change.Key)
	}

	return b.String()
}

package sync

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/gitrepo"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
)

// RepoChange is one mutation to a database's overlay. A nil Content deletes
// the file, an empty Content writes a tombstone, anything else creates or
// replaces the file.
type RepoChange struct {
	Path    string
	Content *string
}

// Verb names the mutation for human-readable output.
func (c RepoChange) Verb() string {
	switch {
	case c.Content == nil:
		return "delete"
	case *c.Content == "":
		return "tombstone"
	default:
		return "write"
	}
}

// overlayRoot returns the repository folder holding dbName's overrides.
func (e *Engine) overlayRoot(dbName string) string {
	return fmt.Sprintf("%s/%s/%s", consts.DirDiff, e.diffPrefix, strings.ToLower(dbName))
}

// resolveOverlayDelta computes the overlay mutations that make the
// repository reflect the live catalog of dbName. The three definition
// sources are joined at commitish. When commitish is behind HEAD, changes
// already captured at HEAD are dropped so a stale tag cannot re-emit them.
func (e *Engine) resolveOverlayDelta(ctx context.Context, db Database, dbName, commitish string) ([]RepoChange, error) {
	live, err := db.ListObjects(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list objects in %s", dbName)
	}

	overlayRoot := e.overlayRoot(dbName)

	full, err := e.joinSources(live, commitish, overlayRoot)
	if err != nil {
		return nil, err
	}

	changes := make([]RepoChange, 0, len(full))
	for _, key := range sortedKeys(full) {
		fo := full[key]
		diffPath := schema.KeyToPath(fo.Key, overlayRoot)
		if !e.ignore.ShouldProcess(diffPath) {
			continue
		}

		switch {
		case e.norm.Equivalent(fo.DB, fo.Base):
			// the base already matches; any override is stale
			if fo.Diff != nil {
				changes = append(changes, RepoChange{Path: diffPath})
			}
		case fo.DB == nil:
			// absent in the database but present in base: tombstone it,
			// unless one is already in place
			if fo.Diff == nil || *fo.Diff != "" {
				empty := ""
				changes = append(changes, RepoChange{Path: diffPath, Content: &empty})
			}
		case !e.norm.Equivalent(fo.DB, fo.Diff):
			changes = append(changes, RepoChange{Path: diffPath, Content: fo.DB})
		}
	}

	if len(changes) == 0 {
		return changes, nil
	}

	head, err := e.repo.IsHead(commitish)
	if err != nil {
		return nil, err
	}

	if !head {
		return e.dropChangesAtHead(changes, overlayRoot)
	}

	return changes, nil
}

// joinSources builds the per-key view of the live catalog, the base tree,
// and the overlay tree at commitish.
func (e *Engine) joinSources(live []schema.Object, commitish, overlayRoot string) (map[schema.Key]*schema.FullObject, error) {
	full := make(map[schema.Key]*schema.FullObject)

	at := func(key schema.Key) *schema.FullObject {
		fo, ok := full[key]
		if !ok {
			fo = &schema.FullObject{Key: key}
			full[key] = fo
		}

		return fo
	}

	for _, obj := range live {
		at(obj.Key).DB = obj.Definition
	}

	base, err := e.repo.ReadTree(commitish, consts.DirBase)
	if err != nil {
		return nil, err
	}

	for path, content := range base {
		key, err := schema.KeyForPath(path)
		if err != nil {
			return nil, err
		}

		def := string(content)
		at(key).Base = &def
	}

	overlay, err := e.repo.ReadTree(commitish, overlayRoot)
	if err != nil {
		return nil, err
	}

	for path, content := range overlay {
		key, err := schema.KeyForPath(path)
		if err != nil {
			return nil, err
		}

		def := string(content)
		at(key).Diff = &def
	}

	return full, nil
}

// dropChangesAtHead removes changes the repository HEAD already reflects.
// A write is redundant when HEAD carries an equivalent definition for the
// key, in the overlay or failing that in base; a delete is redundant when
// the overlay file is already gone at HEAD.
func (e *Engine) dropChangesAtHead(changes []RepoChange, overlayRoot string) ([]RepoChange, error) {
	headDiff, err := e.repo.ReadTree("HEAD", overlayRoot)
	if err != nil {
		return nil, err
	}

	headBase, err := e.repo.ReadTree("HEAD", consts.DirBase)
	if err != nil {
		return nil, err
	}

	kept := changes[:0]
	for _, change := range changes {
		if change.Content == nil {
			if _, ok := headDiff[change.Path]; ok {
				kept = append(kept, change)
			}

			continue
		}

		key, err := schema.KeyForPath(change.Path)
		if err != nil {
			return nil, err
		}

		headDef := treeDefinition(headDiff, change.Path)
		if headDef == nil {
			headDef = treeDefinition(headBase, schema.KeyToPath(key, consts.DirBase))
		}

		if !e.norm.Equivalent(change.Content, headDef) {
			kept = append(kept, change)
		}
	}

	return kept, nil
}

// treeOp is a single-path view of a diff entry.
type treeOp struct {
	path    string
	removed bool
}

// flattenEntries reduces diff entries to per-path writes and removals. A
// rename acts as a removal of the old path plus a write of the new one.
func flattenEntries(entries []gitrepo.DiffEntry) []treeOp {
	ops := make([]treeOp, 0, len(entries))
	for _, entry := range entries {
		switch entry.Type {
		case gitrepo.ChangeDelete:
			ops = append(ops, treeOp{path: entry.OldPath, removed: true})
		case gitrepo.ChangeRename:
			ops = append(ops,
				treeOp{path: entry.OldPath, removed: true},
				treeOp{path: entry.NewPath},
			)
		default:
			ops = append(ops, treeOp{path: entry.NewPath})
		}
	}

	return ops
}

// resolveApplyChanges translates the repository diff between from and to
// into object changes for dbName. Overlay entries supersede base entries
// for the same key. The second return value carries, for each deletion,
// the definition that was in effect at from so drops can be ordered by
// their old dependencies.
func (e *Engine) resolveApplyChanges(dbName, from, to string) ([]schema.Object, map[schema.Key]*string, error) {
	overlayRoot := e.overlayRoot(dbName)

	entries, err := e.repo.Diff(from, to, []string{consts.DirBase, overlayRoot})
	if err != nil {
		return nil, nil, err
	}

	overlayAtTo, err := e.repo.ReadTree(to, overlayRoot)
	if err != nil {
		return nil, nil, err
	}

	type resolved struct {
		object      schema.Object
		fromOverlay bool
	}

	byKey := make(map[schema.Key]resolved)
	keep := func(obj schema.Object, fromOverlay bool) {
		if current, ok := byKey[obj.Key]; ok && current.fromOverlay && !fromOverlay {
			return
		}

		byKey[obj.Key] = resolved{object: obj, fromOverlay: fromOverlay}
	}

	for _, op := range flattenEntries(entries) {
		if !e.ignore.ShouldProcess(op.path) {
			continue
		}

		key, err := schema.KeyForPath(op.path)
		if err != nil {
			return nil, nil, err
		}

		inOverlay := strings.HasPrefix(op.path, overlayRoot+"/")

		switch {
		case inOverlay && op.removed:
			// override gone: fall back to the base definition at to, or
			// drop the object when base has none
			basePath := schema.KeyToPath(key, consts.DirBase)
			def, _, err := e.readDefinition(to, basePath)
			if err != nil {
				return nil, nil, err
			}

			keep(schema.Object{Key: key, Definition: def}, true)

		case inOverlay:
			def, found, err := e.readDefinition(to, op.path)
			if err != nil {
				return nil, nil, err
			}

			if !found {
				continue
			}

			if *def == "" {
				// a tombstone drops the object
				keep(schema.Object{Key: key}, true)
			} else {
				keep(schema.Object{Key: key, Definition: def}, true)
			}

		default:
			// base entries are masked while an override exists at to
			overlayPath := schema.KeyToPath(key, overlayRoot)
			if _, ok := overlayAtTo[overlayPath]; ok {
				continue
			}

			if op.removed {
				keep(schema.Object{Key: key}, false)
				continue
			}

			def, found, err := e.readDefinition(to, op.path)
			if err != nil {
				return nil, nil, err
			}

			if found {
				keep(schema.Object{Key: key, Definition: def}, false)
			}
		}
	}

	changes := make([]schema.Object, 0, len(byKey))
	oldDefs := make(map[schema.Key]*string)

	for key, r := range byKey {
		changes = append(changes, r.object)

		if r.object.Definition == nil {
			def, err := e.effectiveDefinitionAt(from, key, overlayRoot)
			if err != nil {
				return nil, nil, err
			}

			oldDefs[key] = def
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Key.String() < changes[j].Key.String()
	})

	return changes, oldDefs, nil
}

// effectiveDefinitionAt returns the definition a database ran with at
// commitish: the non-tombstone override when present, otherwise base.
func (e *Engine) effectiveDefinitionAt(commitish string, key schema.Key, overlayRoot string) (*string, error) {
	overlayPath := schema.KeyToPath(key, overlayRoot)

	def, found, err := e.readDefinition(commitish, overlayPath)
	if err != nil {
		return nil, err
	}

	if found {
		if *def == "" {
			return nil, nil
		}

		return def, nil
	}

	basePath := schema.KeyToPath(key, consts.DirBase)
	def, _, err = e.readDefinition(commitish, basePath)

	return def, err
}

func (e *Engine) readDefinition(commitish, path string) (*string, bool, error) {
	content, found, err := e.repo.ReadFile(commitish, path)
	if err != nil || !found {
		return nil, false, err
	}

	def := string(content)
	return &def, true, nil
}

func treeDefinition(tree map[string][]byte, path string) *string {
	content, ok := tree[path]
	if !ok {
		return nil
	}

	def := string(content)
	return &def
}

func sortedKeys(full map[schema.Key]*schema.FullObject) []schema.Key {
	keys := make([]schema.Key, 0, len(full))
	for key := range full {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	return keys
}

package gitrepo

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/pkg/errors"
)

// ChangeType classifies one entry of a tree diff.
type ChangeType string

const (
	ChangeAdd    ChangeType = "ADD"
	ChangeModify ChangeType = "MODIFY"
	ChangeDelete ChangeType = "DELETE"
	ChangeRename ChangeType = "RENAME"
	ChangeCopy   ChangeType = "COPY"
)

// DiffEntry describes a single path changed between two commits. OldPath is
// empty for additions and NewPath for deletions; renames carry both. The
// blob hashes are empty on the side that has no content.
type DiffEntry struct {
	Type    ChangeType
	OldPath string
	NewPath string
	OldBlob string
	NewBlob string
}

// Path returns the entry's current path, falling back to the old one for
// deletions.
func (e DiffEntry) Path() string {
	if e.NewPath != "" {
		return e.NewPath
	}

	return e.OldPath
}

// Renames are reported only when old and new blobs are identical.
// Similarity scoring could pair an unrelated delete and add across folders,
// and callers translate paths by folder.
var diffOptions = &object.DiffTreeOptions{
	DetectRenames:    true,
	OnlyExactRenames: true,
}

// Diff lists the paths changed between two commitishes. When pathFilters is
// non-empty, only entries whose old or new path sits under one of the given
// folders are returned.
func (r *Repository) Diff(from, to string, pathFilters []string) ([]DiffEntry, error) {
	fromTree, err := r.treeAt(from)
	if err != nil {
		return nil, err
	}

	toTree, err := r.treeAt(to)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(context.Background(), fromTree, toTree, diffOptions)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to diff %q against %q", from, to)
	}

	entries := make([]DiffEntry, 0, len(changes))
	for _, change := range changes {
		entry, err := newDiffEntry(change)
		if err != nil {
			return nil, err
		}

		if matchesFilters(entry, pathFilters) {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (r *Repository) treeAt(commitish string) (*object.Tree, error) {
	commit, err := r.resolveCommit(commitish)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	return tree, errors.Wrapf(err, "failed to read tree at %s", commitish)
}

func newDiffEntry(change *object.Change) (DiffEntry, error) {
	action, err := change.Action()
	if err != nil {
		return DiffEntry{}, errors.Wrap(err, "failed to classify change")
	}

	entry := DiffEntry{OldPath: change.From.Name, NewPath: change.To.Name}
	if change.From.Name != "" {
		entry.OldBlob = change.From.TreeEntry.Hash.String()
	}

	if change.To.Name != "" {
		entry.NewBlob = change.To.TreeEntry.Hash.String()
	}

	switch action {
	case merkletrie.Insert:
		entry.Type = ChangeAdd
	case merkletrie.Delete:
		entry.Type = ChangeDelete
	default:
		entry.Type = ChangeModify
		if change.From.Name != change.To.Name {
			entry.Type = ChangeRename
		}
	}

	return entry, nil
}

func matchesFilters(entry DiffEntry, pathFilters []string) bool {
	if len(pathFilters) == 0 {
		return true
	}

	for _, filter := range pathFilters {
		if underFolder(entry.OldPath, filter) || underFolder(entry.NewPath, filter) {
			return true
		}
	}

	return false
}

func underFolder(filePath, folder string) bool {
	if filePath == "" {
		return false
	}

	folder = strings.TrimSuffix(folder, "/")
	return filePath == folder || strings.HasPrefix(filePath, folder+"/")
}

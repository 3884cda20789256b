package gitrepo

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
)

// Options configure how a Repository is opened.
type Options struct {
	// Remote used for fetches and pushes. Defaults to consts.DefaultRemote.
	Remote string

	// AuthorName and AuthorEmail are stamped on commits created by
	// CommitAndPush. They default to consts.DefaultAuthorName and
	// consts.DefaultAuthorEmail.
	AuthorName  string
	AuthorEmail string
}

// FileChange is a single staged write for CommitAndPush. A nil Content
// deletes the path; an empty non-nil Content writes a zero-byte file.
type FileChange struct {
	Path    string
	Content []byte
}

// Repository wraps an on-disk git repository.
type Repository struct {
	repo   *git.Repository
	remote string
	author string
	email  string

	mu sync.Mutex // serializes worktree mutations, tag writes, and pushes
}

// Open opens an existing git repository at dir.
func Open(dir string, opts Options) (*Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open repository at %s", dir)
	}

	return newRepository(repo, opts), nil
}

// Init creates a git repository at dir, or opens the existing one when dir
// is already a repository.
func Init(dir string, opts Options) (*Repository, error) {
	repo, err := git.PlainInit(dir, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return Open(dir, opts)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "failed to initialize repository at %s", dir)
	}

	return newRepository(repo, opts), nil
}

// IsNotExists reports whether err means no repository exists at the path
// given to Open.
func IsNotExists(err error) bool {
	return errors.Is(err, git.ErrRepositoryNotExists)
}

func newRepository(repo *git.Repository, opts Options) *Repository {
	if opts.Remote == "" {
		opts.Remote = consts.DefaultRemote
	}

	if opts.AuthorName == "" {
		opts.AuthorName = consts.DefaultAuthorName
	}

	if opts.AuthorEmail == "" {
		opts.AuthorEmail = consts.DefaultAuthorEmail
	}

	return &Repository{
		repo:   repo,
		remote: opts.Remote,
		author: opts.AuthorName,
		email:  opts.AuthorEmail,
	}
}

// IsEmpty reports whether the repository has no commits yet.
func (r *Repository) IsEmpty() (bool, error) {
	if _, err := r.repo.Head(); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return true, nil
		}

		return false, errors.Wrap(err, "failed to read HEAD")
	}

	return false, nil
}

// IsHead reports whether commitish resolves to the current HEAD commit. An
// empty repository has no HEAD, so nothing is head.
func (r *Repository) IsHead(commitish string) (bool, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "failed to read HEAD")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(commitish))
	if err != nil {
		return false, errors.Wrapf(err, "failed to resolve %q", commitish)
	}

	return *hash == head.Hash(), nil
}

// TagExists reports whether the named tag exists.
func (r *Repository) TagExists(name string) (bool, error) {
	if _, err := r.repo.Tag(name); err != nil {
		if errors.Is(err, git.ErrTagNotFound) {
			return false, nil
		}

		return false, errors.Wrapf(err, "failed to look up tag %s", name)
	}

	return true, nil
}

// ReadFile returns the contents of filePath at commitish. The second return
// value reports whether the file exists there, distinguishing a missing file
// from an empty one.
func (r *Repository) ReadFile(commitish, filePath string) ([]byte, bool, error) {
	commit, err := r.resolveCommit(commitish)
	if err != nil {
		return nil, false, err
	}

	file, err := commit.File(filePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, false, nil
		}

		return nil, false, errors.Wrapf(err, "failed to read %s at %s", filePath, commitish)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to read %s at %s", filePath, commitish)
	}

	return []byte(content), true, nil
}

// ReadTree returns every file under folder at commitish, keyed by
// repository-relative path. An empty folder reads the whole tree. A folder
// absent from the commit yields an empty map.
func (r *Repository) ReadTree(commitish, folder string) (map[string][]byte, error) {
	commit, err := r.resolveCommit(commitish)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tree at %s", commitish)
	}

	if folder != "" {
		sub, err := tree.Tree(folder)
		if err != nil {
			if errors.Is(err, object.ErrDirectoryNotFound) {
				return map[string][]byte{}, nil
			}

			return nil, errors.Wrapf(err, "failed to read %s at %s", folder, commitish)
		}

		tree = sub
	}

	files := make(map[string][]byte)
	err = tree.Files().ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", f.Name)
		}

		name := f.Name
		if folder != "" {
			name = folder + "/" + f.Name
		}

		files[name] = []byte(content)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// CommitAndPush stages changes on branch, commits them under message, tags
// the new commit with each name in tags, and pushes the branch and tags. It
// returns the new commit hash.
//
// The first commit of an empty repository lands on branch rather than the
// init-time default.
func (r *Repository) CommitAndPush(ctx context.Context, changes []FileChange, message, branch string, tags []string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "failed to open worktree")
	}

	if err := r.checkoutBranch(worktree, branch); err != nil {
		return "", err
	}

	for _, change := range changes {
		if change.Content == nil {
			if _, err := worktree.Remove(change.Path); err != nil {
				return "", errors.Wrapf(err, "failed to remove %s", change.Path)
			}

			continue
		}

		if err := writeFile(worktree.Filesystem, change.Path, change.Content); err != nil {
			return "", err
		}

		if _, err := worktree.Add(change.Path); err != nil {
			return "", errors.Wrapf(err, "failed to stage %s", change.Path)
		}
	}

	commit, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: r.author, Email: r.email, When: time.Now()},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to commit changes")
	}

	specs := []config.RefSpec{branchRefSpec(branch)}
	for _, tag := range tags {
		if _, err := r.repo.CreateTag(tag, commit, nil); err != nil {
			return "", errors.Wrapf(err, "failed to tag commit as %s", tag)
		}

		specs = append(specs, tagRefSpec(tag))
	}

	if err := r.push(ctx, specs); err != nil {
		return "", err
	}

	return commit.String(), nil
}

// MoveTagAndPush points tag at commitish, creating it when absent, and
// pushes the updated tag.
func (r *Repository) MoveTagAndPush(ctx context.Context, tag, commitish string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	commit, err := r.resolveCommit(commitish)
	if err != nil {
		return err
	}

	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(tag), commit.Hash)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return errors.Wrapf(err, "failed to move tag %s", tag)
	}

	return r.push(ctx, []config.RefSpec{tagRefSpec(tag)})
}

// Fetch updates local refs from the configured remote. A missing or empty
// remote is not an error.
func (r *Repository) Fetch(ctx context.Context) error {
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: r.remote,
		Tags:       git.AllTags,
	})

	switch {
	case err == nil,
		errors.Is(err, git.NoErrAlreadyUpToDate),
		errors.Is(err, git.ErrRemoteNotFound),
		errors.Is(err, transport.ErrEmptyRemoteRepository):
		return nil
	}

	return errors.Wrapf(err, "failed to fetch from remote %s", r.remote)
}

// checkoutBranch makes branch the commit target. On an unborn repository it
// repoints HEAD so the first commit creates the branch; otherwise it checks
// the branch out, creating it from the current HEAD when missing.
func (r *Repository) checkoutBranch(worktree *git.Worktree, branch string) error {
	ref := plumbing.NewBranchReferenceName(branch)

	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			sym := plumbing.NewSymbolicReference(plumbing.HEAD, ref)
			return errors.Wrapf(r.repo.Storer.SetReference(sym), "failed to select branch %s", branch)
		}

		return errors.Wrap(err, "failed to read HEAD")
	}

	if head.Name() == ref {
		return nil
	}

	_, err = r.repo.Reference(ref, false)
	create := errors.Is(err, plumbing.ErrReferenceNotFound)
	if err != nil && !create {
		return errors.Wrapf(err, "failed to look up branch %s", branch)
	}

	err = worktree.Checkout(&git.CheckoutOptions{Branch: ref, Create: create})
	return errors.Wrapf(err, "failed to checkout branch %s", branch)
}

func (r *Repository) resolveCommit(commitish string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(commitish))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %q", commitish)
	}

	commit, err := r.repo.CommitObject(*hash)
	return commit, errors.Wrapf(err, "failed to resolve %q", commitish)
}

func (r *Repository) push(ctx context.Context, specs []config.RefSpec) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   specs,
	})

	switch {
	case err == nil,
		errors.Is(err, git.NoErrAlreadyUpToDate),
		errors.Is(err, git.ErrRemoteNotFound):
		return nil
	}

	return errors.Wrapf(err, "failed to push to remote %s", r.remote)
}

func branchRefSpec(branch string) config.RefSpec {
	return config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
}

// tagRefSpec forces the tag on the remote so that moved tags push cleanly.
func tagRefSpec(tag string) config.RefSpec {
	return config.RefSpec(fmt.Sprintf("+refs/tags/%s:refs/tags/%s", tag, tag))
}

func writeFile(fs billy.Filesystem, name string, content []byte) error {
	if dir := path.Dir(name); dir != "." {
		if err := fs.MkdirAll(dir, consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	f, err := fs.Create(name)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", name)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write %s", name)
	}

	return errors.Wrapf(f.Close(), "failed to write %s", name)
}

package git

import (
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/psomani16k/gittwo/internal/errors"
)

// CommitOptions contains options for creating a commit
type CommitOptions struct {
	// AllowEmptyMessage permits a blank commit message
	AllowEmptyMessage bool

	// AuthorName and AuthorEmail override the configured identity
	AuthorName  string
	AuthorEmail string

	// When fixes the commit timestamp; the zero value means time.Now().
	// Two commits with identical tree, parents, identity, message and
	// timestamp hash to the same id.
	When time.Time
}

// Commit turns the staged index into a new commit and advances the
// current branch ref to it. The index write, tree materialization and
// ref update are delegated to the object store, which shares unchanged
// subtrees between the parent and the new tree.
//
// Fails with ErrEmptyMessage for a blank message unless allowed, and
// with ErrNothingToCommit when the index matches the branch tip. On any
// failure the branch ref is left unchanged.
func (r *Repository) Commit(message string, opts CommitOptions) (plumbing.Hash, error) {
	if r == nil || r.repo == nil {
		return plumbing.ZeroHash, errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	if strings.TrimSpace(message) == "" && !opts.AllowEmptyMessage {
		return plumbing.ZeroHash, errors.ErrEmptyMessage
	}

	staged, err := r.hasStagedLocked()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if !staged {
		return plumbing.ZeroHash, errors.ErrNothingToCommit
	}

	sig, err := r.signature(opts)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get worktree: %w", err)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		if goerrors.Is(err, gogit.ErrEmptyCommit) {
			return plumbing.ZeroHash, errors.ErrNothingToCommit
		}
		return plumbing.ZeroHash, fmt.Errorf("failed to commit: %w", err)
	}

	return hash, nil
}

// hasStagedLocked is HasStagedChanges without re-acquiring the write lock
func (r *Repository) hasStagedLocked() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to compute status: %w", err)
	}

	for _, fs := range status {
		switch fs.Staging {
		case gogit.Added, gogit.Modified, gogit.Deleted, gogit.Renamed, gogit.Copied:
			return true, nil
		}
	}
	return false, nil
}

// signature resolves the author identity: explicit options first, then
// the repository's configured user section.
func (r *Repository) signature(opts CommitOptions) (*object.Signature, error) {
	name := opts.AuthorName
	email := opts.AuthorEmail

	if name == "" || email == "" {
		cfg, err := r.repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read repository config: %w", err)
		}
		if name == "" {
			name = cfg.User.Name
		}
		if email == "" {
			email = cfg.User.Email
		}
	}

	if name == "" {
		return nil, fmt.Errorf("author identity unknown: set user.name or pass --author-name")
	}

	when := opts.When
	if when.IsZero() {
		when = time.Now()
	}

	return &object.Signature{Name: name, Email: email, When: when}, nil
}

// SetUserIdentity records the commit identity in the repository config
func (r *Repository) SetUserIdentity(name, email string) error {
	if r == nil || r.repo == nil {
		return errors.ErrNotARepository
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	cfg.User.Name = name
	cfg.User.Email = email
	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write repository config: %w", err)
	}
	return nil
}

// CommitInfo describes a commit for display and verification
type CommitInfo struct {
	Hash    plumbing.Hash
	Tree    plumbing.Hash
	Parents []plumbing.Hash
	Author  string
	Email   string
	Message string
	When    time.Time
}

// LookupCommit reads a commit object from the object store
func (r *Repository) LookupCommit(hash plumbing.Hash) (*CommitInfo, error) {
	if r == nil || r.repo == nil {
		return nil, errors.ErrNotARepository
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, errors.NewRefNotFoundError(hash.String())
	}

	return &CommitInfo{
		Hash:    commit.Hash,
		Tree:    commit.TreeHash,
		Parents: commit.ParentHashes,
		Author:  commit.Author.Name,
		Email:   commit.Author.Email,
		Message: commit.Message,
		When:    commit.Author.When,
	}, nil
}

package git

import (
	goerrors "errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/psomani16k/gittwo/internal/errors"
)

// Checkout resolves spec and updates the working tree to it. Resolution
// order follows the git CLI: local branch, then tag, then a remote branch
// (which creates a local tracking branch), then a raw revision checked
// out detached. An unresolvable spec fails with ErrRefNotFound.
func (r *Repository) Checkout(spec string) error {
	if r == nil || r.repo == nil {
		return errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	// Local branch
	branchName := plumbing.NewBranchReferenceName(spec)
	if _, err := r.repo.Reference(branchName, false); err == nil {
		if err := wt.Checkout(&gogit.CheckoutOptions{Branch: branchName}); err != nil {
			return fmt.Errorf("failed to checkout %s: %w", spec, err)
		}
		return nil
	}

	// Tag, checked out detached
	tagName := plumbing.NewTagReferenceName(spec)
	if ref, err := r.repo.Reference(tagName, true); err == nil {
		hash, err := r.peelToCommit(ref.Hash())
		if err != nil {
			return err
		}
		if err := wt.Checkout(&gogit.CheckoutOptions{Hash: hash}); err != nil {
			return fmt.Errorf("failed to checkout %s: %w", spec, err)
		}
		return nil
	}

	// Remote branch: create a local tracking branch at the remote tip
	if remoteName, hash, ok := r.findRemoteBranch(spec); ok {
		if err := wt.Checkout(&gogit.CheckoutOptions{
			Hash:   hash,
			Branch: branchName,
			Create: true,
		}); err != nil {
			return fmt.Errorf("failed to checkout %s: %w", spec, err)
		}

		cfg, err := r.repo.Config()
		if err != nil {
			return fmt.Errorf("failed to read repository config: %w", err)
		}
		cfg.Branches[spec] = &gitconfig.Branch{
			Name:   spec,
			Remote: remoteName,
			Merge:  branchName,
		}
		if err := r.repo.SetConfig(cfg); err != nil {
			return fmt.Errorf("failed to write repository config: %w", err)
		}
		return nil
	}

	// Raw revision, checked out detached
	if hash, err := r.repo.ResolveRevision(plumbing.Revision(spec)); err == nil {
		commitHash, err := r.peelToCommit(*hash)
		if err != nil {
			return err
		}
		if err := wt.Checkout(&gogit.CheckoutOptions{Hash: commitHash}); err != nil {
			return fmt.Errorf("failed to checkout %s: %w", spec, err)
		}
		return nil
	}

	return errors.NewRefNotFoundError(spec)
}

// findRemoteBranch looks for refs/remotes/<any>/<spec> and returns the
// remote name and tip hash of the first match
func (r *Repository) findRemoteBranch(spec string) (string, plumbing.Hash, bool) {
	refs, err := r.repo.References()
	if err != nil {
		return "", plumbing.ZeroHash, false
	}

	var (
		remoteName string
		hash       plumbing.Hash
		found      bool
	)
	_ = refs.ForEach(func(ref *plumbing.Reference) error {
		if found || ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name().String()
		if !strings.HasPrefix(name, "refs/remotes/") {
			return nil
		}
		rest := strings.TrimPrefix(name, "refs/remotes/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) == 2 && parts[1] == spec {
			remoteName = parts[0]
			hash = ref.Hash()
			found = true
		}
		return nil
	})

	return remoteName, hash, found
}

// peelToCommit resolves annotated tags down to the commit they point at
func (r *Repository) peelToCommit(hash plumbing.Hash) (plumbing.Hash, error) {
	if _, err := r.repo.CommitObject(hash); err == nil {
		return hash, nil
	}

	tag, err := r.repo.TagObject(hash)
	if err != nil {
		if goerrors.Is(err, plumbing.ErrObjectNotFound) {
			return plumbing.ZeroHash, errors.NewRefNotFoundError(hash.String())
		}
		return plumbing.ZeroHash, fmt.Errorf("failed to read object %s: %w", hash, err)
	}

	commit, err := tag.Commit()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to peel tag %s: %w", hash, err)
	}
	return commit.Hash, nil
}

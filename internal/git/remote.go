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

// AddRemoteOptions contains options for registering a remote
type AddRemoteOptions struct {
	// Track narrows the fetch refspecs to the given branches instead of
	// the default refs/heads/* mirror
	Track []string
}

// AddRemote registers a named remote endpoint. The default fetch refspec
// maps refs/heads/* to refs/remotes/<name>/*; Track replaces it with one
// refspec per tracked branch. Refspecs are validated before the remote
// is written.
func (r *Repository) AddRemote(name, url string, opts AddRemoteOptions) error {
	if r == nil || r.repo == nil {
		return errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	specs := []gitconfig.RefSpec{
		gitconfig.RefSpec(fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", name)),
	}
	if len(opts.Track) > 0 {
		specs = specs[:0]
		for _, branch := range opts.Track {
			specs = append(specs, gitconfig.RefSpec(
				fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, name, branch)))
		}
	}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("invalid refspec %q: %w", spec, err)
		}
	}

	_, err := r.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name:  name,
		URLs:  []string{url},
		Fetch: specs,
	})
	if err != nil {
		if goerrors.Is(err, gogit.ErrRemoteExists) {
			return errors.NewDuplicateRemoteError(name)
		}
		return fmt.Errorf("failed to add remote: %w", err)
	}

	return nil
}

// RemoveRemote deletes a named remote, its remote-tracking refs and every
// branch tracking association pointing at it
func (r *Repository) RemoveRemote(name string) error {
	if r == nil || r.repo == nil {
		return errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	if err := r.repo.DeleteRemote(name); err != nil {
		if goerrors.Is(err, gogit.ErrRemoteNotFound) {
			return errors.NewRemoteNotFoundError(name)
		}
		return fmt.Errorf("failed to remove remote: %w", err)
	}

	// Drop tracking associations
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	changed := false
	for branchName, branch := range cfg.Branches {
		if branch.Remote == name {
			delete(cfg.Branches, branchName)
			changed = true
		}
	}
	if changed {
		if err := r.repo.SetConfig(cfg); err != nil {
			return fmt.Errorf("failed to write repository config: %w", err)
		}
	}

	// Drop remote-tracking refs
	refs, err := r.repo.References()
	if err != nil {
		return fmt.Errorf("failed to list references: %w", err)
	}
	prefix := fmt.Sprintf("refs/remotes/%s/", name)
	var stale []plumbing.ReferenceName
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if strings.HasPrefix(ref.Name().String(), prefix) {
			stale = append(stale, ref.Name())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to iterate references: %w", err)
	}
	for _, refName := range stale {
		if err := r.repo.Storer.RemoveReference(refName); err != nil {
			return fmt.Errorf("failed to remove %s: %w", refName, err)
		}
	}

	return nil
}

// SetHeadOptions contains options for SetRemoteHead
type SetHeadOptions struct {
	// Delete clears the remote's default-branch pointer instead of setting it
	Delete bool
}

// SetRemoteHead sets (or with Delete, clears) the symbolic
// refs/remotes/<name>/HEAD pointer that marks the remote's default branch
func (r *Repository) SetRemoteHead(name, branch string, opts SetHeadOptions) error {
	if r == nil || r.repo == nil {
		return errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	if _, err := r.repo.Remote(name); err != nil {
		if goerrors.Is(err, gogit.ErrRemoteNotFound) {
			return errors.NewRemoteNotFoundError(name)
		}
		return fmt.Errorf("failed to look up remote: %w", err)
	}

	headName := plumbing.NewRemoteHEADReferenceName(name)

	if opts.Delete {
		err := r.repo.Storer.RemoveReference(headName)
		if err != nil && !goerrors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("failed to delete %s: %w", headName, err)
		}
		return nil
	}

	if branch == "" {
		return fmt.Errorf("set-head requires a branch name unless --delete is given")
	}

	target := plumbing.NewRemoteReferenceName(name, branch)
	ref := plumbing.NewSymbolicReference(headName, target)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to set %s: %w", headName, err)
	}

	return nil
}

// RemoteHead resolves the remote's default-branch pointer, if set
func (r *Repository) RemoteHead(name string) (string, error) {
	if r == nil || r.repo == nil {
		return "", errors.ErrNotARepository
	}

	if _, err := r.repo.Remote(name); err != nil {
		if goerrors.Is(err, gogit.ErrRemoteNotFound) {
			return "", errors.NewRemoteNotFoundError(name)
		}
		return "", fmt.Errorf("failed to look up remote: %w", err)
	}

	ref, err := r.repo.Storer.Reference(plumbing.NewRemoteHEADReferenceName(name))
	if err != nil {
		return "", errors.NewRefNotFoundError(plumbing.NewRemoteHEADReferenceName(name).String())
	}
	return ref.Target().String(), nil
}

// RemoteInfo describes a configured remote
type RemoteInfo struct {
	Name  string
	URL   string
	Fetch []string
}

// Remotes lists the configured remotes
func (r *Repository) Remotes() ([]RemoteInfo, error) {
	if r == nil || r.repo == nil {
		return nil, errors.ErrNotARepository
	}

	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	infos := make([]RemoteInfo, 0, len(remotes))
	for _, remote := range remotes {
		cfg := remote.Config()
		info := RemoteInfo{Name: cfg.Name}
		if len(cfg.URLs) > 0 {
			info.URL = cfg.URLs[0]
		}
		for _, spec := range cfg.Fetch {
			info.Fetch = append(info.Fetch, spec.String())
		}
		infos = append(infos, info)
	}
	return infos, nil
}

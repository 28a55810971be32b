package git

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/psomani16k/gittwo/internal/errors"
	"github.com/psomani16k/gittwo/internal/output"
)

// PushOptions contains options for pushing branches to a remote
type PushOptions struct {
	// RemoteName defaults to "origin"
	RemoteName string

	// Branch names the branch to push; empty means the current branch.
	// Ignored when All is set.
	Branch string

	// All pushes every local branch
	All bool

	// Force skips the fast-forward check
	Force bool

	// SetUpstream records a tracking association for each pushed branch,
	// on success only
	SetUpstream bool

	// Credentials supplies authentication on demand
	Credentials CredentialProvider

	// Progress receives side-band progress output from the remote
	Progress io.Writer
}

// refUpdate is one negotiated branch update for a push exchange
type refUpdate struct {
	branch string
	name   plumbing.ReferenceName
	old    plumbing.Hash // advertised remote tip, zero when absent
	new    plumbing.Hash
}

// Push sends local branch tips to a remote.
//
// Every ref update is fast-forward-checked against the remote's
// advertised refs before any object is sent: one non-fast-forward ref
// without Force fails the whole invocation with ErrNonFastForward and no
// remote ref is updated. Remote-tracking refs are advanced afterwards
// with a compare-and-swap, so a concurrent writer surfaces as
// ErrRefChanged instead of being overwritten.
func (r *Repository) Push(ctx context.Context, opts PushOptions, splog *output.Splog) error {
	if r == nil || r.repo == nil {
		return errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	neg := newNegotiation("push", splog)

	remoteName := opts.RemoteName
	if remoteName == "" {
		remoteName = "origin"
	}

	// Connecting: resolve the remote and open the session
	neg.enter(StageConnecting)
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		if goerrors.Is(err, gogit.ErrRemoteNotFound) {
			return neg.fail(errors.NewRemoteNotFoundError(remoteName))
		}
		return neg.fail(fmt.Errorf("failed to look up remote: %w", err))
	}
	url := remote.Config().URLs[0]

	// Negotiating: exchange ref advertisements and fast-forward-check
	// every planned update
	neg.enter(StageNegotiating)
	var (
		auth       transport.AuthMethod
		advertised = map[plumbing.ReferenceName]plumbing.Hash{}
	)
	err = withCredentials(ctx, url, opts.Credentials, nil, func(candidate transport.AuthMethod) error {
		refs, lerr := remote.ListContext(ctx, &gogit.ListOptions{Auth: candidate})
		if lerr != nil {
			if goerrors.Is(lerr, transport.ErrEmptyRemoteRepository) {
				auth = candidate
				return nil
			}
			return lerr
		}
		auth = candidate
		for _, ref := range refs {
			if ref.Type() == plumbing.HashReference {
				advertised[ref.Name()] = ref.Hash()
			}
		}
		return nil
	})
	if err != nil {
		return neg.fail(err)
	}

	updates, err := r.planPushUpdates(opts, advertised)
	if err != nil {
		return neg.fail(err)
	}
	if len(updates) == 0 {
		neg.done()
		return nil
	}

	// Transferring: send object data for the negotiated ref set. The
	// advertisement may have been served anonymously while receive-pack
	// demands authentication, so the transfer re-enters the credential
	// loop starting from whatever the advertisement settled on.
	neg.enter(StageTransferring)
	specs := make([]gitconfig.RefSpec, 0, len(updates))
	for _, update := range updates {
		spec := fmt.Sprintf("%s:%s", update.name, update.name)
		if opts.Force {
			spec = "+" + spec
		}
		specs = append(specs, gitconfig.RefSpec(spec))
	}

	err = withCredentials(ctx, url, opts.Credentials, auth, func(candidate transport.AuthMethod) error {
		return r.repo.PushContext(ctx, &gogit.PushOptions{
			RemoteName: remoteName,
			RefSpecs:   specs,
			Auth:       candidate,
			Force:      opts.Force,
			Progress:   opts.Progress,
		})
	})
	if err != nil && !goerrors.Is(err, gogit.NoErrAlreadyUpToDate) {
		// The remote may have moved between advertisement and transfer
		if strings.Contains(err.Error(), "non-fast-forward") {
			return neg.fail(errors.NewNonFastForwardError(opts.Branch))
		}
		return neg.fail(fmt.Errorf("failed to push to %s: %w", remoteName, err))
	}

	// UpdatingRefs: advance remote-tracking refs and record upstreams
	neg.enter(StageUpdatingRefs)
	for _, update := range updates {
		if err := r.advanceRemoteTracking(remoteName, update); err != nil {
			return neg.fail(err)
		}
	}
	if opts.SetUpstream {
		if err := r.recordUpstreams(remoteName, updates); err != nil {
			return neg.fail(err)
		}
	}

	neg.done()
	return nil
}

// planPushUpdates resolves the branches to push and enforces the
// fast-forward policy against the advertised remote tips
func (r *Repository) planPushUpdates(opts PushOptions, advertised map[plumbing.ReferenceName]plumbing.Hash) ([]refUpdate, error) {
	var branches []string
	if opts.All {
		var err error
		branches, err = r.BranchNames()
		if err != nil {
			return nil, err
		}
	} else {
		branch := opts.Branch
		if branch == "" {
			current, err := r.CurrentBranch()
			if err != nil {
				return nil, err
			}
			branch = current
		}
		branches = []string{branch}
	}

	var updates []refUpdate
	for _, branch := range branches {
		name := plumbing.NewBranchReferenceName(branch)
		ref, err := r.repo.Reference(name, true)
		if err != nil {
			return nil, errors.NewRefNotFoundError(branch)
		}

		update := refUpdate{
			branch: branch,
			name:   name,
			old:    advertised[name],
			new:    ref.Hash(),
		}
		if update.old == update.new {
			continue // already up to date
		}

		if !opts.Force && !update.old.IsZero() {
			ff, err := r.isFastForward(update.old, update.new)
			if err != nil {
				return nil, err
			}
			if !ff {
				return nil, errors.NewNonFastForwardError(branch)
			}
		}

		updates = append(updates, update)
	}

	return updates, nil
}

// isFastForward reports whether new descends from old. A remote tip that
// is not present locally cannot be verified and is treated as divergent.
func (r *Repository) isFastForward(old, new plumbing.Hash) (bool, error) {
	oldCommit, err := r.repo.CommitObject(old)
	if err != nil {
		if goerrors.Is(err, plumbing.ErrObjectNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read commit %s: %w", old, err)
	}
	newCommit, err := r.repo.CommitObject(new)
	if err != nil {
		return false, fmt.Errorf("failed to read commit %s: %w", new, err)
	}

	return oldCommit.IsAncestor(newCommit)
}

// advanceRemoteTracking moves refs/remotes/<remote>/<branch> to the pushed
// tip with a compare-and-swap on its current value
func (r *Repository) advanceRemoteTracking(remoteName string, update refUpdate) error {
	trackingName := plumbing.NewRemoteReferenceName(remoteName, update.branch)

	current, err := r.repo.Storer.Reference(trackingName)
	if err != nil && !goerrors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("failed to read %s: %w", trackingName, err)
	}
	if current != nil && current.Hash() == update.new {
		return nil
	}

	return r.casReference(trackingName, current, update.new)
}

// casReference sets name to new only if it still holds expected (nil for
// a ref that did not exist); a concurrent writer surfaces as ErrRefChanged
func (r *Repository) casReference(name plumbing.ReferenceName, expected *plumbing.Reference, new plumbing.Hash) error {
	newRef := plumbing.NewHashReference(name, new)
	if err := r.repo.Storer.CheckAndSetReference(newRef, expected); err != nil {
		return errors.NewRefChangedError(name.String())
	}
	return nil
}

// recordUpstreams writes the tracking association for each pushed branch
func (r *Repository) recordUpstreams(remoteName string, updates []refUpdate) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}

	for _, update := range updates {
		cfg.Branches[update.branch] = &gitconfig.Branch{
			Name:   update.branch,
			Remote: remoteName,
			Merge:  update.name,
		}
	}

	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write repository config: %w", err)
	}
	return nil
}

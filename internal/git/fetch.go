package git

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/psomani16k/gittwo/internal/errors"
	"github.com/psomani16k/gittwo/internal/output"
)

// FetchOptions contains options for fetching from a remote
type FetchOptions struct {
	// RemoteName defaults to "origin"
	RemoteName string

	// Depth limits the fetched history; zero keeps the remote's refspec
	// defaults
	Depth int

	// Credentials supplies authentication on demand
	Credentials CredentialProvider

	// Progress receives side-band progress output from the remote
	Progress io.Writer
}

// Fetch downloads objects and refs from a remote using its configured
// fetch refspecs. An already up-to-date remote is not an error.
func (r *Repository) Fetch(ctx context.Context, opts FetchOptions, splog *output.Splog) error {
	if r == nil || r.repo == nil {
		return errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	neg := newNegotiation("fetch", splog)

	remoteName := opts.RemoteName
	if remoteName == "" {
		remoteName = "origin"
	}

	neg.enter(StageConnecting)
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		if goerrors.Is(err, gogit.ErrRemoteNotFound) {
			return neg.fail(errors.NewRemoteNotFoundError(remoteName))
		}
		return neg.fail(fmt.Errorf("failed to look up remote: %w", err))
	}
	url := remote.Config().URLs[0]

	// Negotiating: exchange ref advertisements and capture the credential
	// the remote accepted for them
	neg.enter(StageNegotiating)
	auth, err := advertiseRefs(ctx, remote, url, opts.Credentials, neg)
	if err != nil {
		return err
	}

	// Transferring: pull object data, re-entering the credential loop in
	// case the remote served the advertisement anonymously
	neg.enter(StageTransferring)
	err = withCredentials(ctx, url, opts.Credentials, auth, func(candidate transport.AuthMethod) error {
		return r.repo.FetchContext(ctx, &gogit.FetchOptions{
			RemoteName: remoteName,
			Depth:      opts.Depth,
			Auth:       candidate,
			Progress:   opts.Progress,
		})
	})
	if err != nil && !goerrors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return neg.fail(fmt.Errorf("failed to fetch from %s: %w", remoteName, err))
	}

	neg.done()
	return nil
}

// advertiseRefs runs the ref advertisement exchange and returns the
// credential the remote accepted for it, nil for an anonymous exchange.
// Failures are reported against the negotiation's current stage.
func advertiseRefs(ctx context.Context, remote *gogit.Remote, url string, provider CredentialProvider, neg *negotiation) (transport.AuthMethod, error) {
	var auth transport.AuthMethod
	err := withCredentials(ctx, url, provider, nil, func(candidate transport.AuthMethod) error {
		if _, lerr := remote.ListContext(ctx, &gogit.ListOptions{Auth: candidate}); lerr != nil {
			if goerrors.Is(lerr, transport.ErrEmptyRemoteRepository) {
				auth = candidate
				return nil
			}
			return lerr
		}
		auth = candidate
		return nil
	})
	if err != nil {
		if goerrors.Is(err, errors.ErrAuthenticationFailed) || goerrors.Is(err, context.Canceled) || goerrors.Is(err, context.DeadlineExceeded) {
			return nil, neg.fail(err)
		}
		return nil, neg.fail(fmt.Errorf("%w: %v", errors.ErrConnectionFailed, err))
	}
	return auth, nil
}

// PullOptions contains options for pulling from a remote
type PullOptions struct {
	// RemoteName defaults to "origin"
	RemoteName string

	// Credentials supplies authentication on demand
	Credentials CredentialProvider

	// Progress receives side-band progress output from the remote
	Progress io.Writer
}

// Pull fetches from a remote and fast-forwards the current branch and
// working tree. A divergent local branch fails with ErrNonFastForward;
// merge resolution is out of scope.
func (r *Repository) Pull(ctx context.Context, opts PullOptions, splog *output.Splog) error {
	if r == nil || r.repo == nil {
		return errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	neg := newNegotiation("pull", splog)

	remoteName := opts.RemoteName
	if remoteName == "" {
		remoteName = "origin"
	}

	neg.enter(StageConnecting)
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		if goerrors.Is(err, gogit.ErrRemoteNotFound) {
			return neg.fail(errors.NewRemoteNotFoundError(remoteName))
		}
		return neg.fail(fmt.Errorf("failed to look up remote: %w", err))
	}
	url := remote.Config().URLs[0]

	wt, err := r.repo.Worktree()
	if err != nil {
		return neg.fail(fmt.Errorf("failed to get worktree: %w", err))
	}

	neg.enter(StageNegotiating)
	auth, err := advertiseRefs(ctx, remote, url, opts.Credentials, neg)
	if err != nil {
		return err
	}

	neg.enter(StageTransferring)
	err = withCredentials(ctx, url, opts.Credentials, auth, func(candidate transport.AuthMethod) error {
		return wt.PullContext(ctx, &gogit.PullOptions{
			RemoteName: remoteName,
			Auth:       candidate,
			Progress:   opts.Progress,
		})
	})
	if err != nil && !goerrors.Is(err, gogit.NoErrAlreadyUpToDate) {
		if goerrors.Is(err, gogit.ErrNonFastForwardUpdate) {
			return neg.fail(errors.NewNonFastForwardError("HEAD"))
		}
		return neg.fail(fmt.Errorf("failed to pull from %s: %w", remoteName, err))
	}

	neg.done()
	return nil
}

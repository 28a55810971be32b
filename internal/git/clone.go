package git

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/psomani16k/gittwo/internal/errors"
	"github.com/psomani16k/gittwo/internal/output"
)

// CloneOptions contains options for cloning a remote repository
type CloneOptions struct {
	// URL of the remote repository
	URL string

	// ParentDir is the directory the clone directory is created inside
	ParentDir string

	// DirName overrides the directory name derived from the URL
	DirName string

	// Branch selects the branch to check out instead of the remote's
	// default branch
	Branch string

	// Depth truncates the fetched history to N commits from the tip;
	// zero means full history
	Depth int

	// SingleBranch restricts the fetched refs to the selected branch
	SingleBranch bool

	// Bare populates only the object database and refs, skipping the
	// working tree checkout
	Bare bool

	// Recursive clones submodules depth-first after the primary transfer
	Recursive bool

	// RemoteName defaults to "origin"
	RemoteName string

	// Credentials supplies authentication on demand; nil clones anonymously
	Credentials CredentialProvider

	// Progress receives side-band progress output from the remote
	Progress io.Writer
}

// TargetDir returns the directory the repository will be cloned into
func (o CloneOptions) TargetDir() string {
	name := o.DirName
	if name == "" {
		name = strings.TrimSuffix(o.URL, "/")
		if idx := strings.LastIndexAny(name, "/:"); idx >= 0 {
			name = name[idx+1:]
		}
		name = strings.TrimSuffix(name, ".git")
		if o.Bare {
			name += ".git"
		}
	}
	return filepath.Join(o.ParentDir, name)
}

// Clone performs a full clone exchange against a remote and returns a
// handle to the new local repository.
//
// The exchange walks the negotiation stages in order: connecting (URL
// resolution, session setup), negotiating (ref advertisement and branch
// selection), transferring (object transfer plus submodule recursion),
// updating-refs. A failure at any stage reports that stage and leaves no
// partial clone behind.
func Clone(ctx context.Context, opts CloneOptions, splog *output.Splog) (*Repository, error) {
	neg := newNegotiation("clone", splog)

	remoteName := opts.RemoteName
	if remoteName == "" {
		remoteName = "origin"
	}

	// Connecting: validate and resolve the remote URL
	neg.enter(StageConnecting)
	if _, err := transport.NewEndpoint(opts.URL); err != nil {
		return nil, neg.fail(fmt.Errorf("%w: %v", errors.ErrConnectionFailed, err))
	}
	targetDir := opts.TargetDir()
	if _, err := os.Stat(targetDir); err == nil {
		return nil, neg.fail(fmt.Errorf("destination path %s already exists", targetDir))
	}

	// Negotiating: exchange ref advertisements and select the branch
	neg.enter(StageNegotiating)
	detached := gogit.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: remoteName,
		URLs: []string{opts.URL},
	})

	var (
		auth transport.AuthMethod
		refs []*plumbing.Reference
	)
	err := withCredentials(ctx, opts.URL, opts.Credentials, nil, func(candidate transport.AuthMethod) error {
		listed, lerr := detached.ListContext(ctx, &gogit.ListOptions{Auth: candidate})
		if lerr != nil {
			return lerr
		}
		auth = candidate
		refs = listed
		return nil
	})
	if err != nil {
		if goerrors.Is(err, errors.ErrAuthenticationFailed) || goerrors.Is(err, context.Canceled) || goerrors.Is(err, context.DeadlineExceeded) {
			return nil, neg.fail(err)
		}
		return nil, neg.fail(fmt.Errorf("%w: %v", errors.ErrConnectionFailed, err))
	}

	branch, err := selectCloneBranch(refs, opts.Branch)
	if err != nil {
		return nil, neg.fail(err)
	}

	// Transferring: pull object data for the negotiated ref set. A remote
	// that served the advertisement anonymously may still demand
	// authentication for the fetch itself, so the transfer re-enters the
	// credential loop starting from whatever the advertisement settled on.
	neg.enter(StageTransferring)
	cloneOpts := &gogit.CloneOptions{
		URL:           opts.URL,
		RemoteName:    remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  opts.SingleBranch,
		Depth:         opts.Depth,
		Progress:      opts.Progress,
	}
	if opts.Depth > 0 || opts.SingleBranch {
		cloneOpts.Tags = gogit.NoTags
	}

	var repo *gogit.Repository
	err = withCredentials(ctx, opts.URL, opts.Credentials, auth, func(candidate transport.AuthMethod) error {
		cloneOpts.Auth = candidate
		cloned, cerr := gogit.PlainCloneContext(ctx, targetDir, opts.Bare, cloneOpts)
		if cerr != nil {
			// A rejected attempt may leave a partial directory behind;
			// the next attempt needs a clean destination
			_ = os.RemoveAll(targetDir)
			return cerr
		}
		auth = candidate
		repo = cloned
		return nil
	})
	if err != nil {
		return nil, neg.fail(fmt.Errorf("failed to clone %s: %w", opts.URL, err))
	}

	if opts.Recursive && !opts.Bare {
		if err := cloneSubmodules(ctx, repo, auth, []string{opts.URL}); err != nil {
			_ = os.RemoveAll(targetDir)
			return nil, neg.fail(err)
		}
	}

	// UpdatingRefs: record the remote's default branch pointer, the way
	// the git CLI leaves refs/remotes/<name>/HEAD behind after a clone
	neg.enter(StageUpdatingRefs)
	remoteHead := plumbing.NewSymbolicReference(
		plumbing.NewRemoteHEADReferenceName(remoteName),
		plumbing.NewRemoteReferenceName(remoteName, branch),
	)
	if err := repo.Storer.SetReference(remoteHead); err != nil {
		_ = os.RemoveAll(targetDir)
		return nil, neg.fail(fmt.Errorf("failed to set remote HEAD: %w", err))
	}

	neg.done()
	return &Repository{repo: repo, path: targetDir}, nil
}

// selectCloneBranch picks the branch to check out from the advertised
// refs: the requested one (which must exist on the remote), otherwise the
// remote's HEAD, otherwise a head matching the HEAD hash.
func selectCloneBranch(refs []*plumbing.Reference, requested string) (string, error) {
	if requested != "" {
		want := plumbing.NewBranchReferenceName(requested)
		for _, ref := range refs {
			if ref.Name() == want {
				return requested, nil
			}
		}
		return "", errors.NewRefNotFoundError(requested)
	}

	var headHash plumbing.Hash
	for _, ref := range refs {
		if ref.Name() != plumbing.HEAD {
			continue
		}
		if ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
			return ref.Target().Short(), nil
		}
		headHash = ref.Hash()
	}

	if !headHash.IsZero() {
		for _, ref := range refs {
			if ref.Name().IsBranch() && ref.Hash() == headHash {
				return ref.Name().Short(), nil
			}
		}
	}

	return plumbing.Master.Short(), nil
}

// cloneSubmodules clones submodules depth-first. urlPath holds the
// submodule URLs on the current recursion path; revisiting one of them
// means the submodule graph is cyclic and recursion stops with
// ErrCyclicSubmodule instead of looping.
func cloneSubmodules(ctx context.Context, repo *gogit.Repository, auth transport.AuthMethod, urlPath []string) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	subs, err := wt.Submodules()
	if err != nil {
		return fmt.Errorf("failed to read submodules: %w", err)
	}

	for _, sub := range subs {
		cfg := sub.Config()

		for _, seen := range urlPath {
			if seen == cfg.URL {
				return errors.NewCyclicSubmoduleError(cfg.URL)
			}
		}

		if err := sub.UpdateContext(ctx, &gogit.SubmoduleUpdateOptions{
			Init: true,
			Auth: auth,
		}); err != nil {
			return fmt.Errorf("failed to clone submodule %s: %w", cfg.Path, err)
		}

		subRepo, err := sub.Repository()
		if err != nil {
			return fmt.Errorf("failed to open submodule %s: %w", cfg.Path, err)
		}

		next := append(append([]string{}, urlPath...), cfg.URL)
		if err := cloneSubmodules(ctx, subRepo, auth, next); err != nil {
			return err
		}
	}

	return nil
}

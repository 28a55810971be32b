package git

import (
	"context"
	goerrors "errors"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/require"

	"github.com/psomani16k/gittwo/internal/errors"
)

// recordingProvider hands out a fixed list of credentials and records the
// attempt numbers it was called with
type recordingProvider struct {
	auths    []transport.AuthMethod
	attempts []int
}

func (p *recordingProvider) Resolve(_ string, attempt int) (transport.AuthMethod, error) {
	p.attempts = append(p.attempts, attempt)
	if attempt > len(p.auths) {
		return nil, ErrCredentialsExhausted
	}
	return p.auths[attempt-1], nil
}

func (p *recordingProvider) Describe() string { return "recording" }

func TestWithCredentials(t *testing.T) {
	basic := func(user string) transport.AuthMethod {
		return &githttp.BasicAuth{Username: user, Password: "pw"}
	}

	t.Run("open remotes never consult the provider", func(t *testing.T) {
		provider := &recordingProvider{auths: []transport.AuthMethod{basic("a")}}

		var calls int
		err := withCredentials(t.Context(), "url", provider, nil, func(auth transport.AuthMethod) error {
			calls++
			require.Nil(t, auth)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 1, calls)
		require.Empty(t, provider.attempts)
	})

	t.Run("an accepted initial credential skips the provider", func(t *testing.T) {
		provider := &recordingProvider{auths: []transport.AuthMethod{basic("a")}}
		seed := basic("seed")

		var offered []transport.AuthMethod
		err := withCredentials(t.Context(), "url", provider, seed, func(auth transport.AuthMethod) error {
			offered = append(offered, auth)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []transport.AuthMethod{seed}, offered)
		require.Empty(t, provider.attempts)
	})

	t.Run("a rejected initial credential resumes with the provider", func(t *testing.T) {
		provider := &recordingProvider{auths: []transport.AuthMethod{basic("a")}}
		seed := basic("seed")

		var offered []transport.AuthMethod
		err := withCredentials(t.Context(), "url", provider, seed, func(auth transport.AuthMethod) error {
			offered = append(offered, auth)
			if auth == seed {
				return transport.ErrAuthorizationFailed
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []transport.AuthMethod{seed, basic("a")}, offered)
		require.Equal(t, []int{1}, provider.attempts)
	})

	t.Run("authentication demand without a provider", func(t *testing.T) {
		err := withCredentials(t.Context(), "url", nil, nil, func(transport.AuthMethod) error {
			return transport.ErrAuthenticationRequired
		})
		require.ErrorIs(t, err, errors.ErrAuthenticationFailed)
	})

	t.Run("first accepted credential ends the loop", func(t *testing.T) {
		provider := &recordingProvider{auths: []transport.AuthMethod{basic("a"), basic("b")}}

		var offered []transport.AuthMethod
		err := withCredentials(t.Context(), "url", provider, nil, func(auth transport.AuthMethod) error {
			offered = append(offered, auth)
			if auth == nil {
				return transport.ErrAuthenticationRequired
			}
			return nil
		})
		require.NoError(t, err)
		require.Len(t, offered, 2)
		require.Equal(t, basic("a"), offered[1])
		require.Equal(t, []int{1}, provider.attempts)
	})

	t.Run("rejections advance to the next credential", func(t *testing.T) {
		provider := &recordingProvider{auths: []transport.AuthMethod{basic("a"), basic("b")}}

		var accepted transport.AuthMethod
		err := withCredentials(t.Context(), "url", provider, nil, func(auth transport.AuthMethod) error {
			if auth == nil || auth == provider.auths[0] {
				return transport.ErrAuthenticationRequired
			}
			accepted = auth
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, provider.auths[1], accepted)
		require.Equal(t, []int{1, 2}, provider.attempts)
	})

	t.Run("attempts are bounded", func(t *testing.T) {
		provider := &recordingProvider{auths: []transport.AuthMethod{
			basic("a"), basic("b"), basic("c"), basic("d"),
		}}

		var rejected int
		err := withCredentials(t.Context(), "url", provider, nil, func(transport.AuthMethod) error {
			rejected++
			return transport.ErrAuthorizationFailed
		})
		require.ErrorIs(t, err, errors.ErrAuthenticationFailed)
		// The anonymous attempt plus one per allowed credential
		require.Equal(t, maxAuthAttempts+1, rejected)
	})

	t.Run("exhausted provider fails authentication", func(t *testing.T) {
		provider := &recordingProvider{auths: []transport.AuthMethod{basic("a")}}

		err := withCredentials(t.Context(), "url", provider, nil, func(transport.AuthMethod) error {
			return transport.ErrAuthenticationRequired
		})
		require.ErrorIs(t, err, errors.ErrAuthenticationFailed)
	})

	t.Run("other transport failures pass through", func(t *testing.T) {
		provider := &recordingProvider{auths: []transport.AuthMethod{basic("a"), basic("b")}}
		boom := goerrors.New("connection reset")

		var calls int
		err := withCredentials(t.Context(), "url", provider, nil, func(transport.AuthMethod) error {
			calls++
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.Equal(t, 1, calls)
	})

	t.Run("cancellation stops the loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		provider := &recordingProvider{auths: []transport.AuthMethod{basic("a")}}
		err := withCredentials(ctx, "url", provider, nil, func(transport.AuthMethod) error {
			return transport.ErrAuthenticationRequired
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNegotiationStages(t *testing.T) {
	t.Run("stage names", func(t *testing.T) {
		require.Equal(t, "idle", StageIdle.String())
		require.Equal(t, "connecting", StageConnecting.String())
		require.Equal(t, "negotiating", StageNegotiating.String())
		require.Equal(t, "transferring", StageTransferring.String())
		require.Equal(t, "updating-refs", StageUpdatingRefs.String())
		require.Equal(t, "done", StageDone.String())
		require.Equal(t, "failed", StageFailed.String())
	})

	t.Run("failure keeps the stage it happened in", func(t *testing.T) {
		neg := newNegotiation("push", nil)
		neg.enter(StageTransferring)

		boom := goerrors.New("pipe closed")
		err := neg.fail(boom)

		var terr *errors.TransportError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, "push", terr.Op)
		require.Equal(t, "transferring", terr.Stage)
		require.ErrorIs(t, err, boom)
		require.Equal(t, StageFailed, neg.stage)
	})

	t.Run("each negotiation gets its own session id", func(t *testing.T) {
		a := newNegotiation("fetch", nil)
		b := newNegotiation("fetch", nil)
		require.NotEqual(t, a.session, b.session)
	})
}

func TestSelectCloneBranch(t *testing.T) {
	heads := func(names ...string) []*plumbing.Reference {
		var refs []*plumbing.Reference
		for _, name := range names {
			hash := plumbing.ComputeHash(plumbing.BlobObject, []byte(name))
			refs = append(refs, plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash))
		}
		return refs
	}

	t.Run("requested branch must be advertised", func(t *testing.T) {
		branch, err := selectCloneBranch(heads("main", "develop"), "develop")
		require.NoError(t, err)
		require.Equal(t, "develop", branch)

		_, err = selectCloneBranch(heads("main"), "nope")
		require.ErrorIs(t, err, errors.ErrRefNotFound)
	})

	t.Run("symbolic head wins", func(t *testing.T) {
		refs := heads("main", "develop")
		refs = append(refs, plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("develop")))

		branch, err := selectCloneBranch(refs, "")
		require.NoError(t, err)
		require.Equal(t, "develop", branch)
	})

	t.Run("hash head matches the branch pointing at it", func(t *testing.T) {
		refs := heads("main", "develop")
		refs = append(refs, plumbing.NewHashReference(plumbing.HEAD, refs[1].Hash()))

		branch, err := selectCloneBranch(refs, "")
		require.NoError(t, err)
		require.Equal(t, "develop", branch)
	})

	t.Run("no head falls back to master", func(t *testing.T) {
		branch, err := selectCloneBranch(nil, "")
		require.NoError(t, err)
		require.Equal(t, "master", branch)
	})
}

func TestCloneSubmoduleCycles(t *testing.T) {
	t.Run("revisiting a url on the recursion path stops", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)

		gitmodules := "[submodule \"sub\"]\n\tpath = sub\n\turl = https://example.com/parent.git\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitmodules"), []byte(gitmodules), 0644))

		err = cloneSubmodules(t.Context(), repo, nil, []string{"https://example.com/parent.git"})
		require.ErrorIs(t, err, errors.ErrCyclicSubmodule)
		require.Contains(t, err.Error(), "https://example.com/parent.git")
	})

	t.Run("no submodules is a no-op", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)

		require.NoError(t, cloneSubmodules(t.Context(), repo, nil, []string{"https://example.com/parent.git"}))
	})
}

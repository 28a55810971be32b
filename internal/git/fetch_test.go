package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"github.com/psomani16k/gittwo/internal/errors"
	"github.com/psomani16k/gittwo/internal/git"
	"github.com/psomani16k/gittwo/testhelpers"
)

func TestFetch(t *testing.T) {
	t.Run("brings remote refs into the tracking namespace", func(t *testing.T) {
		remoteDir := testhelpers.NewBareRemote(t)
		testhelpers.SeedRemote(t, remoteDir, map[string]string{"a.txt": "one"})
		seededTip := testhelpers.RemoteTip(t, remoteDir, "main")

		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.AddRemote("origin", remoteDir, git.AddRemoteOptions{}))

		require.NoError(t, scene.Repo.Fetch(t.Context(), git.FetchOptions{}, nil))

		raw, err := gogit.PlainOpen(scene.Dir)
		require.NoError(t, err)
		tracking, err := raw.Reference(plumbing.NewRemoteReferenceName("origin", "main"), true)
		require.NoError(t, err)
		require.Equal(t, seededTip, tracking.Hash())

		// The local branches are untouched
		names, err := scene.Repo.BranchNames()
		require.NoError(t, err)
		require.Empty(t, names)
	})

	t.Run("up-to-date fetch is not an error", func(t *testing.T) {
		remoteDir := testhelpers.NewBareRemote(t)
		testhelpers.SeedRemote(t, remoteDir, map[string]string{"a.txt": "one"})

		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.AddRemote("origin", remoteDir, git.AddRemoteOptions{}))

		require.NoError(t, scene.Repo.Fetch(t.Context(), git.FetchOptions{}, nil))
		require.NoError(t, scene.Repo.Fetch(t.Context(), git.FetchOptions{}, nil))
	})

	t.Run("unreachable remote reports the negotiating stage", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		missing := filepath.Join(t.TempDir(), "gone.git")
		require.NoError(t, scene.Repo.AddRemote("origin", missing, git.AddRemoteOptions{}))

		err := scene.Repo.Fetch(t.Context(), git.FetchOptions{}, nil)
		require.ErrorIs(t, err, errors.ErrConnectionFailed)

		var terr *errors.TransportError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, "fetch", terr.Op)
		require.Equal(t, "negotiating", terr.Stage)
	})

	t.Run("cancellation leaves the tracking refs untouched", func(t *testing.T) {
		remoteDir := testhelpers.NewBareRemote(t)
		testhelpers.SeedRemote(t, remoteDir, map[string]string{"a.txt": "one"})

		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.AddRemote("origin", remoteDir, git.AddRemoteOptions{}))

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		require.Error(t, scene.Repo.Fetch(ctx, git.FetchOptions{}, nil))

		raw, err := gogit.PlainOpen(scene.Dir)
		require.NoError(t, err)
		_, err = raw.Reference(plumbing.NewRemoteReferenceName("origin", "main"), true)
		require.ErrorIs(t, err, plumbing.ErrReferenceNotFound)
	})

	t.Run("unknown remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		err := scene.Repo.Fetch(t.Context(), git.FetchOptions{RemoteName: "nowhere"}, nil)
		require.ErrorIs(t, err, errors.ErrRemoteNotFound)
	})
}

func TestPull(t *testing.T) {
	t.Run("fast-forwards the current branch", func(t *testing.T) {
		remoteDir := testhelpers.NewBareRemote(t)
		seeder := testhelpers.SeedRemote(t, remoteDir, map[string]string{"a.txt": "one"})

		repo, err := git.Clone(t.Context(), git.CloneOptions{
			URL:       remoteDir,
			ParentDir: t.TempDir(),
		}, nil)
		require.NoError(t, err)

		// Upstream moves ahead
		upstreamTip := seeder.WriteAndCommit("b.txt", "two", "second")
		require.NoError(t, seeder.Repo.Push(t.Context(), git.PushOptions{}, nil))

		require.NoError(t, repo.Pull(t.Context(), git.PullOptions{}, nil))

		head, err := repo.Head()
		require.NoError(t, err)
		require.Equal(t, upstreamTip, head)

		_, err = os.Stat(filepath.Join(repo.Root(), "b.txt"))
		require.NoError(t, err)
	})

	t.Run("up-to-date pull is not an error", func(t *testing.T) {
		remoteDir := testhelpers.NewBareRemote(t)
		testhelpers.SeedRemote(t, remoteDir, map[string]string{"a.txt": "one"})

		repo, err := git.Clone(t.Context(), git.CloneOptions{
			URL:       remoteDir,
			ParentDir: t.TempDir(),
		}, nil)
		require.NoError(t, err)

		require.NoError(t, repo.Pull(t.Context(), git.PullOptions{}, nil))
	})

	t.Run("divergent branch refuses to merge", func(t *testing.T) {
		remoteDir := testhelpers.NewBareRemote(t)
		seeder := testhelpers.SeedRemote(t, remoteDir, map[string]string{"a.txt": "one"})

		repo, err := git.Clone(t.Context(), git.CloneOptions{
			URL:       remoteDir,
			ParentDir: t.TempDir(),
		}, nil)
		require.NoError(t, err)
		require.NoError(t, repo.SetUserIdentity("Test User", "test@example.com"))

		// Both sides move, in different directions
		seeder.WriteAndCommit("b.txt", "upstream", "upstream change")
		require.NoError(t, seeder.Repo.Push(t.Context(), git.PushOptions{}, nil))

		local := &testhelpers.Scene{T: t, Dir: repo.Root(), Repo: repo}
		local.WriteAndCommit("c.txt", "local", "local change")

		err = repo.Pull(t.Context(), git.PullOptions{}, nil)
		require.ErrorIs(t, err, errors.ErrNonFastForward)
	})

	t.Run("unknown remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			s.WriteAndCommit("a.txt", "one", "init")
			return nil
		})

		err := scene.Repo.Pull(t.Context(), git.PullOptions{RemoteName: "nowhere"}, nil)
		require.ErrorIs(t, err, errors.ErrRemoteNotFound)
	})
}

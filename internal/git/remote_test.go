package git_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psomani16k/gittwo/internal/errors"
	"github.com/psomani16k/gittwo/internal/git"
	"github.com/psomani16k/gittwo/testhelpers"
)

func TestAddRemote(t *testing.T) {
	t.Run("registers a remote with the default refspec", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		err := scene.Repo.AddRemote("origin", "https://example.com/repo.git", git.AddRemoteOptions{})
		require.NoError(t, err)

		remotes, err := scene.Repo.Remotes()
		require.NoError(t, err)
		require.Len(t, remotes, 1)
		require.Equal(t, "origin", remotes[0].Name)
		require.Equal(t, "https://example.com/repo.git", remotes[0].URL)
		require.Equal(t, []string{"+refs/heads/*:refs/remotes/origin/*"}, remotes[0].Fetch)
	})

	t.Run("tracked branches narrow the refspecs", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		err := scene.Repo.AddRemote("origin", "https://example.com/repo.git", git.AddRemoteOptions{
			Track: []string{"main", "develop"},
		})
		require.NoError(t, err)

		remotes, err := scene.Repo.Remotes()
		require.NoError(t, err)
		require.Equal(t, []string{
			"+refs/heads/main:refs/remotes/origin/main",
			"+refs/heads/develop:refs/remotes/origin/develop",
		}, remotes[0].Fetch)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		err := scene.Repo.AddRemote("origin", "https://example.com/a.git", git.AddRemoteOptions{})
		require.NoError(t, err)

		err = scene.Repo.AddRemote("origin", "https://example.com/b.git", git.AddRemoteOptions{})
		require.ErrorIs(t, err, errors.ErrDuplicateRemote)
		require.Contains(t, err.Error(), "origin")

		// The original registration survives
		remotes, err := scene.Repo.Remotes()
		require.NoError(t, err)
		require.Len(t, remotes, 1)
		require.Equal(t, "https://example.com/a.git", remotes[0].URL)
	})
}

func TestRemoveRemote(t *testing.T) {
	t.Run("removes the remote and everything pointing at it", func(t *testing.T) {
		remoteDir := testhelpers.NewBareRemote(t)
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			s.WriteAndCommit("a.txt", "one", "init")
			return nil
		})

		require.NoError(t, scene.Repo.AddRemote("origin", remoteDir, git.AddRemoteOptions{}))
		require.NoError(t, scene.Repo.Push(t.Context(), git.PushOptions{SetUpstream: true}, nil))
		require.NoError(t, scene.Repo.SetRemoteHead("origin", "main", git.SetHeadOptions{}))

		require.NoError(t, scene.Repo.RemoveRemote("origin"))

		remotes, err := scene.Repo.Remotes()
		require.NoError(t, err)
		require.Empty(t, remotes)

		// Tracking refs and the head pointer are gone with it
		_, err = scene.Repo.RemoteHead("origin")
		require.ErrorIs(t, err, errors.ErrRemoteNotFound)
	})

	t.Run("unknown remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		err := scene.Repo.RemoveRemote("nope")
		require.ErrorIs(t, err, errors.ErrRemoteNotFound)
		require.Contains(t, err.Error(), "nope")
	})
}

func TestSetRemoteHead(t *testing.T) {
	t.Run("set, read and delete the default branch pointer", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.AddRemote("origin", "https://example.com/repo.git", git.AddRemoteOptions{}))

		_, err := scene.Repo.RemoteHead("origin")
		require.ErrorIs(t, err, errors.ErrRefNotFound)

		require.NoError(t, scene.Repo.SetRemoteHead("origin", "develop", git.SetHeadOptions{}))

		target, err := scene.Repo.RemoteHead("origin")
		require.NoError(t, err)
		require.Equal(t, "refs/remotes/origin/develop", target)

		require.NoError(t, scene.Repo.SetRemoteHead("origin", "", git.SetHeadOptions{Delete: true}))

		_, err = scene.Repo.RemoteHead("origin")
		require.ErrorIs(t, err, errors.ErrRefNotFound)

		// Deleting the pointer does not delete the remote
		remotes, err := scene.Repo.Remotes()
		require.NoError(t, err)
		require.Len(t, remotes, 1)
	})

	t.Run("deleting an absent pointer is fine", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.AddRemote("origin", "https://example.com/repo.git", git.AddRemoteOptions{}))

		require.NoError(t, scene.Repo.SetRemoteHead("origin", "", git.SetHeadOptions{Delete: true}))
	})

	t.Run("unknown remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		err := scene.Repo.SetRemoteHead("nope", "main", git.SetHeadOptions{})
		require.ErrorIs(t, err, errors.ErrRemoteNotFound)
	})

	t.Run("requires a branch unless deleting", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.AddRemote("origin", "https://example.com/repo.git", git.AddRemoteOptions{}))

		err := scene.Repo.SetRemoteHead("origin", "", git.SetHeadOptions{})
		require.Error(t, err)
	})
}

package git_test

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/psomani16k/gittwo/internal/errors"
	"github.com/psomani16k/gittwo/internal/git"
	"github.com/psomani16k/gittwo/testhelpers"
)

func TestCheckout(t *testing.T) {
	t.Run("switches to a local branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			s.WriteAndCommit("a.txt", "one", "init")
			return nil
		})
		require.NoError(t, scene.Repo.CreateBranch("feature"))
		scene.WriteAndCommit("b.txt", "two", "only on main")

		require.NoError(t, scene.Repo.Checkout("feature"))

		branch, err := scene.Repo.CurrentBranch()
		require.NoError(t, err)
		require.Equal(t, "feature", branch)

		// The working tree reflects the branch tip
		_, err = os.Stat(filepath.Join(scene.Dir, "b.txt"))
		require.True(t, os.IsNotExist(err))
	})

	t.Run("tags check out detached", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			s.WriteAndCommit("a.txt", "one", "init")
			return nil
		})
		tagged, err := scene.Repo.Head()
		require.NoError(t, err)
		scene.WriteAndCommit("b.txt", "two", "later")

		raw, err := gogit.PlainOpen(scene.Dir)
		require.NoError(t, err)
		_, err = raw.CreateTag("v1", tagged, nil)
		require.NoError(t, err)

		require.NoError(t, scene.Repo.Checkout("v1"))

		head, err := scene.Repo.Head()
		require.NoError(t, err)
		require.Equal(t, tagged, head)

		_, err = scene.Repo.CurrentBranch()
		require.Error(t, err)
	})

	t.Run("remote branch grows a local tracking branch", func(t *testing.T) {
		remoteDir := testhelpers.NewBareRemote(t)
		seeder := testhelpers.SeedRemote(t, remoteDir, map[string]string{"a.txt": "one"})

		require.NoError(t, seeder.Repo.CreateBranch("topic"))
		require.NoError(t, seeder.Repo.Checkout("topic"))
		seeder.WriteAndCommit("topic.txt", "topic", "topic work")
		require.NoError(t, seeder.Repo.Push(t.Context(), git.PushOptions{All: true}, nil))

		repo, err := git.Clone(t.Context(), git.CloneOptions{
			URL:       remoteDir,
			ParentDir: t.TempDir(),
			Branch:    "main",
		}, nil)
		require.NoError(t, err)

		// Only the checked-out branch exists locally so far
		names, err := repo.BranchNames()
		require.NoError(t, err)
		require.Equal(t, []string{"main"}, names)

		require.NoError(t, repo.Checkout("topic"))

		branch, err := repo.CurrentBranch()
		require.NoError(t, err)
		require.Equal(t, "topic", branch)

		_, err = os.Stat(filepath.Join(repo.Root(), "topic.txt"))
		require.NoError(t, err)

		raw, err := gogit.PlainOpen(repo.Root())
		require.NoError(t, err)
		cfg, err := raw.Config()
		require.NoError(t, err)
		require.Contains(t, cfg.Branches, "topic")
		require.Equal(t, "origin", cfg.Branches["topic"].Remote)
	})

	t.Run("raw commit hash checks out detached", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			s.WriteAndCommit("a.txt", "one", "init")
			return nil
		})
		first, err := scene.Repo.Head()
		require.NoError(t, err)
		scene.WriteAndCommit("b.txt", "two", "later")

		require.NoError(t, scene.Repo.Checkout(first.String()))

		head, err := scene.Repo.Head()
		require.NoError(t, err)
		require.Equal(t, first, head)
	})

	t.Run("unresolvable spec", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			s.WriteAndCommit("a.txt", "one", "init")
			return nil
		})

		err := scene.Repo.Checkout("no-such-thing")
		require.ErrorIs(t, err, errors.ErrRefNotFound)
		require.Contains(t, err.Error(), "no-such-thing")
	})
}

// Package testhelpers provides shared fixtures for gittwo tests.
package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/psomani16k/gittwo/internal/git"
)

// FixedWhen is the timestamp fixtures commit with, so commit ids stay
// reproducible across runs.
var FixedWhen = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Scene is a temporary on-disk repository for a test, removed
// automatically when the test finishes.
type Scene struct {
	T    *testing.T
	Dir  string
	Repo *git.Repository

	commits int
}

// SceneSetup is a function type for preparing a scene
type SceneSetup func(*Scene) error

// NewScene creates a repository in a temp directory with a "main" initial
// branch and a test identity configured.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.Init(dir, git.InitOptions{InitialBranch: "main"})
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	if err := repo.SetUserIdentity("Test User", "test@example.com"); err != nil {
		t.Fatalf("failed to set identity: %v", err)
	}

	scene := &Scene{T: t, Dir: dir, Repo: repo}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("scene setup failed: %v", err)
		}
	}

	return scene
}

// WriteFile writes a file relative to the repository root
func (s *Scene) WriteFile(name, content string) {
	s.T.Helper()
	path := filepath.Join(s.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		s.T.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		s.T.Fatalf("failed to write %s: %v", name, err)
	}
}

// RemoveFile deletes a file relative to the repository root
func (s *Scene) RemoveFile(name string) {
	s.T.Helper()
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
		s.T.Fatalf("failed to remove %s: %v", name, err)
	}
}

// Stage stages the given paths
func (s *Scene) Stage(paths ...string) {
	s.T.Helper()
	if _, err := s.Repo.Stage(paths, git.StageOptions{}); err != nil {
		s.T.Fatalf("failed to stage %v: %v", paths, err)
	}
}

// Commit stages the whole tree and commits it. Each commit in a scene
// gets a distinct deterministic timestamp so history stays ordered.
func (s *Scene) Commit(message string) plumbing.Hash {
	s.T.Helper()
	s.Stage(".")

	s.commits++
	hash, err := s.Repo.Commit(message, git.CommitOptions{
		When: FixedWhen.Add(time.Duration(s.commits) * time.Minute),
	})
	if err != nil {
		s.T.Fatalf("failed to commit: %v", err)
	}
	return hash
}

// WriteAndCommit writes a file and commits the whole tree
func (s *Scene) WriteAndCommit(name, content, message string) plumbing.Hash {
	s.T.Helper()
	s.WriteFile(name, content)
	return s.Commit(message)
}

// NewBareRemote creates an empty bare repository in a temp directory and
// returns its path, usable directly as a remote URL.
func NewBareRemote(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, true)
	if err != nil {
		t.Fatalf("failed to init bare repo: %v", err)
	}
	// Match the fixtures' default branch
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))
	if err := repo.Storer.SetReference(head); err != nil {
		t.Fatalf("failed to set HEAD: %v", err)
	}
	return dir
}

// RemoteTip reads a branch tip directly from a repository directory,
// bypassing the gittwo API, for verifying what a push actually did.
func RemoteTip(t *testing.T, dir, branch string) plumbing.Hash {
	t.Helper()
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		t.Fatalf("failed to open %s: %v", dir, err)
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return plumbing.ZeroHash
	}
	return ref.Hash()
}

// SeedRemote fills a bare remote with commits by pushing a scene's main
// branch to it. It returns the scene used for seeding.
func SeedRemote(t *testing.T, remoteDir string, commits map[string]string) *Scene {
	t.Helper()

	scene := NewScene(t, nil)
	for name, content := range commits {
		scene.WriteAndCommit(name, content, "add "+name)
	}
	if err := scene.Repo.AddRemote("origin", remoteDir, git.AddRemoteOptions{}); err != nil {
		t.Fatalf("failed to add remote: %v", err)
	}
	if err := scene.Repo.Push(t.Context(), git.PushOptions{}, nil); err != nil {
		t.Fatalf("failed to seed remote: %v", err)
	}
	return scene
}

package git

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/psomani16k/gittwo/internal/errors"
)

// Repository is the handle to an opened repository. It owns the go-git
// repository instance; every other operation in this package borrows it.
//
// Mutating operations (staging, commit, ref updates, transport exchanges)
// take the handle's write lock for their full duration, enforcing the
// single-writer discipline. Read-only queries may run concurrently.
type Repository struct {
	repo *gogit.Repository
	path string

	mu sync.Mutex
}

// InitOptions contains options for creating a new repository
type InitOptions struct {
	// Bare creates a repository without a working tree
	Bare bool

	// InitialBranch names the branch HEAD points at; defaults to "master"
	InitialBranch string

	// SeparateGitDir places the object database at the given path instead
	// of <dir>/.git, leaving behind a gitdir link file
	SeparateGitDir string
}

// Init creates a new repository at the given directory
func Init(dir string, opts InitOptions) (*Repository, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if opts.SeparateGitDir != "" {
		return initSeparateGitDir(absPath, opts)
	}

	initOpts := gogit.InitOptions{}
	if opts.InitialBranch != "" {
		initOpts.DefaultBranch = plumbing.NewBranchReferenceName(opts.InitialBranch)
	}

	repo, err := gogit.PlainInitWithOptions(absPath, &gogit.PlainInitOptions{
		InitOptions: initOpts,
		Bare:        opts.Bare,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init repository: %w", err)
	}

	return &Repository{repo: repo, path: absPath}, nil
}

// initSeparateGitDir initializes a repository whose object database lives
// outside the working tree. The working tree gets a ".git" link file so
// that a later Open finds the real git directory.
func initSeparateGitDir(workDir string, opts InitOptions) (*Repository, error) {
	gitDir, err := filepath.Abs(opts.SeparateGitDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve git dir: %w", err)
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create git directory: %w", err)
	}

	storage := filesystem.NewStorage(osfs.New(gitDir), cache.NewObjectLRUDefault())
	repo, err := gogit.Init(storage, osfs.New(workDir))
	if err != nil {
		return nil, fmt.Errorf("failed to init repository: %w", err)
	}

	if opts.InitialBranch != "" {
		head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(opts.InitialBranch))
		if err := repo.Storer.SetReference(head); err != nil {
			return nil, fmt.Errorf("failed to set initial branch: %w", err)
		}
	}

	// gitdir link file, same layout the git CLI writes for --separate-git-dir
	link := fmt.Sprintf("gitdir: %s\n", gitDir)
	if err := os.WriteFile(filepath.Join(workDir, ".git"), []byte(link), 0644); err != nil {
		return nil, fmt.Errorf("failed to write gitdir link: %w", err)
	}

	return &Repository{repo: repo, path: workDir}, nil
}

// Open opens an existing repository at or above the given path
func Open(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotARepository, absPath)
	}

	return &Repository{repo: repo, path: absPath}, nil
}

// Root returns the directory the handle was opened at
func (r *Repository) Root() string {
	return r.path
}

// Head returns the commit hash the current branch points at.
// An unborn branch (no commits yet) reports ErrRefNotFound.
func (r *Repository) Head() (plumbing.Hash, error) {
	head, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, errors.NewRefNotFoundError("HEAD")
	}
	return head.Hash(), nil
}

// CurrentBranch returns the short name of the branch HEAD is on
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		// Unborn HEAD is still a symbolic ref; read it directly
		ref, ferr := r.repo.Storer.Reference(plumbing.HEAD)
		if ferr == nil && ref.Type() == plumbing.SymbolicReference {
			return ref.Target().Short(), nil
		}
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}

	return head.Name().Short(), nil
}

// BranchNames returns all local branch names
func (r *Repository) BranchNames() ([]string, error) {
	branches, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var names []string
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	return names, nil
}

// CreateBranch creates a local branch pointing at the current HEAD commit
func (r *Repository) CreateBranch(name string) error {
	unlock := r.lock()
	defer unlock()

	head, err := r.repo.Head()
	if err != nil {
		return errors.NewRefNotFoundError("HEAD")
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	return nil
}

// BranchTip returns the commit hash a local branch points at
func (r *Repository) BranchTip(name string) (plumbing.Hash, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		return plumbing.ZeroHash, errors.NewRefNotFoundError(name)
	}
	return ref.Hash(), nil
}

// lock acquires exclusive access for a mutating operation. The returned
// function releases it and must run on every exit path.
func (r *Repository) lock() func() {
	r.mu.Lock()
	return r.mu.Unlock
}

package git

import (
	"fmt"
	"os"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/psomani16k/gittwo/internal/errors"
)

// StageState describes how a path would change in the index
type StageState int

const (
	StageUnchanged StageState = iota
	StageAdded
	StageModified
	StageDeleted
)

func (s StageState) String() string {
	switch s {
	case StageAdded:
		return "added"
	case StageModified:
		return "modified"
	case StageDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// StagedChange is one index entry that a Stage call created or would create
type StagedChange struct {
	Path  string
	State StageState
}

// StageOptions contains options for staging paths
type StageOptions struct {
	// Update restricts staging to paths already tracked; untracked paths
	// matched by the pathspec are skipped
	Update bool

	// DryRun computes the change set without mutating the index
	DryRun bool
}

// Stage stages the given paths. A path of "." matches the whole working
// tree. The returned changes are sorted by path.
//
// The operation is all-or-nothing: every path is resolved and validated
// before the first index write, and a failure while writing restores the
// index to its pre-call state.
func (r *Repository) Stage(paths []string, opts StageOptions) ([]StagedChange, error) {
	if r == nil || r.repo == nil {
		return nil, errors.ErrNotARepository
	}

	unlock := r.lock()
	defer unlock()

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to compute status: %w", err)
	}

	seen := make(map[string]bool)
	var changes []StagedChange

	for _, path := range paths {
		spec := normalizePathspec(path)

		matched := false
		for file, fs := range status {
			if !matchPathspec(spec, file) {
				continue
			}
			matched = true

			change, ok := worktreeChange(file, fs)
			if !ok {
				continue
			}
			if opts.Update && fs.Worktree == gogit.Untracked {
				continue
			}
			if !seen[file] {
				seen[file] = true
				changes = append(changes, change)
			}
		}

		if !matched && spec != "." {
			// A tracked, unmodified path is a valid no-op; anything else
			// that is absent from the working tree is an error.
			if _, serr := wt.Filesystem.Stat(spec); serr != nil {
				if os.IsNotExist(serr) {
					return nil, errors.NewPathNotFoundError(path)
				}
				return nil, fmt.Errorf("failed to stat %s: %w", path, serr)
			}
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	if opts.DryRun {
		return changes, nil
	}

	// Snapshot the index so a partial failure can be rolled back
	snapshot, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	for _, change := range changes {
		if _, err := wt.Add(change.Path); err != nil {
			if rerr := r.repo.Storer.SetIndex(snapshot); rerr != nil {
				return nil, fmt.Errorf("failed to stage %s: %v (index restore also failed: %w)", change.Path, err, rerr)
			}
			return nil, fmt.Errorf("failed to stage %s: %w", change.Path, err)
		}
	}

	return changes, nil
}

// worktreeChange maps a status entry's worktree side to a staged change.
// Entries whose pending change is already in the index report false.
func worktreeChange(path string, fs *gogit.FileStatus) (StagedChange, bool) {
	switch fs.Worktree {
	case gogit.Untracked:
		return StagedChange{Path: path, State: StageAdded}, true
	case gogit.Modified:
		return StagedChange{Path: path, State: StageModified}, true
	case gogit.Deleted:
		return StagedChange{Path: path, State: StageDeleted}, true
	default:
		return StagedChange{}, false
	}
}

func normalizePathspec(path string) string {
	spec := strings.TrimSuffix(strings.ReplaceAll(path, "\\", "/"), "/")
	if spec == "" {
		return "."
	}
	return spec
}

// matchPathspec reports whether file (a slash path relative to the repo
// root) is selected by spec: "." selects everything, otherwise an exact
// path or a directory prefix.
func matchPathspec(spec, file string) bool {
	if spec == "." {
		return true
	}
	return file == spec || strings.HasPrefix(file, spec+"/")
}

// HasStagedChanges checks if there are staged changes
func (r *Repository) HasStagedChanges() (bool, error) {
	if r == nil || r.repo == nil {
		return false, errors.ErrNotARepository
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to compute status: %w", err)
	}

	for _, fs := range status {
		switch fs.Staging {
		case gogit.Added, gogit.Modified, gogit.Deleted, gogit.Renamed, gogit.Copied:
			return true, nil
		}
	}
	return false, nil
}

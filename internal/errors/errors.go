// Package errors provides sentinel errors and custom error types for the gittwo application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotARepository indicates that no repository handle is bound
	ErrNotARepository = errors.New("not a git repository")

	// ErrPathNotFound indicates that a staged path does not exist in the
	// working tree and is not a pending deletion
	ErrPathNotFound = errors.New("path not found")

	// ErrEmptyMessage indicates a commit was attempted with a blank message
	ErrEmptyMessage = errors.New("empty commit message")

	// ErrNothingToCommit indicates the index has no staged changes
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrDuplicateRemote indicates a remote with the same name already exists
	ErrDuplicateRemote = errors.New("remote already exists")

	// ErrRemoteNotFound indicates that a named remote does not exist
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrRefNotFound indicates that a requested ref does not exist
	ErrRefNotFound = errors.New("ref not found")

	// ErrNonFastForward indicates a push was rejected because the remote
	// ref is not an ancestor of the local ref
	ErrNonFastForward = errors.New("non-fast-forward update")

	// ErrRefChanged indicates a ref moved concurrently during an update
	ErrRefChanged = errors.New("ref changed concurrently")

	// ErrCyclicSubmodule indicates a submodule graph references itself
	ErrCyclicSubmodule = errors.New("cyclic submodule reference")

	// ErrConnectionFailed indicates the transport session could not be opened
	ErrConnectionFailed = errors.New("connection failed")

	// ErrAuthenticationFailed indicates the remote rejected every offered credential
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// PathNotFoundError represents an error when a staged path does not exist
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("pathspec %q did not match any files", e.Path)
}

// Is returns true if the target error is ErrPathNotFound
func (e *PathNotFoundError) Is(target error) bool {
	return target == ErrPathNotFound
}

// NewPathNotFoundError creates a new PathNotFoundError
func NewPathNotFoundError(path string) *PathNotFoundError {
	return &PathNotFoundError{Path: path}
}

// DuplicateRemoteError represents an error when a remote name is already taken
type DuplicateRemoteError struct {
	Name string
}

func (e *DuplicateRemoteError) Error() string {
	return fmt.Sprintf("remote %s already exists", e.Name)
}

// Is returns true if the target error is ErrDuplicateRemote
func (e *DuplicateRemoteError) Is(target error) bool {
	return target == ErrDuplicateRemote
}

// NewDuplicateRemoteError creates a new DuplicateRemoteError
func NewDuplicateRemoteError(name string) *DuplicateRemoteError {
	return &DuplicateRemoteError{Name: name}
}

// RemoteNotFoundError represents an error when a named remote does not exist
type RemoteNotFoundError struct {
	Name string
}

func (e *RemoteNotFoundError) Error() string {
	return fmt.Sprintf("remote %s does not exist", e.Name)
}

// Is returns true if the target error is ErrRemoteNotFound
func (e *RemoteNotFoundError) Is(target error) bool {
	return target == ErrRemoteNotFound
}

// NewRemoteNotFoundError creates a new RemoteNotFoundError
func NewRemoteNotFoundError(name string) *RemoteNotFoundError {
	return &RemoteNotFoundError{Name: name}
}

// RefNotFoundError represents an error when a ref cannot be resolved
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("ref %s not found", e.Ref)
}

// Is returns true if the target error is ErrRefNotFound
func (e *RefNotFoundError) Is(target error) bool {
	return target == ErrRefNotFound
}

// NewRefNotFoundError creates a new RefNotFoundError
func NewRefNotFoundError(ref string) *RefNotFoundError {
	return &RefNotFoundError{Ref: ref}
}

// NonFastForwardError represents a push rejected by the fast-forward check
type NonFastForwardError struct {
	Ref string
}

func (e *NonFastForwardError) Error() string {
	return fmt.Sprintf("push rejected: non-fast-forward update of %s", e.Ref)
}

// Is returns true if the target error is ErrNonFastForward
func (e *NonFastForwardError) Is(target error) bool {
	return target == ErrNonFastForward
}

// NewNonFastForwardError creates a new NonFastForwardError
func NewNonFastForwardError(ref string) *NonFastForwardError {
	return &NonFastForwardError{Ref: ref}
}

// RefChangedError represents a failed compare-and-swap ref update
type RefChangedError struct {
	Ref string
}

func (e *RefChangedError) Error() string {
	return fmt.Sprintf("ref %s was changed by another writer", e.Ref)
}

// Is returns true if the target error is ErrRefChanged
func (e *RefChangedError) Is(target error) bool {
	return target == ErrRefChanged
}

// NewRefChangedError creates a new RefChangedError
func NewRefChangedError(ref string) *RefChangedError {
	return &RefChangedError{Ref: ref}
}

// CyclicSubmoduleError represents a cycle in the submodule graph
type CyclicSubmoduleError struct {
	URL string
}

func (e *CyclicSubmoduleError) Error() string {
	return fmt.Sprintf("submodule %s is part of a reference cycle", e.URL)
}

// Is returns true if the target error is ErrCyclicSubmodule
func (e *CyclicSubmoduleError) Is(target error) bool {
	return target == ErrCyclicSubmodule
}

// NewCyclicSubmoduleError creates a new CyclicSubmoduleError
func NewCyclicSubmoduleError(url string) *CyclicSubmoduleError {
	return &CyclicSubmoduleError{URL: url}
}

// TransportError represents a failure in a transport operation, annotated
// with the state-machine stage it originated from.
type TransportError struct {
	Op    string // "clone", "push", "fetch", "pull"
	Stage string // "connecting", "negotiating", "transferring", "updating-refs"
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed while %s: %v", e.Op, e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError
func NewTransportError(op, stage string, err error) *TransportError {
	return &TransportError{Op: op, Stage: stage, Err: err}
}

// Package git provides the core repository operations for gittwo.
//
// It wraps the go-git object store and transport layers and provides a
// Go-friendly interface for:
//   - Repository lifecycle (init, open, clone)
//   - Staging operations (add, dry-run, tracked-only updates)
//   - Commit creation
//   - Remote management (add, remove, set-head)
//   - Transport exchanges (push, fetch, pull) with credential negotiation
//
// This package should be the only place where go-git is used directly.
package git

// Package runtime provides the execution context for gittwo commands.
//
// It encapsulates the shared dependencies needed by commands: the open
// repository handle, the user configuration and the logger. This avoids
// passing multiple parameters through every command.
package runtime

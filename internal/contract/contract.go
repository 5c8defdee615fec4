// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
)

// GitClient defines the necessary operations for merge-risk analysis.
// This allows the core analysis logic to be tested without needing a real
// git executable.
type GitClient interface {
	// Run executes a git command with an argv array and returns its stdout.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git
	// repository containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// RefExists reports whether the given ref resolves to a commit.
	RefExists(ctx context.Context, repoPath string, ref string) (bool, error)

	// DiffNumstat returns the raw numstat output for baseRef..targetRef.
	DiffNumstat(ctx context.Context, repoPath string, baseRef, targetRef string) ([]byte, error)

	// DiffUnified returns the raw unified diff output for baseRef..targetRef,
	// covering all changed files in a single invocation.
	DiffUnified(ctx context.Context, repoPath string, baseRef, targetRef string) ([]byte, error)

	// FileSize returns the blob size in bytes of path at ref, or an error
	// when the path does not exist at that ref.
	FileSize(ctx context.Context, repoPath string, ref string, path string) (int64, error)
}

package contract

import (
	"errors"
)

// Sentinel errors for the failure taxonomy. Callers classify with
// errors.Is and map to process exit codes at the entrypoint.
var (
	// ErrInvalidArgument signals bad CLI input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRepoNotFound signals a missing, corrupted or non-Git repository.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrBranchNotFound signals a ref that does not resolve to a commit.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrPermissionDenied signals an access failure on the repository or
	// an output path.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrCommandFailed signals a git subprocess that exited nonzero.
	ErrCommandFailed = errors.New("git command failed")

	// ErrTimeout signals a git subprocess that exceeded the wall-clock
	// budget. Timeouts are fatal; output is never silently truncated.
	ErrTimeout = errors.New("git command timed out")
)

// Process exit codes, matching the documented CLI contract.
const (
	ExitSuccess          = 0
	ExitGeneral          = 1
	ExitInvalidArgs      = 2
	ExitRepoNotFound     = 3
	ExitBranchNotFound   = 4
	ExitPermissionDenied = 5
)

// ExitCodeFor maps an error to its process exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidArgument):
		return ExitInvalidArgs
	case errors.Is(err, ErrRepoNotFound):
		return ExitRepoNotFound
	case errors.Is(err, ErrBranchNotFound):
		return ExitBranchNotFound
	case errors.Is(err, ErrPermissionDenied):
		return ExitPermissionDenied
	default:
		return ExitGeneral
	}
}

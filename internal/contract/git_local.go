package contract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultGitTimeout bounds every git subprocess invocation.
const DefaultGitTimeout = 30 * time.Second

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine. Commands are always built
// as argv arrays; untrusted input is never concatenated into a shell
// string. Branch names are still shape-checked as defense in depth
// before they appear in a revision range argument.
type LocalGitClient struct {
	// Timeout is the wall-clock budget per invocation. Zero means
	// DefaultGitTimeout.
	Timeout time.Duration
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient(timeout time.Duration) *LocalGitClient {
	return &LocalGitClient{Timeout: timeout}
}

// Run executes a git command and returns its stdout. Stderr is captured
// separately and only surfaces in error messages. The repository path is
// threaded through -C; the process working directory is never changed.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultGitTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(runCtx, "git", fullArgs...)
	out, err := cmd.Output()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w after %s: git %s", ErrTimeout, timeout, strings.Join(args, " "))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		if strings.Contains(stderr, "not a git repository") || strings.Contains(stderr, "cannot change to") {
			return nil, fmt.Errorf("%w: %q is not a Git repository", ErrRepoNotFound, repoPath)
		}
		if errors.Is(err, fs.ErrPermission) || strings.Contains(stderr, "Permission denied") {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, stderr)
		}
		return nil, fmt.Errorf("%w (exit %d): %s", ErrCommandFailed, exitErr.ExitCode(), stderr)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v. Ensure Git is installed and available on your PATH", ErrCommandFailed, err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RefExists implements the GitClient interface.
func (c *LocalGitClient) RefExists(ctx context.Context, repoPath string, ref string) (bool, error) {
	if !ValidateBranchName(ref) {
		return false, fmt.Errorf("%w: unsafe ref name %q", ErrInvalidArgument, ref)
	}
	_, err := c.Run(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrCommandFailed) {
		return false, nil
	}
	return false, err
}

// DiffNumstat implements the GitClient interface.
func (c *LocalGitClient) DiffNumstat(ctx context.Context, repoPath string, baseRef, targetRef string) ([]byte, error) {
	spec, err := revisionRange(baseRef, targetRef)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, repoPath, "diff", "--numstat", spec)
}

// DiffUnified implements the GitClient interface.
func (c *LocalGitClient) DiffUnified(ctx context.Context, repoPath string, baseRef, targetRef string) ([]byte, error) {
	spec, err := revisionRange(baseRef, targetRef)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, repoPath, "diff", "--unified=3", spec)
}

// FileSize implements the GitClient interface.
func (c *LocalGitClient) FileSize(ctx context.Context, repoPath string, ref string, path string) (int64, error) {
	if !ValidateBranchName(ref) {
		return 0, fmt.Errorf("%w: unsafe ref name %q", ErrInvalidArgument, ref)
	}
	out, err := c.Run(ctx, repoPath, "cat-file", "-s", ref+":"+path)
	if err != nil {
		return 0, err
	}
	size, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected cat-file output for %q: %w", path, err)
	}
	return size, nil
}

// revisionRange joins two validated refs into the two-dot range argument.
// This is the only place untrusted names are combined into one argument,
// so validation is mandatory here even though execution is argv-based.
func revisionRange(baseRef, targetRef string) (string, error) {
	if !ValidateBranchName(baseRef) {
		return "", fmt.Errorf("%w: unsafe base ref %q", ErrInvalidArgument, baseRef)
	}
	if !ValidateBranchName(targetRef) {
		return "", fmt.Errorf("%w: unsafe target ref %q", ErrInvalidArgument, targetRef)
	}
	return baseRef + ".." + targetRef, nil
}

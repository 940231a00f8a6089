package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultContextLines is the unified diff context width used for every diff query
const DefaultContextLines = 3

// LogOptions represents options for git log command
type LogOptions struct {
	Format string
	Count  int
}

// Executor defines the interface for git command execution
type Executor interface {
	// IsRepository reports whether the working directory is inside a git work tree
	IsRepository(ctx context.Context) bool

	// DiffCached returns the diff of staged changes with the given context width
	DiffCached(ctx context.Context, contextLines int) (string, error)

	// NumStatCached returns the --numstat summary of staged changes
	NumStatCached(ctx context.Context) (string, error)

	// NameOnlyCached returns the staged file paths, one per line
	NameOnlyCached(ctx context.Context) (string, error)

	// DiffWorking returns the diff of unstaged changes with the given context width
	DiffWorking(ctx context.Context, contextLines int) (string, error)

	// Log returns the commit log
	Log(ctx context.Context, opts LogOptions) (string, error)

	// Commit executes a git commit with the given message
	Commit(ctx context.Context, message string) error
}

// ToolInvocationError is returned when a git sub-command exits unsuccessfully
type ToolInvocationError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolInvocationError) Error() string {
	msg := fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// DefaultExecutor is the default implementation of Executor.
// Every command runs with cmd.Dir set to workDir; the process working
// directory is never changed.
type DefaultExecutor struct {
	workDir string
}

// NewExecutor creates a new DefaultExecutor
func NewExecutor(workDir string) *DefaultExecutor {
	return &DefaultExecutor{workDir: workDir}
}

// WorkDir returns the directory git commands run in
func (e *DefaultExecutor) WorkDir() string {
	return e.workDir
}

// runGit runs a git command and returns its raw stdout
func (e *DefaultExecutor) runGit(ctx context.Context, args ...string) (string, error) {
	// core.quotepath=off keeps non-ASCII paths verbatim; control characters stay C-quoted
	full := append([]string{"-c", "core.quotepath=off"}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Dir = e.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ToolInvocationError{Args: args, Stderr: stderr.String(), Err: err}
	}

	return stdout.String(), nil
}

// IsRepository reports whether the working directory is inside a git work tree
func (e *DefaultExecutor) IsRepository(ctx context.Context) bool {
	_, err := e.runGit(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// DiffCached returns the diff of staged changes
func (e *DefaultExecutor) DiffCached(ctx context.Context, contextLines int) (string, error) {
	return e.runGit(ctx, "diff", "--cached", unifiedFlag(contextLines))
}

// NumStatCached returns per-file insertion/deletion counts of staged changes
func (e *DefaultExecutor) NumStatCached(ctx context.Context) (string, error) {
	return e.runGit(ctx, "diff", "--cached", "--numstat")
}

// NameOnlyCached returns the staged file paths
func (e *DefaultExecutor) NameOnlyCached(ctx context.Context) (string, error) {
	return e.runGit(ctx, "diff", "--cached", "--name-only")
}

// DiffWorking returns the diff of unstaged changes
func (e *DefaultExecutor) DiffWorking(ctx context.Context, contextLines int) (string, error) {
	return e.runGit(ctx, "diff", unifiedFlag(contextLines))
}

// Log returns the commit log
func (e *DefaultExecutor) Log(ctx context.Context, opts LogOptions) (string, error) {
	args := []string{"log"}

	if opts.Count > 0 {
		args = append(args, "-n", strconv.Itoa(opts.Count))
	}

	if opts.Format != "" {
		args = append(args, "--pretty=format:"+opts.Format)
	}

	output, err := e.runGit(ctx, args...)
	if err != nil {
		// Empty repo returns error, return empty string instead
		var toolErr *ToolInvocationError
		if errors.As(err, &toolErr) && strings.Contains(toolErr.Stderr, "does not have any commits") {
			return "", nil
		}
		return "", err
	}
	return output, nil
}

// Commit executes a git commit with the given message
func (e *DefaultExecutor) Commit(ctx context.Context, message string) error {
	_, err := e.runGit(ctx, "commit", "-m", message)
	return err
}

func unifiedFlag(contextLines int) string {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}
	return "--unified=" + strconv.Itoa(contextLines)
}

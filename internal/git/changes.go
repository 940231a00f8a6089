package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huimingz/commit-composer/internal/log"
)

// DefaultRecentCommitCount is used when RecentCommits is called with a non-positive count
const DefaultRecentCommitCount = 5

// recentCommitFormat is the pipe-delimited log format: hash|subject|author|relative date
const recentCommitFormat = "%h|%s|%an|%ar"

// ErrNotARepository is returned when the target path is not inside a git work tree
var ErrNotARepository = errors.New("not a git repository")

// ChangeSet is the normalized description of the staged changes of a repository
type ChangeSet struct {
	HasChanges bool     `json:"has_changes"`
	DiffText   string   `json:"diff"`
	Files      []string `json:"files"`
	Insertions int      `json:"insertions"`
	Deletions  int      `json:"deletions"`
}

// WorkingDiff describes unstaged edits
type WorkingDiff struct {
	HasChanges bool   `json:"has_changes"`
	DiffText   string `json:"diff"`
}

// CommitEntry is a single line of the recent commit log
type CommitEntry struct {
	Hash         string `json:"hash"`
	Message      string `json:"message"`
	Author       string `json:"author"`
	RelativeDate string `json:"date"`
}

// ExecutorFactory creates an Executor bound to a repository directory
type ExecutorFactory func(workDir string) Executor

// Extractor reads change information from arbitrary repository paths
type Extractor struct {
	newExecutor ExecutorFactory
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithExecutorFactory overrides how executors are created (used in tests)
func WithExecutorFactory(f ExecutorFactory) ExtractorOption {
	return func(x *Extractor) {
		x.newExecutor = f
	}
}

// NewExtractor creates a new Extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	x := &Extractor{
		newExecutor: func(workDir string) Executor { return NewExecutor(workDir) },
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Executor returns an executor for repoPath after checking it is a repository
func (x *Extractor) Executor(ctx context.Context, repoPath string) (Executor, error) {
	return x.open(ctx, repoPath)
}

func (x *Extractor) open(ctx context.Context, repoPath string) (Executor, error) {
	if repoPath == "" {
		repoPath = "."
	}

	info, err := os.Stat(repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotARepository, repoPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotARepository, repoPath)
	}

	gitExec := x.newExecutor(repoPath)
	if !gitExec.IsRepository(ctx) {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, repoPath)
	}
	return gitExec, nil
}

// StagedChanges returns the staged change-set of the repository at repoPath.
// The diff, the numstat summary and the file list are three separate git
// invocations; the caller is expected not to mutate the index concurrently.
func (x *Extractor) StagedChanges(ctx context.Context, repoPath string) (*ChangeSet, error) {
	gitExec, err := x.open(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	diff, err := gitExec.DiffCached(ctx, DefaultContextLines)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged diff: %w", err)
	}

	numstat, err := gitExec.NumStatCached(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged stats: %w", err)
	}

	names, err := gitExec.NameOnlyCached(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged files: %w", err)
	}

	cs := buildChangeSet(diff, ParseNumStat(numstat), splitPaths(names))
	log.Debug("Staged changes in %s: %d file(s), +%d -%d", repoPath, len(cs.Files), cs.Insertions, cs.Deletions)
	return cs, nil
}

// buildChangeSet combines the three staged queries.
// Counts are summed over exactly the paths in files; paths without stats count zero.
func buildChangeSet(diff string, stat NumStat, files []string) *ChangeSet {
	if strings.TrimSpace(diff) == "" {
		return &ChangeSet{Files: []string{}}
	}

	byPath := stat.ByPath()
	cs := &ChangeSet{
		HasChanges: true,
		DiffText:   diff,
		Files:      files,
	}
	for _, f := range files {
		fs := byPath[f]
		cs.Insertions += fs.Insertions
		cs.Deletions += fs.Deletions
	}
	return cs
}

// UnstagedChanges returns the unstaged diff of the repository at repoPath
func (x *Extractor) UnstagedChanges(ctx context.Context, repoPath string) (*WorkingDiff, error) {
	gitExec, err := x.open(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	diff, err := gitExec.DiffWorking(ctx, DefaultContextLines)
	if err != nil {
		return nil, fmt.Errorf("failed to get unstaged diff: %w", err)
	}

	if strings.TrimSpace(diff) == "" {
		return &WorkingDiff{}, nil
	}
	return &WorkingDiff{HasChanges: true, DiffText: diff}, nil
}

// RecentCommits returns up to count log entries, most recent first.
// It is best-effort: any failure yields an empty slice.
func (x *Extractor) RecentCommits(ctx context.Context, repoPath string, count int) []CommitEntry {
	if count <= 0 {
		count = DefaultRecentCommitCount
	}

	gitExec, err := x.open(ctx, repoPath)
	if err != nil {
		log.Debug("Recent commits unavailable: %v", err)
		return []CommitEntry{}
	}

	output, err := gitExec.Log(ctx, LogOptions{Count: count, Format: recentCommitFormat})
	if err != nil {
		log.Debug("Recent commits unavailable: %v", err)
		return []CommitEntry{}
	}

	return ParseLog(output)
}

// ParseLog parses hash|subject|author|relative-date lines.
// The subject may itself contain pipes; lines with fewer than four fields are skipped.
func ParseLog(output string) []CommitEntry {
	entries := []CommitEntry{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}

		n := len(parts)
		entries = append(entries, CommitEntry{
			Hash:         parts[0],
			Message:      strings.Join(parts[1:n-2], "|"),
			Author:       parts[n-2],
			RelativeDate: parts[n-1],
		})
	}
	return entries
}

func splitPaths(output string) []string {
	files := []string{}
	seen := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		path := strings.TrimRight(line, "\r")
		if strings.TrimSpace(path) == "" {
			continue
		}
		path = unquotePath(path)
		if seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files
}

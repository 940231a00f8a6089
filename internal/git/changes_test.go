package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExecutor is an Executor with canned output
type stubExecutor struct {
	diff     string
	numstat  string
	names    string
	log      string
	logErr   error
	diffErr  error
	statErr  error
	namesErr error
}

func (s *stubExecutor) IsRepository(ctx context.Context) bool { return true }
func (s *stubExecutor) DiffCached(ctx context.Context, contextLines int) (string, error) {
	return s.diff, s.diffErr
}
func (s *stubExecutor) NumStatCached(ctx context.Context) (string, error) {
	return s.numstat, s.statErr
}
func (s *stubExecutor) NameOnlyCached(ctx context.Context) (string, error) {
	return s.names, s.namesErr
}
func (s *stubExecutor) DiffWorking(ctx context.Context, contextLines int) (string, error) {
	return s.diff, s.diffErr
}
func (s *stubExecutor) Log(ctx context.Context, opts LogOptions) (string, error) {
	return s.log, s.logErr
}
func (s *stubExecutor) Commit(ctx context.Context, message string) error { return nil }

func newStubExtractor(stub *stubExecutor) *Extractor {
	return NewExtractor(WithExecutorFactory(func(string) Executor { return stub }))
}

func TestExtractor_StagedChanges(t *testing.T) {
	repoDir := setupTestRepo(t)
	ctx := context.Background()
	extractor := NewExtractor()

	t.Run("nothing staged", func(t *testing.T) {
		cs, err := extractor.StagedChanges(ctx, repoDir)
		require.NoError(t, err)
		assert.False(t, cs.HasChanges)
		assert.Empty(t, cs.DiffText)
		assert.Empty(t, cs.Files)
		assert.Zero(t, cs.Insertions)
		assert.Zero(t, cs.Deletions)
	})

	t.Run("staged text and binary files", func(t *testing.T) {
		createAndStageFile(t, repoDir, "a.txt", "one\ntwo\nthree\n")
		createAndStageFile(t, repoDir, "b.bin", "\x00\x01\x02binary")
		createAndStageFile(t, repoDir, "dir/c.go", "package dir\n")

		cs, err := extractor.StagedChanges(ctx, repoDir)
		require.NoError(t, err)
		assert.True(t, cs.HasChanges)
		assert.Contains(t, cs.DiffText, "a.txt")
		assert.Equal(t, []string{"a.txt", "b.bin", "dir/c.go"}, cs.Files)
		assert.Equal(t, 4, cs.Insertions)
		assert.Equal(t, 0, cs.Deletions)
	})

	t.Run("unstaged edits are ignored", func(t *testing.T) {
		writeFile(t, repoDir, "untracked.txt", "not staged\n")

		cs, err := extractor.StagedChanges(ctx, repoDir)
		require.NoError(t, err)
		assert.NotContains(t, cs.Files, "untracked.txt")
	})
}

func TestExtractor_StagedChanges_UnusualPathsAreUnquoted(t *testing.T) {
	repoDir := setupTestRepo(t)
	createAndStageFile(t, repoDir, "é x.txt", "one\ntwo\n")
	createAndStageFile(t, repoDir, "tab\tname.txt", "three\n")

	cs, err := NewExtractor().StagedChanges(context.Background(), repoDir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"é x.txt", "tab\tname.txt"}, cs.Files)
	assert.Equal(t, 3, cs.Insertions)
	for _, f := range cs.Files {
		assert.NotContains(t, f, `"`)
	}
}

func TestExtractor_StagedChanges_DoesNotChangeWorkingDirectory(t *testing.T) {
	repoDir := setupTestRepo(t)
	createAndStageFile(t, repoDir, "x.txt", "x\n")

	before, err := os.Getwd()
	require.NoError(t, err)

	_, err = NewExtractor().StagedChanges(context.Background(), repoDir)
	require.NoError(t, err)

	_, _ = NewExtractor().StagedChanges(context.Background(), t.TempDir())

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExtractor_NotARepository(t *testing.T) {
	ctx := context.Background()
	extractor := NewExtractor()

	t.Run("plain directory", func(t *testing.T) {
		_, err := extractor.StagedChanges(ctx, t.TempDir())
		assert.ErrorIs(t, err, ErrNotARepository)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := extractor.StagedChanges(ctx, filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, ErrNotARepository)
	})

	t.Run("file path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		_, err := extractor.UnstagedChanges(ctx, path)
		assert.ErrorIs(t, err, ErrNotARepository)
	})
}

func TestExtractor_StagedChanges_ToolFailure(t *testing.T) {
	toolErr := &ToolInvocationError{Args: []string{"diff", "--cached", "--numstat"}, Err: errors.New("exit status 1")}
	extractor := newStubExtractor(&stubExecutor{diff: "diff --git a/x b/x\n", statErr: toolErr})

	_, err := extractor.StagedChanges(context.Background(), t.TempDir())
	require.Error(t, err)

	var got *ToolInvocationError
	assert.True(t, errors.As(err, &got))
}

func TestExtractor_StagedChanges_MissingStatsDefaultToZero(t *testing.T) {
	extractor := newStubExtractor(&stubExecutor{
		diff:    "diff --git a/a.go b/a.go\n+x\n",
		numstat: "2\t1\ta.go\n9\t9\tnot-listed.go\n",
		names:   "a.go\nghost.go\n",
	})

	cs, err := extractor.StagedChanges(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "ghost.go"}, cs.Files)
	assert.Equal(t, 2, cs.Insertions)
	assert.Equal(t, 1, cs.Deletions)
}

func TestExtractor_StagedChanges_WhitespaceDiffHasNoChanges(t *testing.T) {
	extractor := newStubExtractor(&stubExecutor{diff: "  \n\n", numstat: "1\t1\ta.go\n", names: "a.go\n"})

	cs, err := extractor.StagedChanges(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, cs.HasChanges)
	assert.Empty(t, cs.DiffText)
	assert.Empty(t, cs.Files)
	assert.Zero(t, cs.Insertions)
	assert.Zero(t, cs.Deletions)
}

func TestExtractor_UnstagedChanges(t *testing.T) {
	repoDir := setupTestRepo(t)
	ctx := context.Background()
	extractor := NewExtractor()

	createAndStageFile(t, repoDir, "notes.md", "# Notes\n")
	commitFile(t, repoDir, "docs: add notes")

	wd, err := extractor.UnstagedChanges(ctx, repoDir)
	require.NoError(t, err)
	assert.False(t, wd.HasChanges)
	assert.Empty(t, wd.DiffText)

	writeFile(t, repoDir, "notes.md", "# Notes\n\nmore\n")

	wd, err = extractor.UnstagedChanges(ctx, repoDir)
	require.NoError(t, err)
	assert.True(t, wd.HasChanges)
	assert.Contains(t, wd.DiffText, "+more")
}

func TestExtractor_RecentCommits(t *testing.T) {
	repoDir := setupTestRepo(t)
	ctx := context.Background()
	extractor := NewExtractor()

	t.Run("no commits yet", func(t *testing.T) {
		entries := extractor.RecentCommits(ctx, repoDir, 5)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	createAndStageFile(t, repoDir, "one.txt", "1")
	commitFile(t, repoDir, "feat: one")
	createAndStageFile(t, repoDir, "two.txt", "2")
	commitFile(t, repoDir, "fix: two | with pipe")

	t.Run("most recent first", func(t *testing.T) {
		entries := extractor.RecentCommits(ctx, repoDir, 5)
		require.Len(t, entries, 2)
		assert.Equal(t, "fix: two | with pipe", entries[0].Message)
		assert.Equal(t, "feat: one", entries[1].Message)
		assert.Equal(t, "Test User", entries[0].Author)
		assert.NotEmpty(t, entries[0].Hash)
		assert.NotEmpty(t, entries[0].RelativeDate)
	})

	t.Run("count limits the result", func(t *testing.T) {
		entries := extractor.RecentCommits(ctx, repoDir, 1)
		require.Len(t, entries, 1)
		assert.Equal(t, "fix: two | with pipe", entries[0].Message)
	})

	t.Run("not a repository is swallowed", func(t *testing.T) {
		entries := extractor.RecentCommits(ctx, t.TempDir(), 5)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})
}

func TestExtractor_RecentCommits_ToolFailureIsSwallowed(t *testing.T) {
	extractor := newStubExtractor(&stubExecutor{logErr: errors.New("boom")})

	entries := extractor.RecentCommits(context.Background(), t.TempDir(), 3)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestParseLog(t *testing.T) {
	output := "abc123|feat: add login|Alice|2 hours ago\n" +
		"def456|broken line\n" +
		"\n" +
		"0a1b2c|fix: a|b|Bob|3 days ago\r\n"

	entries := ParseLog(output)
	require.Len(t, entries, 2)
	assert.Equal(t, CommitEntry{Hash: "abc123", Message: "feat: add login", Author: "Alice", RelativeDate: "2 hours ago"}, entries[0])
	assert.Equal(t, CommitEntry{Hash: "0a1b2c", Message: "fix: a|b", Author: "Bob", RelativeDate: "3 days ago"}, entries[1])
}

func TestSplitPaths(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, splitPaths("a\nb c\n\na\nd\r\n"))
	assert.Equal(t, []string{}, splitPaths(""))
	assert.Equal(t, []string{"tab\tname.txt", "\u00e9.txt"}, splitPaths("\"tab\\tname.txt\"\n\"\\303\\251.txt\"\n\"tab\\tname.txt\"\n"))
}

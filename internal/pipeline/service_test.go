package pipeline

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/huimingz/commit-composer/internal/composer"
	"github.com/huimingz/commit-composer/internal/git"
	"github.com/huimingz/commit-composer/internal/history"
	"github.com/huimingz/commit-composer/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replyModel answers every prompt with reply, or fails with err
type replyModel struct {
	reply   string
	err     error
	prompts []string
}

func (m *replyModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.prompts = append(m.prompts, input[len(input)-1].Content)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *replyModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run(t, dir, "init")
	run(t, dir, "config", "user.email", "test@example.com")
	run(t, dir, "config", "user.name", "Test User")
	run(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

func stage(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	run(t, dir, "add", name)
}

func newTestService(t *testing.T, m model.BaseChatModel) (*Service, *history.Store) {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := composer.New(m, composer.WithRetry(llm.RetryConfig{Enabled: false}))
	return NewService(git.NewExtractor(), c, store), store
}

func TestService_Analyze(t *testing.T) {
	repo := setupTestRepo(t)
	stage(t, repo, "auth/login.go", "package auth\n\nfunc Login() {}\n")
	stage(t, repo, "README.md", "# Auth\n")

	m := &replyModel{reply: "TYPE: feat\nSUBJECT: add login\nBODY: adds JWT auth"}
	svc, store := newTestService(t, m)
	ctx := context.Background()

	result, err := svc.Analyze(ctx, repo)
	require.NoError(t, err)

	assert.Equal(t, composer.TypeFeat, result.Type)
	assert.Equal(t, "feat: add login\n\nadds JWT auth", result.Message)
	assert.Equal(t, []string{"README.md", "auth/login.go"}, result.Files)
	assert.Equal(t, 4, result.Insertions)
	assert.Zero(t, result.Deletions)
	assert.False(t, result.Fallback)
	assert.Contains(t, m.prompts[0], "+func Login() {}")

	records, err := store.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.ID, records[0].ID)
	assert.Equal(t, "feat", records[0].Type)
	assert.Equal(t, result.Files, records[0].Files)
}

func TestService_Analyze_FallbackIsStored(t *testing.T) {
	repo := setupTestRepo(t)
	stage(t, repo, "a.txt", "a\n")

	svc, store := newTestService(t, &replyModel{err: errors.New("backend down")})
	ctx := context.Background()

	result, err := svc.Analyze(ctx, repo)
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, "chore: update 1 file(s)\n\nFiles: a.txt", result.Message)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalGenerated)
	assert.Equal(t, "chore", stats.MostCommonType)
}

func TestService_Analyze_Errors(t *testing.T) {
	svc, store := newTestService(t, &replyModel{reply: "TYPE: fix\nSUBJECT: x"})
	ctx := context.Background()

	t.Run("nothing staged", func(t *testing.T) {
		_, err := svc.Analyze(ctx, setupTestRepo(t))
		assert.ErrorIs(t, err, ErrNoStagedChanges)
	})

	t.Run("not a repository", func(t *testing.T) {
		_, err := svc.Analyze(ctx, t.TempDir())
		assert.ErrorIs(t, err, git.ErrNotARepository)
	})

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalGenerated)
}

func TestService_Regenerate(t *testing.T) {
	repo := setupTestRepo(t)
	stage(t, repo, "main.go", "package main\n")
	ctx := context.Background()

	t.Run("style reaches the prompt", func(t *testing.T) {
		m := &replyModel{reply: "TYPE: feat\nSUBJECT: 🎉 bootstrap"}
		svc, _ := newTestService(t, m)

		result, err := svc.Regenerate(ctx, repo, composer.StyleEmoji)
		require.NoError(t, err)
		assert.Equal(t, "feat: 🎉 bootstrap", result.Message)
		assert.True(t, strings.HasSuffix(m.prompts[0], "STYLE: Use relevant emojis in the message"))
	})

	t.Run("backend failure propagates and nothing is stored", func(t *testing.T) {
		svc, store := newTestService(t, &replyModel{err: errors.New("quota")})

		_, err := svc.Regenerate(ctx, repo, composer.StyleDetailed)
		assert.ErrorIs(t, err, composer.ErrBackendUnavailable)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalGenerated)
	})

	t.Run("no staged changes", func(t *testing.T) {
		svc, _ := newTestService(t, &replyModel{reply: "TYPE: fix\nSUBJECT: x"})
		_, err := svc.Regenerate(ctx, setupTestRepo(t), composer.StyleConcise)
		assert.ErrorIs(t, err, ErrNoStagedChanges)
	})
}

func TestService_Commit(t *testing.T) {
	repo := setupTestRepo(t)
	stage(t, repo, "notes.md", "notes\n")

	svc, store := newTestService(t, &replyModel{reply: "TYPE: docs\nSUBJECT: add notes\nBODY: Initial notes."})
	ctx := context.Background()

	result, err := svc.Analyze(ctx, repo)
	require.NoError(t, err)

	require.NoError(t, svc.Commit(ctx, repo, result.ID))

	logOut := run(t, repo, "log", "-1", "--pretty=format:%B")
	assert.Equal(t, "docs: add notes\n\nInitial notes.", strings.TrimSpace(logOut))

	rec, err := store.Get(ctx, result.ID)
	require.NoError(t, err)
	assert.True(t, rec.Used)

	commits := svc.RecentCommits(ctx, repo, 5)
	require.Len(t, commits, 1)
	assert.Equal(t, "docs: add notes", commits[0].Message)

	t.Run("unknown record", func(t *testing.T) {
		err := svc.Commit(ctx, repo, result.ID+10)
		assert.ErrorIs(t, err, history.ErrRecordNotFound)
	})

	t.Run("nothing to commit", func(t *testing.T) {
		err := svc.Commit(ctx, repo, result.ID)
		var toolErr *git.ToolInvocationError
		assert.True(t, errors.As(err, &toolErr), "got %v", err)
	})
}

func TestService_Delegates(t *testing.T) {
	repo := setupTestRepo(t)
	stage(t, repo, "a.txt", "a\n")

	svc, _ := newTestService(t, &replyModel{reply: "TYPE: fix\nSUBJECT: tweak"})
	ctx := context.Background()

	result, err := svc.Analyze(ctx, repo)
	require.NoError(t, err)
	require.NoError(t, svc.MarkUsed(ctx, result.ID))

	records, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Used)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, history.Stats{TotalGenerated: 1, TotalUsed: 1, MostCommonType: "fix"}, stats)

	_, err = svc.History(ctx, 0)
	assert.ErrorIs(t, err, history.ErrInvalidLimit)

	require.NoError(t, svc.ClearHistory(ctx))
	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, history.NoType, stats.MostCommonType)

	run(t, repo, "commit", "-m", "init")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "a.txt"), []byte("b\n"), 0644))

	wd, err := svc.Unstaged(ctx, repo)
	require.NoError(t, err)
	assert.True(t, wd.HasChanges)
	assert.Contains(t, wd.DiffText, "+b")
}

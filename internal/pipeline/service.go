// Package pipeline wires change extraction, message generation and history
// into the operations exposed by the CLI and the HTTP API.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huimingz/commit-composer/internal/composer"
	"github.com/huimingz/commit-composer/internal/git"
	"github.com/huimingz/commit-composer/internal/history"
	"github.com/huimingz/commit-composer/internal/log"
)

// ErrNoStagedChanges is returned when the index has nothing to describe
var ErrNoStagedChanges = errors.New("no staged changes found. Use 'git add' first")

// MessageComposer generates commit messages
type MessageComposer interface {
	Compose(ctx context.Context, diff string, files []string) composer.GeneratedMessage
	ComposeWithStyle(ctx context.Context, diff string, files []string, style composer.Style) (composer.GeneratedMessage, error)
}

// HistoryStore records generated messages
type HistoryStore interface {
	Save(ctx context.Context, message, commitType string, files []string) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]history.Record, error)
	Get(ctx context.Context, id int64) (*history.Record, error)
	MarkUsed(ctx context.Context, id int64) error
	Stats(ctx context.Context) (history.Stats, error)
	Clear(ctx context.Context) error
}

// Result is a generated and stored message
type Result struct {
	ID         int64               `json:"id"`
	Message    string              `json:"message"`
	Type       composer.CommitType `json:"type"`
	Subject    string              `json:"subject"`
	Body       string              `json:"body"`
	Files      []string            `json:"files_changed"`
	Insertions int                 `json:"insertions"`
	Deletions  int                 `json:"deletions"`
	Fallback   bool                `json:"fallback"`
}

// Service runs the commit message pipeline
type Service struct {
	extractor *git.Extractor
	composer  MessageComposer
	store     HistoryStore
}

// NewService creates a Service
func NewService(extractor *git.Extractor, c MessageComposer, store HistoryStore) *Service {
	if extractor == nil {
		extractor = git.NewExtractor()
	}
	return &Service{extractor: extractor, composer: c, store: store}
}

// Analyze generates a message for the staged changes of repoPath and stores it.
// Backend failures are absorbed into a fallback message.
func (s *Service) Analyze(ctx context.Context, repoPath string) (*Result, error) {
	changes, err := s.stagedChanges(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	msg := s.composer.Compose(ctx, changes.DiffText, changes.Files)
	log.DebugDuration("Compose", time.Since(start))

	return s.save(ctx, changes, msg)
}

// Regenerate generates a new message in the given style and stores it.
// Backend failures are returned.
func (s *Service) Regenerate(ctx context.Context, repoPath string, style composer.Style) (*Result, error) {
	changes, err := s.stagedChanges(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	msg, err := s.composer.ComposeWithStyle(ctx, changes.DiffText, changes.Files, style)
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate message: %w", err)
	}

	return s.save(ctx, changes, msg)
}

// Commit creates a git commit from a stored message and marks it used
func (s *Service) Commit(ctx context.Context, repoPath string, id int64) error {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	executor, err := s.extractor.Executor(ctx, repoPath)
	if err != nil {
		return err
	}
	if err := executor.Commit(ctx, rec.Message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	if err := s.store.MarkUsed(ctx, id); err != nil {
		return err
	}
	log.Debug("Committed history record %d", id)
	return nil
}

// History returns the most recent stored messages
func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	return s.store.ListRecent(ctx, limit)
}

// Stats returns history statistics
func (s *Service) Stats(ctx context.Context) (history.Stats, error) {
	return s.store.Stats(ctx)
}

// ClearHistory removes every stored message
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// MarkUsed flags a stored message as committed
func (s *Service) MarkUsed(ctx context.Context, id int64) error {
	return s.store.MarkUsed(ctx, id)
}

// RecentCommits returns the latest commits of repoPath; failures yield an empty list
func (s *Service) RecentCommits(ctx context.Context, repoPath string, count int) []git.CommitEntry {
	return s.extractor.RecentCommits(ctx, repoPath, count)
}

// Unstaged returns the working tree diff of repoPath
func (s *Service) Unstaged(ctx context.Context, repoPath string) (*git.WorkingDiff, error) {
	return s.extractor.UnstagedChanges(ctx, repoPath)
}

func (s *Service) stagedChanges(ctx context.Context, repoPath string) (*git.ChangeSet, error) {
	changes, err := s.extractor.StagedChanges(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	if !changes.HasChanges {
		return nil, ErrNoStagedChanges
	}
	return changes, nil
}

func (s *Service) save(ctx context.Context, changes *git.ChangeSet, msg composer.GeneratedMessage) (*Result, error) {
	id, err := s.store.Save(ctx, msg.Message, string(msg.Type), changes.Files)
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:         id,
		Message:    msg.Message,
		Type:       msg.Type,
		Subject:    msg.Subject,
		Body:       msg.Body,
		Files:      changes.Files,
		Insertions: changes.Insertions,
		Deletions:  changes.Deletions,
		Fallback:   msg.Fallback,
	}, nil
}

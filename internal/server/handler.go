// Package server exposes the commit message pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/huimingz/commit-composer/internal/composer"
	"github.com/huimingz/commit-composer/internal/git"
	"github.com/huimingz/commit-composer/internal/history"
	"github.com/huimingz/commit-composer/internal/pipeline"
)

const (
	defaultHistoryLimit = 10
	maxRequestBody      = 1 << 20
)

// Service is the pipeline behind the API
type Service interface {
	Analyze(ctx context.Context, repoPath string) (*pipeline.Result, error)
	Regenerate(ctx context.Context, repoPath string, style composer.Style) (*pipeline.Result, error)
	History(ctx context.Context, limit int) ([]history.Record, error)
	Stats(ctx context.Context) (history.Stats, error)
	ClearHistory(ctx context.Context) error
	MarkUsed(ctx context.Context, id int64) error
	RecentCommits(ctx context.Context, repoPath string, count int) []git.CommitEntry
	Unstaged(ctx context.Context, repoPath string) (*git.WorkingDiff, error)
}

// Config holds the API settings
type Config struct {
	AllowedOrigins  []string
	DefaultRepoPath string         // used when a request names no repository
	DefaultStyle    composer.Style // used by /regenerate when no style is given
}

type api struct {
	svc Service
	cfg Config
}

// NewHandler returns the HTTP handler with all routes and middleware
func NewHandler(svc Service, cfg Config) http.Handler {
	if cfg.DefaultRepoPath == "" {
		cfg.DefaultRepoPath = "."
	}
	if cfg.DefaultStyle == "" {
		cfg.DefaultStyle = composer.StyleConcise
	}
	a := &api{svc: svc, cfg: cfg}

	r := mux.NewRouter()
	r.HandleFunc("/", a.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/analyze", a.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/regenerate", a.handleRegenerate).Methods(http.MethodPost)
	r.HandleFunc("/history", a.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/history", a.handleClearHistory).Methods(http.MethodDelete)
	r.HandleFunc("/history/{id:[0-9]+}/used", a.handleMarkUsed).Methods(http.MethodPost)
	r.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/log", a.handleLog).Methods(http.MethodGet)
	r.HandleFunc("/changes/unstaged", a.handleUnstaged).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return applyMiddleware(r,
		recoveryMiddleware,
		requestIDMiddleware,
		loggingMiddleware,
		corsMiddleware(cfg.AllowedOrigins),
	)
}

type analyzeRequest struct {
	RepoPath string `json:"repo_path"`
	Style    string `json:"style"`
}

type resultResponse struct {
	ID           int64    `json:"id"`
	Message      string   `json:"message"`
	Type         string   `json:"type"`
	FilesChanged []string `json:"files_changed"`
	Insertions   int      `json:"insertions"`
	Deletions    int      `json:"deletions"`
	Fallback     bool     `json:"fallback"`
}

func newResultResponse(res *pipeline.Result) resultResponse {
	return resultResponse{
		ID:           res.ID,
		Message:      res.Message,
		Type:         string(res.Type),
		FilesChanged: res.Files,
		Insertions:   res.Insertions,
		Deletions:    res.Deletions,
		Fallback:     res.Fallback,
	}
}

func (a *api) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Git Commit Message Composer API",
	})
}

func (a *api) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readAnalyzeRequest(w, r)
	if !ok {
		return
	}

	res, err := a.svc.Analyze(r.Context(), a.repoPath(req.RepoPath))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

func (a *api) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readAnalyzeRequest(w, r)
	if !ok {
		return
	}

	style := a.cfg.DefaultStyle
	if req.Style != "" {
		style = composer.ParseStyle(req.Style)
	}

	res, err := a.svc.Regenerate(r.Context(), a.repoPath(req.RepoPath), style)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

func (a *api) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", defaultHistoryLimit)
	if !ok {
		return
	}

	records, err := a.svc.History(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]history.Record{"history": records})
}

func (a *api) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.ClearHistory(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleMarkUsed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := a.svc.MarkUsed(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) handleLog(w http.ResponseWriter, r *http.Request) {
	count, ok := queryInt(w, r, "count", git.DefaultRecentCommitCount)
	if !ok {
		return
	}

	commits := a.svc.RecentCommits(r.Context(), a.repoPath(r.URL.Query().Get("repo_path")), count)
	writeJSON(w, http.StatusOK, map[string][]git.CommitEntry{"commits": commits})
}

func (a *api) handleUnstaged(w http.ResponseWriter, r *http.Request) {
	wd, err := a.svc.Unstaged(r.Context(), a.repoPath(r.URL.Query().Get("repo_path")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"has_changes": wd.HasChanges,
		"diff":        wd.DiffText,
	})
}

func (a *api) repoPath(p string) string {
	if p == "" {
		return a.cfg.DefaultRepoPath
	}
	return p
}

// readAnalyzeRequest decodes an optional JSON body; an empty body is allowed
func (a *api) readAnalyzeRequest(w http.ResponseWriter, r *http.Request) (analyzeRequest, bool) {
	var req analyzeRequest
	if r.Body == nil {
		return req, true
	}

	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return req, false
	}
	return req, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+": "+raw)
		return 0, false
	}
	return n, true
}

// writeServiceError maps pipeline errors to status codes
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrNoStagedChanges),
		errors.Is(err, git.ErrNotARepository),
		errors.Is(err, history.ErrInvalidLimit):
		status = http.StatusBadRequest
	case errors.Is(err, history.ErrRecordNotFound):
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

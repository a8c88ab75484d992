// Package server exposes the pipeline over HTTP. Compose requests
// stream progress as newline-delimited JSON so long renders stay
// observable.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/pipeline"
)

// Runner is the pipeline surface the server needs.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server handles pipeline requests over HTTP.
type Server struct {
	runner Runner
	logger zerolog.Logger
}

// New builds a Server.
func New(runner Runner, logger zerolog.Logger) *Server {
	return &Server{
		runner: runner,
		logger: logging.Component(logger, "server"),
	}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/compose", s.handleCompose)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type composeRequest struct {
	Videos         []string `json:"videos"`
	Intent         string   `json:"intent"`
	TargetDuration float64  `json:"target_duration_seconds"`
	GenerateMusic  bool     `json:"generate_music"`
	SkipThumbnail  bool     `json:"skip_thumbnail"`
	Output         string   `json:"output"`
}

// event is one NDJSON line in the compose stream.
type event struct {
	Type    string         `json:"type"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Result  *composeResult `json:"result,omitempty"`
}

type composeResult struct {
	RunID     string `json:"run_id"`
	Output    string `json:"output"`
	Script    string `json:"script"`
	Summaries string `json:"summaries"`
	Music     string `json:"music,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Videos) == 0 {
		http.Error(w, "videos is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	emit := func(ev event) {
		enc.Encode(ev)
		if flusher != nil {
			flusher.Flush()
		}
	}

	result, err := s.runner.Run(r.Context(), pipeline.Request{
		Videos:         req.Videos,
		Intent:         req.Intent,
		TargetDuration: time.Duration(req.TargetDuration * float64(time.Second)),
		GenerateMusic:  req.GenerateMusic,
		SkipThumbnail:  req.SkipThumbnail,
		Output:         req.Output,
		OnProgress: func(msg string) {
			emit(event{Type: "progress", Message: msg})
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("compose request failed")
		emit(event{Type: "error", Error: err.Error()})
		return
	}

	emit(event{Type: "done", Result: &composeResult{
		RunID:     result.RunID,
		Output:    result.OutputPath,
		Script:    result.ScriptPath,
		Summaries: result.SummariesPath,
		Music:     result.MusicPath,
		Thumbnail: result.ThumbnailPath,
	}})
}

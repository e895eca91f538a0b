// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the answer pipeline over HTTP. It owns request
// validation and the mapping from pipeline error kinds to status codes;
// everything else is delegated to the engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/pipeline"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// requestDateLayout is the restriction-date form accepted on the wire.
const requestDateLayout = "2006-01-02"

// Answerer is the engine capability the server consumes.
type Answerer interface {
	Answer(ctx context.Context, question string, opts pipeline.AnswerOptions) (types.AnswerResult, error)
}

// Server handles the answer API.
type Server struct {
	engine Answerer
	cfg    types.ServerConfig
	log    *zap.Logger
	mux    *http.ServeMux
}

// New builds a Server around an engine.
func New(engine Answerer, cfg types.ServerConfig, log *zap.Logger) *Server {
	s := &Server{engine: engine, cfg: cfg, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /v1/answer", s.handleAnswer)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// answerRequest is the POST /v1/answer payload. ReturnArticles is a
// pointer so an absent field falls back to the server default.
type answerRequest struct {
	Question        string `json:"question"`
	BM25            bool   `json:"bm25"`
	RestrictionDate string `json:"restriction_date,omitempty"`
	ReturnArticles  *bool  `json:"return_articles,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	var restriction string
	if req.RestrictionDate != "" {
		date, err := time.Parse(requestDateLayout, req.RestrictionDate)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "restriction_date must be YYYY-MM-DD")
			return
		}
		restriction = date.Format("2006/01/02")
	}

	includeArticles := s.cfg.ReturnArticles
	if req.ReturnArticles != nil {
		includeArticles = *req.ReturnArticles
	}

	start := time.Now()
	result, err := s.engine.Answer(r.Context(), req.Question, pipeline.AnswerOptions{
		BM25:            req.BM25,
		RestrictionDate: restriction,
		IncludeArticles: includeArticles,
		WithURL:         true,
	})
	if err != nil {
		s.log.Error("answer failed", zap.String("question", req.Question), zap.Error(err))
		switch {
		case errors.Is(err, types.ErrUpstreamUnavailable), errors.Is(err, types.ErrConfiguration):
			s.writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		default:
			s.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.log.Info("answered question",
		zap.String("question", req.Question),
		zap.Int("relevant", len(result.ArticleSummaries)),
		zap.Int("irrelevant", len(result.IrrelevantArticles)),
		zap.Duration("elapsed", time.Since(start)))

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response failed", zap.Error(err))
	}
}

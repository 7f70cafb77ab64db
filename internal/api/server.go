// Package api exposes the HTTP interface for the dictionary service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/metrics"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/verify"
)

// WordReader exposes the read/update operations the API serves.
type WordReader interface {
	Count(ctx context.Context) (int, error)
	GetByIndex(ctx context.Context, index int) (*dictionary.Entry, error)
	UpdateFlags(ctx context.Context, index int, favourite, toLearn, known bool) error
}

// Server wires HTTP handlers to the stores.
type Server struct {
	router chi.Router
	source verify.CollectionSource
	words  WordReader
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(source verify.CollectionSource, words WordReader, logger *zap.Logger) *Server {
	s := &Server{
		source: source,
		words:  words,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Get("/statusz", s.statusz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/words/{index}", func(r chi.Router) {
			r.Get("/", s.getWord)
			r.Post("/flags", s.updateWordFlags)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.words != nil {
		if _, err := s.words.Count(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) statusz(w http.ResponseWriter, r *http.Request) {
	report := verify.Check(r.Context(), s.source, s.words, s.logger)
	writeJSON(w, http.StatusOK, map[string]any{
		"report":            report,
		"collection_status": report.CollectionStatus(),
		"database_status":   report.DatabaseStatus(),
	})
}

func (s *Server) getWord(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 1 {
		writeError(w, http.StatusBadRequest, "invalid word index")
		return
	}
	entry, err := s.words.GetByIndex(r.Context(), index)
	if err != nil {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}
	writeJSON(w, http.StatusOK, wordResponse(entry))
}

type flagsRequest struct {
	Favourite bool `json:"favourite"`
	ToLearn   bool `json:"to_learn"`
	Known     bool `json:"known"`
}

func (s *Server) updateWordFlags(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 1 {
		writeError(w, http.StatusBadRequest, "invalid word index")
		return
	}
	var req flagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.words.UpdateFlags(r.Context(), index, req.Favourite, req.ToLearn, req.Known); err != nil {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index":     index,
		"favourite": req.Favourite,
		"to_learn":  req.ToLearn,
		"known":     req.Known,
	})
}

func wordResponse(entry *dictionary.Entry) map[string]any {
	locales := map[string]any{}
	for _, loc := range dictionary.Locales() {
		fields := entry.Fields(loc)
		locales[string(loc)] = map[string]any{
			"translation":   fields.Translation,
			"transcription": fields.Transcription,
			"word_type":     fields.WordType,
			"search_tokens": fields.SearchTokens,
			"html":          fields.Container,
		}
	}
	return map[string]any{
		"index":     entry.Index,
		"favourite": entry.Favourite,
		"to_learn":  entry.ToLearn,
		"known":     entry.Known,
		"locales":   locales,
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Package api exposes the HTTP interface for the scrape service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/internal/dispatcher"
	"github.com/pagesift/pagesift/internal/scrape"
)

// Server wires HTTP handlers to the orchestrator, dispatcher and job store.
type Server struct {
	router       chi.Router
	jobStore     scrape.JobStore
	dispatcher   *dispatcher.Dispatcher
	orchestrator *scrape.Orchestrator
	idGen        scrape.IDGenerator
	clock        scrape.Clock
	cfg          config.Config
	logger       *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	jobStore scrape.JobStore,
	dispatch *dispatcher.Dispatcher,
	orchestrator *scrape.Orchestrator,
	idGen scrape.IDGenerator,
	clock scrape.Clock,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		jobStore:     jobStore,
		dispatcher:   dispatch,
		orchestrator: orchestrator,
		idGen:        idGen,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}

	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/scrape", s.scrapeSync)
		r.Post("/scrape/async", s.scrapeAsync)
		r.Get("/jobs/{job_id}", s.getJobStatus)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// In-memory dependencies are always ready; in future check downstreams.
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// scrapeSync processes the batch inline, one URL at a time, and responds
// once every URL is done. Per-URL failures land in the result list; they
// never fail the request.
func (s *Server) scrapeSync(w http.ResponseWriter, r *http.Request) {
	urls, apiKey, err := decodeScrapePayload(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := make([]scrape.ScrapeRecord, 0, len(urls))
	for _, url := range urls {
		records = append(records, s.orchestrator.Process(r.Context(), url, apiKey))
	}
	s.writeJSON(w, http.StatusOK, scrape.BatchResult{Results: records})
}

// scrapeAsync creates a pending job, enqueues it and returns immediately.
func (s *Server) scrapeAsync(w http.ResponseWriter, r *http.Request) {
	urls, apiKey, err := decodeScrapePayload(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID, err := s.enqueueJob(r.Context(), urls, apiKey)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusRequestTimeout
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID, "status": "queued"})
}

// getJobStatus reports the job's current state. A job that never finishes
// stays pending from the caller's view; there is no timeout-based failure.
func (s *Server) getJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	state, err := s.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	resp := map[string]any{"job_id": jobID, "status": string(state.Status)}
	switch state.Status {
	case scrape.JobStatusSuccess:
		resp["result"] = state.Result
	case scrape.JobStatusFailed:
		resp["error"] = state.Error
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) enqueueJob(ctx context.Context, urls []string, apiKey string) (string, error) {
	jobID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate job id: %w", err)
	}
	if err := s.jobStore.CreateJob(ctx, jobID); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	queueCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	item := scrape.QueueItem{
		JobID:     jobID,
		URLs:      urls,
		APIKey:    apiKey,
		Submitted: s.clock.Now().Unix(),
	}
	if err := s.dispatcher.Enqueue(queueCtx, item); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return jobID, nil
}

// scrapeRequest accepts either a single "url" string or a "urls" list;
// raw messages defer the string-vs-list decision to normalization.
type scrapeRequest struct {
	URL    json.RawMessage `json:"url"`
	URLs   json.RawMessage `json:"urls"`
	APIKey string          `json:"api_key"`
}

func decodeScrapePayload(r *http.Request) ([]string, string, error) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", errors.New("invalid JSON")
	}
	urls, err := normalizeURLs(req)
	if err != nil {
		return nil, "", err
	}
	return urls, req.APIKey, nil
}

// normalizeURLs resolves the url/urls payload shapes into a non-empty
// list, rejecting malformed requests before any processing begins.
func normalizeURLs(req scrapeRequest) ([]string, error) {
	raw := req.URLs
	if len(raw) == 0 || string(raw) == "null" {
		raw = req.URL
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("provide 'url' or 'urls' in JSON payload")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil, errors.New("provide 'url' or 'urls' in JSON payload")
		}
		return []string{single}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.New("'urls' must be a list or string")
	}
	if len(list) == 0 {
		return nil, errors.New("provide 'url' or 'urls' in JSON payload")
	}
	return list, nil
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
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
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

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Package chi exposes the mailsense use cases over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mailsense/internal/domain"
	logpkg "github.com/kailas-cloud/mailsense/internal/logger"
	"github.com/kailas-cloud/mailsense/internal/usecase/health"
	"github.com/kailas-cloud/mailsense/internal/usecase/intelligent"
	"github.com/kailas-cloud/mailsense/internal/usecase/usage"
)

// Request body limits.
const (
	maxQueryBodyBytes   = 64 << 10
	maxMessageBodyBytes = 32 << 20
)

// errorHandler writes a response for err and reports whether it matched.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	querier       Querier
	indexer       Indexer
	health        HealthReporter
	usage         UsageReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP handlers. indexer can be nil for a read-only deployment.
func NewServer(querier Querier, indexer Indexer, hr HealthReporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		querier: querier,
		indexer: indexer,
		health:  hr,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		invalidRequestHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusTooManyRequests, CodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrEmbedderNotConfigured,
			http.StatusNotImplemented, CodeEmbedderNotConfigured),
		sentinelHandler(domain.ErrKeywordSearchNotSupported,
			http.StatusNotImplemented, CodeKeywordSearchNotSupported),
		sentinelHandler(domain.ErrIndexUnavailable,
			http.StatusServiceUnavailable, CodeIndexUnavailable),
	}
	return s
}

// WithUsage enables GET /v1/usage.
func (s *Server) WithUsage(ur UsageReporter) *Server {
	s.usage = ur
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.Analyze)
		r.Post("/query", s.Query)
		if s.usage != nil {
			r.Get("/usage", s.Usage)
		}
		if s.indexer != nil {
			r.Post("/messages", s.UpsertMessages)
			r.Get("/messages/{id}", s.GetMessage)
			r.Delete("/messages/{id}", s.DeleteMessage)
		}
	})
}

// Analyze handles POST /v1/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, maxQueryBodyBytes, &req) {
		return
	}
	enh := s.querier.Analyze(req.Query)
	writeJSON(w, http.StatusOK, analyzeResponse{Enhancement: enh, Summary: enh.Summary()})
}

// Query handles POST /v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, maxQueryBodyBytes, &req) {
		return
	}
	resp, err := s.querier.Run(r.Context(), intelligent.Request{
		Query:   req.Query,
		TopK:    req.TopK,
		Debug:   req.Debug,
		Filters: req.Filters,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpsertMessages handles POST /v1/messages.
func (s *Server) UpsertMessages(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if !s.decode(w, r, maxMessageBodyBytes, &req) {
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "messages must not be empty")
		return
	}
	results := s.indexer.Upsert(r.Context(), req.Messages)
	writeJSON(w, http.StatusOK, upsertResultsToResponse(results))
}

// GetMessage handles GET /v1/messages/{id}.
func (s *Server) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := s.indexer.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// DeleteMessage handles DELETE /v1/messages/{id}.
func (s *Server) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := s.indexer.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Usage handles GET /v1/usage?period=day|month.
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	report, err := s.usage.Report(usage.Period(r.URL.Query().Get("period")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HealthCheck handles GET /health. Only an unhealthy database yields 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == health.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, CodeBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON: "+err.Error())
		}
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage hides internal detail behind the sentinel text.
// Validation failures keep their full message since it is caller-facing.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrEmbedderNotConfigured,
		domain.ErrKeywordSearchNotSupported,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func invalidRequestHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, msg)
	return true
}

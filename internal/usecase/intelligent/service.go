// Package intelligent answers mail queries by analysing them first and then
// running the retrieval strategy that suits the detected intent.
package intelligent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/enhancement"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
	"github.com/kailas-cloud/mailsense/internal/metrics"
)

// Request is one intelligent query.
type Request struct {
	Query   string
	TopK    int
	Debug   bool
	Filters filter.Metadata
}

// Service orchestrates analysis, retrieval and re-ranking.
type Service struct {
	analyzer    Analyzer
	fetcher     Fetcher
	logger      *zap.Logger
	debug       bool
	defaultTopK int
}

// New creates an intelligent query service.
func New(analyzer Analyzer, fetcher Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{analyzer: analyzer, fetcher: fetcher, logger: logger, defaultTopK: intent.DefaultTopK}
}

// WithDebug turns on the debug summary for every request.
func (s *Service) WithDebug(on bool) *Service {
	s.debug = on
	return s
}

// WithDefaultTopK sets the result count used when a request leaves top_k at zero.
func (s *Service) WithDefaultTopK(n int) *Service {
	if n > 0 {
		s.defaultTopK = n
	}
	return s
}

// Analyze interprets a query without retrieving anything.
func (s *Service) Analyze(query string) enhancement.Enhancement {
	return s.analyzer.Analyze(query)
}

// Run analyses req.Query, retrieves with the enhanced query and filters, and
// annotates the response with the interpretation. Retrieval errors are returned as is.
func (s *Service) Run(ctx context.Context, req Request) (*mail.Response, error) {
	if req.TopK < 0 {
		return nil, fmt.Errorf("%w: top_k must be >= 0", domain.ErrInvalidRequest)
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	start := time.Now()
	enh := s.analyzer.Analyze(req.Query)
	analysisTime := time.Since(start)

	debug := req.Debug || s.debug
	if debug {
		s.logger.Info("Query intelligence", zap.String("summary", enh.Summary()))
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.defaultTopK
	}
	if enh.SuggestedTopK() > topK {
		topK = enh.SuggestedTopK()
	}

	st := StrategyFor(enh.Intent())
	p := plan{
		query:   enh.EnhancedQuery(),
		enh:     enh,
		topK:    topK,
		filters: req.Filters.Merge(enh.MetadataFilters()),
	}

	fetchStart := time.Now()
	resp, err := s.execute(ctx, st, p)
	if err != nil {
		s.logger.Error("Intelligent query failed",
			zap.String("intent", enh.Intent().String()),
			zap.String("strategy", string(st)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s strategy: %w", st, err)
	}

	metrics.RetrievalDuration.WithLabelValues(string(st)).Observe(time.Since(fetchStart).Seconds())
	metrics.RetrievalCitations.WithLabelValues(string(st)).Observe(float64(len(resp.Citations)))

	annotate(resp, enh, st, analysisTime, debug)

	s.logger.Debug("Intelligent query completed",
		zap.String("intent", enh.Intent().String()),
		zap.String("strategy", string(st)),
		zap.Int("top_k", topK),
		zap.Int("citations", len(resp.Citations)),
	)
	return resp, nil
}

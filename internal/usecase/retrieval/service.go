// Package retrieval implements the candidate fetch behind intelligent queries:
// keyword (BM25), semantic (KNN) and hybrid (RRF) search over the mail index.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
	"github.com/kailas-cloud/mailsense/internal/domain/search/mode"
)

// DefaultMaxTopK caps a single fetch when Config.MaxTopK is unset.
const DefaultMaxTopK = 100

// Config tunes retrieval.
type Config struct {
	Mode    mode.Mode
	MaxTopK int
}

// Service fetches candidate citations from the mail index.
type Service struct {
	repo   Repository
	embed  Embedder
	mode   mode.Mode
	maxTop int
	logger *zap.Logger
}

// New creates a retrieval service. embed may be nil: hybrid then degrades to
// keyword and semantic fails with domain.ErrEmbedderNotConfigured.
func New(repo Repository, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	m := cfg.Mode
	if m == "" {
		m = mode.Hybrid
	}
	maxTop := cfg.MaxTopK
	if maxTop <= 0 {
		maxTop = DefaultMaxTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, mode: m, maxTop: maxTop, logger: logger}
}

// Mode returns the configured retrieval mode.
func (s *Service) Mode() mode.Mode { return s.mode }

// Fetch returns up to topK citations for query narrowed by filters.
func (s *Service) Fetch(
	ctx context.Context, query string, topK int, filters filter.Metadata,
) (*mail.Response, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidRequest)
	}
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	topK = min(topK, s.maxTop)

	effective := s.effectiveMode()

	var (
		hits mail.Hits
		err  error
	)
	switch effective {
	case mode.Keyword:
		hits, err = s.fetchKeyword(ctx, query, topK, filters)
	case mode.Semantic:
		hits, err = s.fetchSemantic(ctx, query, topK, filters)
	case mode.Hybrid:
		hits, err = s.fetchHybrid(ctx, query, topK, filters)
	default:
		return nil, fmt.Errorf("unsupported retrieval mode: %s", effective)
	}
	if err != nil {
		return nil, err
	}

	citations := hits.Citations
	if citations == nil {
		citations = []mail.Citation{}
	}

	s.logger.Debug("Fetched candidates",
		zap.String("mode", string(effective)),
		zap.Int("top_k", topK),
		zap.Int("returned", len(citations)),
		zap.Int("total", hits.Total),
	)

	return &mail.Response{
		Citations:    citations,
		ResponseTime: time.Since(start).Seconds(),
		Metadata: mail.FetchMetadata{
			TopK:     topK,
			Mode:     string(effective),
			Total:    hits.Total,
			Filtered: !filters.IsEmpty(),
		},
	}, nil
}

func (s *Service) effectiveMode() mode.Mode {
	if s.mode == mode.Hybrid && s.embed == nil {
		return mode.Keyword
	}
	return s.mode
}

func (s *Service) fetchKeyword(
	ctx context.Context, query string, topK int, filters filter.Metadata,
) (mail.Hits, error) {
	hits, err := s.repo.SearchBM25(ctx, query, filters, topK)
	if err != nil {
		return mail.Hits{}, fmt.Errorf("search bm25: %w", err)
	}
	return hits, nil
}

func (s *Service) fetchSemantic(
	ctx context.Context, query string, topK int, filters filter.Metadata,
) (mail.Hits, error) {
	vec, err := s.vectorize(ctx, query)
	if err != nil {
		return mail.Hits{}, err
	}
	hits, err := s.repo.SearchKNN(ctx, vec, filters, topK)
	if err != nil {
		return mail.Hits{}, fmt.Errorf("search knn: %w", err)
	}
	return hits, nil
}

// fetchHybrid runs KNN and BM25 concurrently, then fuses them via RRF.
func (s *Service) fetchHybrid(
	ctx context.Context, query string, topK int, filters filter.Metadata,
) (mail.Hits, error) {
	var knn, bm25 mail.Hits

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		knn, err = s.fetchSemantic(gctx, query, topK, filters)
		return err
	})
	g.Go(func() error {
		var err error
		bm25, err = s.fetchKeyword(gctx, query, topK, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		return mail.Hits{}, err
	}

	return mail.Hits{
		Citations: fuseRRF(knn.Citations, bm25.Citations, topK),
		Total:     max(knn.Total, bm25.Total),
	}, nil
}

func (s *Service) vectorize(ctx context.Context, query string) ([]float32, error) {
	if s.embed == nil {
		return nil, domain.ErrEmbedderNotConfigured
	}
	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	return res.Embedding, nil
}

// Package app wires configuration into services. It is the composition root
// shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailsense/internal/config"
	dbRedis "github.com/kailas-cloud/mailsense/internal/db/redis"
	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/domain/search/mode"
	"github.com/kailas-cloud/mailsense/internal/metrics"
	budgetrepo "github.com/kailas-cloud/mailsense/internal/repository/budget"
	"github.com/kailas-cloud/mailsense/internal/repository/embcache"
	mailrepo "github.com/kailas-cloud/mailsense/internal/repository/mail"
	openaiEmb "github.com/kailas-cloud/mailsense/internal/transport/openai"
	"github.com/kailas-cloud/mailsense/internal/usecase/analysis"
	embeddinguc "github.com/kailas-cloud/mailsense/internal/usecase/embedding"
	"github.com/kailas-cloud/mailsense/internal/usecase/health"
	"github.com/kailas-cloud/mailsense/internal/usecase/ingest"
	"github.com/kailas-cloud/mailsense/internal/usecase/intelligent"
	"github.com/kailas-cloud/mailsense/internal/usecase/retrieval"
	"github.com/kailas-cloud/mailsense/internal/usecase/usage"
)

// App holds the wired services.
type App struct {
	Store     *dbRedis.Store
	Queries   *intelligent.Service
	Ingest    *ingest.Service
	Health    *health.Service
	Retrieval *retrieval.Service
	Usage     *usage.Service
}

// NewEngine builds the query analysis engine from config.
func NewEngine(cfg config.IntelligenceConfig, logger *zap.Logger) (*analysis.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("intelligence timezone: %w", err)
	}
	return newEngine(loc, logger), nil
}

func newEngine(loc *time.Location, logger *zap.Logger) *analysis.Engine {
	return analysis.New(analysis.WithLocation(loc), analysis.WithLogger(logger))
}

// New connects to the store, ensures the mail index and builds every service.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Intelligence.Location()
	if err != nil {
		return nil, fmt.Errorf("intelligence timezone: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.Database.Addrs,
		Password:    cfg.Database.Password,
		DialTimeout: time.Duration(cfg.Database.DialTimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	engine := newEngine(loc, logger)

	repo := mailrepo.New(store).
		WithHNSW(mailrepo.HNSWConfig{M: cfg.Retrieval.HNSWM, EFConstruct: cfg.Retrieval.HNSWEFConstruct}).
		WithSnippetLength(cfg.Retrieval.SnippetLength).
		WithLocation(loc)

	// Pass nil interfaces, not typed nil pointers, when embeddings are off:
	// (*Budgeted)(nil) wrapped in an interface is not nil.
	var (
		queryEmbedder retrieval.Embedder
		docEmbedder   ingest.Embedder
		embedChecker  health.EmbeddingChecker
		budgetReader  usage.BudgetReader
		vectorDim     int
	)
	if cfg.Embedding.Enabled() {
		base, qe, de, tracker := buildEmbedders(ctx, cfg.Embedding, store, logger)
		queryEmbedder, docEmbedder, embedChecker = qe, de, base
		if tracker != nil {
			budgetReader = tracker
		}
		vectorDim = cfg.Embedding.Dimensions
		logger.Info("Embedders created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", vectorDim),
		)
	} else {
		logger.Info("No embedding provider configured, retrieval is keyword only")
	}

	if err := repo.EnsureIndex(ctx, vectorDim); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure mail index: %w", err)
	}

	ret := retrieval.New(repo, queryEmbedder, retrieval.Config{
		Mode:    mode.Mode(cfg.Retrieval.Mode),
		MaxTopK: cfg.Retrieval.MaxTopK,
	}, logger)
	queries := intelligent.New(engine, ret, logger).
		WithDebug(cfg.Intelligence.Debug).
		WithDefaultTopK(cfg.Retrieval.DefaultTopK)
	ing := ingest.New(repo, docEmbedder, logger).WithMaxBatchSize(cfg.Retrieval.MaxBatchSize)
	hs := health.New(store, embedChecker).WithIndex(store, mailrepo.IndexName)

	return &App{
		Store:     store,
		Queries:   queries,
		Ingest:    ing,
		Health:    hs,
		Retrieval: ret,
		Usage:     usage.New(budgetReader),
	}, nil
}

// Close releases the store connection.
func (a *App) Close() {
	a.Store.Close()
}

// buildEmbedders assembles two decorator chains sharing one provider, cache and budget:
// OpenAI -> Cached -> Budgeted -> Instruction. The instruction is outermost so
// query and document vectors are cached under different keys.
func buildEmbedders(
	ctx context.Context, cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger,
) (base *openaiEmb.Embedder, query, document domain.Embedder, tracker *embeddinguc.Tracker) {
	base = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Timeout:    cfg.Timeout(),
		Logger:     logger,
	})

	var inner domain.Embedder = base
	if cfg.CacheEnabled() {
		inner = embcache.New(base, store, embcache.Config{
			Namespace:  cfg.Model,
			TTL:        cfg.CacheTTL(),
			Dimensions: cfg.Dimensions,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	var budget embeddinguc.Budget
	if cfg.Budget.DailyTokenLimit > 0 || cfg.Budget.MonthlyTokenLimit > 0 {
		tracker = embeddinguc.NewTracker(cfg.Provider, embeddinguc.Limits{
			Daily:   cfg.Budget.DailyTokenLimit,
			Monthly: cfg.Budget.MonthlyTokenLimit,
			Action:  embeddinguc.Action(cfg.Budget.Action),
		}, logger)
		budget = tracker.Restore(ctx, budgetrepo.New(store, 0, 0))
	}
	inner = embeddinguc.NewBudgeted(inner, cfg.Provider, cfg.Model, budget, logger)

	return base, withInstruction(inner, cfg.QueryInstruction), withInstruction(inner, cfg.DocumentInstruction), tracker
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// Package embcache stores embedding vectors in the key-value store so repeated
// queries and re-ingested messages skip the provider.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/mailsense/internal/db"
	"github.com/kailas-cloud/mailsense/internal/domain"
)

const keyPrefix = "mailsense:emb:"

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config controls cache keys and expiry.
type Config struct {
	// Namespace separates vectors of different models. Usually the model name.
	Namespace string
	// TTL of a cached vector. Zero keeps vectors forever.
	TTL time.Duration
	// Dimensions rejects cached vectors of another size. Zero accepts any.
	Dimensions int
}

// CachedEmbedder caches embeddings in a key-value store. Concurrent misses
// for the same text share one provider call.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	cfg        Config
	flight     singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"shared"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		cfg:        cfg,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Only the caller that actually reached the provider reports tokens.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	var leader bool
	v, err, _ := c.flight.Do(key, func() (any, error) {
		leader = true
		result, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.putToCache(ctx, key, result.Embedding)
		return result, nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	result, _ := v.(domain.EmbeddingResult)
	if !leader {
		c.incCache("shared")
		result.PromptTokens, result.TotalTokens = 0, 0
		return result, nil
	}
	c.incCache("miss")
	return result, nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes text with runs of whitespace collapsed, so "from  John"
// and "from John" share an entry.
func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(strings.Join(strings.Fields(text), " ")))
	prefix := keyPrefix
	if c.cfg.Namespace != "" {
		prefix += c.cfg.Namespace + ":"
	}
	return prefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	vec, err := decodeVector(data, c.cfg.Dimensions)
	if err != nil {
		c.logger.Warn("Discarding cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, db.EncodeVector(vec), c.cfg.TTL); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func decodeVector(data []byte, dims int) ([]float32, error) {
	vec, err := db.DecodeVector(data)
	if err != nil {
		return nil, err
	}
	if dims > 0 && len(vec) != dims {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d", len(vec), dims)
	}
	return vec, nil
}

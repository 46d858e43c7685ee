package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/metrics"
)

// Budget is the budget contract consumed by Budgeted.
type Budget interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Budgeted wraps an Embedder with budget enforcement and logging.
// Request metrics live in transport/openai; this layer owns the budget gauge.
type Budgeted struct {
	inner    domain.Embedder
	provider string
	model    string
	budget   Budget
	logger   *zap.Logger
}

// NewBudgeted wraps inner. A nil budget only adds logging.
func NewBudgeted(inner domain.Embedder, provider, model string, budget Budget, logger *zap.Logger) *Budgeted {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Budgeted{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Embed checks the budget, delegates, and records token usage.
func (b *Budgeted) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if b.budget != nil {
		if err := b.budget.Check(ctx); err != nil {
			b.logger.Warn("Embedding rejected by budget",
				zap.String("provider", b.provider),
				zap.String("model", b.model),
				zap.Error(err),
			)
			return domain.EmbeddingResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	res, err := b.inner.Embed(ctx, text)
	took := time.Since(start)
	if err != nil {
		b.logger.Error("Embedding failed",
			zap.String("provider", b.provider),
			zap.String("model", b.model),
			zap.Duration("duration", took),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if b.budget != nil && res.TotalTokens > 0 {
		b.budget.Record(int64(res.TotalTokens))
		gauge := metrics.EmbeddingBudgetTokensRemaining
		gauge.WithLabelValues(b.provider, "daily").Set(float64(b.budget.RemainingDaily()))
		gauge.WithLabelValues(b.provider, "monthly").Set(float64(b.budget.RemainingMonthly()))
	}

	b.logger.Debug("Embedding completed",
		zap.String("provider", b.provider),
		zap.Duration("duration", took),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

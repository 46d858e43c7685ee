package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
)

// MaxBatchSize is the maximum number of messages per upsert request.
const MaxBatchSize = 100

// Service indexes messages with per-item error reporting.
type Service struct {
	repo         Repository
	embed        Embedder
	maxBatchSize int
	logger       *zap.Logger
}

// New creates an ingest service. embed may be nil for a keyword-only index.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, maxBatchSize: MaxBatchSize, logger: logger}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert validates, vectorizes and stores messages. Valid messages are written
// in a single pipelined round-trip; results keep the input order.
func (s *Service) Upsert(ctx context.Context, msgs []mail.Message) []mail.UpsertResult {
	results := make([]mail.UpsertResult, len(msgs))

	if len(msgs) > s.maxBatchSize {
		err := fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidRequest)
		for i := range msgs {
			results[i] = mail.Failed(msgs[i].ID, err)
		}
		return results
	}

	records := make([]mail.Record, 0, len(msgs))
	validIdx := make([]int, 0, len(msgs))
	seen := make(map[string]bool, len(msgs))

	for i := range msgs {
		msg := msgs[i]
		if err := msg.Validate(); err != nil {
			results[i] = mail.Failed(msg.ID, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err))
			continue
		}
		if seen[msg.ID] {
			results[i] = mail.Failed(msg.ID, fmt.Errorf("duplicate id in batch: %w", domain.ErrInvalidRequest))
			continue
		}
		seen[msg.ID] = true

		vec, err := s.vectorize(ctx, &msg)
		if err != nil {
			results[i] = mail.Failed(msg.ID, err)
			// provider outages fail every remaining message the same way
			if errors.Is(err, domain.ErrEmbeddingProviderError) {
				for j := i + 1; j < len(msgs); j++ {
					results[j] = mail.Failed(msgs[j].ID, err)
				}
				break
			}
			continue
		}

		records = append(records, mail.Record{Message: msg, Vector: vec})
		validIdx = append(validIdx, i)
	}

	if len(records) > 0 {
		if err := s.repo.Upsert(ctx, records); err != nil {
			s.logger.Error("Failed to index messages", zap.Int("count", len(records)), zap.Error(err))
			for _, i := range validIdx {
				results[i] = mail.Failed(msgs[i].ID, fmt.Errorf("upsert: %w", err))
			}
			return results
		}
		for _, i := range validIdx {
			results[i] = mail.Indexed(msgs[i].ID)
		}
	}

	s.logger.Debug("Indexed messages", zap.Int("requested", len(msgs)), zap.Int("indexed", len(records)))
	return results
}

// Get returns a stored message.
func (s *Service) Get(ctx context.Context, id string) (mail.Message, error) {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return mail.Message{}, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

// Delete removes a stored message.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func (s *Service) vectorize(ctx context.Context, msg *mail.Message) ([]float32, error) {
	if s.embed == nil {
		return nil, nil
	}
	res, err := s.embed.Embed(ctx, msg.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	return res.Embedding, nil
}

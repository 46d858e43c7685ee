package ingest

import (
	"context"

	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
)

// Repository persists messages in the mail index.
type Repository interface {
	Upsert(ctx context.Context, records []mail.Record) error
	Get(ctx context.Context, id string) (mail.Message, error)
	Delete(ctx context.Context, id string) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

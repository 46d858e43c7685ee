package retrieval

import (
	"context"

	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
)

// Repository defines the mail index contract for retrieval.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, filters filter.Metadata, topK int) (mail.Hits, error)
	SearchBM25(ctx context.Context, query string, filters filter.Metadata, topK int) (mail.Hits, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

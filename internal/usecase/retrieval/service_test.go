package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
	"github.com/kailas-cloud/mailsense/internal/domain/search/mode"
)

// --- Mocks ---

type mockRepo struct {
	knn        mail.Hits
	knnErr     error
	bm25       mail.Hits
	bm25Err    error
	knnCalled  bool
	bm25Called bool
	lastQuery  string
	lastTopK   int
	lastFilter filter.Metadata
}

func (m *mockRepo) SearchKNN(
	_ context.Context, _ []float32, _ filter.Metadata, _ int,
) (mail.Hits, error) {
	m.knnCalled = true
	return m.knn, m.knnErr
}

func (m *mockRepo) SearchBM25(
	_ context.Context, query string, filters filter.Metadata, topK int,
) (mail.Hits, error) {
	m.bm25Called = true
	m.lastQuery, m.lastTopK, m.lastFilter = query, topK, filters
	return m.bm25, m.bm25Err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	return domain.EmbeddingResult{Embedding: m.vec}, m.err
}

// --- Tests ---

func TestFetch_Keyword(t *testing.T) {
	repo := &mockRepo{bm25: mail.Hits{Citations: cite("m1", "m2"), Total: 2}}
	svc := New(repo, nil, Config{Mode: mode.Keyword}, nil)

	resp, err := svc.Fetch(context.Background(), "  invoice  ", 5, filter.Metadata{Category: filter.Financial})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastQuery != "invoice" || repo.lastTopK != 5 || repo.lastFilter.Category != filter.Financial {
		t.Errorf("unexpected repo call %q %d %+v", repo.lastQuery, repo.lastTopK, repo.lastFilter)
	}
	if repo.knnCalled {
		t.Error("keyword mode must not run KNN")
	}
	if len(resp.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(resp.Citations))
	}
	md := resp.Metadata
	if md.Mode != "keyword" || md.TopK != 5 || md.Total != 2 || !md.Filtered {
		t.Errorf("unexpected metadata %+v", md)
	}
	if resp.ResponseTime < 0 {
		t.Errorf("negative response time %v", resp.ResponseTime)
	}
}

func TestFetch_Semantic(t *testing.T) {
	repo := &mockRepo{knn: mail.Hits{Citations: cite("m1"), Total: 1}}
	emb := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, emb, Config{Mode: mode.Semantic}, nil)

	resp, err := svc.Fetch(context.Background(), "budget", 5, filter.Metadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emb.called || !repo.knnCalled || repo.bm25Called {
		t.Error("semantic mode must embed and run KNN only")
	}
	if resp.Metadata.Mode != "semantic" || resp.Metadata.Filtered {
		t.Errorf("unexpected metadata %+v", resp.Metadata)
	}
}

func TestFetch_SemanticWithoutEmbedder(t *testing.T) {
	svc := New(&mockRepo{}, nil, Config{Mode: mode.Semantic}, nil)
	_, err := svc.Fetch(context.Background(), "budget", 5, filter.Metadata{})
	if !errors.Is(err, domain.ErrEmbedderNotConfigured) {
		t.Fatalf("expected ErrEmbedderNotConfigured, got %v", err)
	}
}

func TestFetch_HybridFuses(t *testing.T) {
	repo := &mockRepo{
		knn:  mail.Hits{Citations: cite("a", "b"), Total: 2},
		bm25: mail.Hits{Citations: cite("b", "c"), Total: 7},
	}
	svc := New(repo, &mockEmbedder{vec: []float32{0.1}}, Config{}, nil)

	resp, err := svc.Fetch(context.Background(), "report", 2, filter.Metadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Mode() != mode.Hybrid || resp.Metadata.Mode != "hybrid" {
		t.Errorf("expected hybrid default, got %s", resp.Metadata.Mode)
	}
	if len(resp.Citations) != 2 || resp.Citations[0].ID != "b" {
		t.Errorf("expected fused [b ...], got %v", ids(resp.Citations))
	}
	if resp.Metadata.Total != 7 {
		t.Errorf("expected total 7, got %d", resp.Metadata.Total)
	}
}

func TestFetch_HybridWithoutEmbedderDegrades(t *testing.T) {
	repo := &mockRepo{bm25: mail.Hits{Citations: cite("a"), Total: 1}}
	svc := New(repo, nil, Config{Mode: mode.Hybrid}, nil)

	resp, err := svc.Fetch(context.Background(), "report", 5, filter.Metadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.knnCalled || resp.Metadata.Mode != "keyword" {
		t.Errorf("expected keyword fallback, got %+v", resp.Metadata)
	}
}

func TestFetch_HybridPropagatesErrors(t *testing.T) {
	boom := errors.New("index down")
	repo := &mockRepo{bm25Err: boom}
	svc := New(repo, &mockEmbedder{vec: []float32{0.1}}, Config{}, nil)

	if _, err := svc.Fetch(context.Background(), "report", 5, filter.Metadata{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped index error, got %v", err)
	}

	embErr := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc = New(&mockRepo{}, embErr, Config{}, nil)
	if _, err := svc.Fetch(context.Background(), "report", 5, filter.Metadata{}); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestFetch_ClampsTopK(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, nil, Config{Mode: mode.Keyword, MaxTopK: 20}, nil)

	resp, err := svc.Fetch(context.Background(), "x", 500, filter.Metadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastTopK != 20 || resp.Metadata.TopK != 20 {
		t.Errorf("expected clamp to 20, got %d", repo.lastTopK)
	}
	if resp.Citations == nil {
		t.Error("citations must never be nil")
	}
}

func TestFetch_InvalidRequest(t *testing.T) {
	svc := New(&mockRepo{}, nil, Config{Mode: mode.Keyword}, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   string
		topK    int
		filters filter.Metadata
	}{
		{"blank query", "   ", 5, filter.Metadata{}},
		{"zero top_k", "x", 0, filter.Metadata{}},
		{"bad filter", "x", 5, filter.Metadata{Category: "travel"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Fetch(ctx, tc.query, tc.topK, tc.filters)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

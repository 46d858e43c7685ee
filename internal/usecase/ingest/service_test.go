package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/mailsense/internal/domain"
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
)

// --- Mocks ---

type mockRepo struct {
	upserted  []mail.Record
	upsertErr error
	callCount int
	stored    map[string]mail.Message
}

func (m *mockRepo) Upsert(_ context.Context, records []mail.Record) error {
	m.callCount++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, records...)
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (mail.Message, error) {
	msg, ok := m.stored[id]
	if !ok {
		return mail.Message{}, domain.ErrNotFound
	}
	return msg, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.stored[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.stored, id)
	return nil
}

type mockEmbedder struct {
	vec       []float32
	err       error
	failOn    int // 1-based call that fails; 0 means every call uses err
	callCount int
	texts     []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.callCount++
	m.texts = append(m.texts, text)
	if m.err != nil && (m.failOn == 0 || m.failOn == m.callCount) {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func msg(id string) mail.Message {
	return mail.Message{ID: id, From: "john@example.com", Subject: "subject " + id, Body: "body"}
}

// --- Tests ---

func TestUpsert_Success(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(repo, emb, nil)

	results := svc.Upsert(context.Background(), []mail.Message{msg("a"), msg("b")})

	for _, r := range results {
		if r.Status() != mail.StatusOK {
			t.Errorf("%s: expected ok, got %v", r.ID(), r.Err())
		}
	}
	if repo.callCount != 1 || len(repo.upserted) != 2 {
		t.Fatalf("expected one pipelined upsert of 2, got %d calls / %d records", repo.callCount, len(repo.upserted))
	}
	if len(repo.upserted[0].Vector) != 2 {
		t.Error("expected vector on record")
	}
	if emb.texts[0] != "subject a\nbody" {
		t.Errorf("unexpected embedding text %q", emb.texts[0])
	}
}

func TestUpsert_WithoutEmbedder(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, nil, nil)

	results := svc.Upsert(context.Background(), []mail.Message{msg("a")})
	if results[0].Status() != mail.StatusOK {
		t.Fatalf("unexpected error: %v", results[0].Err())
	}
	if repo.upserted[0].Vector != nil {
		t.Error("keyword-only ingestion must not carry vectors")
	}
}

func TestUpsert_PerItemValidation(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, nil, nil)

	bad := msg("b")
	bad.From = ""
	results := svc.Upsert(context.Background(), []mail.Message{msg("a"), bad, msg("a")})

	if results[0].Status() != mail.StatusOK {
		t.Errorf("expected first ok, got %v", results[0].Err())
	}
	if results[1].Status() != mail.StatusError || !errors.Is(results[1].Err(), domain.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", results[1].Err())
	}
	if results[2].Status() != mail.StatusError {
		t.Error("expected duplicate id to fail")
	}
	if len(repo.upserted) != 1 {
		t.Errorf("expected 1 stored record, got %d", len(repo.upserted))
	}
}

func TestUpsert_BatchTooLarge(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, nil, nil).WithMaxBatchSize(2)

	results := svc.Upsert(context.Background(), []mail.Message{msg("a"), msg("b"), msg("c")})
	for _, r := range results {
		if !errors.Is(r.Err(), domain.ErrInvalidRequest) {
			t.Errorf("%s: expected invalid request, got %v", r.ID(), r.Err())
		}
	}
	if repo.callCount != 0 {
		t.Error("oversized batch must not reach the store")
	}
}

func TestUpsert_ProviderErrorCascades(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{
		vec:    []float32{0.1},
		err:    fmt.Errorf("429: %w", domain.ErrEmbeddingProviderError),
		failOn: 2,
	}
	svc := New(repo, emb, nil)

	results := svc.Upsert(context.Background(), []mail.Message{msg("a"), msg("b"), msg("c")})

	if results[0].Status() != mail.StatusOK {
		t.Errorf("expected first ok, got %v", results[0].Err())
	}
	for _, r := range results[1:] {
		if !errors.Is(r.Err(), domain.ErrEmbeddingProviderError) {
			t.Errorf("%s: expected provider error, got %v", r.ID(), r.Err())
		}
	}
	if emb.callCount != 2 {
		t.Errorf("expected embedding to stop after failure, got %d calls", emb.callCount)
	}
}

func TestUpsert_StoreError(t *testing.T) {
	repo := &mockRepo{upsertErr: errors.New("conn reset")}
	svc := New(repo, nil, nil)

	results := svc.Upsert(context.Background(), []mail.Message{msg("a"), msg("b")})
	for _, r := range results {
		if r.Status() != mail.StatusError {
			t.Errorf("%s: expected error", r.ID())
		}
	}
}

func TestUpsert_Empty(t *testing.T) {
	repo := &mockRepo{}
	if results := New(repo, nil, nil).Upsert(context.Background(), nil); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if repo.callCount != 0 {
		t.Error("empty batch must not reach the store")
	}
}

func TestGetDelete(t *testing.T) {
	repo := &mockRepo{stored: map[string]mail.Message{"a": msg("a")}}
	svc := New(repo, nil, nil)
	ctx := context.Background()

	got, err := svc.Get(ctx, "a")
	if err != nil || got.ID != "a" {
		t.Fatalf("unexpected get %+v %v", got, err)
	}
	if err := svc.Delete(ctx, "a"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, err := svc.Get(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/mailsense/internal/db"
	"github.com/kailas-cloud/mailsense/internal/domain"
	dommail "github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
)

// Key layout of the mail index.
const (
	KeyPrefix = "mailsense:mail:"
	IndexName = KeyPrefix + "idx"
)

// store is the consumer interface for the mail index (ISP).
//
//nolint:interfacebloat // the mail index owns hashes, its FT index and both search paths
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTextSearch(ctx context.Context) bool
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores messages as hashes under KeyPrefix and searches them through IndexName.
type Repo struct {
	store      store
	hnsw       HNSWConfig
	snippetLen int
	loc        *time.Location
}

// New creates a mail repository.
func New(s store) *Repo {
	return &Repo{
		store:      s,
		hnsw:       HNSWConfig{M: 16, EFConstruct: 200},
		snippetLen: dommail.DefaultSnippetLn,
		loc:        time.UTC,
	}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// WithSnippetLength sets how many characters of the body a citation carries.
func (r *Repo) WithSnippetLength(n int) *Repo {
	if n > 0 {
		r.snippetLen = n
	}
	return r
}

// WithLocation sets the zone date_after filters are interpreted in.
func (r *Repo) WithLocation(loc *time.Location) *Repo {
	if loc != nil {
		r.loc = loc
	}
	return r
}

// EnsureIndex creates the FT index unless it already exists.
// vectorDim 0 creates a keyword-only index.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDim int) error {
	if !r.store.SupportsTextSearch(ctx) {
		return domain.ErrKeywordSearchNotSupported
	}

	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w: %w", domain.ErrIndexUnavailable, err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(vectorDim, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// another replica won the race
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Upsert writes all records in one pipelined round-trip.
func (r *Repo) Upsert(ctx context.Context, records []dommail.Record) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(records))
	for i := range records {
		items[i] = db.HashSetItem{
			Key:    messageKey(records[i].Message.ID),
			Fields: buildHashFields(&records[i].Message, records[i].Vector),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset messages: %w", err)
	}
	return nil
}

// Get returns a stored message by ID.
func (r *Repo) Get(ctx context.Context, id string) (dommail.Message, error) {
	key := messageKey(id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dommail.Message{}, domain.ErrNotFound
		}
		return dommail.Message{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseMessage(id, fields), nil
}

// Delete removes a message.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	key := messageKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// SearchKNN runs a vector similarity search narrowed by filters.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Metadata, topK int,
) (dommail.Hits, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		VectorField:  fieldVector,
		Filters:      conditions(filters, r.loc),
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return dommail.Hits{}, searchErr("knn", err)
	}
	return r.hits(sr), nil
}

// SearchBM25 runs a keyword search over subject and body narrowed by filters.
func (r *Repo) SearchBM25(
	ctx context.Context, query string, filters filter.Metadata, topK int,
) (dommail.Hits, error) {
	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    IndexName,
		Query:        query,
		TextFields:   []string{fieldSubject, fieldBody},
		Filters:      conditions(filters, r.loc),
		TopK:         topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return dommail.Hits{}, searchErr("bm25", err)
	}
	return r.hits(sr), nil
}

func (r *Repo) hits(sr *db.SearchResult) dommail.Hits {
	if sr == nil || sr.Total == 0 {
		return dommail.Hits{Citations: []dommail.Citation{}}
	}
	citations := make([]dommail.Citation, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, KeyPrefix)
		citations = append(citations, citationFromFields(id, entry.Score, entry.Fields, r.snippetLen))
	}
	return dommail.Hits{Citations: citations, Total: sr.Total}
}

func searchErr(kind string, err error) error {
	if errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("search %s: %w: %w", kind, domain.ErrIndexUnavailable, err)
	}
	return fmt.Errorf("search %s: %w", kind, err)
}

func messageKey(id string) string {
	return KeyPrefix + id
}

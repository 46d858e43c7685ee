package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/mailsense/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type mockStore struct {
	values  map[string][]byte
	getErr  error
	incrErr error
	incrs   map[string]int64
	expires []expireCall
}

func newMockStore() *mockStore {
	return &mockStore{values: map[string][]byte{}, incrs: map[string]int64{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.incrs[key] += val
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expires = append(m.expires, expireCall{key, ttl, nx})
	return nil
}

func TestIncrBy_SetsTTLByPeriod(t *testing.T) {
	ms := newMockStore()
	s := New(ms, 0, 0)

	ctx := context.Background()
	if err := s.IncrBy(ctx, "mailsense:budget:openai:daily:2024-06-10", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.IncrBy(ctx, "mailsense:budget:openai:monthly:2024-06", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ms.expires) != 2 {
		t.Fatalf("expected 2 expire calls, got %d", len(ms.expires))
	}
	if ms.expires[0].ttl != DefaultDailyTTL || !ms.expires[0].nx {
		t.Errorf("daily expire = %+v", ms.expires[0])
	}
	if ms.expires[1].ttl != DefaultMonthlyTTL {
		t.Errorf("monthly expire = %+v", ms.expires[1])
	}
}

func TestIncrBy_Error(t *testing.T) {
	ms := newMockStore()
	ms.incrErr = errors.New("down")
	s := New(ms, time.Hour, time.Hour)

	if err := s.IncrBy(context.Background(), "k:daily:x", 1); err == nil {
		t.Fatal("expected error")
	}
	if len(ms.expires) != 0 {
		t.Error("expire must not run after a failed increment")
	}
}

func TestGet(t *testing.T) {
	ms := newMockStore()
	ms.values["present"] = []byte("1234")
	ms.values["garbage"] = []byte("abc")
	s := New(ms, 0, 0)
	ctx := context.Background()

	if v, err := s.Get(ctx, "present"); err != nil || v != 1234 {
		t.Errorf("Get(present) = %d, %v", v, err)
	}
	if v, err := s.Get(ctx, "missing"); err != nil || v != 0 {
		t.Errorf("Get(missing) = %d, %v", v, err)
	}
	if _, err := s.Get(ctx, "garbage"); err == nil {
		t.Error("expected parse error")
	}

	ms.getErr = errors.New("down")
	if _, err := s.Get(ctx, "present"); err == nil {
		t.Error("expected store error")
	}
}

// Package embedding guards the embedding provider with a token budget.
package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailsense/internal/domain"
)

// KeyPrefix namespaces persisted budget counters.
const KeyPrefix = "mailsense:budget:"

// Action defines what happens once a budget is spent.
type Action string

const (
	// ActionWarn logs and lets the request through.
	ActionWarn Action = "warn"
	// ActionReject fails the request with domain.ErrEmbeddingQuotaExceeded.
	ActionReject Action = "reject"
)

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool { return a == ActionWarn || a == ActionReject }

// Limits caps token usage. Zero means unlimited.
type Limits struct {
	Daily   int64
	Monthly int64
	Action  Action
}

// CounterStore persists budget counters across restarts.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Tracker counts tokens per UTC day and month. Check never leaves memory;
// Record writes behind to the store when one is attached.
type Tracker struct {
	mu          sync.Mutex
	provider    string
	limits      Limits
	dailyUsed   int64
	monthlyUsed int64
	day         time.Time
	month       time.Time
	store       CounterStore
	now         func() time.Time
	logger      *zap.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker for provider.
func NewTracker(provider string, limits Limits, logger *zap.Logger, opts ...TrackerOption) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.Action == "" {
		limits.Action = ActionWarn
	}
	t := &Tracker{
		provider: provider,
		limits:   limits,
		now:      time.Now,
		logger:   logger,
	}
	for _, o := range opts {
		o(t)
	}
	now := t.now().UTC()
	t.day = startOfDay(now)
	t.month = startOfMonth(now)
	return t
}

// Restore attaches a store and loads the current counters from it.
// Load failures are logged and counting starts from zero.
func (t *Tracker) Restore(ctx context.Context, store CounterStore) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store = store
	now := t.now().UTC()

	if v, err := store.Get(ctx, t.dailyKey(now)); err != nil {
		t.logger.Warn("Failed to load daily budget", zap.Error(err))
	} else {
		t.dailyUsed = v
	}
	if v, err := store.Get(ctx, t.monthlyKey(now)); err != nil {
		t.logger.Warn("Failed to load monthly budget", zap.Error(err))
	} else {
		t.monthlyUsed = v
	}

	t.logger.Info("Embedding budget restored",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("monthly_used", t.monthlyUsed),
	)
	return t
}

// Check fails with domain.ErrEmbeddingQuotaExceeded when a limit is spent
// and the action is reject.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	spent := (t.limits.Daily > 0 && t.dailyUsed >= t.limits.Daily) ||
		(t.limits.Monthly > 0 && t.monthlyUsed >= t.limits.Monthly)
	if !spent {
		return nil
	}
	if t.limits.Action == ActionReject {
		return fmt.Errorf("%w: provider %s", domain.ErrEmbeddingQuotaExceeded, t.provider)
	}
	t.logger.Warn("Embedding budget exceeded",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("daily_limit", t.limits.Daily),
		zap.Int64("monthly_used", t.monthlyUsed),
		zap.Int64("monthly_limit", t.limits.Monthly),
	)
	return nil
}

// Record adds consumed tokens.
func (t *Tracker) Record(tokens int64) {
	if tokens <= 0 {
		return
	}
	t.mu.Lock()
	t.rollover()
	t.dailyUsed += tokens
	t.monthlyUsed += tokens
	now := t.now().UTC()
	store := t.store
	t.mu.Unlock()

	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, key := range []string{t.dailyKey(now), t.monthlyKey(now)} {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			t.logger.Warn("Failed to persist budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left today, or -1 when unlimited.
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return remaining(t.limits.Daily, t.dailyUsed)
}

// RemainingMonthly returns tokens left this month, or -1 when unlimited.
func (t *Tracker) RemainingMonthly() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return remaining(t.limits.Monthly, t.monthlyUsed)
}

// DailyLimit returns the daily cap, zero when unlimited.
func (t *Tracker) DailyLimit() int64 { return t.limits.Daily }

// MonthlyLimit returns the monthly cap, zero when unlimited.
func (t *Tracker) MonthlyLimit() int64 { return t.limits.Monthly }

// DailyUsed returns tokens consumed today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.dailyUsed
}

// MonthlyUsed returns tokens consumed this month.
func (t *Tracker) MonthlyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.monthlyUsed
}

func (t *Tracker) dailyKey(now time.Time) string {
	return KeyPrefix + t.provider + ":daily:" + now.Format("2006-01-02")
}

func (t *Tracker) monthlyKey(now time.Time) string {
	return KeyPrefix + t.provider + ":monthly:" + now.Format("2006-01")
}

// rollover zeroes counters when the UTC day or month changes. Caller holds mu.
func (t *Tracker) rollover() {
	now := t.now().UTC()
	if d := startOfDay(now); d.After(t.day) {
		t.dailyUsed = 0
		t.day = d
	}
	if m := startOfMonth(now); m.After(t.month) {
		t.monthlyUsed = 0
		t.month = m
	}
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	return max(limit-used, 0)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

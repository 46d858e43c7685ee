package chi

import (
	"context"

	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/enhancement"
	"github.com/kailas-cloud/mailsense/internal/usecase/health"
	"github.com/kailas-cloud/mailsense/internal/usecase/intelligent"
	"github.com/kailas-cloud/mailsense/internal/usecase/usage"
)

// Querier analyses and answers mail queries.
type Querier interface {
	Analyze(query string) enhancement.Enhancement
	Run(ctx context.Context, req intelligent.Request) (*mail.Response, error)
}

// Indexer manages indexed messages.
type Indexer interface {
	Upsert(ctx context.Context, msgs []mail.Message) []mail.UpsertResult
	Get(ctx context.Context, id string) (mail.Message, error)
	Delete(ctx context.Context, id string) error
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) health.Report
}

// UsageReporter reports embedding token usage.
type UsageReporter interface {
	Report(period usage.Period) (usage.Report, error)
}

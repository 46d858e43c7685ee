package intelligent

import (
	"context"

	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/enhancement"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
)

// Fetcher retrieves candidate citations for a query.
type Fetcher interface {
	Fetch(ctx context.Context, query string, topK int, filters filter.Metadata) (*mail.Response, error)
}

// Analyzer interprets a raw query.
type Analyzer interface {
	Analyze(query string) enhancement.Enhancement
}

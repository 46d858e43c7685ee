// Package analysis turns a free-text mail query into a structured enhancement:
// intent, entities, metadata filters, an augmented query and a result count.
package analysis

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailsense/internal/domain/query/enhancement"
	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
	"github.com/kailas-cloud/mailsense/internal/metrics"
)

// Engine analyses queries. It is stateless apart from its clock and safe for concurrent use.
type Engine struct {
	timeframes *TimeframeResolver
	filters    *FilterBuilder
	logger     *zap.Logger
}

type options struct {
	now    func() time.Time
	loc    *time.Location
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithClock pins the evaluation instant used for timeframe resolution.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the timezone in which date bounds are computed.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates an analysis engine.
func New(opts ...Option) *Engine {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	tf := NewTimeframeResolver(o.now, o.loc)
	return &Engine{
		timeframes: tf,
		filters:    NewFilterBuilder(tf),
		logger:     o.logger,
	}
}

// Analyze interprets query. Blank input yields the fallback enhancement.
func (e *Engine) Analyze(query string) enhancement.Enhancement {
	start := time.Now()
	defer func() {
		metrics.QueryAnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		metrics.QueryIntentTotal.WithLabelValues(intent.General.String()).Inc()
		return enhancement.Fallback(query)
	}

	in, confidence := Classify(trimmed)
	entities := ExtractEntities(trimmed)
	filters := e.filters.Build(trimmed, entities, in)
	enhanced := EnhanceQuery(trimmed, in, entities)

	var timeframe string
	if in == intent.SearchTimeframe {
		if tf, ok := e.timeframes.Resolve(trimmed); ok {
			timeframe = tf.Description
		}
	}
	contextNote := ExpandContext(trimmed, in, timeframe)

	metrics.QueryIntentTotal.WithLabelValues(in.String()).Inc()
	e.logger.Debug("Query analysed",
		zap.String("intent", in.String()),
		zap.Float64("confidence", confidence),
		zap.Int("entity_types", len(entities.Entries())),
		zap.Bool("filtered", !filters.IsEmpty()),
	)

	return enhancement.New(
		trimmed, enhanced,
		in, confidence,
		entities, filters,
		in.SuggestedTopK(), contextNote,
	)
}

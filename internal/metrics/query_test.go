package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestQueryIntentTotal_CountsPerIntent(t *testing.T) {
	c := QueryIntentTotal.WithLabelValues("search_sender")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}

func TestRegisterQueryMetrics_Idempotent(t *testing.T) {
	RegisterQueryMetrics()
	RegisterQueryMetrics()
	if !queryMetricsRegistered {
		t.Error("expected metrics to be registered")
	}
}

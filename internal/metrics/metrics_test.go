package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/davidbz/llmcost/internal/domain"
)

func testCollector() *Collector {
	return NewCollector(&Config{Namespace: "test"}, prometheus.NewRegistry())
}

func TestCollector_NewCollector(t *testing.T) {
	collector := NewCollector(nil, nil)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.Registry() == nil {
		t.Fatal("Expected a registry to be created")
	}
}

func TestCollector_RecordPricingLookup(t *testing.T) {
	collector := testCollector()

	collector.RecordPricingLookup(domain.PricingSourceFresh)
	collector.RecordPricingLookup(domain.PricingSourceCached)
	collector.RecordPricingLookup(domain.PricingSourceCached)
	collector.RecordPricingLookup(domain.PricingSourceFallback)

	if got := testutil.ToFloat64(collector.pricingLookups.WithLabelValues("cached")); got != 2 {
		t.Errorf("cached lookups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.pricingLookups.WithLabelValues("fallback")); got != 1 {
		t.Errorf("fallback lookups = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.pricingLookups.WithLabelValues("offline")); got != 0 {
		t.Errorf("offline lookups = %v, want 0", got)
	}
}

func TestCollector_RecordTokenizerLoad(t *testing.T) {
	collector := testCollector()

	collector.RecordTokenizerLoad("cl100k_base", 20*time.Millisecond, nil)
	collector.RecordTokenizerLoad("cl100k_base", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(collector.tokenizerLoads.WithLabelValues("cl100k_base", "success")); got != 1 {
		t.Errorf("successful loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.tokenizerLoads.WithLabelValues("cl100k_base", "error")); got != 1 {
		t.Errorf("failed loads = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.tokenizerLoadTime); got != 1 {
		t.Errorf("load duration series = %d, want 1", got)
	}
}

func TestCollector_RecordEstimate(t *testing.T) {
	collector := testCollector()

	collector.RecordEstimate(nil)
	collector.RecordEstimate(&domain.Estimate{
		Model:         "gpt-3.5-turbo",
		InputTokens:   3,
		OutputTokens:  3,
		Cost:          0.0000105,
		PricingSource: domain.PricingSourceOffline,
	})
	collector.RecordPricingFetch(time.Second, nil)

	if got := testutil.ToFloat64(collector.estimates.WithLabelValues("offline")); got != 1 {
		t.Errorf("estimates = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.estimateTokens); got != 2 {
		t.Errorf("token series = %d, want 2", got)
	}
	if got := testutil.CollectAndCount(collector.pricingFetchDuration); got != 1 {
		t.Errorf("fetch duration series = %d, want 1", got)
	}
}

// Package metrics records Prometheus metrics for pricing lookups, tokenizer loads and estimates.
//
// Metrics:
//   - <ns>_pricing_lookups_total{source}: pricing resolutions by source (fresh, cached, fallback, offline)
//   - <ns>_pricing_fetch_duration_seconds{result}: remote pricing fetch latency
//   - <ns>_tokenizer_loads_total{encoding,result}: encoding loads
//   - <ns>_tokenizer_load_duration_seconds{encoding}: encoding load latency
//   - <ns>_estimates_total{pricing_source}: completed estimates
//   - <ns>_estimate_tokens{direction}: token counts per estimate
//   - <ns>_estimate_cost_usd: estimated cost per call
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/davidbz/llmcost/internal/domain"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Config contains metrics settings.
type Config struct {
	Namespace string `env:"METRICS_NAMESPACE" envDefault:"llmcost"`
}

// Collector owns every metric of the service.
type Collector struct {
	registry *prometheus.Registry

	pricingLookups       *prometheus.CounterVec
	pricingFetchDuration *prometheus.HistogramVec
	tokenizerLoads       *prometheus.CounterVec
	tokenizerLoadTime    *prometheus.HistogramVec
	estimates            *prometheus.CounterVec
	estimateTokens       *prometheus.HistogramVec
	estimateCost         prometheus.Histogram
}

// NewCollector creates and registers all metrics. A nil registry gets a fresh one.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	namespace := "llmcost"
	if cfg != nil && cfg.Namespace != "" {
		namespace = cfg.Namespace
	}

	c := &Collector{
		registry: registry,

		pricingLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pricing_lookups_total",
				Help:      "Pricing resolutions by source",
			},
			[]string{"source"},
		),

		pricingFetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pricing_fetch_duration_seconds",
				Help:      "Remote pricing fetch latency",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"result"},
		),

		tokenizerLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokenizer_loads_total",
				Help:      "Tokenizer encoding loads by encoding and result",
			},
			[]string{"encoding", "result"},
		),

		tokenizerLoadTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tokenizer_load_duration_seconds",
				Help:      "Tokenizer encoding load latency",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"encoding"},
		),

		estimates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimates_total",
				Help:      "Completed cost estimates by pricing source",
			},
			[]string{"pricing_source"},
		),

		estimateTokens: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "estimate_tokens",
				Help:      "Tokens counted per estimate",
				Buckets:   []float64{10, 100, 500, 1000, 5000, 10000, 50000, 100000},
			},
			[]string{"direction"},
		),

		estimateCost: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "estimate_cost_usd",
				Help:      "Estimated cost per call in USD",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
			},
		),
	}

	registry.MustRegister(
		c.pricingLookups,
		c.pricingFetchDuration,
		c.tokenizerLoads,
		c.tokenizerLoadTime,
		c.estimates,
		c.estimateTokens,
		c.estimateCost,
	)

	return c
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordPricingLookup counts a pricing resolution.
func (c *Collector) RecordPricingLookup(source domain.PricingSource) {
	c.pricingLookups.WithLabelValues(string(source)).Inc()
}

// RecordPricingFetch observes a remote pricing fetch.
func (c *Collector) RecordPricingFetch(duration time.Duration, err error) {
	c.pricingFetchDuration.WithLabelValues(result(err)).Observe(duration.Seconds())
}

// RecordTokenizerLoad counts an encoding load.
func (c *Collector) RecordTokenizerLoad(encoding string, duration time.Duration, err error) {
	c.tokenizerLoads.WithLabelValues(encoding, result(err)).Inc()
	if err == nil {
		c.tokenizerLoadTime.WithLabelValues(encoding).Observe(duration.Seconds())
	}
}

// RecordEstimate observes a completed estimate.
func (c *Collector) RecordEstimate(estimate *domain.Estimate) {
	if estimate == nil {
		return
	}

	c.estimates.WithLabelValues(string(estimate.PricingSource)).Inc()
	c.estimateTokens.WithLabelValues("input").Observe(float64(estimate.InputTokens))
	c.estimateTokens.WithLabelValues("output").Observe(float64(estimate.OutputTokens))
	c.estimateCost.Observe(estimate.Cost)
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

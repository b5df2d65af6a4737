// Package pricing resolves model pricing from a TTL-cached remote list with a bundled fallback.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/observability"
)

const (
	// DefaultCacheTTL is how long a fetched pricing table is served without refetching.
	DefaultCacheTTL = time.Hour

	fetchKey = "pricing"
)

// Config contains pricing cache settings.
type Config struct {
	TimeoutMs int           `env:"PRICING_TIMEOUT_MS" envDefault:"5000"`
	CacheTTL  time.Duration `env:"PRICING_CACHE_TTL"  envDefault:"1h"`
}

// Recorder observes pricing lookups and remote fetches.
type Recorder interface {
	RecordPricingLookup(source domain.PricingSource)
	RecordPricingFetch(duration time.Duration, err error)
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// Provider implements domain.PricingProvider.
type Provider struct {
	fetcher        domain.PricingFetcher
	store          domain.PricingStore
	fallback       domain.PricingTable
	recorder       Recorder
	ttl            time.Duration
	defaultTimeout time.Duration
	now            func() time.Time

	mu        sync.Mutex
	group     *singleflight.Group
	seq       uint64 // last fetch started
	committed uint64 // fetches up to here may no longer be stored
}

// NewProvider creates a pricing provider (DI constructor).
func NewProvider(
	fetcher domain.PricingFetcher,
	store domain.PricingStore,
	fallback domain.PricingTable,
	recorder Recorder,
	cfg *Config,
	opts ...Option,
) *Provider {
	p := &Provider{
		fetcher:        fetcher,
		store:          store,
		fallback:       fallback,
		recorder:       recorder,
		ttl:            DefaultCacheTTL,
		defaultTimeout: domain.DefaultTimeoutMs * time.Millisecond,
		now:            time.Now,
		group:          new(singleflight.Group),
	}

	if cfg != nil {
		if cfg.CacheTTL > 0 {
			p.ttl = cfg.CacheTTL
		}
		if cfg.TimeoutMs > 0 {
			p.defaultTimeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
		}
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// GetPricing resolves the pricing table:
//  1. offline requests get the fallback table without touching the cache or network;
//  2. a snapshot younger than the TTL is served as is;
//  3. otherwise the remote list is fetched within the request timeout, cached and returned;
//     any fetch failure is logged and answered with the fallback table, leaving the cache alone.
func (p *Provider) GetPricing(ctx context.Context, opts domain.FetchOptions) domain.PricingResult {
	if opts.Offline {
		return p.fallbackResult(domain.PricingSourceOffline)
	}

	if snapshot := p.validSnapshot(ctx); snapshot != nil {
		p.record(domain.PricingSourceCached)
		return domain.PricingResult{
			Table:     snapshot.Data,
			Source:    domain.PricingSourceCached,
			FetchedAt: snapshot.FetchedAt,
		}
	}

	timeout := p.defaultTimeout
	if opts.TimeoutMs > 0 {
		timeout = opts.Timeout()
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The shared fetch is detached from this caller so one caller leaving
	// does not abort it for the others; each caller still stops waiting at
	// its own deadline.
	fetchCtx := context.WithoutCancel(ctx)

	p.mu.Lock()
	group := p.group
	p.mu.Unlock()

	results := group.DoChan(fetchKey, func() (any, error) {
		return p.fetch(fetchCtx, timeout)
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return p.degrade(ctx, res.Err)
		}

		snapshot, ok := res.Val.(*domain.PricingSnapshot)
		if !ok {
			return p.degrade(ctx, errors.New("unexpected fetch result"))
		}

		p.record(domain.PricingSourceFresh)
		return domain.PricingResult{
			Table:     snapshot.Data,
			Source:    domain.PricingSourceFresh,
			FetchedAt: snapshot.FetchedAt,
		}
	case <-waitCtx.Done():
		return p.degrade(ctx, &domain.PricingFetchError{
			URL: p.fetcher.Endpoint(),
			Err: fmt.Errorf("gave up waiting after %s: %w", timeout, waitCtx.Err()),
		})
	}
}

// Invalidate drops the cached snapshot so the next lookup refetches.
// Fetches already in flight still answer their callers but are not stored.
func (p *Provider) Invalidate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.committed = p.seq
	p.group = new(singleflight.Group)

	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear pricing cache: %w", err)
	}
	return nil
}

// Fallback returns the bundled pricing table.
func (p *Provider) Fallback() domain.PricingTable {
	return p.fallback
}

func (p *Provider) fetch(ctx context.Context, timeout time.Duration) (*domain.PricingSnapshot, error) {
	seq := p.nextSeq()

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := p.now()
	table, err := p.fetcher.Fetch(fetchCtx)
	duration := p.now().Sub(start)

	if p.recorder != nil {
		p.recorder.RecordPricingFetch(duration, err)
	}

	if err != nil {
		return nil, err
	}

	snapshot := &domain.PricingSnapshot{
		FetchedAt: p.now(),
		Data:      table,
	}

	p.commit(ctx, seq, snapshot)

	observability.FromContext(ctx).Info("pricing fetched",
		observability.String("endpoint", p.fetcher.Endpoint()),
		observability.Int("models", len(table)),
		observability.Duration("duration", duration))

	return snapshot, nil
}

func (p *Provider) nextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	return p.seq
}

// commit stores the snapshot unless a later fetch has already been stored
// or the cache was invalidated after this fetch started.
func (p *Provider) commit(ctx context.Context, seq uint64, snapshot *domain.PricingSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger := observability.FromContext(ctx)

	if seq <= p.committed {
		logger.Debug("discarding stale pricing snapshot",
			observability.Int64("seq", int64(seq)),
			observability.Int64("committed", int64(p.committed)))
		return
	}

	if err := p.store.Save(ctx, snapshot); err != nil {
		logger.Warn("failed to store pricing snapshot", observability.Error(err))
		return
	}

	p.committed = seq
}

func (p *Provider) validSnapshot(ctx context.Context) *domain.PricingSnapshot {
	snapshot, err := p.store.Load(ctx)
	if err != nil {
		observability.FromContext(ctx).Warn("failed to read pricing cache, treating as miss",
			observability.Error(err))
		return nil
	}

	if !snapshot.Valid(p.now(), p.ttl) {
		return nil
	}

	return snapshot
}

func (p *Provider) degrade(ctx context.Context, err error) domain.PricingResult {
	var fetchErr *domain.PricingFetchError
	if !errors.As(err, &fetchErr) {
		err = &domain.PricingFetchError{URL: p.fetcher.Endpoint(), Err: err}
	}

	observability.FromContext(ctx).Warn("pricing fetch failed, using fallback pricing",
		observability.Error(err))

	return p.fallbackResult(domain.PricingSourceFallback)
}

func (p *Provider) fallbackResult(source domain.PricingSource) domain.PricingResult {
	p.record(source)
	return domain.PricingResult{
		Table:  p.fallback,
		Source: source,
	}
}

func (p *Provider) record(source domain.PricingSource) {
	if p.recorder != nil {
		p.recorder.RecordPricingLookup(source)
	}
}

package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmcost/internal/domain"
)

func TestProvider_CommitDiscardsStaleSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewProvider(nil, store, domain.PricingTable{}, nil, nil)

	older := p.nextSeq()
	newer := p.nextSeq()

	newest := &domain.PricingSnapshot{
		FetchedAt: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		Data:      domain.PricingTable{"new": domain.NewModelPricing(2, 2)},
	}
	stale := &domain.PricingSnapshot{
		FetchedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Data:      domain.PricingTable{"old": domain.NewModelPricing(1, 1)},
	}

	p.commit(ctx, newer, newest)
	p.commit(ctx, older, stale)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.Same(t, newest, stored)

	// A duplicate commit of the same fetch is discarded as well.
	p.commit(ctx, newer, stale)
	stored, err = store.Load(ctx)
	require.NoError(t, err)
	require.Same(t, newest, stored)
}

func TestProvider_InvalidateDiscardsEarlierFetches(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewProvider(nil, store, domain.PricingTable{}, nil, nil)

	started := p.nextSeq()
	require.NoError(t, p.Invalidate(ctx))

	p.commit(ctx, started, &domain.PricingSnapshot{
		FetchedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Data:      domain.PricingTable{"old": domain.NewModelPricing(1, 1)},
	})

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, stored)

	// A fetch started after the invalidation is stored.
	fresh := &domain.PricingSnapshot{
		FetchedAt: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		Data:      domain.PricingTable{"new": domain.NewModelPricing(2, 2)},
	}
	p.commit(ctx, p.nextSeq(), fresh)

	stored, err = store.Load(ctx)
	require.NoError(t, err)
	require.Same(t, fresh, stored)
}

package domain

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"
)

// PricingSnapshot is a fetched pricing table and the time it was fetched.
type PricingSnapshot struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Data      PricingTable `json:"data"`
}

// Valid reports whether the snapshot is younger than ttl at now.
func (s *PricingSnapshot) Valid(now time.Time, ttl time.Duration) bool {
	return s != nil && now.Sub(s.FetchedAt) < ttl
}

// PricingStore holds at most one pricing snapshot.
type PricingStore interface {
	// Load returns the stored snapshot, or nil when there is none.
	Load(ctx context.Context) (*PricingSnapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snapshot *PricingSnapshot) error

	// Clear removes the stored snapshot.
	Clear(ctx context.Context) error
}

// PricingFetcher retrieves the live pricing table.
type PricingFetcher interface {
	// Fetch returns the remote pricing table. Errors are *PricingFetchError.
	Fetch(ctx context.Context) (PricingTable, error)

	// Endpoint returns the URL being fetched, for diagnostics.
	Endpoint() string
}

// Lookup returns the pricing stored under exactly model.
func (t PricingTable) Lookup(model string) (ModelPricing, bool) {
	pricing, ok := t[model]
	return pricing, ok
}

// ResolveModelID maps a model name onto an id present in the table: a
// case-insensitive match, or for names without a vendor part the single
// "<vendor>/<model>" id ending in it. Ambiguous and missing names resolve to "".
func (t PricingTable) ResolveModelID(model string) string {
	if model == "" {
		return ""
	}
	if _, ok := t[model]; ok {
		return model
	}

	ids := t.Models()

	for _, id := range ids {
		if strings.EqualFold(id, model) {
			return id
		}
	}

	if strings.Contains(model, "/") {
		return ""
	}

	var match string
	for _, id := range ids {
		idx := strings.LastIndex(id, "/")
		if idx < 0 || !strings.EqualFold(id[idx+1:], model) {
			continue
		}
		if match != "" {
			return ""
		}
		match = id
	}

	return match
}

// Clone returns a shallow copy of the table. ModelPricing values are never
// mutated so sharing their rate pointers is safe.
func (t PricingTable) Clone() PricingTable {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}

// Models returns the model ids in sorted order.
func (t PricingTable) Models() []string {
	return slices.Sorted(maps.Keys(t))
}

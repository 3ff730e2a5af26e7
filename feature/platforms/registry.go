package platforms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ticket-reconciler/core/reconcile"

	"go.uber.org/zap"
)

// ErrUnsupportedPlatform is returned for links to a platform without a fetcher.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Fetcher lists the normalized orders of one external event.
type Fetcher interface {
	FetchOrders(ctx context.Context, externalEventID string) ([]reconcile.PlatformSale, error)
}

// Registry dispatches platform links to the matching Fetcher.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// NewDefaultRegistry registers the Humanitix and Eventbrite clients.
func NewDefaultRegistry(cfg Config, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := NewRegistry()
	r.Register(reconcile.PlatformHumanitix, NewHumanitix(cfg, logger))
	r.Register(reconcile.PlatformEventbrite, NewEventbrite(cfg, logger))
	return r
}

// Register binds a fetcher to a platform name, replacing any previous one.
func (r *Registry) Register(platform string, f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[platform] = f
}

// Platforms returns the registered platform names in sorted order.
func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchPlatformSales implements reconcile.PlatformFetcher.
func (r *Registry) FetchPlatformSales(ctx context.Context, link reconcile.PlatformLink) ([]reconcile.PlatformSale, error) {
	r.mu.RLock()
	f, ok := r.fetchers[link.Platform]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, link.Platform)
	}
	if link.ExternalEventID == "" {
		return nil, fmt.Errorf("event %s has no external id on %s", link.EventID, link.Platform)
	}
	return f.FetchOrders(ctx, link.ExternalEventID)
}

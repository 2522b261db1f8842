package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pkordes/haul-slips/internal/cache"
	"github.com/pkordes/haul-slips/internal/domain"
	"github.com/pkordes/haul-slips/internal/metrics"
	"github.com/pkordes/haul-slips/internal/upstream"
)

// LookupClient fetches reference data from the upstream time-tracking service.
// *upstream.Client is the production implementation.
type LookupClient interface {
	Clients(ctx context.Context) ([]domain.LookupItem, error)
	Projects(ctx context.Context, clientID string) ([]domain.LookupItem, error)
}

// LookupService serves client and project lists through a TTL cache in front
// of the upstream service.
type LookupService struct {
	client  LookupClient
	store   cache.Store
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics

	// flights coalesces concurrent misses on the same key into one upstream call.
	flights singleflight.Group
}

// NewLookupService constructs a LookupService. ttl applies to every entry it stores.
func NewLookupService(client LookupClient, store cache.Store, ttl time.Duration, log *slog.Logger, m *metrics.Metrics) *LookupService {
	return &LookupService{client: client, store: store, ttl: ttl, log: log, metrics: m}
}

// Clients returns the visible upstream clients sorted by name.
func (s *LookupService) Clients(ctx context.Context) ([]domain.LookupItem, error) {
	items, err := s.lookup(ctx, upstream.ResourceClients, cache.ClientsKey, s.client.Clients)
	if err != nil {
		return nil, fmt.Errorf("service.LookupService.Clients: %w", err)
	}
	return items, nil
}

// Projects returns the visible upstream projects of clientID sorted by name.
// An empty clientID is a validation error and never reaches the upstream.
func (s *LookupService) Projects(ctx context.Context, clientID string) ([]domain.LookupItem, error) {
	if clientID == "" {
		return nil, fmt.Errorf("service.LookupService.Projects: %w: clientId is required", domain.ErrValidation)
	}

	fetch := func(ctx context.Context) ([]domain.LookupItem, error) {
		return s.client.Projects(ctx, clientID)
	}
	items, err := s.lookup(ctx, upstream.ResourceProjects, cache.ProjectsKey(clientID), fetch)
	if err != nil {
		return nil, fmt.Errorf("service.LookupService.Projects: %w", err)
	}
	return items, nil
}

// lookup checks the cache, and on a miss calls fetch and stores its result.
// A failed fetch leaves the cache untouched.
func (s *LookupService) lookup(
	ctx context.Context,
	resource, key string,
	fetch func(context.Context) ([]domain.LookupItem, error),
) ([]domain.LookupItem, error) {
	items, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.WarnContext(ctx, "lookup cache read failed", "key", key, "error", err)
	}
	if ok {
		s.metrics.CacheLookups.WithLabelValues(resource, "hit").Inc()
		return items, nil
	}
	s.metrics.CacheLookups.WithLabelValues(resource, "miss").Inc()

	v, err, _ := s.flights.Do(key, func() (any, error) {
		start := time.Now()
		items, err := fetch(ctx)
		s.metrics.UpstreamDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
		s.metrics.UpstreamRequests.WithLabelValues(resource, outcome(err)).Inc()
		if err != nil {
			if !errors.Is(err, domain.ErrNotConfigured) {
				s.log.ErrorContext(ctx, "upstream lookup failed", "resource", resource, "error", err)
			}
			return nil, err
		}

		if err := s.store.Put(context.WithoutCancel(ctx), key, items, s.ttl); err != nil {
			s.log.WarnContext(ctx, "lookup cache write failed", "key", key, "error", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]domain.LookupItem)), nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotConfigured):
		return "not_configured"
	default:
		return "error"
	}
}

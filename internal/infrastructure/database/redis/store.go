package redis

import (
	"context"
	"time"

	"github.com/openintel/casegraph/internal/domain/casefile"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/prometheus"
	"github.com/openintel/casegraph/pkg/errors"
)

// cachingStore wraps a casefile.Store with read-through caching of entity,
// tag, and suspect lookups. Spatial queries, aggregations, and listings
// always go to the database; caching stale candidate sets would skew scoring.
type cachingStore struct {
	casefile.Store
	cache   Cache
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	ttl     time.Duration
}

// NewCachingStore decorates inner with the cache. metrics may be nil.
func NewCachingStore(inner casefile.Store, cache Cache, log logging.Logger, metrics *prometheus.AppMetrics, ttl time.Duration) casefile.Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachingStore{
		Store:   inner,
		cache:   cache,
		logger:  log.Named("cached-store"),
		metrics: metrics,
		ttl:     ttl,
	}
}

func (s *cachingStore) recordAccess(name string, hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheAccess(name, hit)
	}
}

// readThrough tries the cache, falls back to the loader, and writes the
// loaded value back. Cache failures degrade to a plain load; NotFound
// errors from the loader are never cached.
func readThrough[T any](ctx context.Context, s *cachingStore, name, key string, load func(context.Context) (*T, error)) (*T, error) {
	var cached T
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		s.recordAccess(name, true)
		return &cached, nil
	}
	if err != ErrCacheMiss {
		s.logger.Warn("cache read failed", logging.String("key", key), logging.Err(err))
	}
	s.recordAccess(name, false)

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
	}
	return value, nil
}

func (s *cachingStore) GetCaseByID(ctx context.Context, id string) (*casefile.Case, error) {
	return readThrough(ctx, s, "case", "case:"+id, func(ctx context.Context) (*casefile.Case, error) {
		return s.Store.GetCaseByID(ctx, id)
	})
}

func (s *cachingStore) GetIncidentByID(ctx context.Context, id string) (*casefile.Incident, error) {
	return readThrough(ctx, s, "incident", "incident:"+id, func(ctx context.Context) (*casefile.Incident, error) {
		return s.Store.GetIncidentByID(ctx, id)
	})
}

func (s *cachingStore) GetPersonByID(ctx context.Context, id string) (*casefile.Person, error) {
	return readThrough(ctx, s, "person", "person:"+id, func(ctx context.Context) (*casefile.Person, error) {
		return s.Store.GetPersonByID(ctx, id)
	})
}

func (s *cachingStore) GetTagsForIncident(ctx context.Context, incidentID string) ([]string, error) {
	key := "incident-tags:" + incidentID
	var cached []string
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		s.recordAccess("incident_tags", true)
		return cached, nil
	}
	if err != ErrCacheMiss {
		s.logger.Warn("cache read failed", logging.String("key", key), logging.Err(err))
	}
	s.recordAccess("incident_tags", false)

	tags, err := s.Store.GetTagsForIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	if err := s.cache.Set(ctx, key, tags, s.ttl); err != nil {
		s.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
	}
	return tags, nil
}

func (s *cachingStore) GetSuspectsForCase(ctx context.Context, caseID string) ([]casefile.Person, error) {
	key := "case-suspects:" + caseID
	var cached []casefile.Person
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		s.recordAccess("case_suspects", true)
		return cached, nil
	}
	if err != ErrCacheMiss {
		s.logger.Warn("cache read failed", logging.String("key", key), logging.Err(err))
	}
	s.recordAccess("case_suspects", false)

	suspects, err := s.Store.GetSuspectsForCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if suspects == nil {
		suspects = []casefile.Person{}
	}
	if err := s.cache.Set(ctx, key, suspects, s.ttl); err != nil {
		s.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
	}
	return suspects, nil
}

// Invalidate drops the cached entries for the given entity keys. Intended
// for callers that know upstream data changed.
func (s *cachingStore) Invalidate(ctx context.Context, keys ...string) error {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache invalidation failed")
	}
	return nil
}

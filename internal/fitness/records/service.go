package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/2beens/fittracker/internal/telemetry/metrics"
	"github.com/2beens/fittracker/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const megabyte = 1024 * 1024

// Service sits in front of a Store: it validates input, keeps a short lived
// in-memory cache of entry lists and counts writes. The metrics manager is optional.
type Service struct {
	store           Store
	cache           *freecache.Cache
	cacheTTLSeconds int
	metrics         *metrics.Manager

	// generation per list cache key, bumped on every write. A list read from
	// the store is only cached if no write happened while it was in flight.
	genMu       sync.Mutex
	generations map[string]uint64
}

func NewService(store Store, cacheSizeMB, cacheTTLSeconds int, metricsManager *metrics.Manager) *Service {
	if cacheSizeMB <= 0 {
		cacheSizeMB = 1
	}
	return &Service{
		store:           store,
		cache:           freecache.NewCache(cacheSizeMB * megabyte),
		cacheTTLSeconds: cacheTTLSeconds,
		metrics:         metricsManager,
		generations:     make(map[string]uint64),
	}
}

func (s *Service) generation(cacheKey []byte) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[string(cacheKey)]
}

func (s *Service) invalidate(cacheKey []byte) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[string(cacheKey)]++
	s.cache.Del(cacheKey)
}

// cacheList stores the list unless a write bumped the key past gen meanwhile.
func (s *Service) cacheList(cacheKey []byte, gen uint64, records []Record) {
	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("marshal entries for cache [%s]: %s", cacheKey, err)
		return
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[string(cacheKey)] != gen {
		log.Tracef("entries changed while listing [%s], not caching", cacheKey)
		return
	}
	if err := s.cache.Set(cacheKey, recordsJson, s.cacheTTLSeconds); err != nil {
		log.Errorf("set cached entries [%s]: %s", cacheKey, err)
	}
}

func listCacheKey(userID string, modality Modality) []byte {
	return []byte(fmt.Sprintf("entries::%s::%s", userID, modality))
}

func (s *Service) List(ctx context.Context, userID string, modality Modality) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !modality.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModality, modality)
	}

	cacheKey := listCacheKey(userID, modality)
	if cached, err := s.cache.Get(cacheKey); err == nil {
		var records []Record
		if err := json.Unmarshal(cached, &records); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			if s.metrics != nil {
				s.metrics.CounterRecordsCacheHits.Inc()
			}
			return records, nil
		} else {
			log.Errorf("unmarshal cached entries [%s]: %s", cacheKey, err)
		}
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Errorf("get cached entries [%s]: %s", cacheKey, err)
	}

	gen := s.generation(cacheKey)
	records, err := s.store.List(ctx, userID, modality)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	s.cacheList(cacheKey, gen, records)

	return records, nil
}

func (s *Service) Create(ctx context.Context, record Record) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.records.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := record.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, record)
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}

	modality := record.Modality()
	s.invalidate(listCacheKey(record.UserID, modality))
	if s.metrics != nil {
		s.metrics.CounterEntriesAdded.WithLabelValues(modality.String()).Inc()
	}

	return id, nil
}

func (s *Service) Delete(ctx context.Context, userID string, modality Modality, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.records.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !modality.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidModality, modality)
	}

	if err := s.store.Delete(ctx, userID, modality, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}

	s.invalidate(listCacheKey(userID, modality))
	if s.metrics != nil {
		s.metrics.CounterEntriesDeleted.WithLabelValues(modality.String()).Inc()
	}

	return nil
}

package records_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/telemetry/metrics"
)

// memStore is an in-memory records.Store that counts List calls.
type memStore struct {
	mu        sync.Mutex
	nextID    int
	entries   map[string]records.Record
	listCalls int
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[string]records.Record),
	}
}

func (s *memStore) List(_ context.Context, userID string, modality records.Modality) ([]records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	var list []records.Record
	for _, e := range s.entries {
		if e.UserID == userID && e.Modality() == modality {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

func (s *memStore) Create(_ context.Context, record records.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	record.ID = strconv.Itoa(s.nextID)
	s.entries[record.ID] = record
	return record.ID, nil
}

func (s *memStore) Delete(_ context.Context, userID string, modality records.Modality, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID || e.Modality() != modality {
		return records.ErrRecordNotFound
	}
	delete(s.entries, id)
	return nil
}

func TestService_ListIsCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	m := metrics.NewTestManager()
	service := records.NewService(store, 1, 60, m)

	now := time.Now().UTC().Truncate(time.Second)
	id1, err := service.Create(ctx, records.NewRepsRecord("u1", 10, 5, now.Add(-time.Hour)))
	require.NoError(t, err)

	list, err := service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id1, list[0].ID)
	assert.Equal(t, 1, store.listCalls)

	// second read served from cache
	list, err = service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRecordsCacheHits))

	// create invalidates
	id2, err := service.Create(ctx, records.NewRepsRecord("u1", 30, 25, now))
	require.NoError(t, err)
	list, err = service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id2, list[0].ID)
	assert.Equal(t, 2, store.listCalls)

	// delete invalidates
	require.NoError(t, service.Delete(ctx, "u1", records.ModalityCount, id2))
	list, err = service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id1, list[0].ID)
	assert.Equal(t, 3, store.listCalls)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterEntriesAdded.WithLabelValues("count")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterEntriesDeleted.WithLabelValues("count")))
}

func TestService_ModalitiesDoNotMix(t *testing.T) {
	ctx := context.Background()
	service := records.NewService(newMemStore(), 1, 60, metrics.NewTestManager())

	now := time.Now()
	_, err := service.Create(ctx, records.NewRepsRecord("u1", 10, 5, now))
	require.NoError(t, err)
	_, err = service.Create(ctx, records.NewTimesRecord("u1", 90, 60, now))
	require.NoError(t, err)

	counts, err := service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, records.ModalityCount, counts[0].Modality())

	timed, err := service.List(ctx, "u1", records.ModalityTimed)
	require.NoError(t, err)
	require.Len(t, timed, 1)
	assert.Equal(t, records.Times{SitupTime: 90, PushupTime: 60}, timed[0].Entry)
}

func TestService_DeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	service := records.NewService(newMemStore(), 1, 60, metrics.NewTestManager())

	now := time.Now()
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := service.Create(ctx, records.NewRepsRecord("u1", i, i, now.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, service.Delete(ctx, "u1", records.ModalityCount, ids[1]))

	list, err := service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, r := range list {
		assert.NotEqual(t, ids[1], r.ID)
	}

	err = service.Delete(ctx, "u1", records.ModalityCount, ids[1])
	assert.True(t, errors.Is(err, records.ErrRecordNotFound))
}

func TestService_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := records.NewService(store, 1, 60, metrics.NewTestManager())

	_, err := service.Create(ctx, records.NewRepsRecord("u1", -3, 5, time.Now()))
	assert.ErrorIs(t, err, records.ErrInvalidRecord)
	assert.Empty(t, store.entries)

	_, err = service.List(ctx, "u1", records.Modality("weighted"))
	assert.ErrorIs(t, err, records.ErrInvalidModality)
	assert.Equal(t, 0, store.listCalls)

	err = service.Delete(ctx, "u1", records.Modality("weighted"), "1")
	assert.ErrorIs(t, err, records.ErrInvalidModality)
}

// gatedStore takes its list snapshot, then blocks until released.
type gatedStore struct {
	*memStore
	listed  chan struct{}
	release chan struct{}
}

func (s *gatedStore) List(ctx context.Context, userID string, modality records.Modality) ([]records.Record, error) {
	list, err := s.memStore.List(ctx, userID, modality)
	if s.listed != nil {
		close(s.listed)
		<-s.release
		s.listed = nil
	}
	return list, err
}

func TestService_ListInFlightDuringWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		memStore: newMemStore(),
		listed:   make(chan struct{}),
		release:  make(chan struct{}),
	}
	listed := store.listed
	service := records.NewService(store, 1, 60, metrics.NewTestManager())

	slowListDone := make(chan []records.Record)
	go func() {
		list, err := service.List(ctx, "u1", records.ModalityCount)
		assert.NoError(t, err)
		slowListDone <- list
	}()

	<-listed
	id, err := service.Create(ctx, records.NewRepsRecord("u1", 30, 25, time.Now()))
	require.NoError(t, err)
	close(store.release)

	// the slow reader still sees its old snapshot
	assert.Empty(t, <-slowListDone)

	list, err := service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestService_WithoutMetrics(t *testing.T) {
	ctx := context.Background()
	service := records.NewService(newMemStore(), 1, 60, nil)

	id, err := service.Create(ctx, records.NewRepsRecord("u1", 1, 2, time.Now()))
	require.NoError(t, err)
	_, err = service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	_, err = service.List(ctx, "u1", records.ModalityCount)
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, "u1", records.ModalityCount, id))
}

package tracker_test

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/tracker"
	"github.com/2beens/fittracker/internal/fitness/users"
)

// fakeStore is an in-memory tracker.Store. A per-user gate, when set, blocks
// ListRecords for that user until the gate channel is closed.
type fakeStore struct {
	mu      sync.Mutex
	users   []users.User
	entries []records.Record
	nextID  int
	gates   map[string]chan struct{}
	started chan string
}

func newFakeStore(roster ...users.User) *fakeStore {
	return &fakeStore{
		users:   roster,
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
}

func (s *fakeStore) gate(userID string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := make(chan struct{})
	s.gates[userID] = g
	return g
}

func (s *fakeStore) ListUsers(context.Context) ([]users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]users.User(nil), s.users...), nil
}

func (s *fakeStore) ListRecords(ctx context.Context, userID string, modality records.Modality) ([]records.Record, error) {
	s.mu.Lock()
	g := s.gates[userID]
	var list []records.Record
	for _, e := range s.entries {
		if e.UserID == userID && e.Modality() == modality {
			list = append(list, e)
		}
	}
	s.mu.Unlock()

	select {
	case s.started <- userID:
	default:
	}
	if g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

func (s *fakeStore) CreateRecord(_ context.Context, record records.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	record.ID = strconv.Itoa(s.nextID)
	s.entries = append(s.entries, record)
	return record.ID, nil
}

func (s *fakeStore) DeleteRecord(_ context.Context, userID string, modality records.Modality, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id && e.UserID == userID && e.Modality() == modality {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return records.ErrRecordNotFound
}

type notificationsRecorder struct {
	mu            sync.Mutex
	notifications []tracker.Notification
}

func (r *notificationsRecorder) Notify(n tracker.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *notificationsRecorder) all() []tracker.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tracker.Notification(nil), r.notifications...)
}

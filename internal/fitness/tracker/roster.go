package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/users"

	log "github.com/sirupsen/logrus"
)

var ErrUnknownUser = errors.New("unknown user")

// selectionKey identifies the selection a fetch was issued for. The generation
// is bumped on every fetch, so only the latest issued fetch may apply its result.
type selectionKey struct {
	userID     string
	modality   records.Modality
	generation uint64
}

// Roster owns the user list, the selected user and modality, and the records
// displayed for that selection.
type Roster struct {
	store      Store
	prefsStore PreferencesStore
	notifier   Notifier

	mu         sync.Mutex
	prefs      Preferences
	users      []users.User
	loaded     bool
	selected   *users.User
	modality   records.Modality
	generation uint64
	records    []records.Record
}

func NewRoster(store Store, prefs Preferences, prefsStore PreferencesStore, notifier Notifier) *Roster {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Roster{
		store:      store,
		prefsStore: prefsStore,
		notifier:   notifier,
		prefs:      prefs,
		modality:   records.ModalityCount,
	}
}

// Load fetches the roster once and restores the preferred user. If the
// preferred user is not on the roster, NeedsSelection reports true.
func (r *Roster) Load(ctx context.Context) error {
	r.mu.Lock()
	loaded := r.loaded
	r.mu.Unlock()
	if loaded {
		return nil
	}
	return r.Reload(ctx)
}

// Reload fetches the roster again, keeping the selection if the user still exists.
func (r *Roster) Reload(ctx context.Context) error {
	roster, err := r.store.ListUsers(ctx)
	if err != nil {
		notifyError(r.notifier, "failed to load users", err)
		return fmt.Errorf("list users: %w", err)
	}

	r.mu.Lock()
	r.users = roster
	r.loaded = true

	wantID := r.prefs.UserID
	if r.selected != nil {
		wantID = r.selected.ID
	}
	r.selected = nil
	if u, ok := r.findUser(wantID); ok {
		r.selected = &u
	} else if wantID != "" {
		log.Debugf("preferred user [%s] not on the roster", wantID)
		r.records = nil
	}
	hasSelection := r.selected != nil
	r.mu.Unlock()

	if !hasSelection {
		return nil
	}
	return r.Refresh(ctx)
}

func (r *Roster) findUser(id string) (users.User, bool) {
	if id == "" {
		return users.User{}, false
	}
	for _, u := range r.users {
		if u.ID == id {
			return u, true
		}
	}
	return users.User{}, false
}

func (r *Roster) Users() []users.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]users.User(nil), r.users...)
}

// NeedsSelection is true once the roster is loaded and no user is selected.
func (r *Roster) NeedsSelection() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded && r.selected == nil
}

func (r *Roster) Selected() (users.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		return users.User{}, false
	}
	return *r.selected, true
}

func (r *Roster) Modality() records.Modality {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modality
}

// Records returns the records of the current selection, newest first.
func (r *Roster) Records() []records.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]records.Record(nil), r.records...)
}

// Select makes userID the active user, persists it and fetches its records.
func (r *Roster) Select(ctx context.Context, userID string) error {
	r.mu.Lock()
	u, ok := r.findUser(userID)
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	r.selected = &u
	r.records = nil
	r.prefs = Preferences{UserID: u.ID, UserName: u.Name}
	prefs := r.prefs
	r.mu.Unlock()

	if err := r.prefsStore.Save(prefs); err != nil {
		// the selection still holds for this session
		log.Errorf("save preferences: %s", err)
	}

	return r.Refresh(ctx)
}

// SetModality switches the active modality and re-fetches for the selected user.
func (r *Roster) SetModality(ctx context.Context, modality records.Modality) error {
	if !modality.IsValid() {
		return fmt.Errorf("%w: %q", records.ErrInvalidModality, modality)
	}

	r.mu.Lock()
	if r.modality == modality {
		r.mu.Unlock()
		return nil
	}
	r.modality = modality
	r.records = nil
	r.mu.Unlock()

	return r.Refresh(ctx)
}

// Refresh re-lists the records of the current selection. A result that arrives
// after the selection changed, or after a newer fetch was issued, is discarded.
func (r *Roster) Refresh(ctx context.Context) error {
	r.mu.Lock()
	if r.selected == nil {
		r.mu.Unlock()
		return nil
	}
	r.generation++
	key := selectionKey{
		userID:     r.selected.ID,
		modality:   r.modality,
		generation: r.generation,
	}
	r.mu.Unlock()

	recs, err := r.store.ListRecords(ctx, key.userID, key.modality)

	r.mu.Lock()
	stale := key != r.currentKey()
	if !stale && err == nil {
		r.records = recs
	}
	r.mu.Unlock()

	if stale {
		log.Debugf("discarding stale fetch for [%s] [%s]", key.userID, key.modality)
		return nil
	}
	if err != nil {
		notifyError(r.notifier, "failed to load entries", err)
		return fmt.Errorf("list entries: %w", err)
	}
	return nil
}

// currentKey must be called with mu held.
func (r *Roster) currentKey() selectionKey {
	if r.selected == nil {
		return selectionKey{}
	}
	return selectionKey{
		userID:     r.selected.ID,
		modality:   r.modality,
		generation: r.generation,
	}
}

// removeLocal drops a record from the displayed list without re-fetching.
func (r *Roster) removeLocal(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i:i], r.records[i+1:]...)
			return
		}
	}
}

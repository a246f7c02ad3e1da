package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fittracker/internal/fitness/records"
)

var (
	ErrNoUserSelected  = errors.New("no user selected")
	ErrNoPendingDelete = errors.New("no pending delete")
	ErrSubmitInFlight  = errors.New("submit already in progress")
)

const (
	MessageEntryAdded   = "entry added"
	MessageEntryDeleted = "entry deleted"
)

// ValidationError reports malformed or missing form input. It never reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type FormState int

const (
	FormEmpty FormState = iota
	FormEditing
	FormSubmitting
	FormSubmitted
	FormError
)

func (s FormState) String() string {
	switch s {
	case FormEmpty:
		return "empty"
	case FormEditing:
		return "editing"
	case FormSubmitting:
		return "submitting"
	case FormSubmitted:
		return "submitted"
	case FormError:
		return "error"
	default:
		return "unknown"
	}
}

// TimeInput is a minutes/seconds pair as typed by the user.
type TimeInput struct {
	Minutes string
	Seconds string
}

// EntryForm composes a record for the roster's selected user and modality.
// Submitted and Error are transient: a successful submit settles in Empty,
// a failed one back in Editing with the inputs kept.
type EntryForm struct {
	roster   *Roster
	store    Store
	notifier Notifier
	now      func() time.Time

	mu            sync.Mutex
	state         FormState
	onState       func(FormState)
	situps        string
	pushups       string
	situpTime     TimeInput
	pushupTime    TimeInput
	date          *time.Time
	pendingDelete string
}

func NewEntryForm(roster *Roster, store Store, notifier Notifier) *EntryForm {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &EntryForm{
		roster:   roster,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		state:    FormEmpty,
	}
}

// OnStateChange registers fn to be called on every state transition.
func (f *EntryForm) OnStateChange(fn func(FormState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onState = fn
}

func (f *EntryForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// setState must be called with mu held.
func (f *EntryForm) setState(s FormState) {
	f.state = s
	if f.onState != nil {
		f.onState(s)
	}
}

// edit applies fn to the inputs.
func (f *EntryForm) edit(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
	if f.state == FormEmpty {
		f.setState(FormEditing)
	}
}

func (f *EntryForm) SetSitups(v string) {
	f.edit(func() { f.situps = v })
}

func (f *EntryForm) SetPushups(v string) {
	f.edit(func() { f.pushups = v })
}

func (f *EntryForm) SetSitupTime(minutes, seconds string) {
	f.edit(func() { f.situpTime = TimeInput{Minutes: minutes, Seconds: seconds} })
}

func (f *EntryForm) SetPushupTime(minutes, seconds string) {
	f.edit(func() { f.pushupTime = TimeInput{Minutes: minutes, Seconds: seconds} })
}

// SetDate sets the entry date; without it the record is stamped at submit time.
func (f *EntryForm) SetDate(date time.Time) {
	f.edit(func() { f.date = &date })
}

func (f *EntryForm) Date() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.date == nil {
		return time.Time{}, false
	}
	return *f.date, true
}

func (f *EntryForm) clearInputs() {
	f.situps, f.pushups = "", ""
	f.situpTime, f.pushupTime = TimeInput{}, TimeInput{}
	f.date = nil
}

// Submit validates the inputs and creates exactly one record in the store.
func (f *EntryForm) Submit(ctx context.Context) error {
	user, ok := f.roster.Selected()
	if !ok {
		return ErrNoUserSelected
	}
	modality := f.roster.Modality()

	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	ts := f.now()
	if f.date != nil {
		ts = *f.date
	}
	record, err := f.compose(user.ID, modality, ts)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.setState(FormSubmitting)
	f.mu.Unlock()

	_, err = f.store.CreateRecord(ctx, record)

	f.mu.Lock()
	if err != nil {
		f.setState(FormError)
		f.setState(FormEditing)
		f.mu.Unlock()
		notifyError(f.notifier, "failed to add entry", err)
		return fmt.Errorf("create entry: %w", err)
	}
	f.setState(FormSubmitted)
	f.clearInputs()
	f.mu.Unlock()

	f.notifier.Notify(Notification{
		Severity: SeverityInfo,
		Message:  MessageEntryAdded,
	})

	// the entry is stored, a failed re-list is already reported by the roster
	_ = f.roster.Refresh(ctx)

	f.mu.Lock()
	if f.state == FormSubmitted {
		f.setState(FormEmpty)
	}
	f.mu.Unlock()
	return nil
}

// compose must be called with mu held.
func (f *EntryForm) compose(userID string, modality records.Modality, ts time.Time) (records.Record, error) {
	if f.state == FormEmpty {
		return records.Record{}, &ValidationError{Field: "entry", Reason: "nothing to submit"}
	}

	switch modality {
	case records.ModalityCount:
		situps, err := parseNonNegative("situps", f.situps)
		if err != nil {
			return records.Record{}, err
		}
		pushups, err := parseNonNegative("pushups", f.pushups)
		if err != nil {
			return records.Record{}, err
		}
		return records.NewRepsRecord(userID, situps, pushups, ts), nil
	case records.ModalityTimed:
		situpTime, err := parseTime("situpTime", f.situpTime)
		if err != nil {
			return records.Record{}, err
		}
		pushupTime, err := parseTime("pushupTime", f.pushupTime)
		if err != nil {
			return records.Record{}, err
		}
		return records.NewTimesRecord(userID, situpTime, pushupTime, ts), nil
	default:
		return records.Record{}, &ValidationError{Field: "modality", Reason: fmt.Sprintf("unknown modality %q", modality)}
	}
}

func parseNonNegative(field, v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, &ValidationError{Field: field, Reason: "required"}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "not a whole number"}
	}
	if n < 0 {
		return 0, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return n, nil
}

// parseTime returns the total seconds of a minutes/seconds input.
func parseTime(field string, in TimeInput) (int, error) {
	minutes, err := parseNonNegative(field+" minutes", in.Minutes)
	if err != nil {
		return 0, err
	}
	seconds, err := parseNonNegative(field+" seconds", in.Seconds)
	if err != nil {
		return 0, err
	}
	if seconds > 59 {
		return 0, &ValidationError{Field: field + " seconds", Reason: "must be between 0 and 59"}
	}
	return minutes*60 + seconds, nil
}

// RequestDelete stages id for deletion; nothing is deleted until ConfirmDelete.
func (f *EntryForm) RequestDelete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingDelete = id
}

func (f *EntryForm) CancelDelete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingDelete = ""
}

func (f *EntryForm) PendingDelete() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingDelete
}

// ConfirmDelete deletes the staged record. On success it is dropped from the
// roster's list right away; on failure the list is re-fetched to reconcile.
func (f *EntryForm) ConfirmDelete(ctx context.Context) error {
	f.mu.Lock()
	id := f.pendingDelete
	f.pendingDelete = ""
	f.mu.Unlock()
	if id == "" {
		return ErrNoPendingDelete
	}

	user, ok := f.roster.Selected()
	if !ok {
		return ErrNoUserSelected
	}

	if err := f.store.DeleteRecord(ctx, user.ID, f.roster.Modality(), id); err != nil {
		notifyError(f.notifier, "failed to delete entry", err)
		_ = f.roster.Refresh(ctx)
		return fmt.Errorf("delete entry %s: %w", id, err)
	}

	f.roster.removeLocal(id)
	f.notifier.Notify(Notification{
		Severity: SeverityDestructive,
		Message:  MessageEntryDeleted,
	})
	return nil
}

package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidModality = errors.New("invalid modality")
	ErrInvalidRecord   = errors.New("invalid record")
)

// Modality is the exercise logging scheme of a record:
//   - count: max repetitions (situps, pushups)
//   - timed: time to complete, in seconds (situpTime, pushupTime)
type Modality string

const (
	ModalityCount Modality = "count"
	ModalityTimed Modality = "timed"
)

func ParseModality(s string) (Modality, error) {
	m := Modality(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidModality, s)
	}
	return m, nil
}

func (m Modality) String() string {
	return string(m)
}

func (m Modality) IsValid() bool {
	switch m {
	case ModalityCount, ModalityTimed:
		return true
	default:
		return false
	}
}

// Collection is the name of the logical collection holding records of this modality.
func (m Modality) Collection() string {
	switch m {
	case ModalityTimed:
		return "fitness_time_entries"
	default:
		return "fitness_entries"
	}
}

// FieldNames returns the wire names of the two numeric fields.
func (m Modality) FieldNames() (string, string) {
	switch m {
	case ModalityTimed:
		return "situpTime", "pushupTime"
	default:
		return "situps", "pushups"
	}
}

// Entry is the modality specific payload of a record.
// It is implemented only by Reps and Times.
type Entry interface {
	isEntry()
}

type Reps struct {
	Situps  int
	Pushups int
}

// Times holds the time to complete each exercise, in seconds.
type Times struct {
	SitupTime  int
	PushupTime int
}

func (Reps) isEntry()  {}
func (Times) isEntry() {}

type Record struct {
	ID        string
	UserID    string
	Timestamp time.Time
	Entry     Entry
}

func NewRepsRecord(userID string, situps, pushups int, ts time.Time) Record {
	return Record{
		UserID:    userID,
		Timestamp: ts,
		Entry:     Reps{Situps: situps, Pushups: pushups},
	}
}

func NewTimesRecord(userID string, situpTime, pushupTime int, ts time.Time) Record {
	return Record{
		UserID:    userID,
		Timestamp: ts,
		Entry:     Times{SitupTime: situpTime, PushupTime: pushupTime},
	}
}

// Modality returns the discriminant of the record's entry, or an empty modality
// if the entry is not set.
func (r Record) Modality() Modality {
	switch r.Entry.(type) {
	case Reps:
		return ModalityCount
	case Times:
		return ModalityTimed
	default:
		return ""
	}
}

// Values returns the two numeric fields of the record, in FieldNames order.
func (r Record) Values() (int, int) {
	switch e := r.Entry.(type) {
	case Reps:
		return e.Situps, e.Pushups
	case Times:
		return e.SitupTime, e.PushupTime
	default:
		return 0, 0
	}
}

func (r Record) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: user id empty", ErrInvalidRecord)
	}
	if r.Entry == nil {
		return fmt.Errorf("%w: entry empty", ErrInvalidRecord)
	}
	first, second := r.Values()
	if first < 0 || second < 0 {
		f1, f2 := r.Modality().FieldNames()
		return fmt.Errorf("%w: %s and %s must not be negative", ErrInvalidRecord, f1, f2)
	}
	return nil
}

type recordJSON struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"userId"`
	Modality   Modality  `json:"modality"`
	Situps     *int      `json:"situps,omitempty"`
	Pushups    *int      `json:"pushups,omitempty"`
	SitupTime  *int      `json:"situpTime,omitempty"`
	PushupTime *int      `json:"pushupTime,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	rj := recordJSON{
		ID:        r.ID,
		UserID:    r.UserID,
		Modality:  r.Modality(),
		Timestamp: r.Timestamp,
	}
	switch e := r.Entry.(type) {
	case Reps:
		rj.Situps, rj.Pushups = &e.Situps, &e.Pushups
	case Times:
		rj.SitupTime, rj.PushupTime = &e.SitupTime, &e.PushupTime
	default:
		return nil, fmt.Errorf("%w: entry empty", ErrInvalidRecord)
	}
	return json.Marshal(rj)
}

// UnmarshalJSON accepts a record with an explicit modality, or infers it from
// the fields present when the modality is omitted.
func (r *Record) UnmarshalJSON(data []byte) error {
	var rj recordJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}

	hasReps := rj.Situps != nil || rj.Pushups != nil
	hasTimes := rj.SitupTime != nil || rj.PushupTime != nil

	modality := rj.Modality
	if modality == "" {
		switch {
		case hasReps && !hasTimes:
			modality = ModalityCount
		case hasTimes && !hasReps:
			modality = ModalityTimed
		default:
			return fmt.Errorf("%w: cannot infer modality", ErrInvalidRecord)
		}
	}

	var entry Entry
	switch modality {
	case ModalityCount:
		if rj.Situps == nil || rj.Pushups == nil {
			return fmt.Errorf("%w: situps and pushups required", ErrInvalidRecord)
		}
		entry = Reps{Situps: *rj.Situps, Pushups: *rj.Pushups}
	case ModalityTimed:
		if rj.SitupTime == nil || rj.PushupTime == nil {
			return fmt.Errorf("%w: situpTime and pushupTime required", ErrInvalidRecord)
		}
		entry = Times{SitupTime: *rj.SitupTime, PushupTime: *rj.PushupTime}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidModality, modality)
	}

	*r = Record{
		ID:        rj.ID,
		UserID:    rj.UserID,
		Timestamp: rj.Timestamp,
		Entry:     entry,
	}
	return nil
}

package records_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittracker/internal/fitness/records"
)

func TestParseModality(t *testing.T) {
	m, err := records.ParseModality("count")
	require.NoError(t, err)
	assert.Equal(t, records.ModalityCount, m)

	m, err = records.ParseModality("timed")
	require.NoError(t, err)
	assert.Equal(t, records.ModalityTimed, m)

	_, err = records.ParseModality("weighted")
	assert.ErrorIs(t, err, records.ErrInvalidModality)
	_, err = records.ParseModality("")
	assert.ErrorIs(t, err, records.ErrInvalidModality)
}

func TestModality_Collection(t *testing.T) {
	assert.Equal(t, "fitness_entries", records.ModalityCount.Collection())
	assert.Equal(t, "fitness_time_entries", records.ModalityTimed.Collection())

	f1, f2 := records.ModalityTimed.FieldNames()
	assert.Equal(t, "situpTime", f1)
	assert.Equal(t, "pushupTime", f2)
}

func TestRecord_ModalityAndValues(t *testing.T) {
	now := time.Now()

	reps := records.NewRepsRecord("u1", 30, 25, now)
	assert.Equal(t, records.ModalityCount, reps.Modality())
	s, p := reps.Values()
	assert.Equal(t, 30, s)
	assert.Equal(t, 25, p)

	times := records.NewTimesRecord("u1", 95, 80, now)
	assert.Equal(t, records.ModalityTimed, times.Modality())
	s, p = times.Values()
	assert.Equal(t, 95, s)
	assert.Equal(t, 80, p)

	var empty records.Record
	assert.Equal(t, records.Modality(""), empty.Modality())
}

func TestRecord_Validate(t *testing.T) {
	now := time.Now()

	assert.NoError(t, records.NewRepsRecord("u1", 0, 0, now).Validate())
	assert.ErrorIs(t, records.NewRepsRecord("", 1, 1, now).Validate(), records.ErrInvalidRecord)
	assert.ErrorIs(t, records.NewRepsRecord("u1", -1, 1, now).Validate(), records.ErrInvalidRecord)
	assert.ErrorIs(t, records.NewTimesRecord("u1", 10, -5, now).Validate(), records.ErrInvalidRecord)
	assert.ErrorIs(t, records.Record{UserID: "u1", Timestamp: now}.Validate(), records.ErrInvalidRecord)
}

func TestRecord_JSON(t *testing.T) {
	ts := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	rec := records.NewTimesRecord("u1", 95, 80, ts)
	rec.ID = "abc"

	recJson, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"abc","userId":"u1","modality":"timed","situpTime":95,"pushupTime":80,"timestamp":"2024-03-10T08:30:00Z"}`,
		string(recJson),
	)

	var decoded records.Record
	require.NoError(t, json.Unmarshal(recJson, &decoded))
	assert.Equal(t, rec.ID, decoded.ID)
	assert.Equal(t, rec.Entry, decoded.Entry)
	assert.True(t, rec.Timestamp.Equal(decoded.Timestamp))

	_, err = json.Marshal(records.Record{UserID: "u1"})
	assert.Error(t, err)
}

func TestRecord_UnmarshalJSON_InfersModality(t *testing.T) {
	var rec records.Record
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"u1","situps":30,"pushups":25}`), &rec))
	assert.Equal(t, records.ModalityCount, rec.Modality())
	assert.Equal(t, records.Reps{Situps: 30, Pushups: 25}, rec.Entry)
	assert.True(t, rec.Timestamp.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"userId":"u1","situpTime":60,"pushupTime":0}`), &rec))
	assert.Equal(t, records.ModalityTimed, rec.Modality())
}

func TestRecord_UnmarshalJSON_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"mixed fields":     `{"userId":"u1","situps":30,"pushupTime":25}`,
		"no fields":        `{"userId":"u1"}`,
		"missing pushups":  `{"userId":"u1","modality":"count","situps":30}`,
		"unknown modality": `{"userId":"u1","modality":"weighted","situps":1,"pushups":1}`,
		"not json":         `situps=30`,
	} {
		t.Run(name, func(t *testing.T) {
			var rec records.Record
			assert.Error(t, json.Unmarshal([]byte(body), &rec))
		})
	}
}

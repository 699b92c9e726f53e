package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEventValidate(t *testing.T) {
	t.Parallel()

	id := UUIDToBytes(uuid.New())
	now := time.Now()
	cases := []struct {
		name    string
		evt     Event
		wantErr bool
	}{
		{"job start", Event{JobID: id, TS: now, Stage: StageJobStart}, false},
		{"missing id", Event{TS: now, Stage: StageJobStart}, true},
		{"missing ts", Event{JobID: id, Stage: StageJobStart}, true},
		{"step without name", Event{JobID: id, TS: now, Stage: StageStepDone}, true},
		{"step", Event{JobID: id, TS: now, Stage: StageStepDone, Step: "fetching"}, false},
		{"probe without class", Event{JobID: id, TS: now, Stage: StageProbeDone, Site: "example.com"}, true},
		{"probe", Event{JobID: id, TS: now, Stage: StageProbeDone, Site: "example.com", StatusClass: Status2xx}, false},
		{"harvest negative", Event{JobID: id, TS: now, Stage: StageHarvestDone, Site: "example.com", Colors: -1}, true},
		{"negative duration", Event{JobID: id, TS: now, Stage: StageJobDone, Dur: -time.Second}, true},
		{"unknown", Event{JobID: id, TS: now, Stage: "NOPE"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.evt.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseJobID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got, err := ParseJobID(id.String())
	require.NoError(t, err)
	require.Equal(t, UUIDToBytes(id), got)

	_, err = ParseJobID("not-a-uuid")
	require.Error(t, err)
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, Status2xx, ClassifyStatus(204))
	require.Equal(t, Status3xx, ClassifyStatus(301))
	require.Equal(t, Status4xx, ClassifyStatus(403))
	require.Equal(t, Status5xx, ClassifyStatus(503))
	require.Equal(t, StatusOther, ClassifyStatus(0))
}

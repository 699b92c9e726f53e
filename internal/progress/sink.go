package progress

import (
	"context"
	"time"
)

// Sink consumes batches of progress events. Implementations must be safe for
// repeated calls, honor ctx deadlines, and may be invoked concurrently.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Hub satisfies this interface so the
// pipeline can remain agnostic about how events are buffered or persisted.
type Emitter interface {
	Emit(evt Event)
}

// NopEmitter discards every event.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(Event) {}

// JobRecorder stamps events for a single job before handing them to an
// Emitter. Job ids that are not UUIDs produce no events.
type JobRecorder struct {
	emitter Emitter
	jobID   [16]byte
	url     string
	site    string
	now     func() time.Time
}

// NewJobRecorder binds emitter to one job. A nil now defaults to time.Now.
func NewJobRecorder(emitter Emitter, jobID, url, site string, now func() time.Time) *JobRecorder {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if now == nil {
		now = time.Now
	}
	id, err := ParseJobID(jobID)
	if err != nil {
		emitter = NopEmitter{}
	}
	return &JobRecorder{emitter: emitter, jobID: id, url: url, site: site, now: now}
}

// Start records JOB_START.
func (r *JobRecorder) Start() {
	r.emit(Event{Stage: StageJobStart})
}

// Step records the completion of one pipeline status.
func (r *JobRecorder) Step(step string, dur time.Duration) {
	r.emit(Event{Stage: StageStepDone, Step: step, Dur: dur})
}

// Probe records the reachability probe outcome.
func (r *JobRecorder) Probe(statusCode int, dur time.Duration) {
	r.emit(Event{Stage: StageProbeDone, StatusClass: ClassifyStatus(statusCode), Dur: dur})
}

// Harvest records what the page yielded.
func (r *JobRecorder) Harvest(colors, skippedSheets, clicks int) {
	r.emit(Event{Stage: StageHarvestDone, Colors: colors, SkippedSheets: skippedSheets, Clicks: clicks})
}

// Done records JOB_DONE with the total runtime.
func (r *JobRecorder) Done(dur time.Duration) {
	r.emit(Event{Stage: StageJobDone, Dur: dur})
}

// Fail records JOB_ERROR with the failure message.
func (r *JobRecorder) Fail(dur time.Duration, msg string) {
	r.emit(Event{Stage: StageJobError, Dur: dur, Note: msg})
}

func (r *JobRecorder) emit(evt Event) {
	evt.JobID = r.jobID
	evt.TS = r.now().UTC()
	evt.URL = r.url
	evt.Site = r.site
	r.emitter.Emit(evt)
}

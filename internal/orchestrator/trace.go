package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

// StageStatus is one stage's outcome within a Trace.
type StageStatus string

const (
	StatusPending StageStatus = "pending"
	StatusOK      StageStatus = "ok"
	StatusSkipped StageStatus = "skipped"
	StatusError   StageStatus = "error"
)

// StageRecord is one pipeline stage's entry in the trace.
type StageRecord struct {
	Stage    booking.Stage
	Status   StageStatus
	Kind     booking.Kind
	Message  string
	Duration time.Duration
}

// Trace is the Orchestrator's per-query report: every stage's outcome, in
// pipeline order, renderable as both human-readable text and JSON.
type Trace struct {
	Records []StageRecord
}

func newTrace(stages ...booking.Stage) *Trace {
	records := make([]StageRecord, len(stages))
	for i, s := range stages {
		records[i] = StageRecord{Stage: s, Status: StatusPending}
	}
	return &Trace{Records: records}
}

func (t *Trace) ok(stage booking.Stage, d time.Duration) {
	t.set(stage, StatusOK, "", "", d)
}

func (t *Trace) skip(stage booking.Stage) {
	t.set(stage, StatusSkipped, "", "", 0)
}

func (t *Trace) fail(stage booking.Stage, err error, d time.Duration) {
	kind := booking.Kind("")
	var stageErr *booking.StageError
	if se, ok := err.(*booking.StageError); ok {
		stageErr = se
		kind = stageErr.Kind
	}
	t.set(stage, StatusError, kind, err.Error(), d)
}

func (t *Trace) set(stage booking.Stage, status StageStatus, kind booking.Kind, message string, d time.Duration) {
	for i := range t.Records {
		if t.Records[i].Stage == stage {
			t.Records[i].Status = status
			t.Records[i].Kind = kind
			t.Records[i].Message = message
			t.Records[i].Duration = d
			return
		}
	}
}

// Pretty renders the trace as one line per stage, e.g. "SE     ok     12ms".
func (t *Trace) Pretty() string {
	var b strings.Builder
	for _, r := range t.Records {
		fmt.Fprintf(&b, "%-10s %-8s", r.Stage, r.Status)
		if r.Kind != "" {
			fmt.Fprintf(&b, " %-24s", r.Kind)
		}
		if r.Duration > 0 {
			fmt.Fprintf(&b, " %s", r.Duration.Round(time.Millisecond))
		}
		if r.Message != "" && r.Status == StatusError {
			fmt.Fprintf(&b, " — %s", r.Message)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type jsonRecord struct {
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// JSON renders the trace as the stable OrchestratorTrace schema.
func (t *Trace) JSON() ([]byte, error) {
	records := make([]jsonRecord, len(t.Records))
	for i, r := range t.Records {
		records[i] = jsonRecord{
			Stage:      string(r.Stage),
			Status:     string(r.Status),
			Kind:       string(r.Kind),
			Message:    r.Message,
			DurationMS: r.Duration.Milliseconds(),
		}
	}
	return json.MarshalIndent(struct {
		Stages []jsonRecord `json:"stages"`
	}{Stages: records}, "", "  ")
}

// Package booking holds the domain types shared by every pipeline and
// scheduling stage: the query that enters the pipeline, the intermediate
// slot representations produced along the way, and the scheduled/persisted
// task shapes that come out the other end.
package booking

import (
	"time"

	"github.com/google/uuid"
)

// Query is the immutable input to a pipeline run.
type Query struct {
	Text string
	TZ   string
}

// RawSlot is SlotExtractor's output: verbatim temporal substrings lifted
// from the query text, not yet resolved to any absolute date.
type RawSlot struct {
	StartText *string
	EndText   *string
	Duration  *string
}

// Empty reports whether all three fields are unset, which SlotExtractor
// must never produce.
func (r RawSlot) Empty() bool {
	return r.StartText == nil && r.EndText == nil && r.Duration == nil
}

// AbsoluteSlot is AbsoluteResolver's output: every non-nil RawSlot field
// resolved into the canonical "Month DD, YYYY HH:MM am|pm" form.
type AbsoluteSlot struct {
	StartText *string
	EndText   *string
	Duration  *string
}

// StandardWindow is TimeStandardizer's output: an offset-aware window with
// an optional ISO-8601 duration.
type StandardWindow struct {
	Start    time.Time
	End      time.Time
	Duration *time.Duration
}

// TaskType distinguishes an atomic booking from one requiring decomposition.
type TaskType string

const (
	TaskSimple  TaskType = "simple"
	TaskComplex TaskType = "complex"
)

// Calendar describes one entry of the backend's calendar catalog.
type Calendar struct {
	ID       string
	Title    string
	Writable bool
}

// ClassifiedTask is DifficultyAnalyzer's output.
type ClassifiedTask struct {
	CalendarID string
	Type       TaskType
	Title      string
	Duration   *time.Duration
}

// SubtaskSpec is one ordered entry of a Decomposer result, before
// scheduling assigns it a slot.
type SubtaskSpec struct {
	Title    string
	Duration time.Duration
}

// DecomposedTask is Decomposer's output for a complex ClassifiedTask.
type DecomposedTask struct {
	ClassifiedTask
	Subtasks []SubtaskSpec
}

// Slot is a concrete, scheduled start/end pair.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Duration returns the slot's length.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// ScheduledSubtask is one child of a complex ScheduledTask.
type ScheduledSubtask struct {
	Title    string
	Slot     Slot
	ID       uuid.UUID
	ParentID uuid.UUID
}

// ScheduledTask is the Allotter's output: a tagged Simple|Complex variant.
// For Type==TaskSimple, Slot is set and Subtasks is nil. For
// Type==TaskComplex, Slot is the zero value and Subtasks holds the
// scheduled children in input order.
type ScheduledTask struct {
	CalendarID string
	Type       TaskType
	Title      string
	ID         uuid.UUID
	ParentID   *uuid.UUID
	Slot       Slot
	Subtasks   []ScheduledSubtask
}

// PersistedTask is one row of the tasks table.
type PersistedTask struct {
	ID       string
	Title    string
	ParentID *string
}

// EventMapping is one row of the event_map table.
type EventMapping struct {
	TaskID         string
	BackendEventID string
	CalendarID     string
}

// Note renders the reconciliation note embedded in the backend event,
// "id: <uuid>, parent_id: <uuid|null>".
func Note(id uuid.UUID, parentID *uuid.UUID) string {
	if parentID == nil {
		return "id: " + id.String() + ", parent_id: null"
	}
	return "id: " + id.String() + ", parent_id: " + parentID.String()
}

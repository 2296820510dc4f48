// Package scheduler implements the ordered even-spread greedy placement
// algorithm: a pure function over availability, durations, and
// constraints that returns concrete assignments or a structured
// infeasibility error. It performs no I/O and reads no clock beyond the
// deadline passed to it, so it can be exercised with property-based
// tests independent of the LLM stages and the calendar backend.
package scheduler

import (
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

// Options controls the daily work window all placements are clipped to.
type Options struct {
	WorkStartHour int
	WorkEndHour   int
}

// DefaultOptions matches the work window's documented default, [06:00, 23:00).
var DefaultOptions = Options{WorkStartHour: 6, WorkEndHour: 23}

// WeeklyBlackout forbids scheduling during [StartMinute, EndMinute) on
// every occurrence of Weekday, minutes counted from local midnight.
type WeeklyBlackout struct {
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// DateBlackout forbids scheduling during [StartMinute, EndMinute) on one
// specific calendar date.
type DateBlackout struct {
	Date        time.Time
	StartMinute int
	EndMinute   int
}

// Constraints bounds the placement beyond the work window.
type Constraints struct {
	WeeklyBlackouts []WeeklyBlackout
	DateBlackouts   []DateBlackout
	MinGapMinutes   int
	MaxTasksPerDay  int // 0 means unset (no cap)
}

// Assignment is one task's placed slot.
type Assignment struct {
	TaskIndex int
	Duration  time.Duration
	Day       time.Time
	Start     time.Time
	End       time.Time
}

// Result is a successful Schedule call's output.
type Result struct {
	Assignments []Assignment
	PerDayCount map[string]int // keyed by "2006-01-02"
}

// Package timestd implements TimeStandardizer: the rule-based stage that
// turns a canonical absolute-time slot into an offset-aware window. It is
// the only stage in the pipeline with no LLM involved.
package timestd

import (
	"fmt"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/dateutil"
)

// Standardize parses slot's canonical fields in the named IANA zone and
// produces a StandardWindow, enforcing the invariants that start <= end
// and, when both a duration and an explicit end are present, that the
// window is at least as long as the duration.
func Standardize(slot booking.AbsoluteSlot, tz string) (booking.StandardWindow, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return booking.StandardWindow{}, booking.NewTSParseError(fmt.Errorf("loading zone %q: %w", tz, err))
	}

	var duration *time.Duration
	if slot.Duration != nil {
		d, err := dateutil.ParseFlexibleDuration(*slot.Duration)
		if err != nil {
			return booking.StandardWindow{}, booking.NewTSParseError(err)
		}
		duration = &d
	}

	var start *time.Time
	if slot.StartText != nil {
		s, err := dateutil.ParseCanonical(*slot.StartText, loc)
		if err != nil {
			return booking.StandardWindow{}, booking.NewTSParseError(err)
		}
		start = &s
	}

	var end *time.Time
	if slot.EndText != nil {
		e, err := dateutil.ParseCanonical(*slot.EndText, loc)
		if err != nil {
			return booking.StandardWindow{}, booking.NewTSParseError(err)
		}
		end = &e
	}

	if start == nil {
		return booking.StandardWindow{}, booking.NewTSParseError(fmt.Errorf("no start time resolved"))
	}

	switch {
	case end != nil && duration != nil:
		// both given: validated below
	case end == nil && duration != nil:
		computed := start.Add(*duration)
		end = &computed
	case end == nil && duration == nil:
		// No end and no duration: the caller (TD) may still default a
		// duration for an atomic task, so give it a generous deadline to
		// place that default slot into — through the end of the day
		// after start, covering "today or tomorrow" placement.
		computed := endOfDayAfter(*start, loc)
		end = &computed
	}

	window := booking.StandardWindow{Start: *start, End: *end, Duration: duration}

	if window.End.Before(window.Start) {
		return booking.StandardWindow{}, booking.NewTSInvariantError("end precedes start")
	}
	if duration != nil && window.End.Sub(window.Start) < *duration {
		return booking.StandardWindow{}, booking.NewTSInvariantError("window shorter than declared duration")
	}

	return window, nil
}

// endOfDayAfter returns 23:59:59 on the day following t's date.
func endOfDayAfter(t time.Time, loc *time.Location) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
	return day.AddDate(0, 0, 1)
}

// Package allotter implements Allotter (TA): it adapts pipeline output
// into scheduler input, derives availability from the calendar backend's
// busy picture, and validates the scheduler's result before anything is
// persisted or posted.
package allotter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/calbackend"
	"github.com/javiermolinar/chronoscribe/internal/scheduler"
)

// DefaultHolidaysCalendarTitle is the excluded calendar's default title;
// configurable per the backend's locale.
const DefaultHolidaysCalendarTitle = "Holidays"

// Options configures availability derivation and scheduling constraints.
type Options struct {
	ScheduleOptions       scheduler.Options
	Constraints           scheduler.Constraints
	HolidaysCalendarTitle string
}

// Allot runs the full TA responsibility for a classified/decomposed task:
// fetch busy time from the backend, compute free time, call the
// scheduler, validate the result, and assign UUIDs.
func Allot(ctx context.Context, backend *calbackend.Client, window booking.StandardWindow, task booking.ClassifiedTask, subtasks []booking.SubtaskSpec, opts Options) (booking.ScheduledTask, error) {
	if task.Type == booking.TaskSimple {
		return allotSimple(ctx, backend, window, task, opts)
	}
	return allotComplex(ctx, backend, window, task, subtasks, opts)
}

func allotSimple(ctx context.Context, backend *calbackend.Client, window booking.StandardWindow, task booking.ClassifiedTask, opts Options) (booking.ScheduledTask, error) {
	duration := durationOrDefault(task.Duration)

	availability, err := freeBusy(ctx, backend, window.Start, window.End, task.CalendarID, opts)
	if err != nil {
		return booking.ScheduledTask{}, err
	}

	res, err := scheduler.Schedule(window.End, availability, []time.Duration{duration}, opts.ScheduleOptions, opts.Constraints)
	if err != nil {
		return booking.ScheduledTask{}, err
	}
	a := res.Assignments[0]
	slot := booking.Slot{Start: a.Start, End: a.End}

	busy, err := fetchBusy(ctx, backend, window.Start, window.End, task.CalendarID, opts)
	if err != nil {
		return booking.ScheduledTask{}, err
	}
	if err := validateSlot(slot, window, duration, busy); err != nil {
		return booking.ScheduledTask{}, err
	}

	return booking.ScheduledTask{
		CalendarID: task.CalendarID,
		Type:       booking.TaskSimple,
		Title:      task.Title,
		ID:         uuid.New(),
		ParentID:   nil,
		Slot:       slot,
	}, nil
}

func allotComplex(ctx context.Context, backend *calbackend.Client, window booking.StandardWindow, task booking.ClassifiedTask, subtasks []booking.SubtaskSpec, opts Options) (booking.ScheduledTask, error) {
	durations := make([]time.Duration, len(subtasks))
	for i, s := range subtasks {
		durations[i] = s.Duration
	}

	availability, err := freeBusy(ctx, backend, window.Start, window.End, task.CalendarID, opts)
	if err != nil {
		return booking.ScheduledTask{}, err
	}

	res, err := scheduler.Schedule(window.End, availability, durations, opts.ScheduleOptions, opts.Constraints)
	if err != nil {
		return booking.ScheduledTask{}, err
	}

	busy, err := fetchBusy(ctx, backend, window.Start, window.End, task.CalendarID, opts)
	if err != nil {
		return booking.ScheduledTask{}, err
	}

	parentID := uuid.New()
	children := make([]booking.ScheduledSubtask, len(res.Assignments))
	var prevEnd *time.Time
	for i, a := range res.Assignments {
		if a.TaskIndex != i {
			return booking.ScheduledTask{}, booking.NewTAValidationError("scheduler returned assignments out of input order")
		}
		slot := booking.Slot{Start: a.Start, End: a.End}
		if err := validateSlot(slot, window, durations[i], busy); err != nil {
			return booking.ScheduledTask{}, err
		}
		if prevEnd != nil && slot.Start.Before(*prevEnd) {
			return booking.ScheduledTask{}, booking.NewTAValidationError(
				fmt.Sprintf("subtask %d starts before subtask %d ends", i, i-1))
		}
		end := slot.End
		prevEnd = &end

		children[i] = booking.ScheduledSubtask{
			Title:    subtasks[i].Title,
			Slot:     slot,
			ID:       uuid.New(),
			ParentID: parentID,
		}
	}

	return booking.ScheduledTask{
		CalendarID: task.CalendarID,
		Type:       booking.TaskComplex,
		Title:      task.Title,
		ID:         parentID,
		ParentID:   nil,
		Subtasks:   children,
	}, nil
}

func durationOrDefault(d *time.Duration) time.Duration {
	if d != nil {
		return *d
	}
	return 30 * time.Minute
}

// fetchBusy retrieves the assigned calendar's events within [start,end),
// excluding the configured holidays calendar. The backend's /events
// contract counts days forward from now, not from start, so the window's
// own length is the wrong thing to convert — a task scheduled far in the
// future still needs every day between now and its window fetched.
func fetchBusy(ctx context.Context, backend *calbackend.Client, start, end time.Time, calendarID string, opts Options) ([]booking.Interval, error) {
	days := int(time.Until(end).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	events, err := backend.Events(ctx, days, calbackend.EventsOptions{CalendarID: calendarID, ExcludeHolidays: true})
	if err != nil {
		return nil, booking.NewBackendUnavailableError(booking.StageTA, err)
	}

	holidaysTitle := opts.HolidaysCalendarTitle
	if holidaysTitle == "" {
		holidaysTitle = DefaultHolidaysCalendarTitle
	}

	var busy []booking.Interval
	for _, e := range events {
		if e.CalendarTitle == holidaysTitle {
			continue
		}
		s, errS := time.Parse(time.RFC3339, e.StartISO)
		en, errE := time.Parse(time.RFC3339, e.EndISO)
		if errS != nil || errE != nil {
			continue
		}
		if !booking.TimesOverlap(s, en, start, end) {
			continue
		}
		busy = append(busy, booking.Interval{Start: s, End: en})
	}
	return busy, nil
}

// freeBusy computes the complement of busy intervals within [start,end) —
// the availability the scheduler consumes. Clipping to the work window is
// left to the scheduler's normalization.
func freeBusy(ctx context.Context, backend *calbackend.Client, start, end time.Time, calendarID string, opts Options) ([]booking.Interval, error) {
	busy, err := fetchBusy(ctx, backend, start, end, calendarID, opts)
	if err != nil {
		return nil, err
	}

	free := []booking.Interval{{Start: start, End: end}}
	for _, b := range busy {
		var next []booking.Interval
		for _, f := range free {
			next = append(next, f.Subtract(b)...)
		}
		free = next
	}
	return free, nil
}

func validateSlot(slot booking.Slot, window booking.StandardWindow, duration time.Duration, busy []booking.Interval) error {
	if slot.Start.Before(window.Start) || slot.End.After(window.End) {
		return booking.NewTAValidationError(fmt.Sprintf("slot %v..%v falls outside window %v..%v", slot.Start, slot.End, window.Start, window.End))
	}
	if slot.Duration() != duration {
		return booking.NewTAValidationError(fmt.Sprintf("slot duration %s does not match declared duration %s", slot.Duration(), duration))
	}
	for _, b := range busy {
		if booking.TimesOverlap(slot.Start, slot.End, b.Start, b.End) {
			return booking.NewTAValidationError(fmt.Sprintf("slot %v..%v overlaps backend busy interval %v..%v", slot.Start, slot.End, b.Start, b.End))
		}
	}
	return nil
}

package allotter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/calbackend"
	"github.com/javiermolinar/chronoscribe/internal/scheduler"
)

func newBackend(t *testing.T, events []calbackend.Event) (*calbackend.Client, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/events":
			_ = json.NewEncoder(w).Encode(events)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return calbackend.NewClient(srv.URL), srv.Close
}

func TestAllot_Simple(t *testing.T) {
	backend, closeFn := newBackend(t, nil)
	defer closeFn()

	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	window := booking.StandardWindow{Start: start, End: end}
	duration := 45 * time.Minute
	task := booking.ClassifiedTask{CalendarID: "cal-home", Type: booking.TaskSimple, Title: "Call dentist", Duration: &duration}

	got, err := Allot(context.Background(), backend, window, task, nil, Options{ScheduleOptions: scheduler.DefaultOptions})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != booking.TaskSimple {
		t.Fatalf("got type %v, want simple", got.Type)
	}
	if got.Slot.Duration() != duration {
		t.Errorf("got duration %s, want %s", got.Slot.Duration(), duration)
	}
	if got.Slot.Start.Before(window.Start) || got.Slot.End.After(window.End) {
		t.Errorf("slot %v not within window %v..%v", got.Slot, window.Start, window.End)
	}
}

func TestAllot_Simple_ExcludesHolidaysCalendar(t *testing.T) {
	events := []calbackend.Event{
		{StartISO: "2025-06-02T06:00:00Z", EndISO: "2025-06-02T22:00:00Z", CalendarTitle: "Holidays"},
	}
	backend, closeFn := newBackend(t, events)
	defer closeFn()

	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	window := booking.StandardWindow{Start: start, End: end}
	duration := time.Hour
	task := booking.ClassifiedTask{CalendarID: "cal-home", Type: booking.TaskSimple, Title: "Call dentist", Duration: &duration}

	got, err := Allot(context.Background(), backend, window, task, nil, Options{ScheduleOptions: scheduler.DefaultOptions})
	if err != nil {
		t.Fatalf("expected the holiday event to be excluded from busy time, got error: %v", err)
	}
	if got.Slot.Duration() != duration {
		t.Errorf("got duration %s, want %s", got.Slot.Duration(), duration)
	}
}

func TestAllot_Simple_RejectsOverlapWithBusyEvent(t *testing.T) {
	events := []calbackend.Event{
		{StartISO: "2025-06-02T06:00:00Z", EndISO: "2025-06-02T22:00:00Z", CalendarTitle: "Work"},
	}
	backend, closeFn := newBackend(t, events)
	defer closeFn()

	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	window := booking.StandardWindow{Start: start, End: end}
	duration := 30 * time.Minute
	task := booking.ClassifiedTask{CalendarID: "cal-home", Type: booking.TaskSimple, Title: "Call mom", Duration: &duration}

	got, err := Allot(context.Background(), backend, window, task, nil, Options{ScheduleOptions: scheduler.DefaultOptions})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	busyStart := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	busyEnd := time.Date(2025, 6, 2, 22, 0, 0, 0, time.UTC)
	if booking.TimesOverlap(got.Slot.Start, got.Slot.End, busyStart, busyEnd) {
		t.Errorf("slot %v..%v overlaps the busy event %v..%v", got.Slot.Start, got.Slot.End, busyStart, busyEnd)
	}
}

func TestAllot_Complex_ChildrenOrderedAndNonOverlapping(t *testing.T) {
	backend, closeFn := newBackend(t, nil)
	defer closeFn()

	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 6, 23, 0, 0, 0, time.UTC)
	window := booking.StandardWindow{Start: start, End: end}
	task := booking.ClassifiedTask{CalendarID: "cal-work", Type: booking.TaskComplex, Title: "Plan Japan trip"}
	subtasks := []booking.SubtaskSpec{
		{Title: "Book flights (Japan trip)", Duration: time.Hour},
		{Title: "Book hotels (Japan trip)", Duration: 90 * time.Minute},
		{Title: "Pack (Japan trip)", Duration: 2 * time.Hour},
	}

	got, err := Allot(context.Background(), backend, window, task, subtasks, Options{ScheduleOptions: scheduler.DefaultOptions})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != booking.TaskComplex || len(got.Subtasks) != 3 {
		t.Fatalf("got %+v", got)
	}
	for i, c := range got.Subtasks {
		if c.ParentID != got.ID {
			t.Errorf("subtask %d parent_id %s != parent %s", i, c.ParentID, got.ID)
		}
		if i > 0 && c.Slot.Start.Before(got.Subtasks[i-1].Slot.End) {
			t.Errorf("subtask %d starts before subtask %d ends", i, i-1)
		}
	}
}

func TestAllot_Complex_BackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	backend := calbackend.NewClient(srv.URL)

	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	window := booking.StandardWindow{Start: start, End: end}
	task := booking.ClassifiedTask{CalendarID: "cal-work", Type: booking.TaskComplex, Title: "Plan trip"}
	subtasks := []booking.SubtaskSpec{{Title: "A (trip)", Duration: time.Hour}}

	_, err := Allot(context.Background(), backend, window, task, subtasks, Options{ScheduleOptions: scheduler.DefaultOptions})
	if err == nil {
		t.Fatal("expected an error when the backend is unavailable")
	}
}

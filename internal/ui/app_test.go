package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"infeasible total", booking.NewInfeasibleTotal(120, 60), 2},
		{"infeasible local", booking.NewInfeasibleLocal(1), 2},
		{"backend unavailable", booking.NewBackendUnavailableError(booking.StageTD, errors.New("down")), 3},
		{"other stage error", booking.NewTAValidationError("boom"), 1},
		{"plain error", errors.New("boom"), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCodeFor(tc.err); got != tc.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestExitError_UnwrapsAndRenders(t *testing.T) {
	inner := errors.New("backend unreachable")
	ee := &ExitError{Code: 3, Err: inner}

	if ee.Error() != inner.Error() {
		t.Errorf("got %q, want %q", ee.Error(), inner.Error())
	}
	if !errors.Is(ee, inner) {
		t.Error("expected errors.Is to see through ExitError.Unwrap")
	}
}

func TestRenderTaskTable(t *testing.T) {
	if got := renderTaskTable(nil); got != "No tasks found.\n" {
		t.Errorf("got %q", got)
	}

	parentID := "parent-1"
	tasks := []booking.PersistedTask{
		{ID: "parent-1", Title: "Plan trip"},
		{ID: "child-1", Title: "Book flights", ParentID: &parentID},
	}
	got := renderTaskTable(tasks)
	if !containsAll(got, "parent-1", "Plan trip", "child-1", "Book flights", "parent: parent-1") {
		t.Errorf("rendered table missing expected content: %q", got)
	}
}

func containsAll(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

package calbackend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("got path %q, want /status", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(StatusResponse{Authorized: true, StatusCode: 200})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Authorized {
		t.Errorf("got authorized=false, want true")
	}
}

func TestCalendars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]calendarDTO{
			{ID: "cal-home", Title: "Home", AllowsModifications: true},
			{ID: "cal-holidays", Title: "Holidays", AllowsModifications: false},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.Calendars(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d calendars, want 2", len(got))
	}
	if got[0].ID != "cal-home" || !got[0].Writable {
		t.Errorf("got %+v", got[0])
	}
	if got[1].Writable {
		t.Errorf("Holidays calendar should not be writable in this fixture")
	}
}

func TestEvents_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("days"); got != "7" {
			t.Errorf("got days=%q, want 7", got)
		}
		if got := r.URL.Query().Get("exclude_holidays"); got != "true" {
			t.Errorf("got exclude_holidays=%q, want true", got)
		}
		_ = json.NewEncoder(w).Encode([]Event{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Events(context.Background(), 7, EventsOptions{ExcludeHolidays: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddEvent_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AddEventRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.CalendarID != "cal-home" {
			t.Errorf("got calendar_id=%q, want cal-home", req.CalendarID)
		}
		_ = json.NewEncoder(w).Encode(AddEventResponse{ID: "evt-1", Title: req.Title, Calendar: req.CalendarID})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.AddEvent(context.Background(), AddEventRequest{
		Title: "Call dentist", StartISO: "2025-11-19T10:00:00-05:00", EndISO: "2025-11-19T10:45:00-05:00",
		CalendarID: "cal-home",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "evt-1" {
		t.Errorf("got id %q, want evt-1", got.ID)
	}
}

func TestAddEvent_RejectedNonWritable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"calendar not writable"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.AddEvent(context.Background(), AddEventRequest{Title: "x", CalendarID: "cal-holidays"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDeleteEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("event_id"); got != "evt-1" {
			t.Errorf("got event_id=%q, want evt-1", got)
		}
		_ = json.NewEncoder(w).Encode(DeleteEventResponse{Deleted: true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.DeleteEvent(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Deleted {
		t.Error("got deleted=false, want true")
	}
}

func TestUnavailable_ConnectionFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.Status(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUnavailable_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Status(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

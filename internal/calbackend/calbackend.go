// Package calbackend is the HTTP client for the local calendar-permission
// bridge: a pinned collaborator contract, not a component this repo
// implements as a server.
package calbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

// DefaultTimeout is the suggested bound for a backend call.
const DefaultTimeout = 10 * time.Second

// ErrUnavailable wraps any connection failure or 5xx response reaching the
// backend; callers surface this as BACKEND_UNAVAILABLE without attempting
// side effects.
var ErrUnavailable = errors.New("calendar backend unavailable")

// ErrRejected wraps a 4xx response — e.g. POST /add against a non-writable
// or unknown calendar. There is no silent fallback calendar.
var ErrRejected = errors.New("calendar backend rejected request")

// Client talks to the calendar backend's pinned HTTP contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client against baseURL (e.g. from CALBRIDGE_BASE).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// StatusResponse is GET /status's body.
type StatusResponse struct {
	Authorized bool `json:"authorized"`
	StatusCode int  `json:"status_code"`
}

// Status reports whether the backend has calendar permission.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.get(ctx, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// calendarDTO is the wire shape of one /calendars entry.
type calendarDTO struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	AllowsModifications bool   `json:"allows_modifications"`
	ColorHex            string `json:"color_hex"`
}

// Calendars fetches the full calendar catalog.
func (c *Client) Calendars(ctx context.Context) ([]booking.Calendar, error) {
	var dtos []calendarDTO
	if err := c.get(ctx, "/calendars", nil, &dtos); err != nil {
		return nil, err
	}

	calendars := make([]booking.Calendar, len(dtos))
	for i, d := range dtos {
		calendars[i] = booking.Calendar{ID: d.ID, Title: d.Title, Writable: d.AllowsModifications}
	}
	return calendars, nil
}

// Event is one backend calendar event.
type Event struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	StartISO      string `json:"start_iso"`
	EndISO        string `json:"end_iso"`
	CalendarID    string `json:"calendar_id"`
	CalendarTitle string `json:"calendar_title"`
}

// EventsOptions narrows a GET /events query.
type EventsOptions struct {
	CalendarID      string
	ExcludeHolidays bool
}

// Events fetches events over the next days days.
func (c *Client) Events(ctx context.Context, days int, opts EventsOptions) ([]Event, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	if opts.CalendarID != "" {
		q.Set("calendar_id", opts.CalendarID)
	}
	if opts.ExcludeHolidays {
		q.Set("exclude_holidays", "true")
	}

	var events []Event
	if err := c.get(ctx, "/events", q, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// AddEventRequest is POST /add's body. Exactly one of CalendarID or
// CalendarTitle should be set.
type AddEventRequest struct {
	Title         string  `json:"title"`
	StartISO      string  `json:"start_iso"`
	EndISO        string  `json:"end_iso"`
	Notes         *string `json:"notes,omitempty"`
	CalendarID    string  `json:"calendar_id,omitempty"`
	CalendarTitle string  `json:"calendar_title,omitempty"`
}

// AddEventResponse is POST /add's body on success.
type AddEventResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	StartISO string `json:"start_iso"`
	EndISO   string `json:"end_iso"`
	Calendar string `json:"calendar"`
}

// AddEvent creates a backend event. A non-writable or absent calendar
// yields ErrRejected; there is no silent fallback calendar.
func (c *Client) AddEvent(ctx context.Context, req AddEventRequest) (*AddEventResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding add-event request: %w", err)
	}

	var out AddEventResponse
	if err := c.post(ctx, "/add", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEventResponse is POST /delete's body.
type DeleteEventResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteEvent removes a backend event by id. A backend "not found" is
// reported through the ordinary {deleted:false} shape, not an HTTP error,
// and callers treat it as a successful, idempotent delete.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) (*DeleteEventResponse, error) {
	q := url.Values{}
	q.Set("event_id", eventID)

	var out DeleteEventResponse
	if err := c.post(ctx, "/delete?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	full := c.baseURL + path
	if len(q) > 0 {
		full += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(raw))
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

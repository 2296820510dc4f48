package decompose

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/llm"
)

type fakeClient struct {
	responses []string
	calls     int
}

func (f *fakeClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeClient) ChatJSON(ctx context.Context, messages []llm.Message, result any) error {
	resp := f.responses[f.calls]
	f.calls++
	return json.Unmarshal([]byte(resp), result)
}

func TestDecompose_Success(t *testing.T) {
	client := &fakeClient{responses: []string{`{"subtasks":[
		{"title":"Book flights (Japan trip)","duration":"PT1H"},
		{"title":"Book hotels (Japan trip)","duration":"PT2H"},
		{"title":"Plan itinerary (Japan trip)","duration":"PT1H30M"},
		{"title":"Pack (Japan trip)","duration":"PT2H"},
		{"title":"Exchange currency (Japan trip)","duration":"PT45M"}
	]}`}}

	task := booking.ClassifiedTask{CalendarID: "cal-work", Type: booking.TaskComplex, Title: "Plan Japan trip"}
	got, err := Decompose(context.Background(), client, task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Subtasks) != 5 {
		t.Fatalf("got %d subtasks, want 5", len(got.Subtasks))
	}
}

func TestDecompose_TooFewSubtasksRetriesThenFails(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"subtasks":[{"title":"Only one (trip)","duration":"PT1H"}]}`,
		`{"subtasks":[{"title":"Still one (trip)","duration":"PT1H"}]}`,
	}}

	task := booking.ClassifiedTask{Title: "Plan trip", Type: booking.TaskComplex}
	_, err := Decompose(context.Background(), client, task)

	var stageErr *booking.StageError
	if !errors.As(err, &stageErr) || stageErr.Kind != booking.KindLDInvalid {
		t.Errorf("got error %v, want LD_INVALID", err)
	}
	if client.calls != 2 {
		t.Errorf("got %d calls, want 2 (one retry)", client.calls)
	}
}

func TestDecompose_OverlongDuration(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"subtasks":[{"title":"A (trip)","duration":"PT4H"},{"title":"B (trip)","duration":"PT1H"}]}`,
		`{"subtasks":[{"title":"A (trip)","duration":"PT2H"},{"title":"B (trip)","duration":"PT1H"}]}`,
	}}

	task := booking.ClassifiedTask{Title: "Plan trip", Type: booking.TaskComplex}
	got, err := Decompose(context.Background(), client, task)
	if err != nil {
		t.Fatalf("expected the retry to succeed, got error: %v", err)
	}
	if len(got.Subtasks) != 2 {
		t.Errorf("got %d subtasks, want 2", len(got.Subtasks))
	}
}

func TestDecompose_MalformedDurationFails(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"subtasks":[{"title":"A (trip)","duration":"soon"},{"title":"B (trip)","duration":"PT1H"}]}`,
		`{"subtasks":[{"title":"A (trip)","duration":"soon"},{"title":"B (trip)","duration":"PT1H"}]}`,
	}}

	task := booking.ClassifiedTask{Title: "Plan trip", Type: booking.TaskComplex}
	_, err := Decompose(context.Background(), client, task)
	var stageErr *booking.StageError
	if !errors.As(err, &stageErr) || stageErr.Kind != booking.KindLDInvalid {
		t.Errorf("got error %v, want LD_INVALID", err)
	}
}

package absresolve

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/llm"
)

type fakeClient struct {
	response string
}

func (f *fakeClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return f.response, nil
}

func (f *fakeClient) ChatJSON(ctx context.Context, messages []llm.Message, result any) error {
	return json.Unmarshal([]byte(f.response), result)
}

func TestBuildContext(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	now := time.Date(2025, 11, 18, 0, 0, 0, 0, loc) // a Tuesday

	tctx := BuildContext(now, "America/New_York")

	if tctx.TodayDOWIndex != int(time.Tuesday) {
		t.Errorf("got dow index %d, want %d", tctx.TodayDOWIndex, time.Tuesday)
	}
	if len(tctx.NextOccurrences) != 7 {
		t.Fatalf("got %d next occurrences, want 7", len(tctx.NextOccurrences))
	}
	wantNextMonday := "November 24, 2025 12:00 am"
	if tctx.NextMonday != wantNextMonday {
		t.Errorf("got next monday %q, want %q", tctx.NextMonday, wantNextMonday)
	}
}

func TestResolve(t *testing.T) {
	client := &fakeClient{response: `{"start_text":"November 19, 2025 2:00 pm","end_text":null,"duration":"30 minutes"}`}

	loc, _ := time.LoadLocation("America/New_York")
	now := time.Date(2025, 11, 18, 0, 0, 0, 0, loc)
	tctx := BuildContext(now, "America/New_York")

	text := "tomorrow at 2pm"
	raw := booking.RawSlot{StartText: &text, Duration: strPtr("30 minutes")}

	got, err := Resolve(context.Background(), client, raw, tctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StartText == nil || *got.StartText != "November 19, 2025 2:00 pm" {
		t.Errorf("got start_text %v", got.StartText)
	}
	if got.Duration == nil || *got.Duration != "30 minutes" {
		t.Errorf("got duration %v", got.Duration)
	}
}

func strPtr(s string) *string { return &s }

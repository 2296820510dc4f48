package slotextract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/llm"
)

// fakeClient scripts a sequence of ChatJSON responses, one per call, to
// exercise the retry-once-then-fail path deterministically.
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeClient) ChatJSON(ctx context.Context, messages []llm.Message, result any) error {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return f.errs[i]
	}
	return json.Unmarshal([]byte(f.responses[i]), result)
}

func TestExtract_Success(t *testing.T) {
	client := &fakeClient{responses: []string{`{"start_text":"tomorrow at 2pm","end_text":null,"duration":"30 minutes"}`}}

	got, err := Extract(context.Background(), client, booking.Query{Text: "Call mom tomorrow at 2pm for 30 minutes", TZ: "America/New_York"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StartText == nil || *got.StartText != "tomorrow at 2pm" {
		t.Errorf("got start_text %v", got.StartText)
	}
	if got.Duration == nil || *got.Duration != "30 minutes" {
		t.Errorf("got duration %v", got.Duration)
	}
}

func TestExtract_RetriesOnceThenSucceeds(t *testing.T) {
	client := &fakeClient{
		responses: []string{``, `{"start_text":"tomorrow","end_text":null,"duration":null}`},
		errs:       []error{errors.New("malformed json"), nil},
	}

	got, err := Extract(context.Background(), client, booking.Query{Text: "Call mom tomorrow", TZ: "America/New_York"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.calls != 2 {
		t.Errorf("got %d calls, want 2", client.calls)
	}
	if got.StartText == nil || *got.StartText != "tomorrow" {
		t.Errorf("got start_text %v", got.StartText)
	}
}

func TestExtract_FailsAfterRetry(t *testing.T) {
	client := &fakeClient{
		responses: []string{``, ``},
		errs:       []error{errors.New("malformed"), errors.New("still malformed")},
	}

	_, err := Extract(context.Background(), client, booking.Query{Text: "Call mom", TZ: "America/New_York"})
	var stageErr *booking.StageError
	if !errors.As(err, &stageErr) || stageErr.Kind != booking.KindParseLLM {
		t.Errorf("got error %v, want PARSE_LLM", err)
	}
}

func TestExtract_AllFieldsNull(t *testing.T) {
	client := &fakeClient{responses: []string{`{"start_text":null,"end_text":null,"duration":null}`}}

	_, err := Extract(context.Background(), client, booking.Query{Text: "Call mom", TZ: "America/New_York"})
	var stageErr *booking.StageError
	if !errors.As(err, &stageErr) || stageErr.Kind != booking.KindParseLLM {
		t.Errorf("got error %v, want PARSE_LLM", err)
	}
}

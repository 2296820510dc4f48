// Package decompose implements Decomposer: the LLM-backed stage that
// breaks a complex task into 2-5 ordered, boundedly-sized subtasks.
package decompose

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/dateutil"
	"github.com/javiermolinar/chronoscribe/internal/llm"
)

// MaxSubtaskDuration is the per-subtask cap, PT3H.
const MaxSubtaskDuration = 3 * time.Hour

const minSubtasks = 2
const maxSubtasks = 5

const systemPromptTemplate = `You decompose a complex task into an ordered sequence of subtasks.

Parent task: %q

Return a JSON object:
{"subtasks": [{"title": string, "duration": string}, ...]}

Rules:
- Produce between 2 and 5 subtasks, inclusive.
- Each duration is an ISO-8601 duration ("PT1H30M") no longer than PT3H.
- Order the subtasks so that executing them in this order makes sense
  (earlier steps are prerequisites of later ones).
- Suffix each title with a parenthesized context tag derived from the
  parent task, e.g. "Book flights (Japan trip)", so later calendar
  scanning can group them.
- Return ONLY the JSON object.`

type subtaskJSON struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

type decompositionJSON struct {
	Subtasks []subtaskJSON `json:"subtasks"`
}

// Decompose calls the LLM to split task into subtasks. A decomposition
// that violates the count or duration constraints is retried once with a
// tightened prompt; a second failure is LD_INVALID.
func Decompose(ctx context.Context, client llm.Client, task booking.ClassifiedTask) (booking.DecomposedTask, error) {
	systemPrompt := fmt.Sprintf(systemPromptTemplate, task.Title)
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: task.Title},
	}

	subtasks, err := requestAndValidate(ctx, client, messages)
	if err != nil {
		tightened := append(append([]llm.Message{}, messages...), llm.Message{
			Role: "user",
			Content: fmt.Sprintf(
				"Your previous response was invalid (%v). Produce exactly 2 to 5 subtasks, "+
					"each with a duration no longer than PT3H, strictly as the JSON object requested.", err,
			),
		})
		subtasks, err = requestAndValidate(ctx, client, tightened)
		if err != nil {
			return booking.DecomposedTask{}, booking.NewLDInvalidError(err.Error())
		}
	}

	return booking.DecomposedTask{ClassifiedTask: task, Subtasks: subtasks}, nil
}

func requestAndValidate(ctx context.Context, client llm.Client, messages []llm.Message) ([]booking.SubtaskSpec, error) {
	var out decompositionJSON
	if err := client.ChatJSON(ctx, messages, &out); err != nil {
		return nil, fmt.Errorf("malformed LLM output: %w", err)
	}

	if len(out.Subtasks) < minSubtasks || len(out.Subtasks) > maxSubtasks {
		return nil, fmt.Errorf("got %d subtasks, want between %d and %d", len(out.Subtasks), minSubtasks, maxSubtasks)
	}

	subtasks := make([]booking.SubtaskSpec, len(out.Subtasks))
	for i, s := range out.Subtasks {
		d, err := dateutil.ParseISODuration(s.Duration)
		if err != nil {
			return nil, fmt.Errorf("subtask %d: malformed duration %q: %w", i, s.Duration, err)
		}
		if d > MaxSubtaskDuration {
			return nil, fmt.Errorf("subtask %d: duration %s exceeds PT3H", i, s.Duration)
		}
		if s.Title == "" {
			return nil, fmt.Errorf("subtask %d: empty title", i)
		}
		subtasks[i] = booking.SubtaskSpec{Title: s.Title, Duration: d}
	}

	return subtasks, nil
}

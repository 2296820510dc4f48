// Package slotextract implements SlotExtractor: the first LLM-backed
// stage, which lifts verbatim temporal substrings out of a free-form
// query without resolving any relative expression.
package slotextract

import (
	"context"
	"fmt"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/llm"
)

const systemPrompt = `You extract temporal expressions from a scheduling request.

Given the user's query, return a JSON object with exactly these fields:
{"start_text": string|null, "end_text": string|null, "duration": string|null}

Rules:
- Copy temporal expressions VERBATIM from the query. Do not resolve "tomorrow"
  or "next week" to a date; leave them as written.
- start_text is when the task begins or its only mentioned time.
- end_text is an explicit deadline or end time, if one is stated.
- duration is how long the task takes, if stated (e.g. "30 minutes", "2 hours").
- Never invent a field that is not present in the query. Use null instead.
- At least one of the three fields must be non-null.
- Return ONLY the JSON object, no prose, no markdown fences.`

type rawSlotJSON struct {
	StartText *string `json:"start_text"`
	EndText   *string `json:"end_text"`
	Duration  *string `json:"duration"`
}

// Extract calls the LLM to pull the raw temporal triple out of query.Text.
// A malformed JSON response is retried once with a stricter reminder
// before the stage fails with PARSE_LLM.
func Extract(ctx context.Context, client llm.Client, query booking.Query) (booking.RawSlot, error) {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: query.Text},
	}

	raw, err := chatJSONWithRetry(ctx, client, messages)
	if err != nil {
		return booking.RawSlot{}, booking.NewParseLLMError(booking.StageSE, err)
	}

	slot := booking.RawSlot{StartText: raw.StartText, EndText: raw.EndText, Duration: raw.Duration}
	if slot.Empty() {
		return booking.RawSlot{}, booking.NewParseLLMError(booking.StageSE, fmt.Errorf("no temporal expression found in query"))
	}
	return slot, nil
}

func chatJSONWithRetry(ctx context.Context, client llm.Client, messages []llm.Message) (rawSlotJSON, error) {
	var out rawSlotJSON
	err := client.ChatJSON(ctx, messages, &out)
	if err == nil {
		return out, nil
	}

	retryMessages := append(append([]llm.Message{}, messages...), llm.Message{
		Role:    "user",
		Content: "Your previous response was not valid JSON matching the required schema. Return ONLY the JSON object this time.",
	})
	if err := client.ChatJSON(ctx, retryMessages, &out); err != nil {
		return rawSlotJSON{}, err
	}
	return out, nil
}

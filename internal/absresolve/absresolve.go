// Package absresolve implements AbsoluteResolver: the LLM-backed stage
// that turns a raw, verbatim temporal triple plus a temporal context
// bundle into the canonical absolute-time form TimeStandardizer expects.
package absresolve

import (
	"context"
	"fmt"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/llm"
)

const systemPromptTemplate = `You resolve relative temporal expressions to absolute dates and times.

Temporal context:
  NOW: %s (%s)
  TODAY: %s, day-of-week index %d (0=Sunday), DST active: %t
  END OF TODAY: %s
  END OF WEEK: %s
  END OF MONTH: %s
  NEXT MONDAY: %s
  NEXT 7 DAYS: %v

You will receive a JSON object with up to three fields (start_text, end_text,
duration), each either a verbatim temporal expression or null. Resolve every
non-null start_text/end_text into the canonical form "Month DD, YYYY HH:MM am|pm".
Leave duration exactly as given — do not convert it.

Resolution rules:
- "tomorrow" resolves to the day after TODAY at the time given in the text,
  or 00:00 if no time is given.
- "by X" where X is a weekday or date: start_text defaults to NOW, end_text
  resolves to X at 23:59.
- A bare time-of-day with no day anchor resolves to today if that time is
  still in the future relative to NOW, otherwise to tomorrow.
- Never invent a duration that was not present in the input.
- A null field stays null.

Return ONLY a JSON object: {"start_text": string|null, "end_text": string|null, "duration": string|null}`

type absoluteSlotJSON struct {
	StartText *string `json:"start_text"`
	EndText   *string `json:"end_text"`
	Duration  *string `json:"duration"`
}

// Resolve calls the LLM to turn raw into an AbsoluteSlot under tctx.
func Resolve(ctx context.Context, client llm.Client, raw booking.RawSlot, tctx TemporalContext) (booking.AbsoluteSlot, error) {
	systemPrompt := fmt.Sprintf(systemPromptTemplate,
		tctx.NowISO, tctx.TZ,
		tctx.TodayHuman, tctx.TodayDOWIndex, tctx.IsDST,
		tctx.EndOfToday, tctx.EndOfWeek, tctx.EndOfMonth, tctx.NextMonday, tctx.NextOccurrences,
	)

	userPayload := rawSlotPrompt(raw)
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPayload},
	}

	var out absoluteSlotJSON
	if err := client.ChatJSON(ctx, messages, &out); err != nil {
		retryMessages := append(append([]llm.Message{}, messages...), llm.Message{
			Role:    "user",
			Content: "Your previous response was not valid JSON matching the schema. Return ONLY the JSON object.",
		})
		if err := client.ChatJSON(ctx, retryMessages, &out); err != nil {
			return booking.AbsoluteSlot{}, booking.NewParseLLMError(booking.StageAR, err)
		}
	}

	return booking.AbsoluteSlot{StartText: out.StartText, EndText: out.EndText, Duration: out.Duration}, nil
}

func rawSlotPrompt(raw booking.RawSlot) string {
	slot := absoluteSlotJSON{StartText: raw.StartText, EndText: raw.EndText, Duration: raw.Duration}
	return fmt.Sprintf(`{"start_text":%s,"end_text":%s,"duration":%s}`,
		jsonField(slot.StartText), jsonField(slot.EndText), jsonField(slot.Duration))
}

func jsonField(s *string) string {
	if s == nil {
		return "null"
	}
	return fmt.Sprintf("%q", *s)
}

// Package difficulty implements DifficultyAnalyzer: the stage that
// classifies a query into a simple or complex task, assigns it a writable
// calendar, and titles it.
package difficulty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/llm"
)

// DefaultDuration is the duration assigned to an atomic task whose
// duration was never stated.
const DefaultDuration = 30 * time.Minute

const systemPromptTemplate = `You classify a scheduling request and assign it a calendar.

Available calendars (writable only): %s

Given the user's query, return a JSON object:
{"calendar_title": string, "atomic": bool, "title": string}

Rules:
- calendar_title must be one of the writable calendars listed above. Prefer
  "Work" for professional vocabulary (meetings, reports, clients, reviews)
  and "Home" otherwise, falling back to whichever listed calendar best
  matches if neither exists.
- atomic is true for a single bounded action (one phone call, one email,
  one errand) and false for something requiring multiple steps (a trip, a
  launch, a multi-day plan).
- title is a short imperative phrase, at most 40 characters, describing the
  task (e.g. "Call dentist", "Plan Japan trip").
- Return ONLY the JSON object.`

type classificationJSON struct {
	CalendarTitle string `json:"calendar_title"`
	Atomic        bool   `json:"atomic"`
	Title         string `json:"title"`
}

// Classify turns query plus tsDuration (TimeStandardizer's resolved
// duration, which may be nil) into a ClassifiedTask, matched against
// catalog's writable entries.
func Classify(ctx context.Context, client llm.Client, query booking.Query, tsDuration *time.Duration, catalog []booking.Calendar) (booking.ClassifiedTask, error) {
	systemPrompt := fmt.Sprintf(systemPromptTemplate, writableTitles(catalog))
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: query.Text},
	}

	var out classificationJSON
	if err := client.ChatJSON(ctx, messages, &out); err != nil {
		retryMessages := append(append([]llm.Message{}, messages...), llm.Message{
			Role:    "user",
			Content: "Your previous response was not valid JSON matching the schema. Return ONLY the JSON object.",
		})
		if err := client.ChatJSON(ctx, retryMessages, &out); err != nil {
			return booking.ClassifiedTask{}, booking.NewParseLLMError(booking.StageTD, err)
		}
	}

	calendarID, ok := matchCalendar(catalog, out.CalendarTitle)
	if !ok {
		return booking.ClassifiedTask{}, booking.NewTDNoCalError(out.CalendarTitle)
	}

	task := booking.ClassifiedTask{
		CalendarID: calendarID,
		Title:      truncateTitle(out.Title),
	}

	switch {
	case tsDuration != nil:
		task.Type = booking.TaskSimple
		task.Duration = tsDuration
	case out.Atomic:
		task.Type = booking.TaskSimple
		d := DefaultDuration
		task.Duration = &d
	default:
		task.Type = booking.TaskComplex
		task.Duration = nil
	}

	return task, nil
}

func writableTitles(catalog []booking.Calendar) string {
	var titles []string
	for _, c := range catalog {
		if c.Writable {
			titles = append(titles, c.Title)
		}
	}
	if len(titles) == 0 {
		return "(none)"
	}
	return strings.Join(titles, ", ")
}

func matchCalendar(catalog []booking.Calendar, title string) (string, bool) {
	for _, c := range catalog {
		if c.Writable && strings.EqualFold(c.Title, title) {
			return c.ID, true
		}
	}
	return "", false
}

func truncateTitle(title string) string {
	title = strings.TrimSpace(title)
	const maxLen = 40
	if len(title) <= maxLen {
		return title
	}
	return strings.TrimSpace(title[:maxLen])
}

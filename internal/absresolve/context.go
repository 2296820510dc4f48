package absresolve

import (
	"time"

	"github.com/javiermolinar/chronoscribe/internal/dateutil"
)

// TemporalContext is the bundle of "what time is it" facts AbsoluteResolver
// needs to turn a relative expression into an absolute one, all rendered
// as strings so they can be dropped straight into an LLM prompt.
type TemporalContext struct {
	NowISO          string
	TZ              string
	TodayHuman      string
	TodayDOWIndex   int
	IsDST           bool
	EndOfToday      string
	EndOfWeek       string
	EndOfMonth      string
	NextMonday      string
	NextOccurrences [7]string
}

// BuildContext renders now (already in the query's zone) into a
// TemporalContext.
func BuildContext(now time.Time, tz string) TemporalContext {
	loc := now.Location()
	today := dateutil.TruncateToDay(now)

	endOfToday := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, loc)
	_, sunday := dateutil.WeekRange(today)
	endOfWeek := time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 0, loc)
	endOfMonth := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, loc).Add(-time.Second)

	var nextOccurrences [7]string
	for i := 0; i < 7; i++ {
		nextOccurrences[i] = dateutil.FormatCanonical(today.AddDate(0, 0, i+1))
	}

	nextMonday := today
	for {
		nextMonday = nextMonday.AddDate(0, 0, 1)
		if nextMonday.Weekday() == time.Monday {
			break
		}
	}

	return TemporalContext{
		NowISO:          now.Format(time.RFC3339),
		TZ:              tz,
		TodayHuman:      dateutil.FormatCanonical(today),
		TodayDOWIndex:   int(today.Weekday()),
		IsDST:           isDST(now),
		EndOfToday:      dateutil.FormatCanonical(endOfToday),
		EndOfWeek:       dateutil.FormatCanonical(endOfWeek),
		EndOfMonth:      dateutil.FormatCanonical(endOfMonth),
		NextMonday:      dateutil.FormatCanonical(nextMonday),
		NextOccurrences: nextOccurrences,
	}
}

// isDST reports whether t falls within its zone's daylight-saving period,
// detected by comparing its offset to January's (the standard-time
// reference point in the northern hemisphere, where DST never applies).
func isDST(t time.Time) bool {
	_, tOffset := t.Zone()
	jan := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	_, janOffset := jan.Zone()
	return tOffset != janOffset
}

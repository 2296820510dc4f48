package dateutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Canonical parse/format errors.
var (
	ErrInvalidCanonicalTime = errors.New("time must be in \"Month DD, YYYY HH:MM am|pm\" format")
	ErrInvalidISODuration   = errors.New("duration must be a valid ISO-8601 duration")
	ErrInvalidFlexDuration  = errors.New("duration must be \"N minutes\", \"N hours\", \"H:MM\", or an ISO-8601 duration")
)

// canonicalPattern matches the canonical absolute-time form shared between
// AbsoluteResolver and TimeStandardizer: "Month DD, YYYY HH:MM am|pm".
var canonicalPattern = regexp.MustCompile(`(?i)^([A-Za-z]+)\s+(\d{1,2}),\s+(\d{4})\s+(\d{1,2}):(\d{2})\s*(am|pm)$`)

// ParseCanonical parses the canonical absolute-time string and attaches loc's
// offset at that wall-clock instant (DST-aware, since time.Date resolves the
// offset using the location's own rules for that date).
func ParseCanonical(s string, loc *time.Location) (time.Time, error) {
	m := canonicalPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, ErrInvalidCanonicalTime
	}

	month, err := parseMonthName(m[1])
	if err != nil {
		return time.Time{}, ErrInvalidCanonicalTime
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour12, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	meridiem := strings.ToLower(m[6])

	if day < 1 || day > 31 || hour12 < 1 || hour12 > 12 || minute < 0 || minute > 59 {
		return time.Time{}, ErrInvalidCanonicalTime
	}

	hour24 := to24Hour(hour12, meridiem)
	return time.Date(year, month, day, hour24, minute, 0, 0, loc), nil
}

// FormatCanonical renders t in the canonical "Month DD, YYYY HH:MM am|pm"
// form used between AbsoluteResolver and TimeStandardizer.
func FormatCanonical(t time.Time) string {
	hour12, meridiem := to12Hour(t.Hour())
	return fmt.Sprintf("%s %02d, %04d %d:%02d %s", t.Month().String(), t.Day(), t.Year(), hour12, t.Minute(), meridiem)
}

func to24Hour(hour12 int, meridiem string) int {
	hour := hour12 % 12
	if meridiem == "pm" {
		hour += 12
	}
	return hour
}

func to12Hour(hour24 int) (int, string) {
	meridiem := "am"
	hour := hour24
	if hour24 >= 12 {
		meridiem = "pm"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	return hour, meridiem
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

func parseMonthName(s string) (time.Month, error) {
	if m, ok := monthNames[strings.ToLower(s)]; ok {
		return m, nil
	}
	return 0, ErrInvalidCanonicalTime
}

// isoDurationPattern matches ISO-8601 durations of the form PT#H#M#S (the
// only components TimeStandardizer ever emits or consumes).
var isoDurationPattern = regexp.MustCompile(`(?i)^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration parses an ISO-8601 "PT#H#M#S" duration.
func ParseISODuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0, ErrInvalidISODuration
	}

	var d time.Duration
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		d += time.Duration(h) * time.Hour
	}
	if m[2] != "" {
		min, _ := strconv.Atoi(m[2])
		d += time.Duration(min) * time.Minute
	}
	if m[3] != "" {
		sec, _ := strconv.Atoi(m[3])
		d += time.Duration(sec) * time.Second
	}
	return d, nil
}

// FormatISODuration renders d as "PT#H#M#S", omitting zero components.
// A zero duration renders as "PT0M".
func FormatISODuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Minutes())
	hours := total / 60
	minutes := total % 60
	seconds := int(d.Seconds()) - total*60

	var sb strings.Builder
	sb.WriteString("PT")
	if hours > 0 {
		fmt.Fprintf(&sb, "%dH", hours)
	}
	if minutes > 0 || (hours == 0 && seconds == 0) {
		fmt.Fprintf(&sb, "%dM", minutes)
	}
	if seconds > 0 {
		fmt.Fprintf(&sb, "%dS", seconds)
	}
	return sb.String()
}

// hhmmPattern matches a bare "H:MM" or "HH:MM" duration shorthand.
var hhmmPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// unitPattern matches "N minutes"/"N minute"/"N hours"/"N hour" durations.
var unitPattern = regexp.MustCompile(`(?i)^(\d+)\s*(minute|minutes|min|mins|hour|hours|hr|hrs)$`)

// ParseFlexibleDuration accepts the three duration spellings TimeStandardizer
// must understand: "N minutes"/"N hours", "H:MM", and ISO-8601 "PT...".
func ParseFlexibleDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidFlexDuration
	}

	if strings.HasPrefix(strings.ToUpper(s), "PT") {
		d, err := ParseISODuration(s)
		if err != nil {
			return 0, ErrInvalidFlexDuration
		}
		return d, nil
	}

	if m := hhmmPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if min > 59 {
			return 0, ErrInvalidFlexDuration
		}
		return time.Duration(h)*time.Hour + time.Duration(min)*time.Minute, nil
	}

	if m := unitPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch strings.ToLower(m[2]) {
		case "hour", "hours", "hr", "hrs":
			return time.Duration(n) * time.Hour, nil
		default:
			return time.Duration(n) * time.Minute, nil
		}
	}

	return 0, ErrInvalidFlexDuration
}

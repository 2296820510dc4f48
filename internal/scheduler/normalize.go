package scheduler

import (
	"sort"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

// daySchedule is one calendar day's remaining free availability plus the
// bookkeeping greedy placement needs.
type daySchedule struct {
	date        time.Time // truncated to local midnight
	intervals   []booking.Interval
	tasksPlaced int
}

// normalize splits raw availability at midnight, clips it to the work
// window, subtracts blackouts, discards anything past deadline, and
// groups what remains into day buckets ordered by date.
func normalize(availability []booking.Interval, deadline time.Time, opts Options, cons Constraints) []*daySchedule {
	byDate := map[string]*daySchedule{}
	var order []string

	for _, raw := range availability {
		for _, piece := range splitAtMidnight(raw) {
			loc := piece.Start.Location()
			date := truncateToDate(piece.Start)

			clipped := clipToWorkWindow(piece, date, opts, loc)
			if clipped.Start.After(clipped.End) || !clipped.Start.Before(clipped.End) {
				continue
			}

			free := subtractBlackouts(clipped, date, cons)
			for _, f := range free {
				if f.Start.After(deadline) {
					continue
				}
				if f.End.After(deadline) {
					f.End = deadline
				}
				if !f.Start.Before(f.End) {
					continue
				}

				key := date.Format("2006-01-02")
				ds, ok := byDate[key]
				if !ok {
					ds = &daySchedule{date: date}
					byDate[key] = ds
					order = append(order, key)
				}
				ds.intervals = append(ds.intervals, f)
			}
		}
	}

	sort.Strings(order)
	days := make([]*daySchedule, 0, len(order))
	for _, key := range order {
		ds := byDate[key]
		sort.Slice(ds.intervals, func(i, j int) bool {
			return ds.intervals[i].Start.Before(ds.intervals[j].Start)
		})
		days = append(days, ds)
	}
	return days
}

// splitAtMidnight breaks iv into sub-intervals that each stay within a
// single local calendar day.
func splitAtMidnight(iv booking.Interval) []booking.Interval {
	var out []booking.Interval
	cur := iv.Start
	for cur.Before(iv.End) {
		nextMidnight := truncateToDate(cur).AddDate(0, 0, 1)
		end := iv.End
		if nextMidnight.Before(end) {
			end = nextMidnight
		}
		out = append(out, booking.Interval{Start: cur, End: end})
		cur = end
	}
	return out
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clipToWorkWindow(piece booking.Interval, date time.Time, opts Options, loc *time.Location) booking.Interval {
	workStart := time.Date(date.Year(), date.Month(), date.Day(), opts.WorkStartHour, 0, 0, 0, loc)
	workEnd := time.Date(date.Year(), date.Month(), date.Day(), opts.WorkEndHour, 0, 0, 0, loc)

	start := piece.Start
	if start.Before(workStart) {
		start = workStart
	}
	end := piece.End
	if end.After(workEnd) {
		end = workEnd
	}
	return booking.Interval{Start: start, End: end}
}

func subtractBlackouts(iv booking.Interval, date time.Time, cons Constraints) []booking.Interval {
	free := []booking.Interval{iv}

	apply := func(startMinute, endMinute int) {
		busy := booking.Interval{
			Start: booking.MinutesToTime(date, startMinute),
			End:   booking.MinutesToTime(date, endMinute),
		}
		var next []booking.Interval
		for _, f := range free {
			next = append(next, f.Subtract(busy)...)
		}
		free = next
	}

	for _, wb := range cons.WeeklyBlackouts {
		if wb.Weekday == date.Weekday() {
			apply(wb.StartMinute, wb.EndMinute)
		}
	}
	for _, db := range cons.DateBlackouts {
		if truncateToDate(db.Date).Equal(date) {
			apply(db.StartMinute, db.EndMinute)
		}
	}

	return free
}

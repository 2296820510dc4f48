package scheduler

import (
	"sort"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

// Schedule places len(durations) tasks, in order, across availability so
// they spread as evenly as possible across the days that have room,
// honoring work hours, blackouts, min-gap, per-day caps, and deadline.
//
// It never reorders durations: Assignments[i] always corresponds to
// durations[i]. A task that cannot be placed anywhere fails the whole
// call with a *booking.StageError carrying booking.KindSchedInfeasibleLocal
// (task_index identifies the offender) or booking.KindSchedInfeasibleTotal
// (total demand exceeds total supply before placement is even attempted).
func Schedule(deadline time.Time, availability []booking.Interval, durations []time.Duration, opts Options, cons Constraints) (Result, error) {
	days := normalize(availability, deadline, opts, cons)

	var totalFree time.Duration
	for _, d := range days {
		for _, iv := range d.intervals {
			totalFree += iv.Duration()
		}
	}
	var totalNeed time.Duration
	for _, d := range durations {
		totalNeed += d
	}
	if totalNeed > totalFree {
		return Result{}, booking.NewInfeasibleTotal(int(totalNeed.Minutes()), int(totalFree.Minutes()))
	}

	n := len(durations)
	d := len(days)

	assignments := make([]Assignment, n)
	for i, duration := range durations {
		target := targetDayIndex(i, n, d)

		candidates := rankDays(days, target)
		placed := false
		for _, idx := range candidates {
			ds := days[idx]
			if cons.MaxTasksPerDay > 0 && ds.tasksPlaced >= cons.MaxTasksPerDay {
				continue
			}
			start, ok := findEarliestFit(ds, duration, deadline)
			if !ok {
				continue
			}
			end := start.Add(duration)

			gap := time.Duration(cons.MinGapMinutes) * time.Minute
			ds.intervals = subtractRange(ds.intervals, booking.Interval{Start: start, End: end.Add(gap)})
			ds.tasksPlaced++

			assignments[i] = Assignment{
				TaskIndex: i,
				Duration:  duration,
				Day:       ds.date,
				Start:     start,
				End:       end,
			}
			placed = true
			break
		}
		if !placed {
			return Result{}, booking.NewInfeasibleLocal(i)
		}
	}

	perDay := map[string]int{}
	for _, a := range assignments {
		perDay[a.Day.Format("2006-01-02")]++
	}

	return Result{Assignments: assignments, PerDayCount: perDay}, nil
}

// targetDayIndex computes t_i = round(i*(D-1)/(N-1)), the even-spread
// target for task i out of N, across D non-empty days. A single task or
// a single day collapses to index 0.
func targetDayIndex(i, n, d int) int {
	if n <= 1 || d <= 1 {
		return 0
	}
	// round(x) = floor(x + 0.5) for x >= 0.
	num := i * (d - 1)
	den := n - 1
	return (2*num + den) / (2 * den)
}

// rankDays orders every day index by the lexicographic key
// (|day_index - target|, tasks_already_placed_on_day, day_index).
func rankDays(days []*daySchedule, target int) []int {
	idx := make([]int, len(days))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		da := abs(ia - target)
		db := abs(ib - target)
		if da != db {
			return da < db
		}
		if days[ia].tasksPlaced != days[ib].tasksPlaced {
			return days[ia].tasksPlaced < days[ib].tasksPlaced
		}
		return ia < ib
	})
	return idx
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// findEarliestFit scans ds's free intervals in chronological order for
// the first one with enough room for duration, not running past deadline.
func findEarliestFit(ds *daySchedule, duration time.Duration, deadline time.Time) (time.Time, bool) {
	for _, iv := range ds.intervals {
		if iv.Duration() < duration {
			continue
		}
		end := iv.Start.Add(duration)
		if end.After(deadline) {
			continue
		}
		return iv.Start, true
	}
	return time.Time{}, false
}

// subtractRange removes busy from every interval in intervals, splitting
// as needed, and returns the surviving pieces in order.
func subtractRange(intervals []booking.Interval, busy booking.Interval) []booking.Interval {
	var out []booking.Interval
	for _, iv := range intervals {
		out = append(out, iv.Subtract(busy)...)
	}
	return out
}

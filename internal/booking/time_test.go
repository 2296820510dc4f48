package booking

import (
	"testing"
	"time"
)

func day(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  int
	}{
		{name: "midnight", input: day(0, 0), want: 0},
		{name: "noon", input: day(12, 0), want: 720},
		{name: "quarter past nine", input: day(9, 15), want: 555},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeToMinutes(tt.input); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMinutesToTime(t *testing.T) {
	got := MinutesToTime(day(0, 0), 555)
	want := day(9, 15)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTimesOverlap(t *testing.T) {
	tests := []struct {
		name                   string
		aStart, aEnd           time.Time
		bStart, bEnd           time.Time
		want                   bool
	}{
		{name: "disjoint", aStart: day(9, 0), aEnd: day(10, 0), bStart: day(10, 0), bEnd: day(11, 0), want: false},
		{name: "overlapping", aStart: day(9, 0), aEnd: day(10, 0), bStart: day(9, 30), bEnd: day(10, 30), want: true},
		{name: "contained", aStart: day(9, 0), aEnd: day(12, 0), bStart: day(10, 0), bEnd: day(11, 0), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlapMinutes(t *testing.T) {
	got := OverlapMinutes(day(9, 0), day(10, 0), day(9, 30), day(10, 30))
	if got != 30 {
		t.Errorf("got %d, want 30", got)
	}

	got = OverlapMinutes(day(9, 0), day(10, 0), day(10, 0), day(11, 0))
	if got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestIntervalSubtract(t *testing.T) {
	free := Interval{Start: day(6, 0), End: day(23, 0)}

	t.Run("busy in the middle splits into two", func(t *testing.T) {
		busy := Interval{Start: day(12, 0), End: day(13, 0)}
		got := free.Subtract(busy)
		if len(got) != 2 {
			t.Fatalf("got %d intervals, want 2", len(got))
		}
		if !got[0].End.Equal(day(12, 0)) || !got[1].Start.Equal(day(13, 0)) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("busy at the start leaves one tail interval", func(t *testing.T) {
		busy := Interval{Start: day(6, 0), End: day(9, 0)}
		got := free.Subtract(busy)
		if len(got) != 1 || !got[0].Start.Equal(day(9, 0)) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("busy outside free is a no-op", func(t *testing.T) {
		busy := Interval{Start: day(0, 0), End: day(1, 0)}
		got := free.Subtract(busy)
		if len(got) != 1 || !got[0].Start.Equal(free.Start) || !got[0].End.Equal(free.End) {
			t.Errorf("got %+v", got)
		}
	})
}

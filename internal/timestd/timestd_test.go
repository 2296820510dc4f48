package timestd

import (
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

func strPtr(s string) *string { return &s }

func TestStandardize(t *testing.T) {
	t.Run("start and duration, no end", func(t *testing.T) {
		slot := booking.AbsoluteSlot{
			StartText: strPtr("November 19, 2025 10:00 am"),
			Duration:  strPtr("45 minutes"),
		}
		got, err := Standardize(slot, "America/New_York")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		wantEnd := time.Date(2025, 11, 19, 10, 45, 0, 0, got.Start.Location())
		if !got.End.Equal(wantEnd) {
			t.Errorf("got end %v, want %v", got.End, wantEnd)
		}
		if got.Duration == nil || *got.Duration != 45*time.Minute {
			t.Errorf("got duration %v, want 45m", got.Duration)
		}
	})

	t.Run("start and end, no duration", func(t *testing.T) {
		slot := booking.AbsoluteSlot{
			StartText: strPtr("November 18, 2025 12:00 am"),
			EndText:   strPtr("November 25, 2025 11:59 pm"),
		}
		got, err := Standardize(slot, "America/New_York")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Duration != nil {
			t.Errorf("expected nil duration when only a deadline window is given, got %v", got.Duration)
		}
	})

	t.Run("start only defaults to a two-day window", func(t *testing.T) {
		slot := booking.AbsoluteSlot{StartText: strPtr("November 19, 2025 2:00 pm")}
		got, err := Standardize(slot, "America/New_York")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.End.After(got.Start.Add(24 * time.Hour)) {
			t.Errorf("expected end to extend past the following day, got start=%v end=%v", got.Start, got.End)
		}
	})

	t.Run("unparseable start", func(t *testing.T) {
		slot := booking.AbsoluteSlot{StartText: strPtr("not a time")}
		_, err := Standardize(slot, "America/New_York")
		var stageErr *booking.StageError
		if !errors.As(err, &stageErr) || stageErr.Kind != booking.KindTSParse {
			t.Errorf("got error %v, want TS_PARSE", err)
		}
	})

	t.Run("end before start is an invariant violation", func(t *testing.T) {
		slot := booking.AbsoluteSlot{
			StartText: strPtr("November 20, 2025 10:00 am"),
			EndText:   strPtr("November 19, 2025 10:00 am"),
		}
		_, err := Standardize(slot, "America/New_York")
		var stageErr *booking.StageError
		if !errors.As(err, &stageErr) || stageErr.Kind != booking.KindTSInvariant {
			t.Errorf("got error %v, want TS_INVARIANT", err)
		}
	})

	t.Run("duration longer than explicit window is an invariant violation", func(t *testing.T) {
		slot := booking.AbsoluteSlot{
			StartText: strPtr("November 19, 2025 10:00 am"),
			EndText:   strPtr("November 19, 2025 10:15 am"),
			Duration:  strPtr("30 minutes"),
		}
		_, err := Standardize(slot, "America/New_York")
		var stageErr *booking.StageError
		if !errors.As(err, &stageErr) || stageErr.Kind != booking.KindTSInvariant {
			t.Errorf("got error %v, want TS_INVARIANT", err)
		}
	})

	t.Run("missing start", func(t *testing.T) {
		slot := booking.AbsoluteSlot{Duration: strPtr("30 minutes")}
		_, err := Standardize(slot, "America/New_York")
		var stageErr *booking.StageError
		if !errors.As(err, &stageErr) || stageErr.Kind != booking.KindTSParse {
			t.Errorf("got error %v, want TS_PARSE", err)
		}
	})

	t.Run("invalid zone", func(t *testing.T) {
		slot := booking.AbsoluteSlot{StartText: strPtr("November 19, 2025 10:00 am")}
		_, err := Standardize(slot, "Not/AZone")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

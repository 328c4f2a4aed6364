package timerule

import (
	"testing"
	"time"

	"github.com/julianstephens/carelog/internal/models"
)

// 2026-01-14 is a Wednesday.
func day(hour, minute int) time.Time {
	return time.Date(2026, time.January, 14, hour, minute, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	nine := models.TimeOfDay{Hour: 9, Minute: 0}
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{name: "later today", from: day(8, 0), want: day(9, 0)},
		{name: "already passed rolls to tomorrow", from: day(10, 0), want: day(9, 0).AddDate(0, 0, 1)},
		{name: "exactly now rolls to tomorrow", from: day(9, 0), want: day(9, 0).AddDate(0, 0, 1)},
		{
			name: "end of month",
			from: time.Date(2026, time.January, 31, 23, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(nine, tt.from)
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
			if !got.After(tt.from) {
				t.Errorf("NextOccurrence() = %v is not after %v", got, tt.from)
			}
		})
	}
}

func TestNextOccurrence_KeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// DST starts on 2026-03-08 in the US.
	from := time.Date(2026, time.March, 7, 22, 0, 0, 0, loc)
	got := NextOccurrence(models.TimeOfDay{Hour: 8, Minute: 15}, from)
	if got.Day() != 8 || got.Hour() != 8 || got.Minute() != 15 {
		t.Errorf("NextOccurrence() = %v, want 2026-03-08 08:15 local", got)
	}
}

func TestNextOccurrence_SpringForwardGap(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// 2:00-3:00 does not exist on 2026-03-08.
	from := time.Date(2026, time.March, 8, 0, 0, 0, 0, loc)
	got := NextOccurrence(models.TimeOfDay{Hour: 2, Minute: 30}, from)

	want := time.Date(2026, time.March, 8, 7, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence() = %v, want %v", got, want)
	}
	if got.Hour() != 3 || got.Minute() != 30 {
		t.Errorf("NextOccurrence() wall clock = %02d:%02d, want 03:30", got.Hour(), got.Minute())
	}

	// The next day has no gap and keeps 2:30.
	next := NextOccurrence(models.TimeOfDay{Hour: 2, Minute: 30}, got)
	if next.Day() != 9 || next.Hour() != 2 || next.Minute() != 30 {
		t.Errorf("NextOccurrence() after gap = %v, want 2026-03-09 02:30 local", next)
	}
}

func TestComputeSchedule_OneTime(t *testing.T) {
	at := models.TimeOfDay{Hour: 14, Minute: 30}
	now := day(10, 0)

	t.Run("future date", func(t *testing.T) {
		rule := models.OneTime(models.CalendarDate{Year: 2026, Month: time.January, Day: 20})
		got := ComputeSchedule(rule, at, now)
		if len(got) != 1 {
			t.Fatalf("expected 1 trigger, got %d", len(got))
		}
		want := time.Date(2026, time.January, 20, 14, 30, 0, 0, time.UTC)
		if got[0].Kind != TriggerAt || !got[0].At.Equal(want) {
			t.Errorf("got %+v, want at %v", got[0], want)
		}
	})

	t.Run("past date fires on next occurrence", func(t *testing.T) {
		yesterday := models.DateOf(now).AddDays(-1)
		got := ComputeSchedule(models.OneTime(yesterday), at, now)
		if len(got) != 1 {
			t.Fatalf("expected 1 trigger, got %d", len(got))
		}
		if !got[0].At.After(now) {
			t.Errorf("trigger %v is not after %v", got[0].At, now)
		}
		if !got[0].At.Equal(day(14, 30)) {
			t.Errorf("got %v, want %v", got[0].At, day(14, 30))
		}
	})

	t.Run("today but earlier time rolls to tomorrow", func(t *testing.T) {
		got := ComputeSchedule(models.OneTime(models.DateOf(now)), models.TimeOfDay{Hour: 9}, now)
		want := day(9, 0).AddDate(0, 0, 1)
		if len(got) != 1 || !got[0].At.Equal(want) {
			t.Errorf("got %+v, want at %v", got, want)
		}
	})
}

func TestComputeSchedule_Recurring(t *testing.T) {
	at := models.TimeOfDay{Hour: 8, Minute: 0}
	now := day(10, 0)

	weekly := ComputeSchedule(models.Weekly(models.Friday, models.Monday, models.Monday, models.Weekday(9)), at, now)
	if len(weekly) != 2 {
		t.Fatalf("expected 2 weekly triggers, got %d: %+v", len(weekly), weekly)
	}
	if weekly[0].Weekday != models.Monday || weekly[1].Weekday != models.Friday {
		t.Errorf("unexpected weekdays: %v, %v", weekly[0].Weekday, weekly[1].Weekday)
	}
	for _, tr := range weekly {
		if tr.Kind != TriggerWeekly || tr.Time != at {
			t.Errorf("unexpected trigger %+v", tr)
		}
	}

	if got := ComputeSchedule(models.Weekly(), at, now); len(got) != 0 {
		t.Errorf("expected no triggers for empty weekday set, got %+v", got)
	}

	daily := ComputeSchedule(models.Daily(), at, now)
	if len(daily) != 1 || daily[0].Kind != TriggerDaily {
		t.Errorf("expected one daily trigger, got %+v", daily)
	}

	if got := ComputeSchedule(models.Unscheduled(), at, now); got != nil {
		t.Errorf("expected nil for unscheduled rule, got %+v", got)
	}
	if got := ComputeSchedule(models.RecurrenceRule{}, at, now); got != nil {
		t.Errorf("expected nil for zero rule, got %+v", got)
	}
}

func TestTrigger_Next(t *testing.T) {
	now := day(10, 0)
	tests := []struct {
		name    string
		trigger Trigger
		want    time.Time
	}{
		{
			name:    "daily later today",
			trigger: Trigger{Kind: TriggerDaily, Time: models.TimeOfDay{Hour: 21}},
			want:    day(21, 0),
		},
		{
			name:    "daily passed",
			trigger: Trigger{Kind: TriggerDaily, Time: models.TimeOfDay{Hour: 9}},
			want:    day(9, 0).AddDate(0, 0, 1),
		},
		{
			name:    "weekly next monday",
			trigger: Trigger{Kind: TriggerWeekly, Weekday: models.Monday, Time: models.TimeOfDay{Hour: 9}},
			want:    time.Date(2026, time.January, 19, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "weekly same day later",
			trigger: Trigger{Kind: TriggerWeekly, Weekday: models.Wednesday, Time: models.TimeOfDay{Hour: 11}},
			want:    day(11, 0),
		},
		{
			name:    "weekly same day passed",
			trigger: Trigger{Kind: TriggerWeekly, Weekday: models.Wednesday, Time: models.TimeOfDay{Hour: 9}},
			want:    day(9, 0).AddDate(0, 0, 7),
		},
		{
			name:    "one-time in future",
			trigger: Trigger{Kind: TriggerAt, At: day(12, 0)},
			want:    day(12, 0),
		},
		{
			name:    "one-time in past",
			trigger: Trigger{Kind: TriggerAt, At: day(9, 0)},
			want:    time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.trigger.Next(now)
			if !got.Equal(tt.want) {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrigger_RRuleString(t *testing.T) {
	tests := []struct {
		trigger Trigger
		want    string
	}{
		{Trigger{Kind: TriggerDaily}, "FREQ=DAILY"},
		{Trigger{Kind: TriggerWeekly, Weekday: models.Sunday}, "FREQ=WEEKLY;BYDAY=SU"},
		{Trigger{Kind: TriggerWeekly, Weekday: models.Weekday(0)}, ""},
		{Trigger{Kind: TriggerAt, At: day(9, 0)}, ""},
	}
	for _, tt := range tests {
		if got := tt.trigger.RRuleString(); got != tt.want {
			t.Errorf("RRuleString(%+v) = %q, want %q", tt.trigger, got, tt.want)
		}
	}
}

package epitime

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEpiDateOf(t *testing.T) {
	cases := []struct {
		name      string
		day       time.Time
		weekStart time.Weekday
		want      EpiDate
	}{
		{"week one contains january 4th", date(2024, time.January, 4), time.Sunday, EpiDate{2024, 1}},
		{"late december rolls into next epi year", date(2023, time.December, 31), time.Sunday, EpiDate{2024, 1}},
		{"day before the year rollover", date(2023, time.December, 30), time.Sunday, EpiDate{2023, 52}},
		{"mid year week", date(2024, time.April, 28), time.Sunday, EpiDate{2024, 18}},
		{"monday week start", date(2024, time.January, 1), time.Monday, EpiDate{2024, 1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := EpiDateOf(c.day, c.weekStart)
			if got != c.want {
				t.Errorf("EpiDateOf(%s) = %d/%d, want %d/%d",
					c.day.Format("2006-01-02"), got.EpiYear, got.EpiWeek, c.want.EpiYear, c.want.EpiWeek)
			}
		})
	}
}

func TestEpiDateOfIgnoresClock(t *testing.T) {
	midnight := EpiDateOf(date(2024, time.April, 28), time.Sunday)
	lateEvening := EpiDateOf(time.Date(2024, time.April, 28, 23, 59, 59, 0, time.UTC), time.Sunday)
	if midnight != lateEvening {
		t.Errorf("epi week changed with the clock: %v vs %v", midnight, lateEvening)
	}
}

func TestEpiDateRange(t *testing.T) {
	weeks := EpiDateRange(date(2024, time.April, 28), date(2024, time.May, 11), time.Sunday)
	want := []EpiDate{{2024, 18}, {2024, 19}}
	if len(weeks) != len(want) {
		t.Fatalf("expected %d weeks, got %d", len(want), len(weeks))
	}
	for i := range want {
		if weeks[i] != want[i] {
			t.Errorf("week %d = %v, want %v", i, weeks[i], want[i])
		}
	}
}

func TestEpiDateRangeInverted(t *testing.T) {
	weeks := EpiDateRange(date(2024, time.May, 11), date(2024, time.April, 28), time.Sunday)
	if len(weeks) != 0 {
		t.Errorf("expected no weeks for inverted range, got %d", len(weeks))
	}
}

func TestDaysRange(t *testing.T) {
	days := DaysRange(date(2024, time.January, 30), date(2024, time.February, 1))
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if !days[1].Equal(date(2024, time.January, 31)) {
		t.Errorf("expected second day to be jan 31, got %s", days[1])
	}

	if got := DaysRange(date(2024, time.February, 1), date(2024, time.January, 30)); len(got) != 0 {
		t.Errorf("expected no days for inverted range, got %d", len(got))
	}
}

func TestWeekStart(t *testing.T) {
	// april 30th 2024 is a tuesday
	ws := WeekStart(date(2024, time.April, 30), time.Sunday)
	if !ws.Equal(date(2024, time.April, 28)) {
		t.Errorf("expected week start apr 28, got %s", ws)
	}

	ws = WeekStart(date(2024, time.April, 28), time.Sunday)
	if !ws.Equal(date(2024, time.April, 28)) {
		t.Errorf("expected week start to be idempotent on the start day, got %s", ws)
	}
}

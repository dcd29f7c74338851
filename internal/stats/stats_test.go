package stats

import (
	"testing"
	"time"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
)

// fixed reference instant so streak math is deterministic
var testNow = time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

// day returns a timestamp n days before testNow.
func day(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestComputeStatsEmptyHistory(t *testing.T) {
	stats := ComputeStats("h1", "Read", nil, testNow)

	if stats.HabitID != "h1" || stats.HabitName != "Read" {
		t.Errorf("expected identity fields to pass through, got %+v", stats)
	}
	if stats.TotalCompletions != 0 {
		t.Errorf("expected 0 total completions, got %d", stats.TotalCompletions)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("expected 0 completion rate, got %f", stats.CompletionRate)
	}
	if stats.CurrentStreak != 0 || stats.LongestStreak != 0 {
		t.Errorf("expected zero streaks, got current=%d longest=%d", stats.CurrentStreak, stats.LongestStreak)
	}
	if stats.LastCompletion != nil {
		t.Errorf("expected nil last completion, got %v", stats.LastCompletion)
	}
}

func TestComputeStatsTodayAndYesterday(t *testing.T) {
	completions := []time.Time{day(1), day(0)}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.CurrentStreak != 2 {
		t.Errorf("expected current streak 2, got %d", stats.CurrentStreak)
	}
	if stats.LongestStreak != 2 {
		t.Errorf("expected longest streak 2, got %d", stats.LongestStreak)
	}
	if stats.LastCompletion == nil || !stats.LastCompletion.Equal(day(0)) {
		t.Errorf("expected last completion %v, got %v", day(0), stats.LastCompletion)
	}
}

func TestComputeStatsStreakEndingYesterdayStillCurrent(t *testing.T) {
	completions := []time.Time{day(2), day(1)}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.CurrentStreak != 2 {
		t.Errorf("expected current streak 2 for run ending yesterday, got %d", stats.CurrentStreak)
	}
}

func TestComputeStatsGapBreaksCurrentStreak(t *testing.T) {
	// Last completion three days ago: the streak is over.
	completions := []time.Time{day(4), day(3)}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.CurrentStreak != 0 {
		t.Errorf("expected current streak 0 after gap, got %d", stats.CurrentStreak)
	}
	if stats.LongestStreak != 2 {
		t.Errorf("expected longest streak 2, got %d", stats.LongestStreak)
	}
}

func TestComputeStatsIsolatedDateCountsAsOne(t *testing.T) {
	completions := []time.Time{day(10)}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.LongestStreak != 1 {
		t.Errorf("expected longest streak 1 for isolated date, got %d", stats.LongestStreak)
	}
	if stats.CurrentStreak != 0 {
		t.Errorf("expected current streak 0, got %d", stats.CurrentStreak)
	}
}

func TestComputeStatsTenConsecutiveDays(t *testing.T) {
	var completions []time.Time
	for i := 9; i >= 0; i-- {
		completions = append(completions, day(i))
	}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.CurrentStreak != 10 {
		t.Errorf("expected current streak 10, got %d", stats.CurrentStreak)
	}
	if stats.LongestStreak != 10 {
		t.Errorf("expected longest streak 10, got %d", stats.LongestStreak)
	}
}

func TestComputeStatsCompletionRateFifteenDays(t *testing.T) {
	var completions []time.Time
	for i := 0; i < 15; i++ {
		completions = append(completions, day(i*2))
	}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.CompletionRate != 50.0 {
		t.Errorf("expected completion rate 50.0, got %f", stats.CompletionRate)
	}
}

func TestComputeStatsDuplicateDayDoesNotInflate(t *testing.T) {
	// Three check-ins today plus one yesterday: raw count is 4 but the
	// calendar-date reductions see only two days.
	completions := []time.Time{day(0), day(0).Add(time.Hour), day(0).Add(2 * time.Hour), day(1)}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.TotalCompletions != 4 {
		t.Errorf("expected total completions 4, got %d", stats.TotalCompletions)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("expected current streak 2, got %d", stats.CurrentStreak)
	}
	wantRate := 2.0 / RateWindowDays * 100
	if stats.CompletionRate != wantRate {
		t.Errorf("expected completion rate %f, got %f", wantRate, stats.CompletionRate)
	}
}

func TestComputeStatsUnorderedInput(t *testing.T) {
	completions := []time.Time{day(0), day(2), day(1)}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.CurrentStreak != 3 {
		t.Errorf("expected current streak 3 from unordered input, got %d", stats.CurrentStreak)
	}
	if stats.LastCompletion == nil || !stats.LastCompletion.Equal(day(0)) {
		t.Errorf("expected last completion %v, got %v", day(0), stats.LastCompletion)
	}
}

func TestComputeStatsOldCompletionsOutsideWindow(t *testing.T) {
	completions := []time.Time{day(40), day(41)}
	stats := ComputeStats("h1", "Read", completions, testNow)

	if stats.CompletionRate != 0 {
		t.Errorf("expected rate 0 for history outside the window, got %f", stats.CompletionRate)
	}
	if stats.LongestStreak != 2 {
		t.Errorf("expected longest streak 2 regardless of window, got %d", stats.LongestStreak)
	}
}

func TestComputeOverviewPreservesOrder(t *testing.T) {
	entries := []HabitCompletions{
		{Habit: models.Habit{ID: "b", Name: "Walk"}, Completions: []time.Time{day(0)}},
		{Habit: models.Habit{ID: "a", Name: "Read"}, Completions: nil},
	}
	overview := ComputeOverview(entries, testNow)

	if len(overview) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(overview))
	}
	if overview[0].HabitID != "b" || overview[1].HabitID != "a" {
		t.Errorf("expected input order preserved, got %s then %s", overview[0].HabitID, overview[1].HabitID)
	}
	if overview[0].CurrentStreak != 1 {
		t.Errorf("expected first entry streak 1, got %d", overview[0].CurrentStreak)
	}
}

func TestProgressSeriesWindow(t *testing.T) {
	completions := []time.Time{day(0), day(2)}
	series := ProgressSeries(completions, 7, testNow)

	if series.TotalDays != 8 {
		t.Errorf("expected 8 cells for a 7-day window, got %d", series.TotalDays)
	}
	if series.CompletedDays != 2 {
		t.Errorf("expected 2 completed days, got %d", series.CompletedDays)
	}
	first := series.Days[0]
	if !first.Date.Equal(dateOf(day(7))) {
		t.Errorf("expected first cell %v, got %v", dateOf(day(7)), first.Date)
	}
	last := series.Days[len(series.Days)-1]
	if !last.Date.Equal(dateOf(testNow)) || !last.Completed {
		t.Errorf("expected last cell today and completed, got %+v", last)
	}
	wantRate := 2.0 / 8.0 * 100
	if series.CompletionRate != wantRate {
		t.Errorf("expected rate %f, got %f", wantRate, series.CompletionRate)
	}
}

func TestProgressSeriesDefaultWindow(t *testing.T) {
	series := ProgressSeries(nil, 0, testNow)

	if series.TotalDays != RateWindowDays+1 {
		t.Errorf("expected %d cells for the default window, got %d", RateWindowDays+1, series.TotalDays)
	}
	if series.CompletedDays != 0 || series.CompletionRate != 0 {
		t.Errorf("expected empty series, got %+v", series)
	}
}

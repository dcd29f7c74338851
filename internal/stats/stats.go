// Package stats implements the streak and statistics engine for HabitTrack.
//
// The engine is a pure function of a habit's completion timestamps and an
// injected reference instant, so results are deterministic and the package
// is safe for unlimited parallel use. All storage access stays in the caller.
package stats

import (
	"sort"
	"time"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
)

// RateWindowDays is the fixed length of the trailing completion-rate window.
// The rate denominator is always this window length, never the sample count.
const RateWindowDays = 30

// HabitCompletions pairs a habit with its completion timestamps for overview
// computation. The caller controls ordering and supplies the history.
type HabitCompletions struct {
	Habit       models.Habit
	Completions []time.Time
}

// ComputeStats derives statistics from one habit's completion history.
//
// Timestamps may arrive unordered; the engine sorts internally. Streaks are
// computed over calendar dates, so multiple completions on the same date
// count once. The 30-day completion rate also counts distinct dates: a day
// with three check-ins contributes one qualifying day, keeping the rate
// bounded at 100%.
func ComputeStats(habitID, name string, completions []time.Time, now time.Time) models.HabitStats {
	stats := models.HabitStats{
		HabitID:          habitID,
		HabitName:        name,
		TotalCompletions: len(completions),
	}
	if len(completions) == 0 {
		return stats
	}

	sorted := make([]time.Time, len(completions))
	copy(sorted, completions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	last := sorted[len(sorted)-1]
	stats.LastCompletion = &last

	dates := uniqueDates(sorted)
	stats.CompletionRate = completionRate(dates, now)
	stats.CurrentStreak = currentStreak(dates, now)
	stats.LongestStreak = longestStreak(dates)
	return stats
}

// ComputeOverview derives statistics for each supplied habit, preserving the
// input order. The engine imposes no reordering; callers decide whether the
// sequence follows name, creation time, or store listing order.
func ComputeOverview(entries []HabitCompletions, now time.Time) []models.HabitStats {
	overview := make([]models.HabitStats, 0, len(entries))
	for _, e := range entries {
		overview = append(overview, ComputeStats(e.Habit.ID, e.Habit.Name, e.Completions, now))
	}
	return overview
}

// dateOf reduces a timestamp to its calendar date, normalized to UTC midnight
// so dates compare with Equal regardless of the source location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// uniqueDates reduces sorted timestamps to their distinct calendar dates,
// ascending.
func uniqueDates(sorted []time.Time) []time.Time {
	var dates []time.Time
	for _, t := range sorted {
		d := dateOf(t)
		if len(dates) == 0 || !d.Equal(dates[len(dates)-1]) {
			dates = append(dates, d)
		}
	}
	return dates
}

// completionRate returns the percentage of the trailing RateWindowDays window
// with at least one completion. Zero when no date falls inside the window.
func completionRate(dates []time.Time, now time.Time) float64 {
	windowStart := dateOf(now).AddDate(0, 0, -RateWindowDays)
	qualifying := 0
	for _, d := range dates {
		if d.After(windowStart) {
			qualifying++
		}
	}
	return float64(qualifying) / float64(RateWindowDays) * 100
}

// currentStreak walks dates from the most recent backward. A streak is
// current only when its most recent date is today or yesterday relative to
// now; earlier dates extend it while each is exactly one day before the
// previous counted date.
func currentStreak(dates []time.Time, now time.Time) int {
	current := dateOf(now)
	streak := 0
	for i := len(dates) - 1; i >= 0; i-- {
		d := dates[i]
		if d.Equal(current) || d.Equal(current.AddDate(0, 0, -1)) {
			streak++
			current = d
			continue
		}
		break
	}
	return streak
}

// longestStreak scans dates ascending and tracks the longest run of
// consecutive days. An isolated date counts as a run of length 1.
func longestStreak(dates []time.Time) int {
	longest, run := 0, 0
	for i, d := range dates {
		if i > 0 && d.Equal(dates[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Package stats implements the streak and statistics engine for HabitTrack.
//
// This file builds the daily progress series that chart renderers draw from.
package stats

import "time"

// DayCell is one calendar day of a progress series.
type DayCell struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

// Series is the plain chart data for one habit over a trailing window:
// one cell per calendar day plus aggregate counters. Rendering belongs to
// the presentation collaborator.
type Series struct {
	Days           []DayCell `json:"days"`
	CompletedDays  int       `json:"completed_days"`
	TotalDays      int       `json:"total_days"`
	CompletionRate float64   `json:"completion_rate"`
}

// ProgressSeries builds a day-by-day completion series covering the window
// from days before now through now's calendar date, inclusive on both ends.
// Days not positive falls back to RateWindowDays.
func ProgressSeries(completions []time.Time, days int, now time.Time) Series {
	if days <= 0 {
		days = RateWindowDays
	}

	completed := make(map[time.Time]bool, len(completions))
	for _, t := range completions {
		completed[dateOf(t)] = true
	}

	var series Series
	end := dateOf(now)
	for d := end.AddDate(0, 0, -days); !d.After(end); d = d.AddDate(0, 0, 1) {
		done := completed[d]
		series.Days = append(series.Days, DayCell{Date: d, Completed: done})
		if done {
			series.CompletedDays++
		}
	}
	series.TotalDays = len(series.Days)
	series.CompletionRate = float64(series.CompletedDays) / float64(series.TotalDays) * 100
	return series
}

package calendar

import (
	"sort"
	"time"
)

// Working-window boundaries for availability checks, in local hours.
const (
	WorkdayStartHour = 9
	WorkdayEndHour   = 18
)

// WorkdayWindow returns the 09:00-18:00 working window for the day of date
// in date's location.
func WorkdayWindow(date time.Time) TimeRange {
	y, m, d := date.Date()
	loc := date.Location()
	return TimeRange{
		Start: time.Date(y, m, d, WorkdayStartHour, 0, 0, 0, loc),
		End:   time.Date(y, m, d, WorkdayEndHour, 0, 0, 0, loc),
	}
}

// FreeGaps computes the complement of busy within window: the ordered free
// ranges left when every busy interval is subtracted. The provider usually
// returns sorted, disjoint busy blocks, but the input is sorted and
// coalesced anyway so overlapping or out-of-order blocks cannot produce
// phantom gaps. Busy time outside the window is clamped to it.
func FreeGaps(window TimeRange, busy []TimeRange) []TimeRange {
	merged := mergeIntervals(busy)

	var free []TimeRange
	cursor := window.Start

	for _, b := range merged {
		if !b.End.After(window.Start) || !b.Start.Before(window.End) {
			continue
		}
		start := b.Start
		if start.Before(window.Start) {
			start = window.Start
		}
		if start.After(cursor) {
			free = append(free, TimeRange{Start: cursor, End: start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if cursor.Before(window.End) {
		free = append(free, TimeRange{Start: cursor, End: window.End})
	}

	return free
}

// mergeIntervals returns intervals sorted by start with overlapping and
// touching ranges coalesced. The input slice is not modified.
func mergeIntervals(intervals []TimeRange) []TimeRange {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]TimeRange, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []TimeRange{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}

	return merged
}

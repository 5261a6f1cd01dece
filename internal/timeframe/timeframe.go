// Package timeframe implements calendar-day boundary math in the reference
// timezone. Day boundaries are local midnights in that timezone regardless
// of where the process runs; every function takes the current instant as an
// argument so results are deterministic and unit-testable.
package timeframe

import "time"

// DateKeyFormat is the canonical per-day key stored in daily_analytics.
const DateKeyFormat = "2006-01-02"

// DayStart returns the absolute instant of local midnight in loc, daysAgo
// days before the day containing now. daysAgo 0 is today, 1 is yesterday.
//
// The midnight is built with time.Date in the reference location, so the
// UTC offset is resolved for the target day itself. Around a DST
// transition this yields the true local midnight rather than one shifted
// by the current offset. The instant is returned in UTC: stored event
// timestamps are UTC text in SQLite and compare lexically, so a bound
// carrying a local offset would miss rows.
func DayStart(now time.Time, daysAgo int, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()-daysAgo, 0, 0, 0, 0, loc).UTC()
}

// DayRange returns the half-open interval [start, end) covering the
// calendar day daysAgo days before the day containing now.
func DayRange(now time.Time, daysAgo int, loc *time.Location) (time.Time, time.Time) {
	return DayStart(now, daysAgo, loc), DayStart(now, daysAgo-1, loc)
}

// DateKey formats an instant as its calendar date string in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyFormat)
}

package epitime

import (
	"time"
)

// EpiDate identifies one epidemiological week.
type EpiDate struct {
	EpiYear int `json:"epiYear"`
	EpiWeek int `json:"epiWeek"`
}

// TruncateToDate drops the clock portion of t, keeping its location.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns the most recent weekStartDay on or before t, at midnight.
func WeekStart(t time.Time, weekStartDay time.Weekday) time.Time {
	d := TruncateToDate(t)
	offset := (int(d.Weekday()) - int(weekStartDay) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// EpiDateOf computes the epi week containing t. Week one of an epi year is the
// week holding at least four days of January, which is exactly the week
// containing January 4th. Dates falling before week one belong to the last
// week of the previous epi year.
func EpiDateOf(t time.Time, weekStartDay time.Weekday) EpiDate {
	ws := WeekStart(t, weekStartDay)
	// the week belongs to the year owning the majority of its days
	epiYear := ws.AddDate(0, 0, 3).Year()
	anchor := WeekStart(time.Date(epiYear, time.January, 4, 0, 0, 0, 0, t.Location()), weekStartDay)
	week := int(ws.Sub(anchor).Hours()/(24*7)) + 1
	return EpiDate{EpiYear: epiYear, EpiWeek: week}
}

// EpiDateRange enumerates every epi week touched by [startDate, endDate] in
// chronological order. An inverted range yields no weeks.
func EpiDateRange(startDate, endDate time.Time, weekStartDay time.Weekday) []EpiDate {
	if startDate.After(endDate) {
		return []EpiDate{}
	}
	var weeks []EpiDate
	for ws := WeekStart(startDate, weekStartDay); !ws.After(endDate); ws = ws.AddDate(0, 0, 7) {
		weeks = append(weeks, EpiDateOf(ws, weekStartDay))
	}
	return weeks
}

// DaysRange enumerates every calendar day in [startDate, endDate] inclusive.
// An inverted range yields no days.
func DaysRange(startDate, endDate time.Time) []time.Time {
	if startDate.After(endDate) {
		return []time.Time{}
	}
	var days []time.Time
	for d := TruncateToDate(startDate); !d.After(endDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

package cron

import (
	"time"
)

// Schedule maps a point in time to the slot a job owes a run for. A job runs
// at most once per slot; the slot string is what instances agree on.
type Schedule interface {
	Slot(now time.Time) string
}

// Every slices time into fixed UTC windows of d.
func Every(d time.Duration) Schedule {
	return every{d: d}
}

type every struct{ d time.Duration }

func (e every) Slot(now time.Time) string {
	d := e.d
	if d <= 0 {
		d = time.Minute
	}
	return now.UTC().Truncate(d).Format(time.RFC3339)
}

// Daily fires once per day at hour:minute in loc. Slots are keyed by the local
// date of the most recent occurrence, so a worker started after the hour
// still catches up that day's run.
func Daily(hour, minute int, loc *time.Location) Schedule {
	return daily{hour: hour, minute: minute, loc: orUTC(loc)}
}

type daily struct {
	hour, minute int
	loc          *time.Location
}

func (d daily) Slot(now time.Time) string {
	local := now.In(d.loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.loc)
	if local.Before(at) {
		at = at.AddDate(0, 0, -1)
	}
	return at.Format("2006-01-02")
}

// Weekly fires once per week on weekday at hour:minute in loc.
func Weekly(weekday time.Weekday, hour, minute int, loc *time.Location) Schedule {
	return weekly{weekday: weekday, hour: hour, minute: minute, loc: orUTC(loc)}
}

type weekly struct {
	weekday      time.Weekday
	hour, minute int
	loc          *time.Location
}

func (w weekly) Slot(now time.Time) string {
	local := now.In(w.loc)
	back := (int(local.Weekday()) - int(w.weekday) + 7) % 7
	at := time.Date(local.Year(), local.Month(), local.Day()-back, w.hour, w.minute, 0, 0, w.loc)
	if local.Before(at) {
		at = at.AddDate(0, 0, -7)
	}
	return at.Format("2006-01-02")
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

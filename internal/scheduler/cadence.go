package scheduler

import "time"

// Cadence computes when a job should run next.
type Cadence interface {
	// Next returns the first instant strictly after the given time at
	// which the job should fire.
	Next(after time.Time) time.Time
}

type every struct {
	interval time.Duration
}

// Every fires at a fixed interval.
func Every(interval time.Duration) Cadence {
	if interval <= 0 {
		interval = time.Minute
	}
	return every{interval: interval}
}

func (e every) Next(after time.Time) time.Time {
	return after.Add(e.interval)
}

type dailyAt struct {
	hour   int
	minute int
}

// DailyAt fires once per day at the given local wall-clock time.
func DailyAt(hour, minute int) Cadence {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	if minute < 0 || minute > 59 {
		minute = 0
	}
	return dailyAt{hour: hour, minute: minute}
}

func (d dailyAt) Next(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), d.hour, d.minute, 0, 0, after.Location())
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

package store

import (
	"fmt"
	"time"
)

// NextBirthday returns the birthday moved into the year of today, as a
// date at midnight UTC. A Feb 29 birthday falls on Feb 28 when that year
// is not a leap year.
func NextBirthday(birthday string, today time.Time) (time.Time, error) {
	born, err := time.Parse(BirthdayLayout, birthday)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse birthday %q: %w", birthday, err)
	}

	year := today.Year()
	month, day := born.Month(), born.Day()
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// DaysUntil counts calendar days from today to date, ignoring the time of
// day. Negative when date is in the past.
func DaysUntil(date, today time.Time) int {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// BirthdayWithin reports whether the birthday, moved to the current year,
// is in [0, days) days from today.
func BirthdayWithin(birthday string, today time.Time, days int) (bool, error) {
	next, err := NextBirthday(birthday, today)
	if err != nil {
		return false, err
	}
	n := DaysUntil(next, today)
	return n >= 0 && n < days, nil
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

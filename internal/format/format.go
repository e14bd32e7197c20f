// Package format renders numbers, ages, timestamps and durations as display text.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// TimestampLayout matches the terminal "last login" style, e.g. "Tue Jun 3 14:01:52".
const TimestampLayout = "Mon Jan 2 15:04:05"

// Number formats n with comma thousands separators, e.g. 1234567 -> "1,234,567".
func Number(n int) string {
	return humanize.Comma(int64(n))
}

// Plural returns "s" unless n is exactly one.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Age returns the calendar distance between birth and now as
// "Y years, M months, D days". Zero components are left out.
// On the birthday itself a cake is appended.
func Age(birth, now time.Time) string {
	years, months, days := calendarDiff(birth, now)

	var parts []string
	if years > 0 {
		parts = append(parts, fmt.Sprintf("%d year%s", years, Plural(years)))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%d month%s", months, Plural(months)))
	}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d day%s", days, Plural(days)))
	}
	if len(parts) == 0 {
		parts = append(parts, "0 days")
	}

	age := strings.Join(parts, ", ")
	if months == 0 && days == 0 {
		age += " 🎂"
	}
	return age
}

// calendarDiff counts whole years, then whole months, then remaining days
// from birth to now. Both are reduced to their calendar dates.
func calendarDiff(birth, now time.Time) (years, months, days int) {
	from := dateOf(birth)
	to := dateOf(now)
	if to.Before(from) {
		return 0, 0, 0
	}

	total := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if addMonths(from, total).After(to) {
		total--
	}
	anchor := addMonths(from, total)
	days = int(to.Sub(anchor).Hours() / 24)

	return total / 12, total % 12, days
}

// addMonths adds n months to t, clamping the day to the end of the target month.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// dateOf keeps t's calendar date and moves it to UTC midnight so day counts
// are not skewed by daylight saving transitions.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BuildTimestamp formats now in loc using TimestampLayout.
// A nil loc means UTC.
func BuildTimestamp(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(TimestampLayout)
}

// Duration renders d in seconds above one second and in milliseconds otherwise,
// right-aligned to a fixed width so timing lines stack up.
func Duration(d time.Duration) string {
	var s string
	if d > time.Second {
		s = fmt.Sprintf("%.4f s ", d.Seconds())
	} else {
		s = fmt.Sprintf("%.4f ms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%12s", s)
}

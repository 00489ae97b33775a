// Package cutoff models the two semi-monthly payroll windows: days 1-15 and day 16 to month end.
package cutoff

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var ErrInvalidRange = errors.New("end date is before start date")

type Cutoff string

const (
	First  Cutoff = "1st"
	Second Cutoff = "2nd"
)

// workingDaysRule enumerates Monday through Saturday.
const workingDaysRule = "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR,SA"

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// For derives the cutoff a period belongs to from its start date.
func For(start time.Time) Cutoff {
	if start.Day() <= 15 {
		return First
	}
	return Second
}

func LastDayOfMonth(t time.Time) int {
	return MonthEnd(t).Day()
}

func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// Period is an inclusive date range.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod normalizes both bounds to calendar dates.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: Day(start), End: Day(end)}
	if p.End.Before(p.Start) {
		return Period{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
	}
	return p, nil
}

// FirstHalf is days 1-15 of t's month.
func FirstHalf(t time.Time) Period {
	start := MonthStart(t)
	return Period{Start: start, End: start.AddDate(0, 0, 14)}
}

// SecondHalf is day 16 to the last day of t's month.
func SecondHalf(t time.Time) Period {
	start := MonthStart(t)
	return Period{Start: start.AddDate(0, 0, 15), End: MonthEnd(t)}
}

// Previous returns the most recently closed cutoff as of now.
func Previous(now time.Time) Period {
	if now.Day() >= 16 {
		return FirstHalf(now)
	}
	return SecondHalf(MonthStart(now).AddDate(0, 0, -1))
}

func (p Period) Cutoff() Cutoff {
	return For(p.Start)
}

// IsFullMonth reports a range from the 1st to the last day of one month.
func (p Period) IsFullMonth() bool {
	return p.Start.Day() == 1 &&
		p.Start.Year() == p.End.Year() && p.Start.Month() == p.End.Month() &&
		p.End.Day() == LastDayOfMonth(p.End)
}

// EndsInSecondHalf reports whether the period closes on or after the 16th, which is when
// month-level bonuses and deferred contributions apply.
func (p Period) EndsInSecondHalf() bool {
	return p.End.Day() >= 16
}

// Sibling is the first cutoff of the month the period ends in.
func (p Period) Sibling() Period {
	return FirstHalf(p.End)
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d time.Time) bool {
	day := Day(d)
	return !day.Before(p.Start) && !day.After(p.End)
}

// Covers reports whether q lies entirely inside p.
func (p Period) Covers(q Period) bool {
	return p.Contains(q.Start) && p.Contains(q.End)
}

// Days lists every calendar date in the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string {
	return p.Start.Format(time.DateOnly) + ".." + p.End.Format(time.DateOnly)
}

// ExpectedWorkingDays counts the Monday-Saturday dates in the period.
func (p Period) ExpectedWorkingDays() (int, error) {
	opt, err := rrule.StrToROption(workingDaysRule)
	if err != nil {
		return 0, fmt.Errorf("failed to parse working days rule: %w", err)
	}
	opt.Dtstart = p.Start
	opt.Until = p.End

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return 0, fmt.Errorf("failed to build working days rule: %w", err)
	}

	return len(rule.Between(p.Start, p.End, true)), nil
}

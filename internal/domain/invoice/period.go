package invoice

import (
	"fmt"
	"time"
)

// Period identifies the invoice a charge lands on: the calendar month the
// invoice is due.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// AddMonths returns the period n months after p, rolling the year over.
func (p Period) AddMonths(n int) Period {
	total := p.Year*12 + int(p.Month) - 1 + n
	return Period{
		Year:  total / 12,
		Month: time.Month(total%12 + 1),
	}
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// ResolvePeriod determines which invoice a purchase made on date belongs to,
// for a card that closes its statement on closingDay and collects payment on
// dueDay.
//
// A purchase after the closing day has already missed the current statement
// and moves to the next month. When the due day falls on or before the
// closing day, the invoice for a given statement is only collected in the
// month after it closes, so the period shifts one more month.
func ResolvePeriod(date time.Time, closingDay, dueDay int) Period {
	p := Period{Year: date.Year(), Month: date.Month()}

	if date.Day() > closingDay {
		p = p.AddMonths(1)
	}
	if dueDay <= closingDay {
		p = p.AddMonths(1)
	}

	return p
}

// DueDate returns the concrete due date of the invoice for period p, clamping
// dueDay to the last day of shorter months (Feb 30 becomes Feb 28/29).
func (p Period) DueDate(dueDay int) time.Time {
	day := dueDay
	if last := daysInMonth(p.Year, p.Month); day > last {
		day = last
	}
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped advances t by n calendar months, clamping the day of month
// instead of overflowing (Jan 31 + 1 month is Feb 28, not Mar 3).
func AddMonthsClamped(t time.Time, n int) time.Time {
	total := t.Year()*12 + int(t.Month()) - 1 + n
	year := total / 12
	month := time.Month(total%12 + 1)

	day := t.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

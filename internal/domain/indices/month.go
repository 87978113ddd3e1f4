package indices

import (
	"fmt"
	"time"
)

// Month identifies a calendar month. Index points are keyed by the first day
// of their month, so all interval arithmetic in this package works at month
// granularity.
type Month struct {
	Year int
	Mon  time.Month
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

// Key encodes the month as year*100+month, the ordering key used by the
// prescription window and the index point store.
func (m Month) Key() int {
	return m.Year*100 + int(m.Mon)
}

// First returns the first day of the month in UTC.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	return m.Key() < other.Key()
}

// After reports whether m is strictly later than other.
func (m Month) After(other Month) bool {
	return m.Key() > other.Key()
}

// Next returns the following month.
func (m Month) Next() Month {
	t := m.First().AddDate(0, 1, 0)
	return MonthOf(t)
}

func (m Month) String() string {
	return fmt.Sprintf("%02d/%04d", int(m.Mon), m.Year)
}

// MonthsBetween returns the whole-month distance from from to to. Negative
// when to precedes from.
func MonthsBetween(from, to Month) int {
	return (to.Year*12 + int(to.Mon)) - (from.Year*12 + int(from.Mon))
}

// OverdueMonths computes the months in arrears between a due date and the
// reference date: the whole-month difference, plus one when the reference
// day has already passed the due day. Zero when the installment is not yet
// due.
func OverdueMonths(dueDate, referenceDate time.Time) int {
	if !referenceDate.After(dueDate) {
		return 0
	}
	months := MonthsBetween(MonthOf(dueDate), MonthOf(referenceDate))
	if referenceDate.Day() > dueDate.Day() {
		months++
	}
	if months < 0 {
		return 0
	}
	return months
}

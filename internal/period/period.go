// Package period implements the calendar-month billing arithmetic: which
// (month, year) a payment covers and when access bought for it ends.
package period

import "time"

// Period identifies the calendar month a subscription payment applies to.
type Period struct {
	Month time.Month
	Year  int
}

// Current returns the billing period for the given local time.
func Current(now time.Time) Period {
	return Period{Month: now.Month(), Year: now.Year()}
}

func (p Period) Equal(month, year int) bool {
	return int(p.Month) == month && p.Year == year
}

// SubscriptionEnd returns the moment access paid at "now" runs out: the 5th
// day of the next calendar month at 23:59:59 local time. Paying on the 3rd
// or the 31st of March both buy access until April 5th.
func SubscriptionEnd(now time.Time) time.Time {
	year := now.Year()
	month := now.Month() + 1
	if now.Month() == time.December {
		month = time.January
		year++
	}
	return time.Date(year, month, 5, 23, 59, 59, 0, now.Location())
}

// FirstDeadline is the payment cutoff for the running month: the 5th, 23:59:59.
func FirstDeadline(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 5, 23, 59, 59, 0, now.Location())
}

// SecondDeadline is the late-payment cutoff: the 20th, 23:59:59.
func SecondDeadline(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 20, 23, 59, 59, 0, now.Location())
}

// InPaymentWindow reports whether the regular payment collection window is
// open (days 1-5 and 15-20 of each month).
func InPaymentWindow(now time.Time) bool {
	day := now.Day()
	return (day >= 1 && day <= 5) || (day >= 15 && day <= 20)
}

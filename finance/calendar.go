/*
calendar.go - Mapping schedule periods onto calendar dates

PURPOSE:
  The amortization engine works in period indexes (1..n). This file maps
  those indexes onto calendar due dates and computes the adjudication
  release date, which is where the points system's waiting days land.

WAITING DAYS:
  A programmed-plan borrower's vehicle is not released the instant the
  adjudication month is paid: an administrative delay applies, shrunk by
  the borrower's points standing (see points package). Waiting days shift
  ONLY the release date. The adjudication month itself is a pure function
  of the schedule and never moves.

DATE STEPPING:
  Due dates step by calendar months from the contract start date. Month
  stepping uses time.AddDate, so a January 31 start normalizes the same
  way across the year (Go's standard month arithmetic).

SEE ALSO:
  - engine.go: Produces the schedule this file dates
  - points/standing.go: Produces the waiting-days value
*/
package finance

import "time"

// PaymentDates returns the due date of each period: period k is due k
// calendar months after startDate. The slice is index-aligned with the
// schedule (dates[0] is payment number 1).
func PaymentDates(startDate time.Time, termMonths int) []time.Time {
	dates := make([]time.Time, termMonths)
	for k := 1; k <= termMonths; k++ {
		dates[k-1] = startDate.AddDate(0, k, 0)
	}
	return dates
}

// AdjudicationReleaseDate returns the calendar date the vehicle is actually
// released: the adjudication month's due date plus the borrower's waiting
// days. Returns the zero time for results without an adjudication event
// (immediate plans).
func AdjudicationReleaseDate(result *CalculatorResult, startDate time.Time, waitingDays int) time.Time {
	if result.AdjudicationMonth == 0 {
		return time.Time{}
	}
	if waitingDays < 0 {
		waitingDays = 0
	}
	due := startDate.AddDate(0, result.AdjudicationMonth, 0)
	return due.AddDate(0, 0, waitingDays)
}

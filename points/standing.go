/*
standing.go - Standing tiers and the waiting-days scheduler

PURPOSE:
  Maps a borrower's current points to a standing tier, and each tier to
  the number of waiting days: the administrative delay between the
  adjudication month's due date and the vehicle actually being released.
  Good payment behavior shrinks the delay; that is the entire incentive
  the points system exists for.

CLASSIFICATION:
  Thresholds are descending cutoffs with INCLUSIVE comparison, so every
  integer point value maps to exactly one tier and a value sitting
  exactly on a cutoff takes the higher tier:

    points >= excellent  ->  excellent
    points >= good       ->  good
    points >= average    ->  average
    points >= poor       ->  poor
    otherwise            ->  bad

  Defaults: 100/80/60/40 with waiting days 0/7/15/30/45.

PURITY:
  Resolve has no side effects and no persisted state; standing is
  re-derived from the current Summary on every query. The full per-tier
  table is returned so the UI can show what an improvement would earn.

SEE ALSO:
  - types.go: Summarize, which produces the points value fed in here
  - finance/calendar.go: Where waiting days land on the calendar
*/
package points

import (
	"errors"
	"fmt"
)

// =============================================================================
// STANDING - tier classification
// =============================================================================

// Standing is a borrower's tier.
type Standing string

const (
	StandingExcellent Standing = "excellent"
	StandingGood      Standing = "good"
	StandingAverage   Standing = "average"
	StandingPoor      Standing = "poor"
	StandingBad       Standing = "bad"
)

// Thresholds are the descending point cutoffs for the four named tiers;
// anything below Poor is "bad".
type Thresholds struct {
	Excellent int
	Good      int
	Average   int
	Poor      int
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: 100, Good: 80, Average: 60, Poor: 40}
}

// ErrThresholdOrder is returned when cutoffs are not strictly descending.
var ErrThresholdOrder = errors.New("thresholds must be strictly descending")

// Validate checks that the cutoffs partition the integers cleanly.
func (t Thresholds) Validate() error {
	if t.Excellent <= t.Good || t.Good <= t.Average || t.Average <= t.Poor {
		return fmt.Errorf("%w: %d/%d/%d/%d", ErrThresholdOrder,
			t.Excellent, t.Good, t.Average, t.Poor)
	}
	return nil
}

// WaitingDaysTable maps each tier to its waiting days.
type WaitingDaysTable struct {
	Excellent int
	Good      int
	Average   int
	Poor      int
	Bad       int
}

// DefaultWaitingDays returns the standard per-tier delays.
func DefaultWaitingDays() WaitingDaysTable {
	return WaitingDaysTable{Excellent: 0, Good: 7, Average: 15, Poor: 30, Bad: 45}
}

// Days returns the waiting days for one tier.
func (w WaitingDaysTable) Days(s Standing) int {
	switch s {
	case StandingExcellent:
		return w.Excellent
	case StandingGood:
		return w.Good
	case StandingAverage:
		return w.Average
	case StandingPoor:
		return w.Poor
	default:
		return w.Bad
	}
}

// =============================================================================
// RESOLUTION
// =============================================================================

// TierRow is one row of the display table: the tier, its minimum points
// (nil for the bottom tier, which has no floor), and its waiting days.
type TierRow struct {
	Standing    Standing
	MinPoints   *int
	WaitingDays int
}

// WaitingDaysInfo is the resolved standing for one borrower plus the full
// table for display.
type WaitingDaysInfo struct {
	CurrentPoints int
	Standing      Standing
	WaitingDays   int
	Table         []TierRow
}

// Classify maps a point balance to its tier. Comparison is inclusive: a
// balance exactly on a cutoff takes the higher tier.
func Classify(currentPoints int, t Thresholds) Standing {
	switch {
	case currentPoints >= t.Excellent:
		return StandingExcellent
	case currentPoints >= t.Good:
		return StandingGood
	case currentPoints >= t.Average:
		return StandingAverage
	case currentPoints >= t.Poor:
		return StandingPoor
	default:
		return StandingBad
	}
}

// Resolve maps a point balance to its tier and waiting days, with the full
// per-tier table attached. Pure: no side effects, no persisted state.
func Resolve(currentPoints int, t Thresholds, w WaitingDaysTable) WaitingDaysInfo {
	standing := Classify(currentPoints, t)
	excellent, good, average, poor := t.Excellent, t.Good, t.Average, t.Poor
	return WaitingDaysInfo{
		CurrentPoints: currentPoints,
		Standing:      standing,
		WaitingDays:   w.Days(standing),
		Table: []TierRow{
			{Standing: StandingExcellent, MinPoints: &excellent, WaitingDays: w.Excellent},
			{Standing: StandingGood, MinPoints: &good, WaitingDays: w.Good},
			{Standing: StandingAverage, MinPoints: &average, WaitingDays: w.Average},
			{Standing: StandingPoor, MinPoints: &poor, WaitingDays: w.Poor},
			{Standing: StandingBad, MinPoints: nil, WaitingDays: w.Bad},
		},
	}
}

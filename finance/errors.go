/*
errors.go - Centralized error types for the financing engine

PURPOSE:
  All engine error types in one place. Callers (API layer) branch on the
  sentinel errors with errors.Is() and render the structured variants,
  which carry the offending field and the bounds that were violated.

ERROR CATEGORIES:
  1. Invalid input   - caller-correctable, reported synchronously, no retry
  2. Unsupported plan - configuration/programming error, fatal to the call
  3. Invariant violation - schedule failed to land at zero balance; a bug
     in the engine, never swallowed

SEE ALSO:
  - engine.go: Produces these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTerm is returned when the requested term falls outside the
	// plan's [MinTermMonths, MaxTermMonths] range.
	ErrInvalidTerm = errors.New("term outside plan bounds")

	// ErrInvalidPrice is returned for a non-positive vehicle price.
	ErrInvalidPrice = errors.New("vehicle price must be positive")

	// ErrInvalidDownPayment is returned when an immediate-plan down payment
	// is below the plan minimum.
	ErrInvalidDownPayment = errors.New("down payment below plan minimum")

	// ErrUnsupportedPlanType is returned for an unknown plan type. This is a
	// configuration error, not a user error.
	ErrUnsupportedPlanType = errors.New("unsupported plan type")

	// ErrPlanConfig is returned when the plan itself violates its invariants.
	ErrPlanConfig = errors.New("invalid plan configuration")

	// ErrScheduleImbalance is returned when the computed schedule does not
	// reach a zero balance. It indicates a bug in the engine.
	ErrScheduleImbalance = errors.New("schedule did not amortize to zero balance")
)

// =============================================================================
// STRUCTURED ERRORS - Carry field-level context
// =============================================================================

// InvalidTermError reports a term outside the plan bounds.
type InvalidTermError struct {
	TermMonths int
	Min, Max   int
}

func (e *InvalidTermError) Error() string {
	return fmt.Sprintf("term of %d months outside plan bounds [%d, %d]", e.TermMonths, e.Min, e.Max)
}

func (e *InvalidTermError) Unwrap() error { return ErrInvalidTerm }

// InvalidPriceError reports a non-positive vehicle price.
type InvalidPriceError struct {
	Price decimal.Decimal
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("vehicle price %s is not positive", e.Price)
}

func (e *InvalidPriceError) Unwrap() error { return ErrInvalidPrice }

// InvalidDownPaymentError reports a down payment below the plan minimum.
type InvalidDownPaymentError struct {
	Provided decimal.Decimal
	Minimum  decimal.Decimal
}

func (e *InvalidDownPaymentError) Error() string {
	return fmt.Sprintf("down payment %s below minimum %s", e.Provided, e.Minimum)
}

func (e *InvalidDownPaymentError) Unwrap() error { return ErrInvalidDownPayment }

// UnsupportedPlanTypeError reports an unknown plan type.
type UnsupportedPlanTypeError struct {
	PlanType string
}

func (e *UnsupportedPlanTypeError) Error() string {
	return fmt.Sprintf("unsupported plan type %q", e.PlanType)
}

func (e *UnsupportedPlanTypeError) Unwrap() error { return ErrUnsupportedPlanType }

// PlanConfigError reports a malformed plan configuration.
type PlanConfigError struct {
	PlanID string
	Field  string
	Detail string
}

func (e *PlanConfigError) Error() string {
	return fmt.Sprintf("plan %q: invalid %s: %s", e.PlanID, e.Field, e.Detail)
}

func (e *PlanConfigError) Unwrap() error { return ErrPlanConfig }

// ScheduleImbalanceError reports the residual balance left after the final
// period. Any non-zero residual is a bug: the final period is defined to
// absorb all rounding.
type ScheduleImbalanceError struct {
	Residual decimal.Decimal
}

func (e *ScheduleImbalanceError) Error() string {
	return fmt.Sprintf("schedule left residual balance %s after final period", e.Residual)
}

func (e *ScheduleImbalanceError) Unwrap() error { return ErrScheduleImbalance }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is caller-correctable bad input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTerm) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidDownPayment)
}

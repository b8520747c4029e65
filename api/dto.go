/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY REPRESENTATION:
  Money fields travel as JSON strings ("659.03", not 659.03). Float JSON
  numbers cannot represent cents exactly, and the whole point of the
  engine's decimal arithmetic would be lost at the boundary.

TYPES:
  Calculator:
    CalculateRequest, CalculationDTO, ScheduleItemDTO

  Plans:
    PlanDTO (wraps factory.PlanJSON), CreatePlanRequest

  Points:
    RegisterBorrowerRequest, PaymentReportRequest, CourseRequest,
    AdjustmentRequest, TransactionDTO, SummaryDTO

  Standing:
    StandingDTO, TierRowDTO

  Simulations:
    SimulationDTO

SEE ALSO:
  - handlers.go: Uses these types
  - factory/plan.go: PlanJSON type
*/
package api

import (
	"time"

	"github.com/rubenbolivar/llevateloexpress.com/factory"
	"github.com/rubenbolivar/llevateloexpress.com/finance"
	"github.com/rubenbolivar/llevateloexpress.com/points"
)

// =============================================================================
// CALCULATOR TYPES
// =============================================================================

// CalculateRequest asks for one amortization schedule.
type CalculateRequest struct {
	PlanID       string `json:"plan_id"`
	VehiclePrice string `json:"vehicle_price"`
	TermMonths   int    `json:"term_months"`

	// DownPayment applies to immediate plans only; absent means the plan
	// minimum.
	DownPayment *string `json:"down_payment,omitempty"`

	// StartDate (YYYY-MM-DD) attaches due dates to the schedule rows.
	StartDate string `json:"start_date,omitempty"`

	// BorrowerID, when present, saves the result as a simulation for later
	// retrieval.
	BorrowerID string `json:"borrower_id,omitempty"`
}

// ScheduleItemDTO is one amortization row.
type ScheduleItemDTO struct {
	PaymentNumber       int    `json:"payment_number"`
	Principal           string `json:"principal"`
	Interest            string `json:"interest"`
	TotalPayment        string `json:"total_payment"`
	RemainingBalance    string `json:"remaining_balance"`
	IsAdjudicationEvent bool   `json:"is_adjudication_event,omitempty"`
	DueDate             string `json:"due_date,omitempty"`
}

// CalculationDTO is the full calculator response.
type CalculationDTO struct {
	PlanID       string `json:"plan_id"`
	PlanType     string `json:"plan_type"`
	VehiclePrice string `json:"vehicle_price"`
	TermMonths   int    `json:"term_months"`

	MonthlyPayment string `json:"monthly_payment"`
	TotalInterest  string `json:"total_interest"`
	TotalAmount    string `json:"total_amount"`

	// Programmed plans only.
	AdjudicationMonth   int    `json:"adjudication_month,omitempty"`
	AdjudicationPayment string `json:"adjudication_payment,omitempty"`

	// Immediate plans only.
	DownPayment    string `json:"down_payment,omitempty"`
	FinancedAmount string `json:"financed_amount,omitempty"`

	Schedule []ScheduleItemDTO `json:"schedule"`
}

// =============================================================================
// PLAN TYPES
// =============================================================================

// PlanDTO represents a financing plan in API responses.
type PlanDTO struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	PlanType  string           `json:"plan_type"`
	Config    factory.PlanJSON `json:"config"`
	CreatedAt string           `json:"created_at,omitempty"`
	UpdatedAt string           `json:"updated_at,omitempty"`
}

// CreatePlanRequest is the request to create or update a plan.
type CreatePlanRequest struct {
	Config factory.PlanJSON `json:"config"`
}

// =============================================================================
// POINTS TYPES
// =============================================================================

// RegisterBorrowerRequest enrolls a borrower into the points system.
type RegisterBorrowerRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PaymentReportRequest reports one verified payment.
type PaymentReportRequest struct {
	PaymentID string `json:"payment_id"`
	DueDate   string `json:"due_date"`   // YYYY-MM-DD
	PaidDate  string `json:"paid_date"`  // YYYY-MM-DD

	// Optional amounts enable double-payment detection.
	Amount          string `json:"amount,omitempty"`
	ScheduledAmount string `json:"scheduled_amount,omitempty"`

	// IdempotencyKey deduplicates webhook retries. Defaults to the
	// payment id.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CourseRequest reports a completed educational course.
type CourseRequest struct {
	CourseID       string `json:"course_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// AdjustmentRequest is an administrative point correction.
type AdjustmentRequest struct {
	BorrowerID string `json:"borrower_id"`
	Points     int    `json:"points"`
	Reason     string `json:"reason"`
}

// TransactionDTO represents one ledger entry.
type TransactionDTO struct {
	ID               string `json:"id"`
	BorrowerID       string `json:"borrower_id"`
	EventType        string `json:"event_type"`
	Points           int    `json:"points"`
	Reason           string `json:"reason,omitempty"`
	RelatedPaymentID string `json:"related_payment_id,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// SummaryDTO is the derived point balance.
type SummaryDTO struct {
	BorrowerID       string `json:"borrower_id"`
	CurrentPoints    int    `json:"current_points"`
	LifetimePoints   int    `json:"lifetime_points"`
	TransactionCount int    `json:"transaction_count"`
	LastActivity     string `json:"last_activity,omitempty"`
}

// =============================================================================
// STANDING TYPES
// =============================================================================

// TierRowDTO is one row of the standing table.
type TierRowDTO struct {
	Standing    string `json:"standing"`
	MinPoints   *int   `json:"min_points,omitempty"`
	WaitingDays int    `json:"waiting_days"`
}

// StandingDTO is the resolved standing for one borrower.
type StandingDTO struct {
	BorrowerID    string       `json:"borrower_id"`
	CurrentPoints int          `json:"current_points"`
	Standing      string       `json:"standing"`
	WaitingDays   int          `json:"waiting_days"`
	Table         []TierRowDTO `json:"table"`
}

// =============================================================================
// SIMULATION TYPES
// =============================================================================

// SimulationDTO is one saved calculator result.
type SimulationDTO struct {
	ID        int64          `json:"id"`
	PlanID    string         `json:"plan_id"`
	Result    CalculationDTO `json:"result"`
	CreatedAt string         `json:"created_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCalculationDTO(result *finance.CalculatorResult, dueDates []time.Time) CalculationDTO {
	dto := CalculationDTO{
		PlanID:         result.PlanID,
		PlanType:       string(result.PlanType),
		VehiclePrice:   result.VehiclePrice.String(),
		TermMonths:     result.TermMonths,
		MonthlyPayment: result.MonthlyPayment.String(),
		TotalInterest:  result.TotalInterest.String(),
		TotalAmount:    result.TotalAmount.String(),
		Schedule:       make([]ScheduleItemDTO, len(result.Schedule)),
	}

	switch result.PlanType {
	case finance.PlanProgrammed:
		dto.AdjudicationMonth = result.AdjudicationMonth
		dto.AdjudicationPayment = result.AdjudicationPayment.String()
	case finance.PlanImmediate:
		dto.DownPayment = result.DownPayment.String()
		dto.FinancedAmount = result.FinancedAmount.String()
	}

	for i, item := range result.Schedule {
		row := ScheduleItemDTO{
			PaymentNumber:       item.PaymentNumber,
			Principal:           item.Principal.String(),
			Interest:            item.Interest.String(),
			TotalPayment:        item.TotalPayment.String(),
			RemainingBalance:    item.RemainingBalance.String(),
			IsAdjudicationEvent: item.IsAdjudicationEvent,
		}
		if i < len(dueDates) {
			row.DueDate = dueDates[i].Format("2006-01-02")
		}
		dto.Schedule[i] = row
	}
	return dto
}

func toTransactionDTO(tx points.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:               string(tx.ID),
		BorrowerID:       string(tx.BorrowerID),
		EventType:        string(tx.Type),
		Points:           tx.Points,
		Reason:           tx.Reason,
		RelatedPaymentID: tx.RelatedPaymentID,
		CreatedAt:        tx.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTOs(txs []points.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toSummaryDTO(s points.Summary) SummaryDTO {
	dto := SummaryDTO{
		BorrowerID:       string(s.BorrowerID),
		CurrentPoints:    s.CurrentPoints,
		LifetimePoints:   s.LifetimePoints,
		TransactionCount: s.TransactionCount,
	}
	if !s.LastActivity.IsZero() {
		dto.LastActivity = s.LastActivity.Format(time.RFC3339)
	}
	return dto
}

func toStandingDTO(borrowerID string, info points.WaitingDaysInfo) StandingDTO {
	dto := StandingDTO{
		BorrowerID:    borrowerID,
		CurrentPoints: info.CurrentPoints,
		Standing:      string(info.Standing),
		WaitingDays:   info.WaitingDays,
		Table:         make([]TierRowDTO, len(info.Table)),
	}
	for i, row := range info.Table {
		dto.Table[i] = TierRowDTO{
			Standing:    string(row.Standing),
			MinPoints:   row.MinPoints,
			WaitingDays: row.WaitingDays,
		}
	}
	return dto
}

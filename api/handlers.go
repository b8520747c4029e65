/*
handlers.go - HTTP API handlers for the vehicle-financing service

PURPOSE:
  Exposes the financing calculator and the borrower points system via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Calculator:
    POST   /api/calculator/calculate       Compute an amortization schedule

  Plans:
    GET    /api/plans                      List plan configurations
    POST   /api/plans                      Create/update a plan from JSON
    GET    /api/plans/{id}                 Get one plan

  Borrowers:
    POST   /api/borrowers/{id}/register    Enroll (grants initial points)
    POST   /api/borrowers/{id}/payments    Report a verified payment
    POST   /api/borrowers/{id}/courses     Report a completed course
    GET    /api/borrowers/{id}/points      Point summary
    GET    /api/borrowers/{id}/transactions Transaction history
    GET    /api/borrowers/{id}/standing    Standing tier and waiting days
    GET    /api/borrowers/{id}/simulations Saved calculator results

  Admin:
    POST   /api/admin/adjustments          Manual point correction

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Ledger: Borrower points operations
  - PlanFactory: JSON to FinancingPlan conversion
  - Cache: Calculation result cache
  - Cached plans for quick lookups

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Plan or borrower not found
  - 409: Duplicate idempotency key (retried webhook)
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public; the
  admin routes must sit behind a gateway in production.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rubenbolivar/llevateloexpress.com/factory"
	"github.com/rubenbolivar/llevateloexpress.com/finance"
	"github.com/rubenbolivar/llevateloexpress.com/points"
	"github.com/rubenbolivar/llevateloexpress.com/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Ledger      *points.DefaultLedger
	PlanFactory *factory.PlanFactory
	Cache       CalculationCache
	Logger      *zap.Logger

	Thresholds  points.Thresholds
	WaitingDays points.WaitingDaysTable

	// Cached plans for quick lookups; reloaded on plan writes.
	mu    sync.RWMutex
	plans map[string]*finance.FinancingPlan
}

// NewHandler creates a handler with in-process caching and the default
// standing configuration.
func NewHandler(store *sqlite.Store, ledger *points.DefaultLedger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:       store,
		Ledger:      ledger,
		PlanFactory: factory.NewPlanFactory(),
		Cache:       NewMemoryCache(),
		Logger:      logger,
		Thresholds:  points.DefaultThresholds(),
		WaitingDays: points.DefaultWaitingDays(),
		plans:       make(map[string]*finance.FinancingPlan),
	}
}

// LoadPlans loads all plan configurations from the database into cache.
// When the database holds no plans yet, the two commercial presets are
// seeded so a fresh install is immediately usable.
func (h *Handler) LoadPlans(ctx context.Context) error {
	records, err := h.Store.ListPlans(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		if err := h.seedDefaultPlans(ctx); err != nil {
			return err
		}
		records, err = h.Store.ListPlans(ctx)
		if err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range records {
		plan, err := h.PlanFactory.ParsePlan(r.ConfigJSON)
		if err != nil {
			h.Logger.Warn("skipping invalid plan config",
				zap.String("plan_id", r.ID), zap.Error(err))
			continue
		}
		h.plans[plan.ID] = plan
	}
	return nil
}

func (h *Handler) seedDefaultPlans(ctx context.Context) error {
	presets := []string{
		factory.ProgrammedPurchaseJSON("compra-programada", "Compra Programada", 12, 60, "0"),
		factory.ImmediateCreditJSON("credito-inmediato", "Crédito Inmediato", 6, 36, "12"),
	}
	for _, doc := range presets {
		plan, err := h.PlanFactory.ParsePlan(doc)
		if err != nil {
			return err
		}
		rec := sqlite.PlanRecord{
			ID:         plan.ID,
			Name:       plan.Name,
			PlanType:   string(plan.Type),
			ConfigJSON: doc,
		}
		if err := h.Store.SavePlan(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) planByID(id string) (*finance.FinancingPlan, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	plan, ok := h.plans[id]
	return plan, ok
}

// =============================================================================
// CALCULATOR HANDLERS
// =============================================================================

// Calculate computes an amortization schedule for one plan.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	plan, ok := h.planByID(req.PlanID)
	if !ok {
		writeError(w, http.StatusNotFound, "Plan not found", nil)
		return
	}

	price, err := decimal.NewFromString(req.VehiclePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vehicle_price", err)
		return
	}

	calcReq := finance.CalculationRequest{
		PlanType:     plan.Type,
		VehiclePrice: price,
		TermMonths:   req.TermMonths,
	}
	if req.DownPayment != nil {
		down, err := decimal.NewFromString(*req.DownPayment)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid down_payment", err)
			return
		}
		calcReq.DownPayment = &down
	}

	var startDate time.Time
	if req.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
			return
		}
	}

	key := calculationKey(plan, req)
	if key != "" {
		if cached, ok := h.Cache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		}
	}

	result, err := finance.Calculate(*plan, calcReq)
	if err != nil {
		writeError(w, statusFor(err), "Calculation failed", err)
		return
	}

	var dueDates []time.Time
	if !startDate.IsZero() {
		dueDates = finance.PaymentDates(startDate, result.TermMonths)
	}
	dto := toCalculationDTO(result, dueDates)

	if req.BorrowerID != "" {
		h.saveSimulation(r.Context(), req.BorrowerID, plan.ID, dto)
	}

	body, err := json.Marshal(dto)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode result", err)
		return
	}
	if key != "" {
		if err := h.Cache.Set(r.Context(), key, string(body)); err != nil {
			h.Logger.Warn("calculation cache write failed", zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// calculationKey builds the cache key for one request. Requests carrying a
// start date or a borrower id bypass the cache (dates shift daily and
// simulations must actually be saved), signalled by an empty key. The plan's
// rate and percentages are baked into the key so editing a plan invalidates
// its cached results immediately.
func calculationKey(plan *finance.FinancingPlan, req CalculateRequest) string {
	if req.StartDate != "" || req.BorrowerID != "" {
		return ""
	}
	down := "-"
	if req.DownPayment != nil {
		down = *req.DownPayment
	}
	return fmt.Sprintf("calc:%s:%s:%s:%s:%s:%d:%s",
		plan.ID, plan.AnnualInterestRate, plan.AdjudicationPercentage,
		plan.DownPaymentPercentage, req.VehiclePrice, req.TermMonths, down)
}

func (h *Handler) saveSimulation(ctx context.Context, borrowerID, planID string, dto CalculationDTO) {
	body, err := json.Marshal(dto)
	if err != nil {
		h.Logger.Warn("failed to encode simulation", zap.Error(err))
		return
	}
	_, err = h.Store.SaveSimulation(ctx, sqlite.SimulationRecord{
		BorrowerID: borrowerID,
		PlanID:     planID,
		ResultJSON: string(body),
	})
	if err != nil {
		h.Logger.Warn("failed to save simulation",
			zap.String("borrower_id", borrowerID), zap.Error(err))
	}
}

// ListSimulations returns a borrower's recent saved calculations.
func (h *Handler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	recs, err := h.Store.ListSimulations(r.Context(), borrowerID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list simulations", err)
		return
	}

	dtos := make([]SimulationDTO, 0, len(recs))
	for _, rec := range recs {
		var result CalculationDTO
		if err := json.Unmarshal([]byte(rec.ResultJSON), &result); err != nil {
			h.Logger.Warn("skipping unreadable simulation",
				zap.Int64("id", rec.ID), zap.Error(err))
			continue
		}
		dtos = append(dtos, SimulationDTO{
			ID:        rec.ID,
			PlanID:    rec.PlanID,
			Result:    result,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// ListPlans returns all plan configurations.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPlans(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list plans", err)
		return
	}

	dtos := make([]PlanDTO, 0, len(records))
	for _, rec := range records {
		dto, err := h.toPlanDTO(rec)
		if err != nil {
			continue
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPlan returns one plan configuration.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetPlan(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Plan not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get plan", err)
		return
	}

	dto, err := h.toPlanDTO(rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored plan config is invalid", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreatePlan creates or updates a plan from its JSON configuration.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	plan, err := h.PlanFactory.FromJSON(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan configuration", err)
		return
	}

	doc, err := json.Marshal(req.Config)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode plan config", err)
		return
	}

	rec := sqlite.PlanRecord{
		ID:         plan.ID,
		Name:       plan.Name,
		PlanType:   string(plan.Type),
		ConfigJSON: string(doc),
	}
	if err := h.Store.SavePlan(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save plan", err)
		return
	}

	h.mu.Lock()
	h.plans[plan.ID] = plan
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, PlanDTO{
		ID:       plan.ID,
		Name:     plan.Name,
		PlanType: string(plan.Type),
		Config:   req.Config,
	})
}

func (h *Handler) toPlanDTO(rec sqlite.PlanRecord) (PlanDTO, error) {
	var config factory.PlanJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &config); err != nil {
		h.Logger.Warn("skipping unreadable plan config",
			zap.String("plan_id", rec.ID), zap.Error(err))
		return PlanDTO{}, err
	}
	return PlanDTO{
		ID:        rec.ID,
		Name:      rec.Name,
		PlanType:  rec.PlanType,
		Config:    config,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// =============================================================================
// BORROWER POINTS HANDLERS
// =============================================================================

// RegisterBorrower enrolls a borrower and grants the initial points. Safe to
// retry: the second registration is rejected by idempotency key.
func (h *Handler) RegisterBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID := points.BorrowerID(chi.URLParam(r, "id"))

	var req RegisterBorrowerRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	reason := req.Reason
	if reason == "" {
		reason = "enrollment"
	}

	key := fmt.Sprintf("initial:%s", borrowerID)
	tx, err := h.Ledger.Record(r.Context(), borrowerID, points.EventInitial, reason, "", key)
	if errors.Is(err, points.ErrDuplicateIdempotencyKey) {
		writeError(w, http.StatusConflict, "Borrower already registered", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register borrower", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// ReportPayment records the point events for one verified payment: the
// timeliness event plus a double-payment bonus when the amount qualifies.
// The events land as one atomic batch, so a retried webhook can never leave
// the bonus half-recorded.
func (h *Handler) ReportPayment(w http.ResponseWriter, r *http.Request) {
	borrowerID := points.BorrowerID(chi.URLParam(r, "id"))

	var req PaymentReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PaymentID == "" {
		writeError(w, http.StatusBadRequest, "payment_id is required", nil)
		return
	}

	event, err := parsePaymentEvent(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment report", err)
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = req.PaymentID
	}

	cfg := h.Ledger.Config()
	txs, err := h.Ledger.RecordBatch(r.Context(), borrowerID, points.EventsFor(event, cfg),
		fmt.Sprintf("payment %s", req.PaymentID), req.PaymentID, key)
	if errors.Is(err, points.ErrDuplicateIdempotencyKey) {
		writeError(w, http.StatusConflict, "Payment already reported", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"days_late":    event.DaysLate(),
		"transactions": toTransactionDTOs(txs),
	})
}

func parsePaymentEvent(req PaymentReportRequest) (points.PaymentEvent, error) {
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return points.PaymentEvent{}, fmt.Errorf("invalid due_date: %w", err)
	}
	paid, err := time.Parse("2006-01-02", req.PaidDate)
	if err != nil {
		return points.PaymentEvent{}, fmt.Errorf("invalid paid_date: %w", err)
	}

	event := points.PaymentEvent{
		PaymentID: req.PaymentID,
		DueDate:   due,
		PaidDate:  paid,
	}
	if req.Amount != "" {
		event.Amount, err = decimal.NewFromString(req.Amount)
		if err != nil {
			return points.PaymentEvent{}, fmt.Errorf("invalid amount: %w", err)
		}
	}
	if req.ScheduledAmount != "" {
		event.ScheduledAmount, err = decimal.NewFromString(req.ScheduledAmount)
		if err != nil {
			return points.PaymentEvent{}, fmt.Errorf("invalid scheduled_amount: %w", err)
		}
	}
	return event, nil
}

// CompleteCourse records an educational-course bonus.
func (h *Handler) CompleteCourse(w http.ResponseWriter, r *http.Request) {
	borrowerID := points.BorrowerID(chi.URLParam(r, "id"))

	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "course_id is required", nil)
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = fmt.Sprintf("course:%s:%s", borrowerID, req.CourseID)
	}

	tx, err := h.Ledger.Record(r.Context(), borrowerID, points.EventEducationalCourse,
		fmt.Sprintf("course %s", req.CourseID), "", key)
	if errors.Is(err, points.ErrDuplicateIdempotencyKey) {
		writeError(w, http.StatusConflict, "Course already credited", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record course", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// GetSummary returns the derived point balance.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	borrowerID := points.BorrowerID(chi.URLParam(r, "id"))

	summary, err := h.Ledger.Summary(r.Context(), borrowerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetTransactions returns the borrower's full point history.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	borrowerID := points.BorrowerID(chi.URLParam(r, "id"))

	txs, err := h.Ledger.History(r.Context(), borrowerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// GetStanding resolves the borrower's tier and waiting days from the current
// balance.
func (h *Handler) GetStanding(w http.ResponseWriter, r *http.Request) {
	borrowerID := points.BorrowerID(chi.URLParam(r, "id"))

	summary, err := h.Ledger.Summary(r.Context(), borrowerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get summary", err)
		return
	}

	info := points.Resolve(summary.CurrentPoints, h.Thresholds, h.WaitingDays)
	writeJSON(w, http.StatusOK, toStandingDTO(string(borrowerID), info))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CreateAdjustment appends a signed manual point correction.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BorrowerID == "" {
		writeError(w, http.StatusBadRequest, "borrower_id is required", nil)
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required", nil)
		return
	}

	tx, err := h.Ledger.RecordAdjustment(r.Context(),
		points.BorrowerID(req.BorrowerID), req.Points, req.Reason)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case finance.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, finance.ErrUnsupportedPlanType), errors.Is(err, finance.ErrPlanConfig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, points.ErrDuplicateIdempotencyKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

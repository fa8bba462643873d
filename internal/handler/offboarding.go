package handler

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/offboarding"
)

// OffboardingHandler exposes the offboarding workflow and balance
// disposition over HTTP.
type OffboardingHandler struct {
	orch   *offboarding.Orchestrator
	engine *offboarding.DispositionEngine
	logger hclog.Logger
}

// NewOffboardingHandler creates a new OffboardingHandler.
func NewOffboardingHandler(orch *offboarding.Orchestrator, engine *offboarding.DispositionEngine, logger hclog.Logger) *OffboardingHandler {
	return &OffboardingHandler{orch: orch, engine: engine, logger: logger.Named("handler")}
}

type offboardRequest struct {
	DepartureType     offboarding.DepartureType   `json:"departure_type"`
	DepartureDate     time.Time                   `json:"departure_date"`
	Notes             string                      `json:"notes,omitempty"`
	MarkUnitAvailable bool                        `json:"mark_unit_available,omitempty"`
	EvictionNoticeID  *string                     `json:"eviction_notice_id,omitempty"`
	Deposit           *offboarding.DepositSummary `json:"deposit,omitempty"`
}

// Offboard runs the offboarding saga for a lease.
// POST /v1/leases/{id}/offboard
func (h *OffboardingHandler) Offboard(w http.ResponseWriter, r *http.Request) {
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	leaseID, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	var req offboardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}

	res, err := h.orch.Execute(r.Context(), offboarding.Input{
		LeaseID:           leaseID,
		DepartureType:     req.DepartureType,
		DepartureDate:     req.DepartureDate,
		Notes:             req.Notes,
		MarkUnitAvailable: req.MarkUnitAvailable,
		EvictionNoticeID:  req.EvictionNoticeID,
		Deposit:           req.Deposit,
		Actor:             audit.Actor,
	})
	if err != nil {
		h.logger.Warn("offboarding failed", "lease_id", leaseID, "actor", audit.Actor, "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetStatus reports which offboarding records exist for a lease.
// GET /v1/leases/{id}/offboarding-status
func (h *OffboardingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	st, err := h.orch.Status(r.Context(), leaseID)
	if err != nil {
		offboardingErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetBalance returns the outstanding balance on a lease.
// GET /v1/leases/{id}/balance
func (h *OffboardingHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	bal, err := h.orch.Balance(r.Context(), leaseID)
	if err != nil {
		offboardingErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

type dispositionRequest struct {
	Disposition         offboarding.Disposition `json:"disposition"`
	DepositToApplyCents *int64                  `json:"deposit_to_apply_cents,omitempty"`
}

// DisposeBalance resolves the outstanding balance with the chosen disposition.
// POST /v1/leases/{id}/balance/disposition
func (h *OffboardingHandler) DisposeBalance(w http.ResponseWriter, r *http.Request) {
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	leaseID, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	var req dispositionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}

	res, err := h.engine.Handle(r.Context(), offboarding.DispositionRequest{
		LeaseID:             leaseID,
		Disposition:         req.Disposition,
		DepositToApplyCents: req.DepositToApplyCents,
		Actor:               audit.Actor,
	})
	if err != nil {
		offboardingErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

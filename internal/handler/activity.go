package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/matthewbaird/offboarding/internal/activity"
	"github.com/matthewbaird/offboarding/internal/types"
)

// ActivityHandler serves the per-entity activity stream.
type ActivityHandler struct {
	store  activity.Store
	logger hclog.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store activity.Store, logger hclog.Logger) *ActivityHandler {
	return &ActivityHandler{store: store, logger: logger.Named("activity")}
}

type activityResponse struct {
	Activities []types.ActivityEntry `json:"activities"`
	NextCursor string                `json:"next_cursor,omitempty"`
	TotalCount int                   `json:"total_count"`
	Period     struct {
		Since time.Time `json:"since"`
		Until time.Time `json:"until"`
	} `json:"period"`
}

// GetLeaseActivity returns the activity feed for a lease.
// GET /v1/leases/{id}/activity
func (h *ActivityHandler) GetLeaseActivity(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	h.serve(w, r, "lease", leaseID)
}

// GetEntityActivity returns a chronological activity feed for any entity.
// GET /v1/activity/entity/{entity_type}/{entity_id}
func (h *ActivityHandler) GetEntityActivity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entity_type")
	entityID := chi.URLParam(r, "entity_id")
	if entityType == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "entity_type and entity_id are required")
		return
	}
	h.serve(w, r, entityType, entityID)
}

func (h *ActivityHandler) serve(w http.ResponseWriter, r *http.Request, entityType, entityID string) {
	opts := parseActivityOptions(r)
	entries, nextCursor, totalCount, err := h.store.QueryByEntity(r.Context(), entityType, entityID, opts)
	if err != nil {
		h.logger.Error("activity query failed", "entity_type", entityType, "entity_id", entityID, "error", err)
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", "activity query failed")
		return
	}

	resp := activityResponse{
		Activities: entries,
		NextCursor: nextCursor,
		TotalCount: totalCount,
	}
	if opts.Since != nil {
		resp.Period.Since = *opts.Since
	}
	if opts.Until != nil {
		resp.Period.Until = *opts.Until
	}
	if resp.Activities == nil {
		resp.Activities = []types.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetEntitySummary condenses an entity's activity over a window, 12 months
// by default.
// GET /v1/activity/summary/{entity_type}/{entity_id}
func (h *ActivityHandler) GetEntitySummary(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entity_type")
	entityID := chi.URLParam(r, "entity_id")
	if entityType == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "entity_type and entity_id are required")
		return
	}

	since := time.Now().AddDate(-1, 0, 0)
	if s := r.URL.Query().Get("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			since = t
		}
	}
	until := time.Now()
	opts := activity.QueryOptions{
		Since:     &since,
		Until:     &until,
		MinWeight: "info",
		Limit:     500, // fetch all for aggregation
	}

	entries, _, _, err := h.store.QueryByEntity(r.Context(), entityType, entityID, opts)
	if err != nil {
		h.logger.Error("activity query failed", "entity_type", entityType, "entity_id", entityID, "error", err)
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", "activity query failed")
		return
	}
	writeJSON(w, http.StatusOK, activity.Summarize(entries, entityType, entityID, since, until))
}

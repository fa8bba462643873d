package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/offboarding/internal/activity"
	"github.com/matthewbaird/offboarding/internal/event"
	"github.com/matthewbaird/offboarding/internal/offboarding"
)

type testEnv struct {
	store   *offboarding.MemoryStore
	router  http.Handler
	leaseID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := offboarding.NewMemoryStore()
	acts := activity.NewMemoryStore()
	recorder := event.NewActivityRecorder(acts)
	logger := hclog.NewNullLogger()
	cfg := offboarding.Config{
		StepTimeout: time.Second,
		Retry:       offboarding.RetryPolicy{MaxAttempts: 1},
	}

	owner := "owner-1"
	prop := &offboarding.Property{ID: uuid.NewString(), Name: "Maple Court", OwnerID: &owner}
	unit := &offboarding.Unit{ID: uuid.NewString(), PropertyID: prop.ID, UnitNumber: "2B"}
	tenant := &offboarding.Tenant{ID: uuid.NewString(), FirstName: "Dana", LastName: "Reyes", Email: "dana@example.com"}
	lease := &offboarding.Lease{
		ID:                   uuid.NewString(),
		TenantID:             tenant.ID,
		UnitID:               unit.ID,
		StartDate:            time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		RentAmountCents:      150000,
		SecurityDepositCents: 150000,
		Currency:             "USD",
		Status:               offboarding.LeaseStatusActive,
	}
	overdue := &offboarding.Obligation{
		ID:          uuid.NewString(),
		LeaseID:     lease.ID,
		Description: "March rent",
		AmountCents: 150000,
		DueDate:     time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Status:      offboarding.ObligationOverdue,
	}
	require.NoError(t, store.CreateProperty(ctx, prop))
	require.NoError(t, store.CreateUnit(ctx, unit))
	require.NoError(t, store.CreateTenant(ctx, tenant))
	require.NoError(t, store.CreateLease(ctx, lease))
	require.NoError(t, store.CreateObligation(ctx, overdue))

	return &testEnv{
		store: store,
		router: NewRouter(Config{
			Orchestrator: offboarding.NewOrchestrator(store, recorder, logger, cfg),
			Disposition:  offboarding.NewDispositionEngine(store, recorder, logger, cfg.Retry),
			Activity:     acts,
			Logger:       logger,
		}),
		leaseID: lease.ID,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, actor bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if actor {
		req.Header.Set("X-Actor", "manager@example.com")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

const offboardBody = `{"departure_type":"voluntary","departure_date":"2026-03-31T00:00:00Z","notes":"relocating","mark_unit_available":true}`

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOffboard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/leases/"+env.leaseID+"/offboard", offboardBody, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[offboarding.Result](t, rec)
	assert.True(t, res.Success)
	assert.True(t, res.LeaseTerminated)
	assert.True(t, res.DepartureRecorded)
	assert.True(t, res.UnitMarkedAvailable)
	assert.NotEmpty(t, res.TenantHistoryID)
	assert.NotEmpty(t, res.TurnoverChecklistID)
	assert.Empty(t, res.Errors)

	rec = env.do(t, http.MethodGet, "/v1/leases/"+env.leaseID+"/offboarding-status", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[offboarding.Status](t, rec)
	assert.True(t, st.LeaseTerminated)
	assert.Equal(t, res.DepartureID, st.DepartureID)
	assert.EqualValues(t, 150000, st.OutstandingCents)

	rec = env.do(t, http.MethodGet, "/v1/leases/"+env.leaseID+"/activity", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[activityFeed](t, rec)
	assert.Equal(t, 5, feed.TotalCount)
}

type activityFeed struct {
	TotalCount int `json:"total_count"`
}

func TestOffboard_Failures(t *testing.T) {
	env := newTestEnv(t)
	path := "/v1/leases/" + env.leaseID + "/offboard"

	rec := env.do(t, http.MethodPost, path, offboardBody, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/leases/not-a-uuid/offboard", offboardBody, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, path, `{"departure_type":`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, path, `{"departure_type":"vanished","departure_date":"2026-03-31T00:00:00Z"}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	res := decode[offboarding.Result](t, rec)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)

	rec = env.do(t, http.MethodPost, "/v1/leases/"+uuid.NewString()+"/offboard", offboardBody, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	res = decode[offboarding.Result](t, rec)
	assert.False(t, res.Success)
	assert.False(t, res.LeaseTerminated)
}

func TestBalanceAndDisposition(t *testing.T) {
	env := newTestEnv(t)
	base := "/v1/leases/" + env.leaseID

	rec := env.do(t, http.MethodGet, base+"/balance", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[offboarding.Balance](t, rec)
	assert.EqualValues(t, 150000, bal.TotalOwedCents)
	assert.EqualValues(t, 150000, bal.DepositAvailableCents)

	rec = env.do(t, http.MethodPost, base+"/balance/disposition", `{"disposition":"apply_deposit"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/balance/disposition", `{"disposition":"apply_deposit","deposit_to_apply_cents":200000}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/balance/disposition", `{"disposition":"apply_deposit","deposit_to_apply_cents":150000}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[offboarding.DispositionResult](t, rec)
	assert.EqualValues(t, 150000, res.AppliedCents)
	assert.Zero(t, res.RemainingOwedCents)

	rec = env.do(t, http.MethodGet, base+"/balance", "", false)
	bal = decode[offboarding.Balance](t, rec)
	assert.Zero(t, bal.TotalOwedCents)
	assert.Zero(t, bal.DepositAvailableCents)

	rec = env.do(t, http.MethodGet, "/v1/leases/"+uuid.NewString()+"/balance", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntityActivity(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/v1/leases/"+env.leaseID+"/offboard", offboardBody, true)

	lease, err := env.store.GetLease(context.Background(), env.leaseID)
	require.NoError(t, err)
	rec := env.do(t, http.MethodGet, "/v1/activity/entity/tenant/"+lease.TenantID+"?category=lease", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[activityFeed](t, rec)
	assert.Equal(t, 3, feed.TotalCount)
}

func TestEntitySummary(t *testing.T) {
	env := newTestEnv(t)
	body := `{"departure_type":"eviction","departure_date":"2026-03-31T00:00:00Z"}`
	rec := env.do(t, http.MethodPost, "/v1/leases/"+env.leaseID+"/offboard", body, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/v1/activity/summary/lease/"+env.leaseID, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[activity.Summary](t, rec)
	assert.Equal(t, "critical", summary.Sentiment)
	assert.Equal(t, 3, summary.Categories["lease"].Count)
	require.NotEmpty(t, summary.MostSevereEvents)
	assert.Equal(t, "lease_terminated", summary.MostSevereEvents[0].EventType)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
	"github.com/kilianp07/evroute/core/vehicle"
	"github.com/kilianp07/evroute/infra/store"
)

type fakePlanner struct {
	err   error
	calls int
}

func (f *fakePlanner) Plan(_ context.Context, req trip.Request) (model.TripPlan, error) {
	f.calls++
	if f.err != nil {
		return model.TripPlan{}, f.err
	}
	v, _ := vehicle.Default().Get(req.Vehicle)
	return model.TripPlan{
		ID:            fmt.Sprintf("plan-%d", f.calls),
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		Vehicle:       v,
		DriveMode:     model.DriveNormal,
		Route:         model.Route{DistanceKm: 145, DurationH: 3},
		Energy:        model.EnergyAdjustment{BaseKWh: 20, FinalKWh: 24.75},
		SoC:           trip.ComputeSoC(req.StartSoCPct, 24.75, v.UsableKWh),
		Chargers:      []model.Charger{},
		ChargingCost:  198,
		CreatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (f *fakePlanner) Vehicles() *vehicle.Catalog { return vehicle.Default() }

type fixture struct {
	srv     *httptest.Server
	planner *fakePlanner
}

func newFixture(t *testing.T, withAccounts bool) *fixture {
	t.Helper()
	fp := &fakePlanner{}
	d := Deps{Planner: fp}
	if withAccounts {
		st, err := store.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		svc, err := auth.NewService(st, auth.Options{
			Secret:     []byte("0123456789abcdef0123"),
			TTL:        time.Hour,
			Issuer:     "evroute",
			BcryptCost: bcrypt.MinCost,
		})
		require.NoError(t, err)
		d.Accounts = svc
		d.Trips = st
	}
	s, err := New(d)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, planner: fp}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/auth/register", "", auth.Registration{
		Username: "asha", Email: "asha@example.com", Password: "s3cret-pass", DriveMode: "Eco",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "asha", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	assert.Equal(t, "Eco", out.User.DriveMode)
	return out.Token
}

var bangaloreMysore = trip.Request{
	StartLocation: "Bangalore", EndLocation: "Mysore", Vehicle: "Tata Nexon EV", DriveMode: "Normal", StartSoCPct: 80,
}

func TestHealthAndVehicles(t *testing.T) {
	f := newFixture(t, true)
	resp := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/vehicles", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Vehicles   []model.Vehicle   `json:"vehicles"`
		DriveModes []model.DriveMode `json:"drive_modes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Vehicles, len(vehicle.Presets))
	assert.Equal(t, model.DriveModes, out.DriveModes)
}

func TestPlanAnonymousIsNotSaved(t *testing.T) {
	f := newFixture(t, true)
	resp := f.do(t, http.MethodPost, "/api/plan", "", bangaloreMysore)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out planResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "plan-1", out.ID)
	assert.Zero(t, out.TripID)
	assert.InDelta(t, 24.75, out.Energy.FinalKWh, 1e-9)

	tok := f.token(t)
	resp = f.do(t, http.MethodGet, "/api/trips", tok, nil)
	var trips []model.TripRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trips))
	assert.Empty(t, trips)
}

func TestPlanWithTokenIsSaved(t *testing.T) {
	f := newFixture(t, true)
	tok := f.token(t)
	for i := 0; i < 2; i++ {
		resp := f.do(t, http.MethodPost, "/api/plan", tok, bangaloreMysore)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out planResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.NotZero(t, out.TripID)
	}

	resp := f.do(t, http.MethodGet, "/api/trips?limit=1", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var trips []model.TripRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trips))
	require.Len(t, trips, 1)
	assert.Equal(t, "Mysore", trips[0].EndLocation)
	assert.Equal(t, 180, trips[0].DurationMinutes)

	resp = f.do(t, http.MethodGet, "/api/trips/stats", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st model.TripStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 2, st.TotalTrips)
	assert.InDelta(t, 49.5, st.TotalEnergyKWh, 1e-9)

	resp = f.do(t, http.MethodGet, "/api/trips/export?format=csv", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	rows, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	resp = f.do(t, http.MethodGet, "/api/trips/export?format=xml", tok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlanErrors(t *testing.T) {
	f := newFixture(t, true)
	cases := map[string]struct {
		err  error
		code int
	}{
		"invalid":   {fmt.Errorf("%w: soc", trip.ErrInvalidRequest), http.StatusBadRequest},
		"vehicle":   {trip.ErrUnknownVehicle, http.StatusBadRequest},
		"not found": {fmt.Errorf("geocode: %w", trip.ErrLocationNotFound), http.StatusNotFound},
		"no route":  {trip.ErrNoRoute, http.StatusUnprocessableEntity},
		"upstream":  {fmt.Errorf("osrm: connection refused"), http.StatusBadGateway},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f.planner.err = tc.err
			resp := f.do(t, http.MethodPost, "/api/plan", "", bangaloreMysore)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

func TestPlanRejectsBadBody(t *testing.T) {
	f := newFixture(t, false)
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/plan", strings.NewReader(`{"start_location":`))
	require.NoError(t, err)
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, f.planner.calls)
}

func TestAuthFailures(t *testing.T) {
	f := newFixture(t, true)
	_ = f.token(t)

	resp := f.do(t, http.MethodPost, "/api/auth/register", "", auth.Registration{
		Username: "asha", Email: "other@example.com", Password: "s3cret-pass",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/register", "", auth.Registration{
		Username: "bob", Email: "not-an-email", Password: "s3cret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/register", "", auth.Registration{
		Username: "bob", Email: "bob@example.com", Password: strings.Repeat("p", 73),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "asha", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/trips", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/trips", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/plan", "garbage", bangaloreMysore)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccountsDisabled(t *testing.T) {
	f := newFixture(t, false)
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "a", Password: "b"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp = f.do(t, http.MethodGet, "/api/trips", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/plan", "", bangaloreMysore)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, false)
	resp := f.do(t, http.MethodGet, "/api/plan", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestNewRequiresPlanner(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

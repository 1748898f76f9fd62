package api

import (
	"net/http"

	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
)

func (s *Server) listVehicles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicles":    s.planner.Vehicles().List(),
		"drive_modes": model.DriveModes,
	})
}

type planResponse struct {
	model.TripPlan
	TripID int64 `json:"trip_id,omitempty"`
}

// plan is public. A valid bearer token additionally stores the trip in the
// caller's history; an invalid one is rejected.
func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	userID, authed, err := s.optionalUser(r)
	if err != nil {
		s.fail(w, err, http.StatusUnauthorized)
		return
	}
	var req trip.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	p, err := s.planner.Plan(r.Context(), req)
	if err != nil {
		s.fail(w, err, http.StatusBadGateway)
		return
	}
	resp := planResponse{TripPlan: p}
	if authed && s.trips != nil {
		rec := trip.RecordFromPlan(p, userID)
		if err := s.trips.SaveTrip(r.Context(), &rec); err != nil {
			s.log.Warnf("save trip %s: %v", p.ID, err)
		} else {
			resp.TripID = rec.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
	"github.com/kilianp07/evroute/pkg/export"
)

// maxExport bounds the rows of a history export.
const maxExport = 10000

// maxLimit bounds the limit query parameter of the history listing.
const maxLimit = 100

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if s.accounts == nil {
		s.fail(w, errUnavailable, http.StatusServiceUnavailable)
		return
	}
	var reg auth.Registration
	if err := decodeJSON(w, r, &reg); err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	u, err := s.accounts.Register(r.Context(), reg)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if s.accounts == nil {
		s.fail(w, errUnavailable, http.StatusServiceUnavailable)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	tok, u, err := s.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok, User: u})
}

// optionalUser returns the caller when a bearer token is present. A missing
// header is not an error; a malformed or invalid token is.
func (s *Server) optionalUser(r *http.Request) (int64, bool, error) {
	h := r.Header.Get("Authorization")
	if h == "" || s.accounts == nil {
		return 0, false, nil
	}
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || tok == "" {
		return 0, false, auth.ErrInvalidToken
	}
	id, err := s.accounts.ParseToken(tok)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// authenticated requires a valid bearer token and a configured store.
func (s *Server) authenticated(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.accounts == nil || s.trips == nil {
			s.fail(w, errUnavailable, http.StatusServiceUnavailable)
			return
		}
		id, ok, err := s.optionalUser(r)
		if err == nil && !ok {
			err = auth.ErrInvalidToken
		}
		if err != nil {
			s.fail(w, err, http.StatusUnauthorized)
			return
		}
		next(w, r, id)
	}
}

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request, userID int64) {
	limit := trip.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}
	trips, err := s.trips.ListTrips(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (s *Server) tripStats(w http.ResponseWriter, r *http.Request, userID int64) {
	st, err := s.trips.Stats(r.Context(), userID)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) exportTrips(w http.ResponseWriter, r *http.Request, userID int64) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatJSON
	}
	if format != export.FormatJSON && format != export.FormatCSV {
		http.Error(w, "format must be csv or json", http.StatusBadRequest)
		return
	}
	trips, err := s.trips.ListTrips(r.Context(), userID, maxExport)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", "attachment; filename=trips."+format)
	if err := export.Write(w, format, trips); err != nil {
		s.log.Errorf("export trips: %v", err)
	}
}

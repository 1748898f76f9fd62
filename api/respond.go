package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/core/trip"
)

var errUnavailable = errors.New("feature not configured")

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", trip.ErrInvalidRequest, err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes. Unknown errors map to
// fallback.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, trip.ErrInvalidRequest),
		errors.Is(err, trip.ErrUnknownVehicle),
		errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, trip.ErrLocationNotFound), errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, trip.ErrNoRoute):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable
	}
	return fallback
}

func (s *Server) fail(w http.ResponseWriter, err error, fallback int) {
	code := statusFor(err, fallback)
	if code >= 500 {
		s.log.Errorf("request failed: %v", err)
	}
	http.Error(w, err.Error(), code)
}

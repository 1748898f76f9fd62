// Package api exposes the planner, accounts and trip history over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/core/logger"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
	"github.com/kilianp07/evroute/core/vehicle"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

// Planner plans trips and exposes its vehicle catalog.
type Planner interface {
	Plan(ctx context.Context, req trip.Request) (model.TripPlan, error)
	Vehicles() *vehicle.Catalog
}

// Accounts registers users and issues bearer tokens.
type Accounts interface {
	Register(ctx context.Context, r auth.Registration) (model.User, error)
	Login(ctx context.Context, username, password string) (string, model.User, error)
	ParseToken(tok string) (int64, error)
}

// Deps are the collaborators of the API. Accounts and Trips are optional;
// without them the account and history routes answer 503.
type Deps struct {
	Planner  Planner
	Accounts Accounts
	Trips    trip.Store
	Log      logger.Logger
	// AccessLog receives Apache style access lines when set.
	AccessLog io.Writer
}

// Server holds the HTTP handlers.
type Server struct {
	planner  Planner
	accounts Accounts
	trips    trip.Store
	log      logger.Logger
	access   io.Writer
}

// New returns a Server. A planner is required.
func New(d Deps) (*Server, error) {
	if d.Planner == nil {
		return nil, errors.New("api: planner is required")
	}
	return &Server{
		planner:  d.Planner,
		accounts: d.Accounts,
		trips:    d.Trips,
		log:      logger.OrNop(d.Log),
		access:   d.AccessLog,
	}, nil
}

// Router registers every route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/vehicles", s.listVehicles).Methods(http.MethodGet)
	api.HandleFunc("/plan", s.plan).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/trips", s.authenticated(s.listTrips)).Methods(http.MethodGet)
	api.HandleFunc("/trips/stats", s.authenticated(s.tripStats)).Methods(http.MethodGet)
	api.HandleFunc("/trips/export", s.authenticated(s.exportTrips)).Methods(http.MethodGet)
	return r
}

// Handler wraps the router with panic recovery, CORS and the optional
// access log.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLog{s.log}))(h)
	if s.access != nil {
		h = handlers.LoggingHandler(s.access, h)
	}
	return h
}

// Serve runs the API on cfg.Address until ctx is canceled.
func (s *Server) Serve(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving api on %s", cfg.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if p, ok := s.trips.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["store"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}

type recoveryLog struct{ log logger.Logger }

func (l recoveryLog) Println(v ...any) { l.log.Errorf("panic in handler: %s", fmt.Sprint(v...)) }

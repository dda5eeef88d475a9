// Package web provides the JSON API server consumed by the dashboard UI
// and the CLI.
package web

import (
	"net/http"
	"time"

	"github.com/sauma/portfolio-tracker/internal/alerts"
	"github.com/sauma/portfolio-tracker/internal/auth"
	"github.com/sauma/portfolio-tracker/internal/indicator"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

// timeNow is overridable in tests.
var timeNow = time.Now

// Server is the portfolio API server.
type Server struct {
	props     *property.Service
	visits    *visit.Repository
	lifecycle *visit.Lifecycle
	alerts    *alerts.Engine
	users     *auth.UserStore
	uf        *indicator.Client
	mux       *http.ServeMux
}

// NewServer creates an API server over the given services.
func NewServer(props *property.Service, visits *visit.Repository, lifecycle *visit.Lifecycle, engine *alerts.Engine, users *auth.UserStore, uf *indicator.Client) *Server {
	s := &Server{
		props:     props,
		visits:    visits,
		lifecycle: lifecycle,
		alerts:    engine,
		users:     users,
		uf:        uf,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/properties", s.handleAPIProperties)
	s.mux.HandleFunc("/api/properties/", s.handleAPIProperties)
	s.mux.HandleFunc("/api/visits", s.handleAPIVisits)
	s.mux.HandleFunc("/api/visits/", s.handleAPIVisits)
	s.mux.HandleFunc("/api/alerts", s.handleAPIAlerts)
	s.mux.HandleFunc("/api/reports/", s.handleAPIReports)
	s.mux.HandleFunc("/api/uf", s.handleAPIUF)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sauma/portfolio-tracker/internal/auth"
	"github.com/sauma/portfolio-tracker/internal/lease"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/report"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// handleAPIProperties routes /api/properties requests.
func (s *Server) handleAPIProperties(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/properties")
	path = strings.TrimPrefix(path, "/")

	// /api/properties: list or create
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListProperties(w)
		case http.MethodPost:
			s.apiSaveProperty(w, r, "")
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/properties/{id}/visits
	if strings.HasSuffix(path, "/visits") {
		id := strings.TrimSuffix(path, "/visits")
		switch r.Method {
		case http.MethodGet:
			s.apiListPropertyVisits(w, id)
		case http.MethodPost:
			s.apiAddVisit(w, r, id)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/properties/{id}: show, save, or remove
	switch r.Method {
	case http.MethodGet:
		s.apiGetProperty(w, path)
	case http.MethodPut:
		s.apiSaveProperty(w, r, path)
	case http.MethodDelete:
		s.apiDeleteProperty(w, r, path)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiListProperties returns all properties, post-automaton.
func (s *Server) apiListProperties(w http.ResponseWriter) {
	props, err := s.props.List()
	if err != nil {
		apiError(w, fmt.Sprintf("listing properties: %v", err), http.StatusInternalServerError)
		return
	}
	if props == nil {
		props = []*property.Property{}
	}
	apiJSON(w, props, http.StatusOK)
}

// apiGetProperty returns one property with its visits.
func (s *Server) apiGetProperty(w http.ResponseWriter, id string) {
	p, err := s.props.Get(id)
	if errors.Is(err, property.ErrNotFound) {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("getting property: %v", err), http.StatusInternalServerError)
		return
	}

	visits, err := s.visits.ListByProperty(id)
	if err != nil {
		apiError(w, fmt.Sprintf("listing visits: %v", err), http.StatusInternalServerError)
		return
	}
	if visits == nil {
		visits = []*visit.Visit{}
	}

	apiJSON(w, map[string]interface{}{"property": p, "visits": visits}, http.StatusOK)
}

// leaseConflictResponse is returned when a save needs winner resolution.
type leaseConflictResponse struct {
	Error               string         `json:"error"`
	Winner              string         `json:"winner"`
	PendingWinnerVisits []*visit.Visit `json:"pending_winner_visits"`
}

// apiSaveProperty upserts a property. A save that moves the property into
// LEASED with pending commitments runs the lease resolution: when the
// winner's commitments are already resolved the losers are auto-closed and
// the save commits; otherwise it returns 409 with the blocking visits.
func (s *Server) apiSaveProperty(w http.ResponseWriter, r *http.Request, id string) {
	var p property.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		apiError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if id != "" {
		p.ID = id
	}

	saved, err := s.props.Save(&p)
	if errors.Is(err, property.ErrLeaseResolutionRequired) {
		s.resolveLease(w, &p)
		return
	}
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	apiJSON(w, saved, http.StatusOK)
}

func (s *Server) resolveLease(w http.ResponseWriter, p *property.Property) {
	res, err := lease.Begin(s.props, s.visits, s.lifecycle, p)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if res.State() == lease.StateAwaitingWinnerResolution {
		pending, err := res.PendingWinner()
		if err != nil {
			apiError(w, fmt.Sprintf("listing winner commitments: %v", err), http.StatusInternalServerError)
			return
		}
		apiJSON(w, leaseConflictResponse{
			Error:               "winner has pending commitments; resolve them before closing the lease",
			Winner:              res.Winner(),
			PendingWinnerVisits: pending,
		}, http.StatusConflict)
		return
	}

	if err := res.Commit(); err != nil {
		apiError(w, fmt.Sprintf("committing lease: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, p, http.StatusOK)
}

// apiDeleteProperty removes a property and its visits. Admin only; leased
// properties cannot be deleted.
func (s *Server) apiDeleteProperty(w http.ResponseWriter, r *http.Request, id string) {
	if email := auth.EmailFromContext(r.Context()); email != "" {
		u, err := s.users.GetByEmail(email)
		if err != nil || u.Role != auth.RoleAdmin {
			apiError(w, "only admins can delete properties", http.StatusForbidden)
			return
		}
	}

	err := s.props.Delete(id)
	if errors.Is(err, property.ErrLeasedDelete) {
		apiError(w, "cannot delete a leased property", http.StatusConflict)
		return
	}
	if errors.Is(err, property.ErrNotFound) {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("deleting property: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, map[string]string{"deleted": id}, http.StatusOK)
}

// apiListPropertyVisits returns a property's visits, newest first.
func (s *Server) apiListPropertyVisits(w http.ResponseWriter, propertyID string) {
	visits, err := s.visits.ListByProperty(propertyID)
	if err != nil {
		apiError(w, fmt.Sprintf("listing visits: %v", err), http.StatusInternalServerError)
		return
	}
	if visits == nil {
		visits = []*visit.Visit{}
	}
	apiJSON(w, visits, http.StatusOK)
}

// apiAddVisit records a new visit against a property.
func (s *Server) apiAddVisit(w http.ResponseWriter, r *http.Request, propertyID string) {
	if _, err := s.props.Get(propertyID); errors.Is(err, property.ErrNotFound) {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	} else if err != nil {
		apiError(w, fmt.Sprintf("getting property: %v", err), http.StatusInternalServerError)
		return
	}

	var v visit.Visit
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		apiError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	v.PropertyID = propertyID

	saved, err := s.lifecycle.AddVisit(&v)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	apiJSON(w, saved, http.StatusCreated)
}

// handleAPIVisits routes /api/visits requests.
func (s *Server) handleAPIVisits(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/visits")
	path = strings.TrimPrefix(path, "/")

	// /api/visits: list all
	if path == "" {
		if r.Method != http.MethodGet {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiListVisits(w)
		return
	}

	// /api/visits/{id}/done
	if strings.HasSuffix(path, "/done") {
		if r.Method != http.MethodPost {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiMarkDone(w, strings.TrimSuffix(path, "/done"))
		return
	}

	// /api/visits/{id}/schedule
	if strings.HasSuffix(path, "/schedule") {
		if r.Method != http.MethodPost {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiScheduleAction(w, r, strings.TrimSuffix(path, "/schedule"))
		return
	}

	// /api/visits/{id}
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.apiGetVisit(w, path)
}

func (s *Server) apiListVisits(w http.ResponseWriter) {
	visits, err := s.visits.List()
	if err != nil {
		apiError(w, fmt.Sprintf("listing visits: %v", err), http.StatusInternalServerError)
		return
	}
	if visits == nil {
		visits = []*visit.Visit{}
	}
	apiJSON(w, visits, http.StatusOK)
}

func (s *Server) apiGetVisit(w http.ResponseWriter, id string) {
	v, err := s.visits.GetByID(id)
	if errors.Is(err, visit.ErrNotFound) {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("getting visit: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

func (s *Server) apiMarkDone(w http.ResponseWriter, id string) {
	err := s.lifecycle.MarkDone(id)
	if errors.Is(err, visit.ErrNotFound) {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("marking done: %v", err), http.StatusInternalServerError)
		return
	}

	v, err := s.visits.GetByID(id)
	if err != nil {
		apiError(w, fmt.Sprintf("reading back visit: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

type scheduleRequest struct {
	Action string `json:"action"`
	Date   string `json:"date"`
	Note   string `json:"note"`
}

func (s *Server) apiScheduleAction(w http.ResponseWriter, r *http.Request, id string) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	err := s.lifecycle.ScheduleNewAction(id, req.Action, req.Date, req.Note)
	if errors.Is(err, visit.ErrNotFound) {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := s.visits.GetByID(id)
	if err != nil {
		apiError(w, fmt.Sprintf("reading back visit: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// handleAPIAlerts returns the recomputed alert sets.
func (s *Server) handleAPIAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.alerts.Alerts()
	if err != nil {
		apiError(w, fmt.Sprintf("computing alerts: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, result, http.StatusOK)
}

// handleAPIReports routes /api/reports/{name}.
func (s *Server) handleAPIReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	switch name {
	case "executives":
		s.apiExecutiveReport(w)
	case "stock":
		s.apiStockReport(w)
	default:
		apiError(w, "unknown report", http.StatusNotFound)
	}
}

func (s *Server) apiExecutiveReport(w http.ResponseWriter) {
	visits, err := s.visits.List()
	if err != nil {
		apiError(w, fmt.Sprintf("listing visits: %v", err), http.StatusInternalServerError)
		return
	}
	executives, err := s.users.ExecutiveNames()
	if err != nil {
		apiError(w, fmt.Sprintf("listing executives: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, report.Executives(visits, executives, timeNow()), http.StatusOK)
}

func (s *Server) apiStockReport(w http.ResponseWriter) {
	props, err := s.props.List()
	if err != nil {
		apiError(w, fmt.Sprintf("listing properties: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, report.Stock(props, timeNow()), http.StatusOK)
}

// handleAPIUF returns the current UF reference value, or the last known
// value when the upstream fetch fails.
func (s *Server) handleAPIUF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	v, err := s.uf.Latest()
	if err != nil {
		apiError(w, "uf value unavailable", http.StatusServiceUnavailable)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

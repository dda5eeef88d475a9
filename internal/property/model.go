// Package property provides the property domain model, data access, and the
// status automaton.
package property

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sauma/portfolio-tracker/internal/dates"
)

// Status represents a property's occupancy state. Exactly one holds at any
// time, and exactly the payload matching the status is meaningful.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusLeased      Status = "LEASED"
	StatusNoticeGiven Status = "NOTICE_GIVEN"
)

// Valid returns true if s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusLeased, StatusNoticeGiven:
		return true
	}
	return false
}

// Label returns the display label for the status.
func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "Disponible"
	case StatusLeased:
		return "Arrendado"
	case StatusNoticeGiven:
		return "Aviso Entrega"
	default:
		return string(s)
	}
}

// LeaseType represents the renewal terms of a lease contract.
type LeaseType string

const (
	LeaseFixed     LeaseType = "FIXED"
	LeaseRenewable LeaseType = "RENEWABLE"
)

// Valid returns true if t is a known lease type.
func (t LeaseType) Valid() bool {
	return t == LeaseFixed || t == LeaseRenewable
}

// Availability is the status payload for AVAILABLE properties.
type Availability struct {
	VacancyStartDate string `json:"vacancy_start_date"` // YYYY-MM-DD
}

// Notice is the status payload for NOTICE_GIVEN properties.
type Notice struct {
	NoticeEndDate string `json:"notice_end_date"` // YYYY-MM-DD
}

// Lease is the status payload for LEASED properties.
type Lease struct {
	Tenant    string    `json:"tenant"`
	StartDate string    `json:"start_date"` // YYYY-MM-DD
	EndDate   string    `json:"end_date"`   // YYYY-MM-DD
	Type      LeaseType `json:"type"`
}

// Property represents a managed portfolio property.
type Property struct {
	ID          string          `json:"id"` // P-#####
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Commune     string          `json:"commune"`
	Type        string          `json:"type"`
	LandM2      float64         `json:"land_m2"`
	BuiltM2     float64         `json:"built_m2"`
	StorageM2   float64         `json:"storage_m2"`
	Condominium string          `json:"condominium,omitempty"`
	Owner       string          `json:"owner"`
	PriceUF     decimal.Decimal `json:"price_uf"`
	Status      Status          `json:"status"`

	// Status payloads: only the one matching Status is set.
	Availability *Availability `json:"availability,omitempty"`
	Notice       *Notice       `json:"notice,omitempty"`
	Lease        *Lease        `json:"lease,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize clears status payloads that do not match the current status.
// Edits that flip a property between statuses may leave stale payloads
// behind; only the one matching the status is meaningful.
func (p *Property) Normalize() {
	if p.Status != StatusAvailable {
		p.Availability = nil
	}
	if p.Status != StatusNoticeGiven {
		p.Notice = nil
	}
	if p.Status != StatusLeased {
		p.Lease = nil
	}
}

// Validate checks that the property is well-formed and that the payload
// required by its status is present and complete.
func (p *Property) Validate() error {
	if p.Address == "" {
		return fmt.Errorf("address is required")
	}
	if p.Commune == "" {
		return fmt.Errorf("commune is required")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("invalid status: %q", p.Status)
	}
	if p.LandM2 < 0 || p.BuiltM2 < 0 || p.StorageM2 < 0 {
		return fmt.Errorf("surface areas cannot be negative")
	}
	if p.PriceUF.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}

	switch p.Status {
	case StatusAvailable:
		if p.Availability == nil || p.Availability.VacancyStartDate == "" {
			return fmt.Errorf("vacancy start date is required for available properties")
		}
		if !dates.Valid(p.Availability.VacancyStartDate) {
			return fmt.Errorf("invalid vacancy start date: %q", p.Availability.VacancyStartDate)
		}
	case StatusNoticeGiven:
		if p.Notice == nil || p.Notice.NoticeEndDate == "" {
			return fmt.Errorf("notice end date is required for notice-given properties")
		}
		if !dates.Valid(p.Notice.NoticeEndDate) {
			return fmt.Errorf("invalid notice end date: %q", p.Notice.NoticeEndDate)
		}
	case StatusLeased:
		if p.Lease == nil || p.Lease.Tenant == "" {
			return fmt.Errorf("tenant is required for leased properties")
		}
		if !dates.Valid(p.Lease.StartDate) {
			return fmt.Errorf("invalid lease start date: %q", p.Lease.StartDate)
		}
		if !dates.Valid(p.Lease.EndDate) {
			return fmt.Errorf("invalid lease end date: %q", p.Lease.EndDate)
		}
		if p.Lease.Type != "" && !p.Lease.Type.Valid() {
			return fmt.Errorf("invalid lease type: %q", p.Lease.Type)
		}
	}

	return nil
}

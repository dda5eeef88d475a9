package property

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sauma/portfolio-tracker/internal/dates"
	"github.com/sauma/portfolio-tracker/internal/ids"
)

// ErrLeasedDelete is returned when deleting a leased property.
var ErrLeasedDelete = errors.New("cannot delete a leased property")

// ErrLeaseResolutionRequired is returned by Save when a property is entering
// LEASED status while pending commitments exist on it. The lease resolution
// coordinator is the only commit path in that case.
var ErrLeaseResolutionRequired = errors.New("lease resolution required: pending commitments exist")

// PendingCounter reports how many pending commitments exist on a property.
// Implemented by visit.Repository.
type PendingCounter interface {
	CountPendingByProperty(propertyID string) (int, error)
}

// Service provides property business logic: saves with status validation,
// the notice-given rollover automaton, the leased-delete rule, and seeding.
type Service struct {
	repo    *Repository
	pending PendingCounter
	ids     ids.Generator
	now     func() time.Time
}

// NewService creates a property service.
func NewService(repo *Repository, pending PendingCounter, gen ids.Generator) *Service {
	return &Service{repo: repo, pending: pending, ids: gen, now: time.Now}
}

// SetNow overrides the service clock. Tests only.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// List returns all properties after running the status automaton: every
// NOTICE_GIVEN property whose notice end date is strictly before today
// becomes AVAILABLE, with the vacancy anchored at the notice end date.
// Transitions are persisted before returning, so a second call with no time
// passing is a no-op.
func (s *Service) List() ([]*Property, error) {
	properties, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	today := dates.Format(s.now())
	for _, p := range properties {
		if !s.noticeExpired(p, today) {
			continue
		}

		p.Status = StatusAvailable
		p.Availability = &Availability{VacancyStartDate: p.Notice.NoticeEndDate}
		p.Notice = nil
		p.UpdatedAt = s.now()

		if err := s.repo.Update(p); err != nil {
			return nil, fmt.Errorf("persisting status transition for %s: %w", p.ID, err)
		}
		slog.Info("notice period ended, property now available",
			"property", p.ID, "vacancy_start", p.Availability.VacancyStartDate)
	}

	return properties, nil
}

// noticeExpired reports whether p qualifies for the NOTICE_GIVEN -> AVAILABLE
// transition. Absent or malformed dates never qualify.
func (s *Service) noticeExpired(p *Property, today string) bool {
	if p.Status != StatusNoticeGiven || p.Notice == nil {
		return false
	}
	if !dates.Valid(p.Notice.NoticeEndDate) {
		return false
	}
	return p.Notice.NoticeEndDate < today
}

// Get returns a single property by id.
func (s *Service) Get(id string) (*Property, error) {
	return s.repo.GetByID(id)
}

// Save upserts a property. Inserts generate an id and stamp CreatedAt;
// updates preserve CreatedAt. Both stamp UpdatedAt. When the save would move
// the property into LEASED while pending commitments exist on it, Save
// refuses with ErrLeaseResolutionRequired and nothing is persisted.
func (s *Service) Save(p *Property) (*Property, error) {
	return s.save(p, true)
}

// SaveResolved persists a property bypassing the lease-resolution gate.
// Only the lease coordinator calls this, after every winner commitment has
// been resolved and the losers auto-closed.
func (s *Service) SaveResolved(p *Property) (*Property, error) {
	return s.save(p, false)
}

func (s *Service) save(p *Property, gated bool) (*Property, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating property: %w", err)
	}

	if p.ID == "" {
		return s.insert(p)
	}

	existing, err := s.repo.GetByID(p.ID)
	if errors.Is(err, ErrNotFound) {
		return s.insert(p)
	}
	if err != nil {
		return nil, err
	}

	if gated && p.Status == StatusLeased && existing.Status != StatusLeased {
		n, err := s.pending.CountPendingByProperty(p.ID)
		if err != nil {
			return nil, fmt.Errorf("checking pending commitments: %w", err)
		}
		if n > 0 {
			return nil, fmt.Errorf("property %s: %w", p.ID, ErrLeaseResolutionRequired)
		}
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()
	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) insert(p *Property) (*Property, error) {
	if p.ID == "" {
		id, err := s.newID()
		if err != nil {
			return nil, err
		}
		p.ID = id
	}

	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Insert(p); err != nil {
		return nil, err
	}

	return p, nil
}

// newID draws ids from the generator until one is free. The 5-digit space is
// small enough that collisions happen at realistic portfolio sizes.
func (s *Service) newID() (string, error) {
	for i := 0; i < 100; i++ {
		id := s.ids.PropertyID()
		exists, err := s.repo.Exists(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("exhausted property id attempts")
}

// Delete removes a property and, via the schema, all its visits and their
// history. Leased properties cannot be deleted.
func (s *Service) Delete(id string) error {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if p.Status == StatusLeased {
		return fmt.Errorf("property %s: %w", id, ErrLeasedDelete)
	}
	return s.repo.Delete(id)
}

// EnsureSeed inserts the demo portfolio when the store is empty.
func (s *Service) EnsureSeed() error {
	n, err := s.repo.Count()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	created, err := time.Parse(time.RFC3339, "2023-01-01T00:00:00Z")
	if err != nil {
		return err
	}

	seed := []*Property{
		{
			ID:           "P-1001",
			Name:         "Oficina Providencia",
			Address:      "Av. Providencia 1234",
			Commune:      "Providencia",
			Type:         "Oficina",
			BuiltM2:      120,
			PriceUF:      decimal.NewFromInt(4500),
			Status:       StatusAvailable,
			Availability: &Availability{VacancyStartDate: "2023-10-01"},
			Owner:        "Dueño demo 1",
		},
		{
			ID:      "P-1002",
			Name:    "Oficina El Golf",
			Address: "El Golf 500",
			Commune: "Las Condes",
			Type:    "Oficina",
			BuiltM2: 200,
			PriceUF: decimal.NewFromInt(12000),
			Status:  StatusLeased,
			Lease: &Lease{
				Tenant:    "Tech Corp",
				StartDate: "2023-01-01",
				EndDate:   "2025-12-31",
				Type:      LeaseFixed,
			},
			Owner: "Dueño demo 2",
		},
		{
			ID:      "P-1003",
			Name:    "Local Vitacura",
			Address: "Vitacura 3000",
			Commune: "Vitacura",
			Type:    "Local Comercial",
			LandM2:  300,
			BuiltM2: 150,
			PriceUF: decimal.NewFromInt(15000),
			Status:  StatusNoticeGiven,
			Notice:  &Notice{NoticeEndDate: "2023-12-01"},
			Owner:   "Dueño demo 3",
		},
	}

	for _, p := range seed {
		p.CreatedAt = created
		p.UpdatedAt = created
		if err := s.repo.Insert(p); err != nil {
			return fmt.Errorf("seeding %s: %w", p.ID, err)
		}
	}

	slog.Info("seeded demo portfolio", "properties", len(seed))
	return nil
}

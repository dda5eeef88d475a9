// Package alerts derives staleness and commitment alerts from the current
// property and visit collections. Nothing is cached: every call recomputes
// from store state.
package alerts

import (
	"sort"
	"time"

	"github.com/sauma/portfolio-tracker/internal/dates"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

// staleDays is the threshold for property staleness, strict: exactly 30
// days of inactivity is not stale, 31 is.
const staleDays = 30

// warningWindow is the number of days ahead within which a pending
// commitment is surfaced as a warning.
const warningWindow = 10

// Level classifies a commitment alert.
type Level string

const (
	LevelUrgent  Level = "URGENT"  // overdue
	LevelWarning Level = "WARNING" // due within the warning window
)

// StaleProperty is a non-leased property with no recent visit activity.
type StaleProperty struct {
	Property *property.Property `json:"property"`
	DaysIdle int                `json:"days_idle"`
	// LastVisitDate is empty when the property has never been visited.
	LastVisitDate string `json:"last_visit_date,omitempty"`
}

// CommitmentAlert is a not-done commitment that is overdue or due soon.
type CommitmentAlert struct {
	Visit    *visit.Visit `json:"visit"`
	DaysLeft int          `json:"days_left"` // negative when overdue
	Level    Level        `json:"level"`
}

// Result bundles both alert sets.
type Result struct {
	StaleProperties []StaleProperty   `json:"stale_properties"`
	ActionAlerts    []CommitmentAlert `json:"action_alerts"`
}

// Engine computes alerts over the property service (so reads run the status
// automaton) and the visit repository.
type Engine struct {
	props  *property.Service
	visits *visit.Repository
	now    func() time.Time
}

// NewEngine creates an alert engine.
func NewEngine(props *property.Service, visits *visit.Repository) *Engine {
	return &Engine{props: props, visits: visits, now: time.Now}
}

// SetNow overrides the engine clock. Tests only.
func (e *Engine) SetNow(now func() time.Time) {
	e.now = now
}

// Alerts recomputes both alert sets from current store state.
func (e *Engine) Alerts() (*Result, error) {
	properties, err := e.props.List()
	if err != nil {
		return nil, err
	}
	visits, err := e.visits.List()
	if err != nil {
		return nil, err
	}

	byProperty := make(map[string][]*visit.Visit)
	for _, v := range visits {
		byProperty[v.PropertyID] = append(byProperty[v.PropertyID], v)
	}

	result := &Result{
		StaleProperties: e.staleProperties(properties, byProperty),
		ActionAlerts:    e.actionAlerts(visits),
	}
	return result, nil
}

// staleProperties returns every non-leased property whose last visit (or,
// if never visited, its reference date) is more than staleDays ago.
func (e *Engine) staleProperties(properties []*property.Property, byProperty map[string][]*visit.Visit) []StaleProperty {
	today := dates.Format(e.now())

	var stale []StaleProperty
	for _, p := range properties {
		if p.Status == property.StatusLeased {
			continue
		}

		propVisits := byProperty[p.ID]
		if len(propVisits) == 0 {
			ref := dates.Format(p.CreatedAt)
			if p.Status == property.StatusAvailable && p.Availability != nil && p.Availability.VacancyStartDate != "" {
				ref = p.Availability.VacancyStartDate
			}
			days, err := dates.DaysBetween(ref, today)
			if err != nil || days <= staleDays {
				continue
			}
			stale = append(stale, StaleProperty{Property: p, DaysIdle: days})
			continue
		}

		last := propVisits[0].Date
		for _, v := range propVisits[1:] {
			if v.Date > last {
				last = v.Date
			}
		}
		days, err := dates.DaysBetween(last, today)
		if err != nil || days <= staleDays {
			continue
		}
		stale = append(stale, StaleProperty{Property: p, DaysIdle: days, LastVisitDate: last})
	}

	return stale
}

// actionAlerts classifies every not-done commitment: overdue is urgent, due
// within the warning window is a warning, anything further out is dropped.
// Sorted most overdue first, visit id as a stable tiebreak.
func (e *Engine) actionAlerts(visits []*visit.Visit) []CommitmentAlert {
	today := dates.Format(e.now())

	var alerts []CommitmentAlert
	for _, v := range visits {
		if v.ActionStatus == visit.ActionDone {
			continue
		}
		daysLeft, err := dates.DaysBetween(today, v.NextActionDate)
		if err != nil {
			continue
		}

		var level Level
		switch {
		case daysLeft < 0:
			level = LevelUrgent
		case daysLeft <= warningWindow:
			level = LevelWarning
		default:
			continue
		}

		alerts = append(alerts, CommitmentAlert{Visit: v, DaysLeft: daysLeft, Level: level})
	}

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].DaysLeft != alerts[j].DaysLeft {
			return alerts[i].DaysLeft < alerts[j].DaysLeft
		}
		return alerts[i].Visit.ID < alerts[j].Visit.ID
	})

	return alerts
}

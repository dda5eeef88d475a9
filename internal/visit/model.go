// Package visit provides the visit domain model, data access, and the
// commitment lifecycle manager.
package visit

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActionStatus represents the state of a visit's active commitment.
type ActionStatus string

const (
	ActionPending ActionStatus = "PENDING"
	ActionDone    ActionStatus = "DONE"
)

// Valid returns true if s is a known action status.
func (s ActionStatus) Valid() bool {
	return s == ActionPending || s == ActionDone
}

// HistoryStatus is the terminal status of a commitment at the time it was
// archived. ARCHIVED marks commitments closed by the lease coordinator
// rather than completed or superseded.
type HistoryStatus string

const (
	HistoryPending  HistoryStatus = "PENDING"
	HistoryDone     HistoryStatus = "DONE"
	HistoryArchived HistoryStatus = "ARCHIVED"
)

// ClosureReason distinguishes a genuine completion or replacement from an
// automatic closure when the property was leased to another client.
type ClosureReason string

const (
	ClosureManual        ClosureReason = "MANUAL"
	ClosureAutoLeaseLost ClosureReason = "AUTO_LEASE_LOST"
)

// Display strings written alongside automatic closures.
const (
	AutoCloseAction = "Cierre Automático: Propiedad no disponible"
	AutoCloseNote   = "Propiedad ya no está disponible"
)

// ActionHistoryItem is one archived commitment. History is append-only;
// items are never mutated once written.
type ActionHistoryItem struct {
	Action        string        `json:"action"`
	ScheduledDate string        `json:"scheduled_date"` // YYYY-MM-DD
	Status        HistoryStatus `json:"status"`
	ArchivedDate  string        `json:"archived_date"` // YYYY-MM-DD
	CompletedDate string        `json:"completed_date,omitempty"`
	Note          string        `json:"note,omitempty"`
	Reason        ClosureReason `json:"closure_reason"`
}

// Visit represents a prospective-tenant visit to a property. The visit facts
// are immutable after creation; only the active commitment changes, through
// the Lifecycle manager.
type Visit struct {
	ID         string `json:"id"` // V-#####
	PropertyID string `json:"property_id"`
	Date       string `json:"date"` // YYYY-MM-DD
	Executive  string `json:"executive_name"`

	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`

	OfferUF    *decimal.Decimal `json:"offer_uf,omitempty"`
	HasBroker  bool             `json:"has_broker"`
	BrokerName string           `json:"broker_name,omitempty"`
	Comments   string           `json:"comments"`

	// Active commitment.
	NextAction          string       `json:"next_action"`
	NextActionDate      string       `json:"next_action_date"` // YYYY-MM-DD
	ActionStatus        ActionStatus `json:"action_status"`
	ActionCompletedDate string       `json:"action_completed_date,omitempty"`

	History []ActionHistoryItem `json:"history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

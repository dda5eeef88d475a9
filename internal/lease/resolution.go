// Package lease coordinates the closing of competing clients' commitments
// when a property is leased to one client.
package lease

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

// State is the lifecycle state of a lease resolution.
type State string

const (
	// StateAwaitingWinnerResolution blocks the commit while the winning
	// client still has pending commitments on the property.
	StateAwaitingWinnerResolution State = "AWAITING_WINNER_RESOLUTION"
	// StateReadyToCommit means no winner commitments remain pending.
	StateReadyToCommit State = "READY_TO_COMMIT"
	StateCommitted     State = "COMMITTED"
	StateCancelled     State = "CANCELLED"
)

// ErrNotReady is returned by Commit when winner commitments are still pending.
var ErrNotReady = errors.New("winner commitments still pending")

// ErrFinished is returned when operating on a committed or cancelled resolution.
var ErrFinished = errors.New("resolution already finished")

// Resolution is the two-phase gate around marking a property as leased:
// first every pending commitment of the winning client must be resolved,
// then the losers' pending commitments are auto-closed and the property
// persisted with its new LEASED status. Nothing is persisted before Commit.
type Resolution struct {
	state     State
	prop      *property.Property
	winner    string
	props     *property.Service
	visits    *visit.Repository
	lifecycle *visit.Lifecycle
}

// Begin starts a resolution for a property about to enter LEASED status.
// The winner is the property's new tenant.
func Begin(props *property.Service, visits *visit.Repository, lifecycle *visit.Lifecycle, p *property.Property) (*Resolution, error) {
	if p.Status != property.StatusLeased || p.Lease == nil || p.Lease.Tenant == "" {
		return nil, fmt.Errorf("property %s is not entering leased status", p.ID)
	}

	r := &Resolution{
		prop:      p,
		winner:    p.Lease.Tenant,
		props:     props,
		visits:    visits,
		lifecycle: lifecycle,
	}

	pending, err := r.PendingWinner()
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		r.state = StateAwaitingWinnerResolution
	} else {
		r.state = StateReadyToCommit
	}

	return r, nil
}

// State returns the resolution's current state.
func (r *Resolution) State() State {
	return r.state
}

// Winner returns the winning client's name.
func (r *Resolution) Winner() string {
	return r.winner
}

// PendingWinner returns the winning client's visits on the property whose
// commitments are still pending.
func (r *Resolution) PendingWinner() ([]*visit.Visit, error) {
	pending, err := r.visits.ListPendingByProperty(r.prop.ID)
	if err != nil {
		return nil, err
	}

	var winners []*visit.Visit
	for _, v := range pending {
		if v.ClientName == r.winner {
			winners = append(winners, v)
		}
	}
	return winners, nil
}

// ResolveWinner marks one of the winner's pending commitments as done.
// When none remain, the resolution becomes ready to commit.
func (r *Resolution) ResolveWinner(visitID string) error {
	if r.state == StateCommitted || r.state == StateCancelled {
		return ErrFinished
	}

	pending, err := r.PendingWinner()
	if err != nil {
		return err
	}

	found := false
	for _, v := range pending {
		if v.ID == visitID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("visit %s is not a pending commitment of %s", visitID, r.winner)
	}

	if err := r.lifecycle.MarkDone(visitID); err != nil {
		return err
	}

	remaining, err := r.PendingWinner()
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		r.state = StateReadyToCommit
	}

	return nil
}

// Commit auto-closes every other client's pending commitment on the
// property, then persists the property with its LEASED status. Only valid
// from ReadyToCommit.
func (r *Resolution) Commit() error {
	switch r.state {
	case StateCommitted, StateCancelled:
		return ErrFinished
	case StateAwaitingWinnerResolution:
		return fmt.Errorf("resolution for %s: %w", r.prop.ID, ErrNotReady)
	}

	pending, err := r.visits.ListPendingByProperty(r.prop.ID)
	if err != nil {
		return err
	}

	closed := 0
	for _, v := range pending {
		if v.ClientName == r.winner {
			continue
		}
		if err := r.lifecycle.AutoClose(v.ID); err != nil {
			return fmt.Errorf("closing commitment %s: %w", v.ID, err)
		}
		closed++
	}

	if _, err := r.props.SaveResolved(r.prop); err != nil {
		return fmt.Errorf("persisting leased property: %w", err)
	}

	r.state = StateCommitted
	slog.Info("lease resolved",
		"property", r.prop.ID, "tenant", r.winner, "closed_commitments", closed)
	return nil
}

// Cancel abandons the resolution. Winner commitments already resolved stay
// resolved; nothing else changes and the property keeps its prior status.
func (r *Resolution) Cancel() error {
	if r.state == StateCommitted || r.state == StateCancelled {
		return ErrFinished
	}
	r.state = StateCancelled
	return nil
}

package lease

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sauma/portfolio-tracker/internal/db"
	"github.com/sauma/portfolio-tracker/internal/ids"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

type fixture struct {
	props     *property.Service
	visits    *visit.Repository
	lifecycle *visit.Lifecycle
}

func testFixture(t *testing.T) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	clock := func() time.Time {
		return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	}

	visits := visit.NewRepository(d)
	props := property.NewService(property.NewRepository(d), visits, ids.NewSequence())
	props.SetNow(clock)
	lifecycle := visit.NewLifecycle(visits, ids.NewSequence())
	lifecycle.SetNow(clock)

	return &fixture{props: props, visits: visits, lifecycle: lifecycle}
}

// seedProperty creates an AVAILABLE property.
func (f *fixture) seedProperty(t *testing.T) *property.Property {
	t.Helper()
	p, err := f.props.Save(&property.Property{
		Name:    "Bodega Norte",
		Address: "Av. Industrial 1200",
		Commune: "Quilicura",
		PriceUF: decimal.NewFromInt(4500),
		Status:  property.StatusAvailable,
		Availability: &property.Availability{
			VacancyStartDate: "2026-08-01",
		},
	})
	if err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return p
}

// seedVisit records a pending visit for the given client.
func (f *fixture) seedVisit(t *testing.T, propertyID, client string) *visit.Visit {
	t.Helper()
	v, err := f.lifecycle.AddVisit(&visit.Visit{
		PropertyID:     propertyID,
		Date:           "2026-08-20",
		Executive:      "Juan Pérez",
		ClientName:     client,
		NextAction:     "Llamar cliente",
		NextActionDate: "2026-09-04",
	})
	if err != nil {
		t.Fatalf("seed visit: %v", err)
	}
	return v
}

// leased returns p flipped to LEASED with the given tenant.
func leased(p *property.Property, tenant string) *property.Property {
	p.Status = property.StatusLeased
	p.Availability = nil
	p.Lease = &property.Lease{
		Tenant:    tenant,
		StartDate: "2026-09-01",
		EndDate:   "2028-08-31",
		Type:      property.LeaseFixed,
	}
	return p
}

func TestBeginRequiresLeaseTarget(t *testing.T) {
	f := testFixture(t)
	p := f.seedProperty(t)

	if _, err := Begin(f.props, f.visits, f.lifecycle, p); err == nil {
		t.Fatal("expected error for property not entering leased status")
	}
}

func TestBeginStateByWinnerPendings(t *testing.T) {
	f := testFixture(t)
	p := f.seedProperty(t)
	f.seedVisit(t, p.ID, "Acme Ltda")
	f.seedVisit(t, p.ID, "Otro Cliente")

	r, err := Begin(f.props, f.visits, f.lifecycle, leased(p, "Acme Ltda"))
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if r.State() != StateAwaitingWinnerResolution {
		t.Errorf("state = %q, want AWAITING_WINNER_RESOLUTION", r.State())
	}
	if r.Winner() != "Acme Ltda" {
		t.Errorf("winner = %q", r.Winner())
	}

	pending, err := r.PendingWinner()
	if err != nil {
		t.Fatalf("pending winner: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending winner visits = %d, want 1 (losers excluded)", len(pending))
	}
}

func TestBeginReadyWhenWinnerClean(t *testing.T) {
	f := testFixture(t)
	p := f.seedProperty(t)
	f.seedVisit(t, p.ID, "Otro Cliente") // only a loser pending

	r, err := Begin(f.props, f.visits, f.lifecycle, leased(p, "Acme Ltda"))
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if r.State() != StateReadyToCommit {
		t.Errorf("state = %q, want READY_TO_COMMIT", r.State())
	}
}

func TestCommitBlockedUntilWinnerResolved(t *testing.T) {
	f := testFixture(t)
	p := f.seedProperty(t)
	winner := f.seedVisit(t, p.ID, "Acme Ltda")

	r, err := Begin(f.props, f.visits, f.lifecycle, leased(p, "Acme Ltda"))
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := r.Commit(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("commit err = %v, want ErrNotReady", err)
	}

	// Nothing persisted by the refused commit.
	stored, err := f.props.Get(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != property.StatusAvailable {
		t.Errorf("stored status = %q, property must keep its prior status", stored.Status)
	}

	if err := r.ResolveWinner(winner.ID); err != nil {
		t.Fatalf("resolve winner: %v", err)
	}
	if r.State() != StateReadyToCommit {
		t.Errorf("state after resolving = %q, want READY_TO_COMMIT", r.State())
	}
}

func TestResolveWinnerRejectsOtherVisits(t *testing.T) {
	f := testFixture(t)
	p := f.seedProperty(t)
	f.seedVisit(t, p.ID, "Acme Ltda")
	loser := f.seedVisit(t, p.ID, "Otro Cliente")

	r, err := Begin(f.props, f.visits, f.lifecycle, leased(p, "Acme Ltda"))
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := r.ResolveWinner(loser.ID); err == nil {
		t.Fatal("expected error resolving a loser's visit")
	}
	if err := r.ResolveWinner("V-99999"); err == nil {
		t.Fatal("expected error for unknown visit")
	}
}

func TestCommitClosesLosersAndPersists(t *testing.T) {
	f := testFixture(t)
	p := f.seedProperty(t)
	winner := f.seedVisit(t, p.ID, "Acme Ltda")
	loser1 := f.seedVisit(t, p.ID, "Otro Cliente")
	loser2 := f.seedVisit(t, p.ID, "Tercero SpA")

	r, err := Begin(f.props, f.visits, f.lifecycle, leased(p, "Acme Ltda"))
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := r.ResolveWinner(winner.ID); err != nil {
		t.Fatalf("resolve winner: %v", err)
	}
	if err := r.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if r.State() != StateCommitted {
		t.Errorf("state = %q, want COMMITTED", r.State())
	}

	// Property is leased.
	stored, err := f.props.Get(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != property.StatusLeased || stored.Lease == nil || stored.Lease.Tenant != "Acme Ltda" {
		t.Errorf("stored property = %+v, want leased to Acme Ltda", stored)
	}

	// Losers were auto-closed with the closure marker.
	for _, id := range []string{loser1.ID, loser2.ID} {
		v, err := f.visits.GetByID(id)
		if err != nil {
			t.Fatalf("get visit %s: %v", id, err)
		}
		if v.ActionStatus != visit.ActionDone {
			t.Errorf("%s action status = %q, want DONE", id, v.ActionStatus)
		}
		if v.NextAction != visit.AutoCloseAction {
			t.Errorf("%s next action = %q, want auto-close label", id, v.NextAction)
		}
		if len(v.History) != 1 || v.History[0].Reason != visit.ClosureAutoLeaseLost {
			t.Errorf("%s history = %+v, want one AUTO_LEASE_LOST item", id, v.History)
		}
	}

	// The winner's completed visit is untouched by the auto-close sweep.
	w, err := f.visits.GetByID(winner.ID)
	if err != nil {
		t.Fatalf("get winner visit: %v", err)
	}
	if w.NextAction != "Llamar cliente" || len(w.History) != 0 {
		t.Errorf("winner visit = %+v, should not be auto-closed", w)
	}

	// No pending commitments remain on the property.
	n, err := f.visits.CountPendingByProperty(p.ID)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if n != 0 {
		t.Errorf("pending after commit = %d, want 0", n)
	}
}

func TestCommitTwice(t *testing.T) {
	f := testFixture(t)
	p := f.seedProperty(t)

	r, err := Begin(f.props, f.visits, f.lifecycle, leased(p, "Acme Ltda"))
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := r.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := r.Commit(); !errors.Is(err, ErrFinished) {
		t.Fatalf("second commit err = %v, want ErrFinished", err)
	}
}

func TestCancel(t *testing.T) {
	f := testFixture(t)
	p := f.seedProperty(t)
	winner := f.seedVisit(t, p.ID, "Acme Ltda")
	loser := f.seedVisit(t, p.ID, "Otro Cliente")

	r, err := Begin(f.props, f.visits, f.lifecycle, leased(p, "Acme Ltda"))
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := r.ResolveWinner(winner.ID); err != nil {
		t.Fatalf("resolve winner: %v", err)
	}
	if err := r.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Resolved winner commitments stay resolved; losers stay pending; the
	// property keeps its prior status.
	w, err := f.visits.GetByID(winner.ID)
	if err != nil {
		t.Fatalf("get winner: %v", err)
	}
	if w.ActionStatus != visit.ActionDone {
		t.Errorf("winner status = %q, resolved work is not rolled back", w.ActionStatus)
	}

	l, err := f.visits.GetByID(loser.ID)
	if err != nil {
		t.Fatalf("get loser: %v", err)
	}
	if l.ActionStatus != visit.ActionPending {
		t.Errorf("loser status = %q, want still PENDING", l.ActionStatus)
	}

	stored, err := f.props.Get(p.ID)
	if err != nil {
		t.Fatalf("get property: %v", err)
	}
	if stored.Status != property.StatusAvailable {
		t.Errorf("stored status = %q, want AVAILABLE", stored.Status)
	}

	if err := r.Commit(); !errors.Is(err, ErrFinished) {
		t.Fatalf("commit after cancel err = %v, want ErrFinished", err)
	}
}

package property

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sauma/portfolio-tracker/internal/ids"
)

// stubPending is a PendingCounter with a fixed answer per property.
type stubPending struct {
	counts map[string]int
}

func (s *stubPending) CountPendingByProperty(propertyID string) (int, error) {
	return s.counts[propertyID], nil
}

func testService(t *testing.T) (*Service, *stubPending) {
	t.Helper()
	repo := testRepo(t)
	pending := &stubPending{counts: map[string]int{}}
	svc := NewService(repo, pending, ids.NewSequence())
	svc.SetNow(func() time.Time {
		return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	})
	return svc, pending
}

func availableProperty(name string) *Property {
	return &Property{
		Name:    name,
		Address: "Av. Test 1",
		Commune: "Santiago",
		PriceUF: decimal.NewFromInt(4500),
		Status:  StatusAvailable,
		Availability: &Availability{
			VacancyStartDate: "2026-08-01",
		},
	}
}

func TestSaveInsertGeneratesID(t *testing.T) {
	svc, _ := testService(t)

	saved, err := svc.Save(availableProperty("Bodega Norte"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != "P-00001" {
		t.Errorf("id = %q, want P-00001", saved.ID)
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Error("timestamps should be stamped on insert")
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	svc, _ := testService(t)

	p := availableProperty("Bodega Norte")
	p.Address = ""

	if _, err := svc.Save(p); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSavePreservesCreatedAt(t *testing.T) {
	svc, _ := testService(t)

	saved, err := svc.Save(availableProperty("Bodega Norte"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	created := saved.CreatedAt

	svc.SetNow(func() time.Time {
		return time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	})

	saved.PriceUF = decimal.NewFromInt(4800)
	updated, err := svc.Save(saved)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Errorf("created_at changed: %v -> %v", created, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(created) {
		t.Errorf("updated_at = %v, want after %v", updated.UpdatedAt, created)
	}
}

func TestSaveNormalizesStalePayloads(t *testing.T) {
	svc, _ := testService(t)

	p := availableProperty("Bodega Norte")
	p.Notice = &Notice{NoticeEndDate: "2026-12-01"}
	p.Lease = &Lease{Tenant: "Stale", StartDate: "2026-01-01", EndDate: "2027-01-01"}

	saved, err := svc.Save(p)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Notice != nil || saved.Lease != nil {
		t.Error("payloads not matching the status should be cleared")
	}

	got, err := svc.Get(saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Notice != nil || got.Lease != nil {
		t.Error("stale payloads were persisted")
	}
}

func TestListRollsOverExpiredNotice(t *testing.T) {
	svc, _ := testService(t)

	p := availableProperty("Local Vitacura")
	p.Status = StatusNoticeGiven
	p.Availability = nil
	p.Notice = &Notice{NoticeEndDate: "2026-08-15"}

	saved, err := svc.Save(p)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Clock is 2026-08-31, notice ended 2026-08-15.
	properties, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(properties) != 1 {
		t.Fatalf("got %d properties, want 1", len(properties))
	}

	got := properties[0]
	if got.Status != StatusAvailable {
		t.Fatalf("status = %q, want AVAILABLE", got.Status)
	}
	if got.Availability == nil || got.Availability.VacancyStartDate != "2026-08-15" {
		t.Errorf("vacancy start = %+v, want 2026-08-15", got.Availability)
	}
	if got.Notice != nil {
		t.Error("notice payload should be cleared after rollover")
	}

	// Transition persisted: a re-read sees AVAILABLE too.
	stored, err := svc.Get(saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusAvailable {
		t.Errorf("stored status = %q, want AVAILABLE", stored.Status)
	}

	// Second list with no time passing changes nothing.
	first := stored.UpdatedAt
	if _, err := svc.List(); err != nil {
		t.Fatalf("second list: %v", err)
	}
	stored, err = svc.Get(saved.ID)
	if err != nil {
		t.Fatalf("get after second list: %v", err)
	}
	if !stored.UpdatedAt.Equal(first) {
		t.Error("second list should not touch the property again")
	}
}

func TestListKeepsNoticeEndingToday(t *testing.T) {
	svc, _ := testService(t)

	p := availableProperty("Local Vitacura")
	p.Status = StatusNoticeGiven
	p.Availability = nil
	p.Notice = &Notice{NoticeEndDate: "2026-08-31"} // same day as the clock

	if _, err := svc.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	properties, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if properties[0].Status != StatusNoticeGiven {
		t.Errorf("status = %q, want NOTICE_GIVEN until the end date has passed", properties[0].Status)
	}
}

func TestSaveLeaseGate(t *testing.T) {
	svc, pending := testService(t)

	saved, err := svc.Save(availableProperty("Bodega Norte"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	pending.counts[saved.ID] = 2

	saved.Status = StatusLeased
	saved.Lease = &Lease{
		Tenant:    "Acme Ltda",
		StartDate: "2026-09-01",
		EndDate:   "2028-08-31",
		Type:      LeaseFixed,
	}

	if _, err := svc.Save(saved); !errors.Is(err, ErrLeaseResolutionRequired) {
		t.Fatalf("err = %v, want ErrLeaseResolutionRequired", err)
	}

	// Nothing persisted by the refused save.
	stored, err := svc.Get(saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusAvailable {
		t.Errorf("stored status = %q, want AVAILABLE", stored.Status)
	}

	// The coordinator path commits regardless of pending count.
	if _, err := svc.SaveResolved(saved); err != nil {
		t.Fatalf("save resolved: %v", err)
	}
	stored, err = svc.Get(saved.ID)
	if err != nil {
		t.Fatalf("get after resolve: %v", err)
	}
	if stored.Status != StatusLeased {
		t.Errorf("stored status = %q, want LEASED", stored.Status)
	}
}

func TestSaveLeaseGateOnlyOnEntry(t *testing.T) {
	svc, pending := testService(t)

	p := availableProperty("Oficina Centro")
	p.Status = StatusLeased
	p.Availability = nil
	p.Lease = &Lease{
		Tenant:    "Tech Corp",
		StartDate: "2026-01-01",
		EndDate:   "2028-12-31",
	}

	saved, err := svc.Save(p)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Already leased: edits pass even with pending commitments around.
	pending.counts[saved.ID] = 3
	saved.PriceUF = decimal.NewFromInt(13000)
	if _, err := svc.Save(saved); err != nil {
		t.Fatalf("edit of leased property: %v", err)
	}
}

func TestDeleteLeased(t *testing.T) {
	svc, _ := testService(t)

	p := availableProperty("Oficina Centro")
	p.Status = StatusLeased
	p.Availability = nil
	p.Lease = &Lease{Tenant: "Tech Corp", StartDate: "2026-01-01", EndDate: "2028-12-31"}

	saved, err := svc.Save(p)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := svc.Delete(saved.ID); !errors.Is(err, ErrLeasedDelete) {
		t.Fatalf("err = %v, want ErrLeasedDelete", err)
	}

	// Still there.
	if _, err := svc.Get(saved.ID); err != nil {
		t.Errorf("property should survive refused delete: %v", err)
	}
}

func TestDeleteAvailable(t *testing.T) {
	svc, _ := testService(t)

	saved, err := svc.Save(availableProperty("Bodega Norte"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := svc.Delete(saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestEnsureSeed(t *testing.T) {
	svc, _ := testService(t)

	if err := svc.EnsureSeed(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p, err := svc.Get("P-1002")
	if err != nil {
		t.Fatalf("get seeded property: %v", err)
	}
	if p.Status != StatusLeased || p.Lease == nil || p.Lease.Tenant != "Tech Corp" {
		t.Errorf("P-1002 = %+v, want leased to Tech Corp", p)
	}

	// Second call on a populated store is a no-op.
	if err := svc.EnsureSeed(); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	properties, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// The 2023 notice on P-1003 has long expired against the 2026 clock.
	if len(properties) != 3 {
		t.Fatalf("got %d properties, want 3", len(properties))
	}
	for _, p := range properties {
		if p.ID == "P-1003" && p.Status != StatusAvailable {
			t.Errorf("P-1003 status = %q, want AVAILABLE after rollover", p.Status)
		}
	}
}

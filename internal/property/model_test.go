package property

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	p := &Property{
		Status:       StatusLeased,
		Availability: &Availability{VacancyStartDate: "2026-01-01"},
		Notice:       &Notice{NoticeEndDate: "2026-02-01"},
		Lease:        &Lease{Tenant: "Acme", StartDate: "2026-03-01", EndDate: "2027-03-01"},
	}

	p.Normalize()

	if p.Availability != nil {
		t.Error("availability payload should be cleared for leased property")
	}
	if p.Notice != nil {
		t.Error("notice payload should be cleared for leased property")
	}
	if p.Lease == nil {
		t.Error("lease payload should be kept for leased property")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Property {
		return &Property{
			Address: "Av. Industrial 1200",
			Commune: "Quilicura",
			Status:  StatusAvailable,
			Availability: &Availability{
				VacancyStartDate: "2026-01-15",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *Property)
		wantErr string
	}{
		{"valid available", func(p *Property) {}, ""},
		{"missing address", func(p *Property) { p.Address = "" }, "address"},
		{"missing commune", func(p *Property) { p.Commune = "" }, "commune"},
		{"unknown status", func(p *Property) { p.Status = "VACANT" }, "invalid status"},
		{"negative surface", func(p *Property) { p.BuiltM2 = -1 }, "negative"},
		{"missing vacancy date", func(p *Property) { p.Availability = nil }, "vacancy start date"},
		{"malformed vacancy date", func(p *Property) {
			p.Availability.VacancyStartDate = "15-01-2026"
		}, "invalid vacancy start date"},
		{"notice without end date", func(p *Property) {
			p.Status = StatusNoticeGiven
			p.Availability = nil
			p.Notice = &Notice{}
		}, "notice end date"},
		{"leased without tenant", func(p *Property) {
			p.Status = StatusLeased
			p.Availability = nil
			p.Lease = &Lease{StartDate: "2026-01-01", EndDate: "2027-01-01"}
		}, "tenant"},
		{"leased with bad lease type", func(p *Property) {
			p.Status = StatusLeased
			p.Availability = nil
			p.Lease = &Lease{Tenant: "Acme", StartDate: "2026-01-01", EndDate: "2027-01-01", Type: "MONTHLY"}
		}, "invalid lease type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusAvailable, "Disponible"},
		{StatusLeased, "Arrendado"},
		{StatusNoticeGiven, "Aviso Entrega"},
	}

	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.want {
			t.Errorf("Label(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

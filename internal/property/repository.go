package property

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a property id is unknown.
var ErrNotFound = errors.New("property not found")

// Repository provides CRUD operations for properties.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, name, address, commune, type, land_m2, built_m2, storage_m2,
	condominium, owner, price_uf, status, vacancy_start_date, notice_end_date,
	tenant, lease_start_date, lease_end_date, lease_type, created_at, updated_at`

// Insert adds a new property. The caller sets id, created_at and updated_at.
func (r *Repository) Insert(p *Property) error {
	_, err := r.db.Exec(
		`INSERT INTO properties
		(id, name, address, commune, type, land_m2, built_m2, storage_m2,
		 condominium, owner, price_uf, status, vacancy_start_date, notice_end_date,
		 tenant, lease_start_date, lease_end_date, lease_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Address, p.Commune, p.Type, p.LandM2, p.BuiltM2, p.StorageM2,
		nullString(p.Condominium), p.Owner, p.PriceUF.String(), string(p.Status),
		availabilityCol(p), noticeCol(p),
		leaseTenantCol(p), leaseStartCol(p), leaseEndCol(p), leaseTypeCol(p),
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	return nil
}

// Update replaces a stored property by id.
func (r *Repository) Update(p *Property) error {
	result, err := r.db.Exec(
		`UPDATE properties SET
		name = ?, address = ?, commune = ?, type = ?, land_m2 = ?, built_m2 = ?,
		storage_m2 = ?, condominium = ?, owner = ?, price_uf = ?, status = ?,
		vacancy_start_date = ?, notice_end_date = ?, tenant = ?,
		lease_start_date = ?, lease_end_date = ?, lease_type = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Address, p.Commune, p.Type, p.LandM2, p.BuiltM2,
		p.StorageM2, nullString(p.Condominium), p.Owner, p.PriceUF.String(), string(p.Status),
		availabilityCol(p), noticeCol(p), leaseTenantCol(p),
		leaseStartCol(p), leaseEndCol(p), leaseTypeCol(p), p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %s: %w", p.ID, ErrNotFound)
	}

	return nil
}

// GetByID returns a property by its id.
func (r *Repository) GetByID(id string) (*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = ?", selectColumns)
	row := r.db.QueryRow(query, id)

	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", id, err)
	}

	return p, nil
}

// List returns all properties ordered by name then id.
func (r *Repository) List() ([]*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties ORDER BY name, id", selectColumns)
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var properties []*Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	return properties, nil
}

// Delete removes a property by id. Visits and their history cascade.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %s: %w", id, ErrNotFound)
	}

	return nil
}

// Count returns the number of stored properties.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM properties").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return n, nil
}

// Exists returns true if a property with the given id is stored.
func (r *Repository) Exists(id string) (bool, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM properties WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking property id: %w", err)
	}
	return n > 0, nil
}

// scanProperty scans a property from a database row.
func scanProperty(row interface{ Scan(...interface{}) error }) (*Property, error) {
	var p Property
	var condominium, vacancyStart, noticeEnd sql.NullString
	var tenant, leaseStart, leaseEnd, leaseType sql.NullString
	var priceUF, status, createdAt, updatedAt string

	err := row.Scan(
		&p.ID, &p.Name, &p.Address, &p.Commune, &p.Type,
		&p.LandM2, &p.BuiltM2, &p.StorageM2,
		&condominium, &p.Owner, &priceUF, &status,
		&vacancyStart, &noticeEnd,
		&tenant, &leaseStart, &leaseEnd, &leaseType,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Condominium = condominium.String
	p.Status = Status(status)

	p.PriceUF, err = decimal.NewFromString(priceUF)
	if err != nil {
		return nil, fmt.Errorf("parsing price: %w", err)
	}

	switch p.Status {
	case StatusAvailable:
		if vacancyStart.Valid {
			p.Availability = &Availability{VacancyStartDate: vacancyStart.String}
		}
	case StatusNoticeGiven:
		if noticeEnd.Valid {
			p.Notice = &Notice{NoticeEndDate: noticeEnd.String}
		}
	case StatusLeased:
		if tenant.Valid {
			p.Lease = &Lease{
				Tenant:    tenant.String,
				StartDate: leaseStart.String,
				EndDate:   leaseEnd.String,
				Type:      LeaseType(leaseType.String),
			}
		}
	}

	p.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &p, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func availabilityCol(p *Property) interface{} {
	if p.Availability == nil {
		return nil
	}
	return p.Availability.VacancyStartDate
}

func noticeCol(p *Property) interface{} {
	if p.Notice == nil {
		return nil
	}
	return p.Notice.NoticeEndDate
}

func leaseTenantCol(p *Property) interface{} {
	if p.Lease == nil {
		return nil
	}
	return p.Lease.Tenant
}

func leaseStartCol(p *Property) interface{} {
	if p.Lease == nil {
		return nil
	}
	return p.Lease.StartDate
}

func leaseEndCol(p *Property) interface{} {
	if p.Lease == nil {
		return nil
	}
	return p.Lease.EndDate
}

func leaseTypeCol(p *Property) interface{} {
	if p.Lease == nil || p.Lease.Type == "" {
		return nil
	}
	return string(p.Lease.Type)
}

package visit

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a visit id is unknown.
var ErrNotFound = errors.New("visit not found")

// Repository provides data access for visits and their commitment history.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a visit repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, property_id, visit_date, executive_name, client_name,
	client_phone, client_email, offer_uf, has_broker, broker_name, comments,
	next_action, next_action_date, action_status, action_completed_date, created_at`

// Insert stores a new visit. The caller sets id and created_at.
func (r *Repository) Insert(v *Visit) error {
	var offer interface{}
	if v.OfferUF != nil {
		offer = v.OfferUF.String()
	}

	_, err := r.db.Exec(
		`INSERT INTO visits
		(id, property_id, visit_date, executive_name, client_name, client_phone,
		 client_email, offer_uf, has_broker, broker_name, comments,
		 next_action, next_action_date, action_status, action_completed_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.PropertyID, v.Date, v.Executive, v.ClientName, v.ClientPhone,
		v.ClientEmail, offer, boolInt(v.HasBroker), v.BrokerName, v.Comments,
		v.NextAction, v.NextActionDate, string(v.ActionStatus),
		nullDate(v.ActionCompletedDate), v.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting visit: %w", err)
	}
	return nil
}

// GetByID returns a visit by id, with its commitment history attached.
func (r *Repository) GetByID(id string) (*Visit, error) {
	query := fmt.Sprintf("SELECT %s FROM visits WHERE id = ?", selectColumns)
	v, err := scanVisit(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("visit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying visit %s: %w", id, err)
	}

	v.History, err = r.HistoryByVisit(id)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// List returns all visits, newest visit date first.
func (r *Repository) List() ([]*Visit, error) {
	query := fmt.Sprintf("SELECT %s FROM visits ORDER BY visit_date DESC, id", selectColumns)
	return r.queryVisits(query)
}

// ListByProperty returns all visits for a property, newest first.
func (r *Repository) ListByProperty(propertyID string) ([]*Visit, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM visits WHERE property_id = ? ORDER BY visit_date DESC, id", selectColumns)
	return r.queryVisits(query, propertyID)
}

// ListPendingByProperty returns the visits on a property whose active
// commitment is still pending.
func (r *Repository) ListPendingByProperty(propertyID string) ([]*Visit, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM visits WHERE property_id = ? AND action_status = 'PENDING' ORDER BY next_action_date, id",
		selectColumns)
	return r.queryVisits(query, propertyID)
}

// CountPendingByProperty implements property.PendingCounter.
func (r *Repository) CountPendingByProperty(propertyID string) (int, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM visits WHERE property_id = ? AND action_status = 'PENDING'",
		propertyID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pending commitments: %w", err)
	}
	return n, nil
}

// Exists returns true if a visit with the given id is stored.
func (r *Repository) Exists(id string) (bool, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM visits WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking visit id: %w", err)
	}
	return n > 0, nil
}

// UpdateCommitment writes the visit's active commitment fields. All other
// visit fields are immutable and left untouched.
func (r *Repository) UpdateCommitment(v *Visit) error {
	result, err := r.db.Exec(
		`UPDATE visits SET next_action = ?, next_action_date = ?,
		 action_status = ?, action_completed_date = ? WHERE id = ?`,
		v.NextAction, v.NextActionDate, string(v.ActionStatus),
		nullDate(v.ActionCompletedDate), v.ID,
	)
	if err != nil {
		return fmt.Errorf("updating commitment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("visit %s: %w", v.ID, ErrNotFound)
	}

	return nil
}

// AppendHistory appends one archived commitment to a visit's history.
func (r *Repository) AppendHistory(visitID string, item ActionHistoryItem) error {
	_, err := r.db.Exec(
		`INSERT INTO action_history
		(visit_id, action, scheduled_date, status, archived_date, completed_date, note, closure_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		visitID, item.Action, item.ScheduledDate, string(item.Status),
		item.ArchivedDate, nullDate(item.CompletedDate), item.Note, string(item.Reason),
	)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// HistoryByVisit returns a visit's archived commitments in archive order.
func (r *Repository) HistoryByVisit(visitID string) ([]ActionHistoryItem, error) {
	rows, err := r.db.Query(
		`SELECT action, scheduled_date, status, archived_date, completed_date, note, closure_reason
		 FROM action_history WHERE visit_id = ? ORDER BY id`,
		visitID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var items []ActionHistoryItem
	for rows.Next() {
		var item ActionHistoryItem
		var status, reason string
		var completed sql.NullString
		if err := rows.Scan(&item.Action, &item.ScheduledDate, &status,
			&item.ArchivedDate, &completed, &item.Note, &reason); err != nil {
			return nil, fmt.Errorf("scanning history item: %w", err)
		}
		item.Status = HistoryStatus(status)
		item.Reason = ClosureReason(reason)
		item.CompletedDate = completed.String
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return items, nil
}

// Delete removes a visit by id. Its history cascades.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM visits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("visit %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *Repository) queryVisits(query string, args ...interface{}) ([]*Visit, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}

	return visits, nil
}

// scanVisit scans a visit from a database row. History is not loaded here.
func scanVisit(row interface{ Scan(...interface{}) error }) (*Visit, error) {
	var v Visit
	var offer, completed sql.NullString
	var hasBroker int
	var status, createdAt string

	err := row.Scan(
		&v.ID, &v.PropertyID, &v.Date, &v.Executive, &v.ClientName,
		&v.ClientPhone, &v.ClientEmail, &offer, &hasBroker, &v.BrokerName,
		&v.Comments, &v.NextAction, &v.NextActionDate, &status, &completed,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if offer.Valid {
		d, err := decimal.NewFromString(offer.String)
		if err != nil {
			return nil, fmt.Errorf("parsing offer: %w", err)
		}
		v.OfferUF = &d
	}
	v.HasBroker = hasBroker != 0
	v.ActionStatus = ActionStatus(status)
	v.ActionCompletedDate = completed.String

	v.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &v, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullDate(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

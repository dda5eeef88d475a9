package visit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sauma/portfolio-tracker/internal/dates"
	"github.com/sauma/portfolio-tracker/internal/ids"
)

// Lifecycle owns every mutation of a visit's active commitment. A visit has
// at most one active commitment; replacing it archives the previous one into
// the append-only history.
type Lifecycle struct {
	repo *Repository
	ids  ids.Generator
	now  func() time.Time
}

// NewLifecycle creates a commitment lifecycle manager.
func NewLifecycle(repo *Repository, gen ids.Generator) *Lifecycle {
	return &Lifecycle{repo: repo, ids: gen, now: time.Now}
}

// SetNow overrides the lifecycle clock. Tests only.
func (l *Lifecycle) SetNow(now func() time.Time) {
	l.now = now
}

// AddVisit records a new visit. The visit facts are immutable afterwards;
// the initial commitment starts PENDING.
func (l *Lifecycle) AddVisit(v *Visit) (*Visit, error) {
	if v.PropertyID == "" {
		return nil, fmt.Errorf("property id is required")
	}
	if !dates.Valid(v.Date) {
		return nil, fmt.Errorf("invalid visit date (use YYYY-MM-DD): %q", v.Date)
	}
	if v.ClientName == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if v.NextAction == "" {
		return nil, fmt.Errorf("next action is required")
	}
	if !dates.Valid(v.NextActionDate) {
		return nil, fmt.Errorf("invalid next action date (use YYYY-MM-DD): %q", v.NextActionDate)
	}

	if v.ID == "" {
		id, err := l.newID()
		if err != nil {
			return nil, err
		}
		v.ID = id
	}
	v.ActionStatus = ActionPending
	v.ActionCompletedDate = ""
	v.History = nil
	v.CreatedAt = l.now()

	if err := l.repo.Insert(v); err != nil {
		return nil, err
	}

	return v, nil
}

// MarkDone completes a visit's active commitment: status DONE, completion
// date today. History is untouched. Calling it again only re-stamps the
// completion date.
func (l *Lifecycle) MarkDone(visitID string) error {
	v, err := l.repo.GetByID(visitID)
	if err != nil {
		return err
	}

	v.ActionStatus = ActionDone
	v.ActionCompletedDate = dates.Format(l.now())

	return l.repo.UpdateCommitment(v)
}

// ScheduleNewAction replaces a visit's active commitment. The current
// commitment is archived verbatim (its text, scheduled date, status at this
// moment, and completion date if any) and the new one installed as PENDING.
// This is the only path that grows history.
func (l *Lifecycle) ScheduleNewAction(visitID, action, date, note string) error {
	if action == "" {
		return fmt.Errorf("action is required")
	}
	if !dates.Valid(date) {
		return fmt.Errorf("invalid action date (use YYYY-MM-DD): %q", date)
	}

	v, err := l.repo.GetByID(visitID)
	if err != nil {
		return err
	}

	today := dates.Format(l.now())
	item := ActionHistoryItem{
		Action:        v.NextAction,
		ScheduledDate: v.NextActionDate,
		Status:        HistoryStatus(v.ActionStatus),
		ArchivedDate:  today,
		CompletedDate: v.ActionCompletedDate,
		Note:          note,
		Reason:        ClosureManual,
	}
	if err := l.repo.AppendHistory(visitID, item); err != nil {
		return err
	}

	v.NextAction = action
	v.NextActionDate = date
	v.ActionStatus = ActionPending
	v.ActionCompletedDate = ""

	return l.repo.UpdateCommitment(v)
}

// AutoClose closes a visit's pending commitment because the property was
// leased to another client. The commitment is archived as ARCHIVED with the
// auto-closure note, and the active commitment forced to DONE under the
// auto-closure label. The closure reason marks that the task was not
// actually completed.
func (l *Lifecycle) AutoClose(visitID string) error {
	v, err := l.repo.GetByID(visitID)
	if err != nil {
		return err
	}

	today := dates.Format(l.now())
	item := ActionHistoryItem{
		Action:        v.NextAction,
		ScheduledDate: v.NextActionDate,
		Status:        HistoryArchived,
		ArchivedDate:  today,
		Note:          AutoCloseNote,
		Reason:        ClosureAutoLeaseLost,
	}
	if err := l.repo.AppendHistory(visitID, item); err != nil {
		return err
	}

	v.NextAction = AutoCloseAction
	v.ActionStatus = ActionDone
	v.ActionCompletedDate = today

	if err := l.repo.UpdateCommitment(v); err != nil {
		return err
	}

	slog.Info("commitment auto-closed", "visit", visitID, "client", v.ClientName)
	return nil
}

func (l *Lifecycle) newID() (string, error) {
	for i := 0; i < 100; i++ {
		id := l.ids.VisitID()
		exists, err := l.repo.Exists(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("exhausted visit id attempts")
}

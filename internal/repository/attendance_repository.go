package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workbridge/ims-api/internal/models"
)

// AttendanceRepository manages the per-person per-date attendance ledger.
// The ledger holds at most one entry per (person_kind, person_id, date);
// marking the same day twice replaces the earlier record.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, person_kind, person_id, date, status, login_time, logout_time, working_hours, notification_sent, created_at, updated_at`

// Upsert writes an entry, replacing any existing record for the same person
// and date. The replacement overwrites the clock fields and resets the
// notification flag along with the status.
func (r *AttendanceRepository) Upsert(ctx context.Context, entry *models.AttendanceEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	const query = `INSERT INTO attendance_entries (id, person_kind, person_id, date, status, login_time, logout_time, working_hours, notification_sent, created_at, updated_at)
        VALUES (:id, :person_kind, :person_id, :date, :status, :login_time, :logout_time, :working_hours, :notification_sent, :created_at, :updated_at)
        ON CONFLICT (person_kind, person_id, date) DO UPDATE SET
            status = EXCLUDED.status,
            login_time = EXCLUDED.login_time,
            logout_time = EXCLUDED.logout_time,
            working_hours = EXCLUDED.working_hours,
            notification_sent = EXCLUDED.notification_sent,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// FindForDate fetches the entry for a person and date, or nil when the day
// is unmarked.
func (r *AttendanceRepository) FindForDate(ctx context.Context, kind models.PersonKind, personID string, date time.Time) (*models.AttendanceEntry, error) {
	var entry models.AttendanceEntry
	err := r.db.GetContext(ctx, &entry, `SELECT `+attendanceColumns+` FROM attendance_entries WHERE person_kind = $1 AND person_id = $2 AND date = $3`, kind, personID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &entry, nil
}

// ListForPerson returns a person's full ledger ordered by date descending.
func (r *AttendanceRepository) ListForPerson(ctx context.Context, kind models.PersonKind, personID string) ([]models.AttendanceEntry, error) {
	var entries []models.AttendanceEntry
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_entries
        WHERE person_kind = $1 AND person_id = $2
        ORDER BY date DESC`
	if err := r.db.SelectContext(ctx, &entries, query, kind, personID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return entries, nil
}

// ListInRange returns every entry for a person kind within an inclusive
// date window, ordered by person then date.
func (r *AttendanceRepository) ListInRange(ctx context.Context, kind models.PersonKind, from, to time.Time) ([]models.AttendanceEntry, error) {
	var entries []models.AttendanceEntry
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_entries
        WHERE person_kind = $1 AND date BETWEEN $2 AND $3
        ORDER BY person_id, date`
	if err := r.db.SelectContext(ctx, &entries, query, kind, from, to); err != nil {
		return nil, fmt.Errorf("list attendance in range: %w", err)
	}
	return entries, nil
}

// ListForDate returns entries for a set of people on one date. Used by the
// batch day view to resolve roster statuses in a single query.
func (r *AttendanceRepository) ListForDate(ctx context.Context, kind models.PersonKind, personIDs []string, date time.Time) ([]models.AttendanceEntry, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+attendanceColumns+` FROM attendance_entries
        WHERE person_kind = ? AND person_id IN (?) AND date = ?`, kind, personIDs, date)
	if err != nil {
		return nil, fmt.Errorf("build date query: %w", err)
	}
	query = r.db.Rebind(query)
	var entries []models.AttendanceEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance for date: %w", err)
	}
	return entries, nil
}

// SetNotificationSent flips the suppression flag after an absence alert has
// been dispatched, so re-marking the same day does not re-notify.
func (r *AttendanceRepository) SetNotificationSent(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE attendance_entries SET notification_sent = TRUE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("set notification sent: %w", err)
	}
	return nil
}

// ClearForPerson removes a person's ledger, returning the removed count.
func (r *AttendanceRepository) ClearForPerson(ctx context.Context, kind models.PersonKind, personID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_entries WHERE person_kind = $1 AND person_id = $2`, kind, personID)
	if err != nil {
		return 0, fmt.Errorf("clear attendance: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

// ClearKind removes the whole ledger for a person kind.
func (r *AttendanceRepository) ClearKind(ctx context.Context, kind models.PersonKind) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_entries WHERE person_kind = $1`, kind)
	if err != nil {
		return 0, fmt.Errorf("clear attendance kind: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

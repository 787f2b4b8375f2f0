package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// JournalRecord is one row of the operation_journal table: a single
// successful assignment operation performed through this service.
// The journal is append-only; it exists for operator accountability,
// not for replay – the reservation store stays authoritative.
type JournalRecord struct {
	ID            uint64    // operation_journal.id
	Operator      string    // operation_journal.operator (JWT subject)
	Kind          string    // operation_journal.kind (assign/unassign/undo/create/swap)
	ReservationID uint64    // operation_journal.reservation_id
	FurnitureIDs  []uint64  // operation_journal.furniture_ids (stored as CSV)
	Date          string    // operation_journal.date (the map date acted on)
	CreatedAt     time.Time // operation_journal.created_at
}

// JournalRepo provides data access to the operation_journal table.
// A nil receiver or nil db is valid and turns every method into a
// no-op returning ErrJournalDisabled, so callers need no feature
// flag checks of their own.
type JournalRepo struct {
	db *sql.DB
}

// NewJournalRepo returns a new JournalRepo bound to the provided
// database, which may be nil when the journal is disabled.
func NewJournalRepo(db *sql.DB) *JournalRepo { return &JournalRepo{db: db} }

// Insert appends one record to the journal.  CreatedAt is set by the
// database.
func (r *JournalRepo) Insert(ctx context.Context, rec JournalRecord) error {
	if r == nil || r.db == nil {
		return ErrJournalDisabled
	}
	const q = `INSERT INTO operation_journal (operator, kind, reservation_id, furniture_ids, date)
			   VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rec.Operator, rec.Kind, rec.ReservationID, joinIDs(rec.FurnitureIDs), rec.Date)
	return err
}

// ListRecent returns the newest records first, bounded by limit.
func (r *JournalRepo) ListRecent(ctx context.Context, limit int) ([]JournalRecord, error) {
	if r == nil || r.db == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `SELECT id, operator, kind, reservation_id, furniture_ids, date, created_at
			   FROM operation_journal
			   ORDER BY id DESC
			   LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JournalRecord
	for rows.Next() {
		var rec JournalRecord
		var ids string
		if err := rows.Scan(&rec.ID, &rec.Operator, &rec.Kind, &rec.ReservationID, &ids, &rec.Date, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.FurnitureIDs = splitIDs(ids)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// joinIDs renders furniture IDs as the CSV form stored in the table.
func joinIDs(ids []uint64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return strings.Join(parts, ",")
}

// splitIDs parses the stored CSV back into IDs, skipping anything
// malformed.
func splitIDs(s string) []uint64 {
	if s == "" {
		return nil
	}
	var out []uint64
	for _, p := range strings.Split(s, ",") {
		if n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}

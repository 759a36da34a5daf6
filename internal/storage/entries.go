package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"tempo/internal/core"
)

// Export status values for closed entries picked up by the timesheet
// export worker.
const (
	ExportNone    = "none"
	ExportPending = "pending"
	ExportSynced  = "synced"
	ExportError   = "error"
)

const entryColumns = `id, user_id, client_id, project_id, start_time, end_time, duration, description, date`

// EntryRangeQuery selects a user's closed entries over an inclusive
// calendar-day range, optionally narrowed to one client and/or project.
type EntryRangeQuery struct {
	UserID    string
	StartDate string
	EndDate   string
	ClientID  string
	ProjectID string
}

func scanEntry(row interface{ Scan(...any) error }) (core.TimeEntry, error) {
	var e core.TimeEntry
	var endTime, duration sql.NullInt64
	err := row.Scan(&e.ID, &e.UserID, &e.ClientID, &e.ProjectID, &e.StartTime,
		&endTime, &duration, &e.Description, &e.Date)
	if err != nil {
		return core.TimeEntry{}, err
	}
	if endTime.Valid {
		e.EndTime = &endTime.Int64
	}
	if duration.Valid {
		e.Duration = &duration.Int64
	}
	return e, nil
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TimeEntry{}, core.ErrNotFound
	}
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("get time entry: %w", err)
	}
	return e, nil
}

// GetRunningEntry returns the user's open entry, or nil when idle.
func (r *SQLiteRepository) GetRunningEntry(ctx context.Context, userID string) (*core.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE user_id = ? AND end_time IS NULL`, userID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get running entry: %w", err)
	}
	return &e, nil
}

// StartEntry opens a new entry and, in the same transaction, closes any
// entry still running for the same user at the new entry's start instant.
// Readers never observe a user with zero or two running entries across the
// transition; the partial unique index on (user_id) WHERE end_time IS NULL
// rejects the insert if a concurrent start slipped in between.
// The auto-closed entry, if any, is returned with its final fields.
func (r *SQLiteRepository) StartEntry(ctx context.Context, entry core.TimeEntry) (*core.TimeEntry, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin start transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE user_id = ? AND end_time IS NULL`, entry.UserID)
	closed, err := scanEntry(row)
	var autoClosed *core.TimeEntry
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Idle, nothing to close.
	case err != nil:
		return nil, fmt.Errorf("find running entry: %w", err)
	default:
		endTime := entry.StartTime
		duration := endTime - closed.StartTime
		if _, err := tx.ExecContext(ctx,
			`UPDATE time_entries SET end_time = ?, duration = ?, export_status = ? WHERE id = ?`,
			endTime, duration, ExportPending, closed.ID); err != nil {
			return nil, fmt.Errorf("close running entry: %w", err)
		}
		closed.EndTime = &endTime
		closed.Duration = &duration
		autoClosed = &closed
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO time_entries (id, user_id, client_id, project_id, start_time, description, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.ClientID, entry.ProjectID,
		entry.StartTime, entry.Description, entry.Date); err != nil {
		return nil, fmt.Errorf("insert time entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit start transaction: %w", err)
	}

	slog.InfoContext(ctx, "Time entry started",
		"id", entry.ID,
		"client_id", entry.ClientID,
		"project_id", entry.ProjectID,
		"date", entry.Date,
		"auto_closed", autoClosed != nil)
	return autoClosed, nil
}

// StopEntry closes the entry at endTime. The guarded update only touches
// rows that are still open, so stopping an already-stopped entry reports
// core.ErrEntryAlreadyStopped without mutating anything.
func (r *SQLiteRepository) StopEntry(ctx context.Context, id string, endTime int64) (core.TimeEntry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries
		 SET end_time = ?, duration = ? - start_time, export_status = ?
		 WHERE id = ? AND end_time IS NULL`,
		endTime, endTime, ExportPending, id)
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("stop time entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("stop time entry rows: %w", err)
	}
	if affected == 0 {
		return core.TimeEntry{}, core.ErrEntryAlreadyStopped
	}

	e, err := r.GetEntry(ctx, id)
	if err != nil {
		return core.TimeEntry{}, err
	}
	slog.InfoContext(ctx, "Time entry stopped",
		"id", e.ID,
		"duration_ms", *e.Duration)
	return e, nil
}

func (r *SQLiteRepository) UpdateEntryDescription(ctx context.Context, id, description string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET description = ? WHERE id = ?`, description, id)
	if err != nil {
		return fmt.Errorf("update time entry description: %w", err)
	}
	return nil
}

// ListClosedEntries returns closed entries matching the range query,
// newest date first. Running entries never match: reports only count
// completed work.
func (r *SQLiteRepository) ListClosedEntries(ctx context.Context, q EntryRangeQuery) ([]core.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries
	          WHERE user_id = ? AND end_time IS NOT NULL AND date >= ? AND date <= ?`
	args := []any{q.UserID, q.StartDate, q.EndDate}
	if q.ClientID != "" {
		query += ` AND client_id = ?`
		args = append(args, q.ClientID)
	}
	if q.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, q.ProjectID)
	}
	query += ` ORDER BY date DESC, start_time DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list closed entries: %w", err)
	}
	defer rows.Close()

	var out []core.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EXPORT BOOKKEEPING

// ListPendingExport returns closed entries awaiting timesheet export,
// oldest first, up to limit.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]core.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries
		 WHERE export_status = ? ORDER BY end_time LIMIT ?`, ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var out []core.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEntryExportStatus returns the export bookkeeping state of an entry.
func (r *SQLiteRepository) GetEntryExportStatus(ctx context.Context, id string) (string, error) {
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT export_status FROM time_entries WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get entry export status: %w", err)
	}
	return status, nil
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET export_status = ? WHERE id = ?`, ExportSynced, id); err != nil {
		return fmt.Errorf("mark entry exported: %w", err)
	}
	slog.InfoContext(ctx, "Time entry marked as exported", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET export_status = ? WHERE id = ?`, ExportError, id); err != nil {
		return fmt.Errorf("mark entry export error: %w", err)
	}
	slog.WarnContext(ctx, "Time entry marked with export error", "id", id)
	return nil
}

// CountRunningEntries reports how many open entries a user has. Healthy
// data always yields 0 or 1.
func (r *SQLiteRepository) CountRunningEntries(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM time_entries WHERE user_id = ? AND end_time IS NULL`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count running entries: %w", err)
	}
	return n, nil
}

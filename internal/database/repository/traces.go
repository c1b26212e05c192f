package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jask/stickyscroll/internal/database"
)

// ErrTraceNotFound is returned when no trace matches the requested name.
var ErrTraceNotFound = errors.New("trace not found")

// TraceRepo stores recorded gesture traces.
type TraceRepo struct {
	db *sql.DB
}

func NewTraceRepo(db *sql.DB) *TraceRepo { return &TraceRepo{db: db} }

// Save stores t, replacing any trace that already has the same name.
func (r *TraceRepo) Save(ctx context.Context, t Trace) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return saveTrace(ctx, tx, t)
	})
}

func saveTrace(ctx context.Context, tx *sql.Tx, t Trace) error {
	if _, err := tx.ExecContext(ctx, `
	DELETE FROM trace_events WHERE trace_id IN (SELECT id FROM traces WHERE name = ? OR id = ?);
	`, t.Name, t.ID); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM traces WHERE name = ? OR id = ?`, t.Name, t.ID); err != nil {
		return fmt.Errorf("replace trace: %w", err)
	}
	created := t.CreatedAt
	if created.IsZero() {
		created = database.Now()
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO traces(id, name, header_height, created_at,
		friction, stop_velocity, min_fling_velocity, max_fling_velocity, velocity_window_ns, sample_gap_ns)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, t.ID, t.Name, t.HeaderHeight, created,
		t.Physics.Friction, t.Physics.StopVelocity, t.Physics.MinFlingVelocity, t.Physics.MaxFlingVelocity,
		int64(t.Physics.VelocityWindow), int64(t.Physics.SampleGap)); err != nil {
		return fmt.Errorf("insert trace: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO trace_events(trace_id, seq, kind, at_ns, y, delta, velocity, child_can_scroll_up, header_offset)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, ev := range t.Events {
		if _, err := stmt.ExecContext(ctx, t.ID, i, ev.Kind, int64(ev.At), ev.Y, ev.Delta, ev.Velocity, boolToInt(ev.ChildCanScrollUp), ev.Offset); err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}
	return nil
}

// ByName loads a trace and its events in recording order.
func (r *TraceRepo) ByName(ctx context.Context, name string) (*Trace, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, header_height, created_at,
		friction, stop_velocity, min_fling_velocity, max_fling_velocity, velocity_window_ns, sample_gap_ns
	FROM traces WHERE name = ?
	`, name)
	var t Trace
	var window, gap int64
	if err := row.Scan(&t.ID, &t.Name, &t.HeaderHeight, &t.CreatedAt,
		&t.Physics.Friction, &t.Physics.StopVelocity, &t.Physics.MinFlingVelocity, &t.Physics.MaxFlingVelocity,
		&window, &gap); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTraceNotFound
		}
		return nil, err
	}
	t.Physics.VelocityWindow = time.Duration(window)
	t.Physics.SampleGap = time.Duration(gap)
	rows, err := r.db.QueryContext(ctx, `
	SELECT kind, at_ns, y, delta, velocity, child_can_scroll_up, header_offset
	FROM trace_events WHERE trace_id = ? ORDER BY seq
	`, t.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ev TraceEvent
		var at int64
		var canUp int
		if err := rows.Scan(&ev.Kind, &at, &ev.Y, &ev.Delta, &ev.Velocity, &canUp, &ev.Offset); err != nil {
			return nil, err
		}
		ev.At = time.Duration(at)
		ev.ChildCanScrollUp = canUp != 0
		t.Events = append(t.Events, ev)
	}
	return &t, rows.Err()
}

// List returns every trace, newest first, without events.
func (r *TraceRepo) List(ctx context.Context) ([]TraceSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT t.id, t.name, t.header_height, t.created_at, COUNT(e.seq)
	FROM traces t LEFT JOIN trace_events e ON e.trace_id = t.id
	GROUP BY t.id
	ORDER BY t.created_at DESC, t.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TraceSummary
	for rows.Next() {
		var s TraceSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.HeaderHeight, &s.CreatedAt, &s.EventCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the named trace.
func (r *TraceRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM traces WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTraceNotFound
	}
	return nil
}

// Prune deletes all but the keep most recent traces and returns how many went.
func (r *TraceRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.ExecContext(ctx, `
	DELETE FROM traces WHERE id NOT IN (
		SELECT id FROM traces ORDER BY created_at DESC, name LIMIT ?
	)
	`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of stored traces.
func (r *TraceRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM traces`).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

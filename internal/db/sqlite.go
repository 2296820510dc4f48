// Package db provides the embedded SQLite persistence layer: the tasks and
// event_map tables that survive a pipeline run after EventCreator commits.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

// ErrTaskNotFound is returned when an operation targets a task id that
// does not exist.
var ErrTaskNotFound = errors.New("task not found")

// Store implements the persistence side of EventCreator and the CLI's
// --list/--delete surface using SQLite.
type Store struct {
	db *sql.DB
}

// New opens path (creating it if absent) and runs migrations.
func New(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Single-writer discipline: the core never holds concurrent writers,
	// but serialize at the pool level too so overlapping queries never
	// trip SQLite's own locking.
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: sqlDB}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTask inserts a tasks row with no event_map entry — used for the
// parent row of a complex booking, which never has a backend event.
func (s *Store) CreateTask(ctx context.Context, t booking.PersistedTask) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, parent_id) VALUES (?, ?, ?)`,
		t.ID, t.Title, t.ParentID,
	)
	if err != nil {
		return fmt.Errorf("inserting task %q: %w", t.ID, err)
	}
	return nil
}

// CreateTaskWithEvent inserts a tasks row together with its event_map row
// in one transaction, so a successful backend POST is never recorded
// without its DB counterpart or vice versa.
func (s *Store) CreateTaskWithEvent(ctx context.Context, t booking.PersistedTask, m booking.EventMapping) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (id, title, parent_id) VALUES (?, ?, ?)`,
		t.ID, t.Title, t.ParentID,
	); err != nil {
		return fmt.Errorf("inserting task %q: %w", t.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_map (task_id, backend_event_id, calendar_id) VALUES (?, ?, ?)`,
		m.TaskID, m.BackendEventID, m.CalendarID,
	); err != nil {
		return fmt.Errorf("inserting event mapping for task %q: %w", t.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetTask retrieves a task by id, or nil if it does not exist.
func (s *Store) GetTask(ctx context.Context, id string) (*booking.PersistedTask, error) {
	var t booking.PersistedTask
	var parentID sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, parent_id FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.Title, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying task %q: %w", id, err)
	}
	if parentID.Valid {
		t.ParentID = &parentID.String
	}
	return &t, nil
}

// GetEventMapping retrieves the backend event mapping for taskID, or nil
// if the task has no associated event (e.g. a complex parent row).
func (s *Store) GetEventMapping(ctx context.Context, taskID string) (*booking.EventMapping, error) {
	var m booking.EventMapping
	err := s.db.QueryRowContext(ctx,
		`SELECT task_id, backend_event_id, calendar_id FROM event_map WHERE task_id = ?`, taskID,
	).Scan(&m.TaskID, &m.BackendEventID, &m.CalendarID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying event mapping for task %q: %w", taskID, err)
	}
	return &m, nil
}

// ListChildren returns the children of parentID ordered by id.
func (s *Store) ListChildren(ctx context.Context, parentID string) ([]booking.PersistedTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, parent_id FROM tasks WHERE parent_id = ? ORDER BY id`, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying children of %q: %w", parentID, err)
	}
	defer func() { _ = rows.Close() }()
	return scanTasks(rows)
}

// ListTasks returns every persisted task, parents and children alike.
func (s *Store) ListTasks(ctx context.Context) ([]booking.PersistedTask, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, parent_id FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTasks(rows)
}

func scanTasks(rows *sql.Rows) ([]booking.PersistedTask, error) {
	var tasks []booking.PersistedTask
	for rows.Next() {
		var t booking.PersistedTask
		var parentID sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &parentID); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		if parentID.Valid {
			t.ParentID = &parentID.String
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// DeleteTaskRow removes a single task row and its event_map row, if any.
// Deleting a row with no event_map entry (a complex parent) is not an
// error. The caller is responsible for deleting any children first and
// for deleting the corresponding backend event.
func (s *Store) DeleteTaskRow(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_map WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("deleting event mapping for %q: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task %q: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}

	return tx.Commit()
}

// DeleteAll removes every row from both tables. The CLI layer is
// responsible for requiring the user's typed confirmation before calling
// this, and for deleting backend events first.
func (s *Store) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_map`); err != nil {
		return fmt.Errorf("clearing event_map: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}

	return tx.Commit()
}
